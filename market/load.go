package market

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"
)

// Required bar CSV columns. Any additional numeric column is stored as a
// named indicator value on the bar.
var barColumns = []string{"time", "open", "high", "low", "close", "volume"}

// LoadBars reads a bar dataset from a CSV file. The first row must be a
// header containing at least time,open,high,low,close,volume; extra columns
// become indicator values keyed by the header name. Files ending in .xz are
// decompressed transparently.
//
// Timestamps are RFC3339 or unix seconds.
func LoadBars(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz bars: %w", err)
		}
		r = xr
	}

	return ReadBars(r)
}

// ReadBars parses a bar CSV from r. See LoadBars for the format.
func ReadBars(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read bars header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range barColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("bars header missing column %q", name)
		}
	}

	// Column names beyond OHLCV become indicator keys, preserving the
	// header's original casing.
	type extra struct {
		name string
		idx  int
	}
	var extras []extra
	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		known := false
		for _, c := range barColumns {
			if lower == c {
				known = true
				break
			}
		}
		if !known {
			extras = append(extras, extra{name: strings.TrimSpace(name), idx: i})
		}
	}

	var bars []Bar
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read bars line %d: %w", line, err)
		}

		ts, err := parseTime(rec[cols["time"]])
		if err != nil {
			return nil, fmt.Errorf("bars line %d: %w", line, err)
		}

		b := Bar{Time: ts}
		for name, dst := range map[string]*float64{
			"open":   &b.Open,
			"high":   &b.High,
			"low":    &b.Low,
			"close":  &b.Close,
			"volume": &b.Volume,
		} {
			v, err := strconv.ParseFloat(rec[cols[name]], 64)
			if err != nil {
				return nil, fmt.Errorf("bars line %d: bad %s %q", line, name, rec[cols[name]])
			}
			*dst = v
		}

		for _, ex := range extras {
			raw := strings.TrimSpace(rec[ex.idx])
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("bars line %d: bad %s %q", line, ex.name, raw)
			}
			if b.Indicators == nil {
				b.Indicators = make(map[string]float64, len(extras))
			}
			b.Indicators[ex.name] = v
		}

		bars = append(bars, b)
	}

	if err := ValidateBars(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// LoadSignals reads a signal list from a YAML or JSON file.
func LoadSignals(path string) ([]Signal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signals: %w", err)
	}

	var sigs []Signal
	if err := yaml.Unmarshal(data, &sigs); err != nil {
		if jerr := json.Unmarshal(data, &sigs); jerr != nil {
			return nil, fmt.Errorf("parse signals (tried YAML and JSON): %w", err)
		}
	}
	return sigs, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}
