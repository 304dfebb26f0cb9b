package market

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoBars is returned when a run is attempted over an empty bar series.
	ErrNoBars = errors.New("market: empty bar series")

	// ErrUnsorted is returned when bar timestamps are not strictly ascending.
	ErrUnsorted = errors.New("market: bars not in ascending time order")
)

// Direction of a signal or position: +1 long, -1 short, 0 flat.
type Direction int

const (
	Long  Direction = +1
	Short Direction = -1
	Flat  Direction = 0
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return "flat"
}

// Bar is one OHLCV observation for a fixed trading period, plus any named
// indicator values a strategy needs. Bars are immutable once handed to the
// simulator.
type Bar struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`

	// Indicators holds named values (SMA20, RSI, MACD, ...) computed by an
	// upstream stage. May be nil when a strategy needs none.
	Indicators map[string]float64 `json:"indicators,omitempty" yaml:"indicators,omitempty"`
}

// Indicator returns the named indicator value for this bar.
func (b Bar) Indicator(name string) (float64, bool) {
	v, ok := b.Indicators[name]
	return v, ok
}

// Signal is an externally produced instruction to go long/short/flat on a
// symbol at a given time, with risk-exit prices attached. Signals are matched
// to bars by exact timestamp equality.
type Signal struct {
	Symbol     string    `json:"symbol" yaml:"symbol"`
	Time       time.Time `json:"time" yaml:"time"`
	Direction  Direction `json:"direction" yaml:"direction"`
	StopLoss   float64   `json:"stop_loss" yaml:"stop_loss"`
	TakeProfit float64   `json:"take_profit" yaml:"take_profit"`
}

// ValidateBars checks that the series is non-empty and strictly ascending in
// time. The simulator refuses to run on anything else.
func ValidateBars(bars []Bar) error {
	if len(bars) == 0 {
		return ErrNoBars
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d (%s) not after bar %d (%s)",
				ErrUnsorted, i, bars[i].Time.Format(time.RFC3339),
				i-1, bars[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}
