package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantlab/quantsim/market"
)

// Price series names always available to rules, alongside any indicator
// values carried on the bar.
const (
	NameOpen   = "open"
	NameHigh   = "high"
	NameLow    = "low"
	NameClose  = "close"
	NameVolume = "volume"
)

// Strategy turns entry/exit rules into a signal list over a bar series. Exit
// prices are derived from the bar's ATR value: stop one ATR multiple away
// from the entry, take-profit twice that.
type Strategy struct {
	Name      string
	Direction market.Direction // side taken on entry; Long when unset
	Entry     Expr
	Exit      Expr

	// ATRKey names the bar value used for exit prices (default "ATR").
	ATRKey string
	// ATRMultiplier scales the stop distance (default 2).
	ATRMultiplier float64
}

// Signals walks the bars in order and emits an entry signal whenever the
// entry rule fires while flat and an exit (flat) signal whenever the exit
// rule fires while holding. Bars whose environment lacks a referenced value
// produce no signal.
func (s *Strategy) Signals(symbol string, bars []market.Bar) ([]market.Signal, error) {
	dir := s.Direction
	if dir == market.Flat {
		dir = market.Long
	}
	atrKey := s.ATRKey
	if atrKey == "" {
		atrKey = "ATR"
	}
	mult := s.ATRMultiplier
	if mult == 0 {
		mult = 2
	}

	var sigs []market.Signal
	holding := false

	for i, bar := range bars {
		env := barEnv{cur: bar}
		if i > 0 {
			env.prev = &bars[i-1]
		}

		rule := s.Entry
		if holding {
			rule = s.Exit
		}

		ok, err := rule.Eval(env)
		if err != nil {
			if errors.Is(err, ErrMissingValue) {
				continue
			}
			return nil, fmt.Errorf("rules: evaluate %s at %s: %w", s.Name, bar.Time, err)
		}
		if !ok {
			continue
		}

		if holding {
			sigs = append(sigs, market.Signal{
				Symbol:    symbol,
				Time:      bar.Time,
				Direction: market.Flat,
			})
			holding = false
			continue
		}

		stop, take := exitPrices(bar, dir, atrKey, mult)
		sigs = append(sigs, market.Signal{
			Symbol:     symbol,
			Time:       bar.Time,
			Direction:  dir,
			StopLoss:   stop,
			TakeProfit: take,
		})
		holding = true
	}
	return sigs, nil
}

// exitPrices derives stop/take from the ATR: stop = close -/+ mult*ATR and
// take = close +/- 2*mult*ATR for long/short. Without an ATR value both are
// zero, leaving the position without price triggers.
func exitPrices(bar market.Bar, dir market.Direction, atrKey string, mult float64) (stop, take float64) {
	atr, ok := bar.Indicator(atrKey)
	if !ok || atr <= 0 {
		return 0, 0
	}
	d := float64(dir)
	stop = bar.Close - d*mult*atr
	take = bar.Close + d*2*mult*atr
	return stop, take
}

// barEnv exposes one bar (and optionally its predecessor) as a rule
// environment.
type barEnv struct {
	cur  market.Bar
	prev *market.Bar
}

func (e barEnv) Value(name string) (float64, bool) {
	return barValue(e.cur, name)
}

func (e barEnv) Prev(name string) (float64, bool) {
	if e.prev == nil {
		return 0, false
	}
	return barValue(*e.prev, name)
}

func barValue(b market.Bar, name string) (float64, bool) {
	switch name {
	case NameOpen:
		return b.Open, true
	case NameHigh:
		return b.High, true
	case NameLow:
		return b.Low, true
	case NameClose:
		return b.Close, true
	case NameVolume:
		return b.Volume, true
	}
	return b.Indicator(name)
}

// StrategySpec is the file form of a Strategy.
type StrategySpec struct {
	Name          string   `yaml:"name" json:"name"`
	Direction     int      `yaml:"direction,omitempty" json:"direction,omitempty"`
	Entry         RuleSpec `yaml:"entry" json:"entry"`
	Exit          RuleSpec `yaml:"exit" json:"exit"`
	ATRKey        string   `yaml:"atr_key,omitempty" json:"atr_key,omitempty"`
	ATRMultiplier float64  `yaml:"atr_multiplier,omitempty" json:"atr_multiplier,omitempty"`
}

// Compile validates the spec and builds the Strategy.
func (s StrategySpec) Compile() (*Strategy, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("rules: strategy name is required")
	}
	if s.Direction < -1 || s.Direction > 1 {
		return nil, fmt.Errorf("rules: direction must be -1, 0 or 1, got %d", s.Direction)
	}

	entry, err := s.Entry.Compile()
	if err != nil {
		return nil, fmt.Errorf("rules: entry rule: %w", err)
	}
	exit, err := s.Exit.Compile()
	if err != nil {
		return nil, fmt.Errorf("rules: exit rule: %w", err)
	}

	return &Strategy{
		Name:          s.Name,
		Direction:     market.Direction(s.Direction),
		Entry:         entry,
		Exit:          exit,
		ATRKey:        s.ATRKey,
		ATRMultiplier: s.ATRMultiplier,
	}, nil
}

// LoadStrategy reads a strategy spec from a YAML or JSON file.
func LoadStrategy(path string) (*Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy: %w", err)
	}

	var spec StrategySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		if jerr := json.Unmarshal(data, &spec); jerr != nil {
			return nil, fmt.Errorf("parse strategy (tried YAML and JSON): %w", err)
		}
	}
	return spec.Compile()
}
