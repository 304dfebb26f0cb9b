// Package indicators provides streaming technical analysis indicators and a
// pass that annotates bar series with named indicator values.
package indicators

import (
	"github.com/quantlab/quantsim/market"
)

// Indicator computes a single streaming value from bars. Implementations are
// deterministic and safe to reuse across backtests after Reset.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value. Callers should always
	// check Ready() first.
	Value() float64
}

// Named pairs an indicator with the bar column it populates.
type Named struct {
	Key       string
	Indicator Indicator
}

// Standard returns the default indicator set used to enrich a raw dataset:
// SMA20/50/200, EMA20, MACD (+signal and histogram), RSI14, ATR14 and ADX14.
func Standard() []Named {
	return []Named{
		{Key: "SMA20", Indicator: NewSMA(20)},
		{Key: "SMA50", Indicator: NewSMA(50)},
		{Key: "SMA200", Indicator: NewSMA(200)},
		{Key: "EMA20", Indicator: NewEMA(20)},
		{Key: "MACD", Indicator: NewMACD(12, 26, 9).Line()},
		{Key: "MACD_SIGNAL", Indicator: NewMACD(12, 26, 9).Signal()},
		{Key: "MACD_HIST", Indicator: NewMACD(12, 26, 9).Histogram()},
		{Key: "RSI", Indicator: NewRSI(14)},
		{Key: "ATR", Indicator: NewATR(14)},
		{Key: "ADX", Indicator: NewADX(14)},
	}
}

// Enrich runs each indicator over the bars in order and stores ready values
// under their keys. The input bars are not modified; the returned series
// carries copied indicator maps.
func Enrich(bars []market.Bar, set []Named) []market.Bar {
	for _, n := range set {
		n.Indicator.Reset()
	}

	out := make([]market.Bar, len(bars))
	for i, b := range bars {
		nb := b
		m := make(map[string]float64, len(nb.Indicators)+len(set))
		for k, v := range nb.Indicators {
			m[k] = v
		}
		nb.Indicators = m

		for _, n := range set {
			n.Indicator.Update(b)
			if n.Indicator.Ready() {
				nb.Indicators[n.Key] = n.Indicator.Value()
			}
		}
		out[i] = nb
	}
	return out
}
