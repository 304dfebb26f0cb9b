package indicators

import (
	"fmt"

	"github.com/quantlab/quantsim/market"
)

// MACD computes the fast/slow EMA difference, its signal line (an EMA of the
// MACD) and the histogram (MACD minus signal). The three series share one
// backing computation; Line, Signal and Histogram return independent
// Indicator views that each drive their own copy.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA

	fastPeriod, slowPeriod, signalPeriod int
}

func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:         NewEMA(fast),
		slow:         NewEMA(slow),
		signal:       NewEMA(signal),
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

func (m *MACD) Warmup() int {
	return m.slowPeriod + m.signalPeriod
}

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
}

func (m *MACD) Update(b market.Bar) {
	m.fast.Update(b)
	m.slow.Update(b)
	if m.fast.Ready() && m.slow.Ready() {
		m.signal.update(m.fast.Value() - m.slow.Value())
	}
}

func (m *MACD) Ready() bool {
	return m.fast.Ready() && m.slow.Ready()
}

// Value returns the MACD line.
func (m *MACD) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.fast.Value() - m.slow.Value()
}

// SignalReady reports whether the signal line has warmed up.
func (m *MACD) SignalReady() bool {
	return m.signal.Ready()
}

// SignalValue returns the signal line.
func (m *MACD) SignalValue() float64 {
	return m.signal.Value()
}

// view adapts one of the three MACD series to the Indicator interface.
type view struct {
	*MACD
	kind string // "line", "signal", "hist"
}

// Line returns this MACD as an Indicator for the MACD line itself.
func (m *MACD) Line() Indicator {
	return view{MACD: m, kind: "line"}
}

// Signal returns an Indicator view of the signal line.
func (m *MACD) Signal() Indicator {
	return view{MACD: m, kind: "signal"}
}

// Histogram returns an Indicator view of MACD minus signal.
func (m *MACD) Histogram() Indicator {
	return view{MACD: m, kind: "hist"}
}

func (v view) Name() string {
	return v.MACD.Name() + "." + v.kind
}

func (v view) Ready() bool {
	if v.kind == "line" {
		return v.MACD.Ready()
	}
	return v.MACD.Ready() && v.MACD.SignalReady()
}

func (v view) Value() float64 {
	switch v.kind {
	case "line":
		return v.MACD.Value()
	case "signal":
		return v.MACD.SignalValue()
	default:
		return v.MACD.Value() - v.MACD.SignalValue()
	}
}
