package sim

import "time"

// EquityPoint is the total account value (capital plus unrealized pnl) at the
// end of one processed bar.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// EquityTracker appends one mark-to-market equity point per bar, in strict
// bar order. Points are never recomputed retroactively.
type EquityTracker struct {
	points []EquityPoint
}

func NewEquityTracker() *EquityTracker {
	return &EquityTracker{}
}

func (e *EquityTracker) Append(t time.Time, equity float64) {
	e.points = append(e.points, EquityPoint{Time: t, Equity: equity})
}

// Points returns the equity series in bar order. Callers must not modify the
// returned slice.
func (e *EquityTracker) Points() []EquityPoint {
	return e.points
}
