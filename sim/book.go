package sim

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/quantlab/quantsim/market"
)

// ErrNoPosition is returned when a close is requested for a symbol with no
// open position. Given the close-before-open rule in signal processing this
// indicates an internal invariant violation and aborts the run.
var ErrNoPosition = errors.New("sim: no open position")

// Position is an open, sized exposure to one symbol with defined entry price
// and exit thresholds. Positions are owned exclusively by the PositionBook.
type Position struct {
	Symbol     string
	Direction  market.Direction
	Size       float64
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	EntryTime  time.Time
}

// PositionBook holds at most one open position per symbol.
type PositionBook struct {
	positions map[string]Position
}

func NewPositionBook() *PositionBook {
	return &PositionBook{positions: make(map[string]Position)}
}

// Open records a new position. It is rejected if one already exists for the
// symbol; the caller is expected to log the rejection.
func (b *PositionBook) Open(p Position) error {
	if _, ok := b.positions[p.Symbol]; ok {
		return fmt.Errorf("sim: position already open for %s", p.Symbol)
	}
	b.positions[p.Symbol] = p
	return nil
}

// Close removes the position for symbol and returns it along with the
// realized pnl at exitPrice. Fails with ErrNoPosition if none exists.
func (b *PositionBook) Close(symbol string, exitPrice float64) (Position, float64, error) {
	p, ok := b.positions[symbol]
	if !ok {
		return Position{}, 0, fmt.Errorf("%w: %s", ErrNoPosition, symbol)
	}
	delete(b.positions, symbol)
	pnl := float64(p.Direction) * p.Size * (exitPrice - p.EntryPrice)
	return p, pnl, nil
}

// Get returns the open position for symbol, if any.
func (b *PositionBook) Get(symbol string) (Position, bool) {
	p, ok := b.positions[symbol]
	return p, ok
}

// UnrealizedPnL is a pure query: mark-to-market pnl of the open position for
// symbol at price, 0 if no position is open.
func (b *PositionBook) UnrealizedPnL(symbol string, price float64) float64 {
	p, ok := b.positions[symbol]
	if !ok {
		return 0
	}
	return float64(p.Direction) * p.Size * (price - p.EntryPrice)
}

// Symbols returns the symbols with open positions in sorted order, so that
// per-bar iteration is deterministic.
func (b *PositionBook) Symbols() []string {
	syms := make([]string, 0, len(b.positions))
	for s := range b.positions {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

func (b *PositionBook) Len() int {
	return len(b.positions)
}
