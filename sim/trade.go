package sim

import (
	"time"

	"github.com/quantlab/quantsim/market"
)

// TradeKind distinguishes opening and closing ledger entries.
type TradeKind string

const (
	KindOpen  TradeKind = "open"
	KindClose TradeKind = "close"
)

// CloseReason records what removed a position from the book.
type CloseReason string

const (
	ReasonStopLoss   CloseReason = "stop_loss"
	ReasonTakeProfit CloseReason = "take_profit"
	ReasonSignal     CloseReason = "signal"
)

// Trade is one immutable ledger entry. Open entries carry the entry cost;
// close entries additionally carry the realized pnl and close reason.
type Trade struct {
	Symbol    string           `json:"symbol"`
	Direction market.Direction `json:"direction"`
	Size      float64          `json:"size"`
	Price     float64          `json:"price"`
	Time      time.Time        `json:"time"`
	Kind      TradeKind        `json:"kind"`
	Cost      float64          `json:"cost"`
	PnL       float64          `json:"pnl,omitempty"`
	Reason    CloseReason      `json:"reason,omitempty"`
}

// TradeLedger is an append-only record of trade events. Entries are never
// mutated or removed once appended.
type TradeLedger struct {
	trades []Trade
}

func NewTradeLedger() *TradeLedger {
	return &TradeLedger{}
}

func (l *TradeLedger) Append(t Trade) {
	l.trades = append(l.trades, t)
}

// Trades returns the ledger entries in append order. Callers must not
// modify the returned slice.
func (l *TradeLedger) Trades() []Trade {
	return l.trades
}

// Closed returns only the closing entries, in append order.
func (l *TradeLedger) Closed() []Trade {
	var out []Trade
	for _, t := range l.trades {
		if t.Kind == KindClose {
			out = append(out, t)
		}
	}
	return out
}
