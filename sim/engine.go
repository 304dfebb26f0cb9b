package sim

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantlab/quantsim/market"
)

// Config holds the simulation parameters accepted at construction.
type Config struct {
	// InitialCapital is the starting account value. Must be positive.
	InitialCapital float64

	// PositionFraction is the fraction of initial capital committed per
	// position, in (0, 1].
	PositionFraction float64

	// CommissionRate and SlippageRate are per-trade cost rates applied on
	// both entry and exit. Both must be >= 0.
	CommissionRate float64
	SlippageRate   float64
}

func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("sim: initial capital must be positive, got %v", c.InitialCapital)
	}
	if c.PositionFraction <= 0 || c.PositionFraction > 1 {
		return fmt.Errorf("sim: position fraction must be in (0, 1], got %v", c.PositionFraction)
	}
	if c.CommissionRate < 0 {
		return fmt.Errorf("sim: commission rate must be >= 0, got %v", c.CommissionRate)
	}
	if c.SlippageRate < 0 {
		return fmt.Errorf("sim: slippage rate must be >= 0, got %v", c.SlippageRate)
	}
	return nil
}

// costRate is the combined per-trade cost rate.
func (c Config) costRate() float64 {
	return c.CommissionRate + c.SlippageRate
}

// Simulator replays a bar series against a signal list and produces a full
// trading ledger, equity curve and performance statistics. It holds no state
// between runs; each Run owns its own capital, book, ledger and tracker.
type Simulator struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config) *Simulator {
	return &Simulator{cfg: cfg, log: zerolog.Nop()}
}

// SetLogger installs a logger for per-bar events (skipped openings, closes).
func (s *Simulator) SetLogger(log zerolog.Logger) {
	s.log = log
}

// runState is the per-run mutable world. Capital changes only through trade
// costs and realized pnl.
type runState struct {
	capital float64
	book    *PositionBook
	ledger  *TradeLedger
	equity  *EquityTracker
}

// Run processes the entire bar sequence to completion or failure. Within a
// bar, exit-rule evaluation strictly precedes signal processing, which
// strictly precedes the equity snapshot. Same bars and signals always yield
// an identical result.
func (s *Simulator) Run(bars []market.Bar, signals []market.Signal) (*Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := market.ValidateBars(bars); err != nil {
		return nil, err
	}

	// Signals are matched to bars by exact timestamp; anything else is
	// ignored, with input order preserved within a timestamp.
	byTime := make(map[int64][]market.Signal, len(signals))
	for _, sig := range signals {
		key := sig.Time.UnixNano()
		byTime[key] = append(byTime[key], sig)
	}

	st := &runState{
		capital: s.cfg.InitialCapital,
		book:    NewPositionBook(),
		ledger:  NewTradeLedger(),
		equity:  NewEquityTracker(),
	}

	for _, bar := range bars {
		if err := s.applyExitRules(st, bar); err != nil {
			return nil, err
		}
		if err := s.applySignals(st, bar, byTime[bar.Time.UnixNano()]); err != nil {
			return nil, err
		}
		s.markEquity(st, bar)
	}

	res := analyze(s.cfg.InitialCapital, st.capital, st.ledger, st.equity)
	return res, nil
}

// applyExitRules closes every open position whose stop-loss or take-profit
// is breached by the bar's close price. Stop loss is checked first; a
// position closed here may legally be reopened by a signal in the same bar.
func (s *Simulator) applyExitRules(st *runState, bar market.Bar) error {
	for _, sym := range st.book.Symbols() {
		pos, _ := st.book.Get(sym)
		if reason, hit := checkExit(pos, bar.Close); hit {
			if err := s.closePosition(st, sym, bar.Close, bar.Time, reason); err != nil {
				return err
			}
		}
	}
	return nil
}

// applySignals processes every signal matching the bar's timestamp: an open
// position on the signal's symbol is closed unconditionally, then a non-flat
// signal opens a fresh position if capital covers the entry cost.
func (s *Simulator) applySignals(st *runState, bar market.Bar, sigs []market.Signal) error {
	for _, sig := range sigs {
		if _, open := st.book.Get(sig.Symbol); open {
			if err := s.closePosition(st, sig.Symbol, bar.Close, bar.Time, ReasonSignal); err != nil {
				return err
			}
		}
		if sig.Direction == market.Flat {
			continue
		}
		s.openPosition(st, bar, sig)
	}
	return nil
}

func (s *Simulator) openPosition(st *runState, bar market.Bar, sig market.Signal) {
	price := bar.Close
	size := s.cfg.PositionFraction * s.cfg.InitialCapital / price
	cost := size * price * s.cfg.costRate()

	if cost > st.capital {
		// Non-fatal: skip the opening, leave all state untouched.
		s.log.Warn().
			Str("symbol", sig.Symbol).
			Time("time", bar.Time).
			Float64("cost", cost).
			Float64("capital", st.capital).
			Msg("insufficient capital, signal skipped")
		return
	}

	pos := Position{
		Symbol:     sig.Symbol,
		Direction:  sig.Direction,
		Size:       size,
		EntryPrice: price,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		EntryTime:  bar.Time,
	}
	if err := st.book.Open(pos); err != nil {
		// Cannot happen: any prior position was closed above.
		s.log.Error().Err(err).Str("symbol", sig.Symbol).Msg("open rejected")
		return
	}

	st.ledger.Append(Trade{
		Symbol:    sig.Symbol,
		Direction: sig.Direction,
		Size:      size,
		Price:     price,
		Time:      bar.Time,
		Kind:      KindOpen,
		Cost:      cost,
	})
	st.capital -= cost

	s.log.Debug().
		Str("symbol", sig.Symbol).
		Stringer("direction", sig.Direction).
		Float64("size", size).
		Float64("price", price).
		Msg("position opened")
}

// closePosition atomically appends the closing trade, settles capital and
// removes the position from the book.
func (s *Simulator) closePosition(st *runState, symbol string, price float64, t time.Time, reason CloseReason) error {
	pos, pnl, err := st.book.Close(symbol, price)
	if err != nil {
		return err
	}

	cost := pos.Size * price * s.cfg.costRate()

	st.ledger.Append(Trade{
		Symbol:    symbol,
		Direction: pos.Direction,
		Size:      pos.Size,
		Price:     price,
		Time:      t,
		Kind:      KindClose,
		Cost:      cost,
		PnL:       pnl,
		Reason:    reason,
	})
	st.capital += pnl - cost

	s.log.Debug().
		Str("symbol", symbol).
		Str("reason", string(reason)).
		Float64("pnl", pnl).
		Float64("capital", st.capital).
		Msg("position closed")
	return nil
}

// markEquity appends one equity point: capital plus unrealized pnl of all
// open positions at the bar's close price.
func (s *Simulator) markEquity(st *runState, bar market.Bar) {
	equity := st.capital
	for _, sym := range st.book.Symbols() {
		equity += st.book.UnrealizedPnL(sym, bar.Close)
	}
	st.equity.Append(bar.Time, equity)
}
