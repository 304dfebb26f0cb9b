// Package journal persists simulation runs, their trade ledgers and equity
// curves, to CSV files or a SQLite database.
package journal

import (
	"fmt"
	"time"

	"github.com/quantlab/quantsim/sim"
)

// TradeRecord is one ledger entry of a run. Seq preserves ledger order
// within the run.
type TradeRecord struct {
	RunID     string
	Seq       int
	Symbol    string
	Kind      string
	Direction int
	Size      float64
	Price     float64
	Time      time.Time
	Cost      float64
	PnL       float64
	Reason    string
}

// EquitySnapshot is one point of a run's equity curve.
type EquitySnapshot struct {
	RunID  string
	Time   time.Time
	Equity float64
}

// RunRecord summarizes one simulation run.
type RunRecord struct {
	RunID    string
	Created  time.Time
	Symbol   string
	Dataset  string
	Strategy string

	InitialCapital float64
	FinalCapital   float64
	TotalReturn    float64
	SharpeRatio    float64
	MaxDrawdown    float64
	WinRate        float64
	ProfitFactor   float64
	TotalTrades    int
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// FillResult copies the performance summary of a finished run into the
// record.
func (r *RunRecord) FillResult(res *sim.Result) {
	r.InitialCapital = res.InitialCapital
	r.FinalCapital = res.FinalCapital
	r.TotalReturn = res.TotalReturn
	r.SharpeRatio = res.SharpeRatio
	r.MaxDrawdown = res.MaxDrawdown
	r.WinRate = res.WinRate
	r.ProfitFactor = res.ProfitFactor
	r.TotalTrades = res.TotalTrades
}

// RecordResult writes a run summary plus its full ledger and equity curve.
func RecordResult(j Journal, run RunRecord, r *sim.Result) error {
	run.FillResult(r)

	if err := j.RecordRun(run); err != nil {
		return fmt.Errorf("record run %s: %w", run.RunID, err)
	}

	for i, t := range r.Trades {
		rec := TradeRecord{
			RunID:     run.RunID,
			Seq:       i,
			Symbol:    t.Symbol,
			Kind:      string(t.Kind),
			Direction: int(t.Direction),
			Size:      t.Size,
			Price:     t.Price,
			Time:      t.Time,
			Cost:      t.Cost,
			PnL:       t.PnL,
			Reason:    string(t.Reason),
		}
		if err := j.RecordTrade(rec); err != nil {
			return fmt.Errorf("record trade %d of run %s: %w", i, run.RunID, err)
		}
	}

	for _, p := range r.EquityCurve {
		snap := EquitySnapshot{RunID: run.RunID, Time: p.Time, Equity: p.Equity}
		if err := j.RecordEquity(snap); err != nil {
			return fmt.Errorf("record equity of run %s: %w", run.RunID, err)
		}
	}
	return nil
}
