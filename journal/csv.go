package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV writes runs, trades and equity points to three CSV files. Rows are
// flushed on every record so partial output survives a crash.
type CSV struct {
	runs   *csv.Writer
	trades *csv.Writer
	equity *csv.Writer
	rf     *os.File
	tf     *os.File
	ef     *os.File
}

func NewCSV(runsPath, tradesPath, equityPath string) (*CSV, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		rf.Close()
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		rf.Close()
		tf.Close()
		return nil, err
	}

	rw := csv.NewWriter(rf)
	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	headers := []struct {
		w      *csv.Writer
		fields []string
	}{
		{rw, []string{"run_id", "created", "symbol", "dataset", "strategy",
			"initial_capital", "final_capital", "total_return", "sharpe_ratio",
			"max_drawdown", "win_rate", "profit_factor", "total_trades"}},
		{tw, []string{"run_id", "seq", "symbol", "kind", "direction",
			"size", "price", "time", "cost", "pnl", "reason"}},
		{ew, []string{"run_id", "time", "equity"}},
	}
	for _, h := range headers {
		if err := h.w.Write(h.fields); err != nil {
			return nil, err
		}
		h.w.Flush()
		if err := h.w.Error(); err != nil {
			return nil, err
		}
	}

	return &CSV{runs: rw, trades: tw, equity: ew, rf: rf, tf: tf, ef: ef}, nil
}

func (j *CSV) RecordRun(r RunRecord) error {
	if err := j.runs.Write([]string{
		r.RunID,
		r.Created.Format(time.RFC3339),
		r.Symbol,
		r.Dataset,
		r.Strategy,
		f(r.InitialCapital),
		f(r.FinalCapital),
		f(r.TotalReturn),
		f(r.SharpeRatio),
		f(r.MaxDrawdown),
		f(r.WinRate),
		f(r.ProfitFactor),
		strconv.Itoa(r.TotalTrades),
	}); err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	if err := j.trades.Write([]string{
		t.RunID,
		strconv.Itoa(t.Seq),
		t.Symbol,
		t.Kind,
		strconv.Itoa(t.Direction),
		f(t.Size),
		f(t.Price),
		t.Time.Format(time.RFC3339),
		f(t.Cost),
		f(t.PnL),
		t.Reason,
	}); err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	if err := j.equity.Write([]string{
		e.RunID,
		e.Time.Format(time.RFC3339),
		f(e.Equity),
	}); err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	for _, w := range []*csv.Writer{j.runs, j.trades, j.equity} {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	for _, fh := range []*os.File{j.rf, j.tf, j.ef} {
		if err := fh.Close(); err != nil {
			return err
		}
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
