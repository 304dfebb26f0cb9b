package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, symbol, dataset, strategy,
		 initial_capital, final_capital, total_return, sharpe_ratio,
		 max_drawdown, win_rate, profit_factor, total_trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Symbol, r.Dataset, r.Strategy,
		r.InitialCapital, r.FinalCapital, r.TotalReturn, r.SharpeRatio,
		r.MaxDrawdown, r.WinRate, r.ProfitFactor, r.TotalTrades,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, seq, symbol, kind, direction, size, price, time, cost, pnl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Seq, t.Symbol, t.Kind, t.Direction,
		t.Size, t.Price, t.Time, t.Cost, t.PnL, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, time, equity)
		VALUES (?, ?, ?)`,
		e.RunID, e.Time, e.Equity,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
