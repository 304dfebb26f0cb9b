package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetRun returns a single run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, created, symbol, dataset, strategy,
		       initial_capital, final_capital, total_return, sharpe_ratio,
		       max_drawdown, win_rate, profit_factor, total_trades
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID,
		&rec.Created,
		&rec.Symbol,
		&rec.Dataset,
		&rec.Strategy,
		&rec.InitialCapital,
		&rec.FinalCapital,
		&rec.TotalReturn,
		&rec.SharpeRatio,
		&rec.MaxDrawdown,
		&rec.WinRate,
		&rec.ProfitFactor,
		&rec.TotalTrades,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns all run summaries, newest first.
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, symbol, dataset, strategy,
		       initial_capital, final_capital, total_return, sharpe_ratio,
		       max_drawdown, win_rate, profit_factor, total_trades
		FROM runs
		ORDER BY created DESC, run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Created,
			&rec.Symbol,
			&rec.Dataset,
			&rec.Strategy,
			&rec.InitialCapital,
			&rec.FinalCapital,
			&rec.TotalReturn,
			&rec.SharpeRatio,
			&rec.MaxDrawdown,
			&rec.WinRate,
			&rec.ProfitFactor,
			&rec.TotalTrades,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTradesByRun returns a run's ledger entries in their original order.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, seq, symbol, kind, direction, size, price, time, cost, pnl, reason
		FROM trades
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

// ListTradesBetween returns trades across all runs whose time is within
// [start, end), ordered by time.
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, seq, symbol, kind, direction, size, price, time, cost, pnl, reason
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, seq ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

// ListEquityByRun returns a run's equity curve in time order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, equity
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var rec EquitySnapshot
		if err := rows.Scan(&rec.RunID, &rec.Time, &rec.Equity); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanTrades(rows *sql.Rows) ([]TradeRecord, error) {
	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Seq,
			&rec.Symbol,
			&rec.Kind,
			&rec.Direction,
			&rec.Size,
			&rec.Price,
			&rec.Time,
			&rec.Cost,
			&rec.PnL,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
