package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/quantsim/market"
	"github.com/quantlab/quantsim/sim"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	run := RunRecord{
		RunID:          "01TEST",
		Created:        created,
		Symbol:         "EURUSD",
		Dataset:        "eurusd-daily.csv",
		Strategy:       "macd-cross",
		InitialCapital: 100000,
		FinalCapital:   101250,
		TotalReturn:    0.0125,
		SharpeRatio:    1.1,
		MaxDrawdown:    -0.02,
		WinRate:        0.5,
		ProfitFactor:   1.8,
		TotalTrades:    4,
	}
	require.NoError(t, j.RecordRun(run))

	t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	trades := []TradeRecord{
		{RunID: "01TEST", Seq: 0, Symbol: "EURUSD", Kind: "open", Direction: 1, Size: 10, Price: 100, Time: t0, Cost: 2},
		{RunID: "01TEST", Seq: 1, Symbol: "EURUSD", Kind: "close", Direction: 1, Size: 10, Price: 110, Time: t0.AddDate(0, 0, 1), Cost: 2.2, PnL: 100, Reason: "signal"},
	}
	for _, tr := range trades {
		require.NoError(t, j.RecordTrade(tr))
	}
	require.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "01TEST", Time: t0, Equity: 100000}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "01TEST", Time: t0.AddDate(0, 0, 1), Equity: 100100}))

	got, err := j.GetRun("01TEST")
	require.NoError(t, err)
	assert.Equal(t, run.Symbol, got.Symbol)
	assert.Equal(t, run.Strategy, got.Strategy)
	assert.InDelta(t, run.TotalReturn, got.TotalReturn, 1e-9)
	assert.Equal(t, run.TotalTrades, got.TotalTrades)
	assert.True(t, got.Created.Equal(created))

	gotTrades, err := j.ListTradesByRun("01TEST")
	require.NoError(t, err)
	require.Len(t, gotTrades, 2)
	assert.Equal(t, "open", gotTrades[0].Kind)
	assert.Equal(t, "close", gotTrades[1].Kind)
	assert.InDelta(t, 100.0, gotTrades[1].PnL, 1e-9)
	assert.Equal(t, "signal", gotTrades[1].Reason)

	eq, err := j.ListEquityByRun("01TEST")
	require.NoError(t, err)
	require.Len(t, eq, 2)
	assert.InDelta(t, 100100.0, eq[1].Equity, 1e-9)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	_, err := j.GetRun("missing")
	assert.Error(t, err)
}

func TestSQLiteListTradesBetween(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := TradeRecord{
			RunID: "R", Seq: i, Symbol: "EURUSD", Kind: "open", Direction: 1,
			Size: 1, Price: 100, Time: t0.AddDate(0, 0, i),
		}
		require.NoError(t, j.RecordTrade(rec))
	}

	got, err := j.ListTradesBetween(t0.AddDate(0, 0, 1), t0.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Seq)
	assert.Equal(t, 2, got[1].Seq)
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordRun(RunRecord{RunID: "A", Created: t0, Symbol: "EURUSD", Dataset: "d", Strategy: "s"}))
	require.NoError(t, j.RecordRun(RunRecord{RunID: "B", Created: t0.AddDate(0, 0, 1), Symbol: "EURUSD", Dataset: "d", Strategy: "s"}))

	runs, err := j.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "B", runs[0].RunID)
	assert.Equal(t, "A", runs[1].RunID)
}

func TestRecordResult(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res := &sim.Result{
		InitialCapital: 100000,
		FinalCapital:   100100,
		TotalReturn:    0.001,
		TotalTrades:    1,
		Trades: []sim.Trade{
			{Symbol: "EURUSD", Direction: market.Long, Size: 10, Price: 100, Time: t0, Kind: sim.KindOpen, Cost: 0},
			{Symbol: "EURUSD", Direction: market.Long, Size: 10, Price: 110, Time: t0.AddDate(0, 0, 1), Kind: sim.KindClose, PnL: 100, Reason: sim.ReasonSignal},
		},
		EquityCurve: []sim.EquityPoint{
			{Time: t0, Equity: 100000},
			{Time: t0.AddDate(0, 0, 1), Equity: 100100},
		},
	}

	run := RunRecord{RunID: "RR1", Created: t0, Symbol: "EURUSD", Dataset: "d.csv", Strategy: "manual"}
	require.NoError(t, RecordResult(j, run, res))

	got, err := j.GetRun("RR1")
	require.NoError(t, err)
	assert.InDelta(t, 100100.0, got.FinalCapital, 1e-9)
	assert.Equal(t, 1, got.TotalTrades)

	trades, err := j.ListTradesByRun("RR1")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, string(sim.ReasonSignal), trades[1].Reason)

	eq, err := j.ListEquityByRun("RR1")
	require.NoError(t, err)
	assert.Len(t, eq, 2)
}
