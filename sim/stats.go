package sim

import (
	"math"
)

// tradingDaysPerYear annualizes the Sharpe ratio for daily bars.
const tradingDaysPerYear = 252

// Result is the complete outcome of one simulation run: derived performance
// scalars plus the full trade list and equity series for downstream
// reporting.
type Result struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalCapital   float64 `json:"final_capital"`

	TotalReturn float64 `json:"total_return"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
	WinRate     float64 `json:"win_rate"`
	// ProfitFactor is +Inf when there are winners but no losers.
	ProfitFactor float64 `json:"profit_factor"`
	TotalTrades  int     `json:"total_trades"`

	Trades      []Trade       `json:"trades"`
	EquityCurve []EquityPoint `json:"equity_curve"`
}

// analyze derives performance statistics from the closed trades and the
// equity series once the full bar sequence has been processed. Open
// positions are not force-closed; their unrealized pnl shows up only in the
// final equity point.
func analyze(initial, final float64, ledger *TradeLedger, equity *EquityTracker) *Result {
	closed := ledger.Closed()

	pnls := make([]float64, len(closed))
	for i, t := range closed {
		pnls[i] = t.PnL
	}

	return &Result{
		InitialCapital: initial,
		FinalCapital:   final,
		TotalReturn:    (final - initial) / initial,
		SharpeRatio:    sharpeRatio(pnls),
		MaxDrawdown:    maxDrawdown(equity.Points()),
		WinRate:        winRate(pnls),
		ProfitFactor:   profitFactor(pnls),
		TotalTrades:    len(closed),
		Trades:         ledger.Trades(),
		EquityCurve:    equity.Points(),
	}
}

// sharpeRatio annualizes mean/stdev of closed-trade pnls with sqrt(252).
// The standard deviation is the sample one (n-1 denominator): the trade list
// is a sample of the strategy's return distribution. Returns 0 with fewer
// than two closed trades or zero variance.
func sharpeRatio(pnls []float64) float64 {
	if len(pnls) < 2 {
		return 0
	}

	mean := 0.0
	for _, p := range pnls {
		mean += p
	}
	mean /= float64(len(pnls))

	variance := 0.0
	for _, p := range pnls {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(pnls) - 1)

	if variance == 0 {
		return 0
	}
	return math.Sqrt(tradingDaysPerYear) * mean / math.Sqrt(variance)
}

// maxDrawdown is the most negative peak-to-trough decline of the equity
// series, as a fraction of the running peak. Always <= 0; exactly 0 for a
// non-decreasing series.
func maxDrawdown(points []EquityPoint) float64 {
	if len(points) == 0 {
		return 0
	}

	peak := points[0].Equity
	worst := 0.0
	for _, p := range points {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (p.Equity - peak) / peak
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func winRate(pnls []float64) float64 {
	if len(pnls) == 0 {
		return 0
	}
	wins := 0
	for _, p := range pnls {
		if p > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(pnls))
}

// profitFactor is gross profit over gross loss of closed trades. With zero
// gross loss it is +Inf when there is any profit and 0 otherwise.
func profitFactor(pnls []float64) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, p := range pnls {
		if p > 0 {
			grossProfit += p
		} else {
			grossLoss -= p
		}
	}

	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}
