package sim

import (
	"fmt"
	"io"
	"math"
	"time"
)

// PrintResult writes a plain-text summary of a simulation run.
func PrintResult(w io.Writer, r *Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	if len(r.EquityCurve) > 0 {
		first := r.EquityCurve[0].Time
		last := r.EquityCurve[len(r.EquityCurve)-1].Time
		fmt.Fprintf(w, "Start:         %s\n", first.Format(time.RFC3339))
		fmt.Fprintf(w, "End:           %s\n", last.Format(time.RFC3339))
		fmt.Fprintf(w, "Bars:          %d\n", len(r.EquityCurve))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Capital: %.2f\n", r.InitialCapital)
	fmt.Fprintf(w, "End Capital:   %.2f\n", r.FinalCapital)
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.TotalReturn*100)
	fmt.Fprintf(w, "Sharpe Ratio:  %.2f\n", r.SharpeRatio)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.MaxDrawdown*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Closed Trades: %d\n", r.TotalTrades)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate*100)
	if math.IsInf(r.ProfitFactor, 1) {
		fmt.Fprintln(w, "Profit Factor: inf (no losing trades)")
	} else {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", r.ProfitFactor)
	}

	fmt.Fprintln(w)
}
