package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab/quantsim/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled runs",
	Long: `Query and display journaled runs from a SQLite database.

Subcommands:
  runs   - List all recorded runs
  run    - Show a run's summary and trade ledger
  day    - List trades recorded on a specific day

Examples:
  quantsim journal runs
  quantsim journal run 01J8...
  quantsim journal day 2026-08-15`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List all recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a run's summary and trade ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades recorded on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./quantsim.sqlite", "path to SQLite journal DB")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	fmt.Printf("%-28s %-18s %-10s %-12s %10s %8s\n",
		"RUN_ID", "CREATED", "SYMBOL", "STRATEGY", "RETURN", "TRADES")
	for _, r := range runs {
		fmt.Printf("%-28s %-18s %-10s %-12s %9.2f%% %8d\n",
			r.RunID, r.Created.Format("2006-01-02 15:04"), r.Symbol,
			r.Strategy, r.TotalReturn*100, r.TotalTrades)
	}
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	run, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	fmt.Printf("Run %s (%s)\n", run.RunID, run.Created.Format(time.RFC3339))
	fmt.Printf("  Symbol:        %s\n", run.Symbol)
	fmt.Printf("  Dataset:       %s\n", run.Dataset)
	fmt.Printf("  Strategy:      %s\n", run.Strategy)
	fmt.Printf("  Capital:       %.2f -> %.2f\n", run.InitialCapital, run.FinalCapital)
	fmt.Printf("  Return:        %.2f%%\n", run.TotalReturn*100)
	fmt.Printf("  Sharpe:        %.2f\n", run.SharpeRatio)
	fmt.Printf("  Max Drawdown:  %.2f%%\n", run.MaxDrawdown*100)
	fmt.Printf("  Win Rate:      %.2f%%\n", run.WinRate*100)
	fmt.Printf("  Profit Factor: %.2f\n", run.ProfitFactor)
	fmt.Printf("  Round Trips:   %d\n", run.TotalTrades)

	trades, err := j.ListTradesByRun(run.RunID)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(trades) == 0 {
		return nil
	}

	fmt.Println("\nLedger:")
	for _, t := range trades {
		line := fmt.Sprintf("  %3d %-6s %-10s dir=%+d size=%.4f price=%.4f cost=%.4f",
			t.Seq, t.Kind, t.Time.Format("2006-01-02"), t.Direction, t.Size, t.Price, t.Cost)
		if t.Kind == "close" {
			line += fmt.Sprintf(" pnl=%.4f reason=%s", t.PnL, t.Reason)
		}
		fmt.Println(line)
	}
	return nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	trades, err := j.ListTradesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	for _, t := range trades {
		fmt.Printf("%-28s %3d %-6s %-10s %s pnl=%.4f\n",
			t.RunID, t.Seq, t.Kind, t.Symbol, t.Time.Format(time.RFC3339), t.PnL)
	}
	fmt.Printf("%d trades\n", len(trades))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
