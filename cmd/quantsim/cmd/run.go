package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab/quantsim/config"
	"github.com/quantlab/quantsim/indicators"
	"github.com/quantlab/quantsim/internal/id"
	"github.com/quantlab/quantsim/journal"
	"github.com/quantlab/quantsim/market"
	"github.com/quantlab/quantsim/rules"
	"github.com/quantlab/quantsim/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over a bar dataset",
	Long: `Run a backtest: replay a CSV bar dataset against trading signals and
print the performance summary.

Signals come either from a signal file (--signals) or from a strategy rules
file (--strategy), which computes the standard indicator set over the bars
and derives signals from its entry/exit rules.

Examples:
  quantsim run -b eurusd.csv -s signals.yaml
  quantsim run -b eurusd.csv --strategy macd-cross.yaml --symbol EURUSD
  quantsim run -f config.yaml -b eurusd.csv.xz -s signals.yaml --org run.org`,
	RunE: runRun,
}

var (
	runConfigPath   string
	runBarsPath     string
	runSignalsPath  string
	runStrategyPath string
	runSymbol       string
	runOrgPath      string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVarP(&runBarsPath, "bars", "b", "", "path to bar dataset CSV (required)")
	runCmd.Flags().StringVarP(&runSignalsPath, "signals", "s", "", "path to signal file (YAML or JSON)")
	runCmd.Flags().StringVar(&runStrategyPath, "strategy", "", "path to strategy rules file (YAML or JSON)")
	runCmd.Flags().StringVar(&runSymbol, "symbol", "ASSET", "symbol for strategy-generated signals")
	runCmd.Flags().StringVar(&runOrgPath, "org", "", "write an Org-mode run report to this path")
	runCmd.MarkFlagRequired("bars")
}

func runRun(cmd *cobra.Command, args []string) error {
	if (runSignalsPath == "") == (runStrategyPath == "") {
		return fmt.Errorf("exactly one of --signals or --strategy is required")
	}

	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	log := newLogger(cfg.Logging)

	bars, err := market.LoadBars(runBarsPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	log.Info().Str("dataset", runBarsPath).Int("bars", len(bars)).Msg("bars loaded")

	var sigs []market.Signal
	strategyName := "external"
	if runSignalsPath != "" {
		sigs, err = market.LoadSignals(runSignalsPath)
		if err != nil {
			return fmt.Errorf("load signals: %w", err)
		}
	} else {
		strat, err := rules.LoadStrategy(runStrategyPath)
		if err != nil {
			return fmt.Errorf("load strategy: %w", err)
		}
		strategyName = strat.Name

		bars = indicators.Enrich(bars, indicators.Standard())
		sigs, err = strat.Signals(runSymbol, bars)
		if err != nil {
			return fmt.Errorf("generate signals: %w", err)
		}
		log.Info().Str("strategy", strat.Name).Int("signals", len(sigs)).Msg("signals generated")
	}

	simulator := sim.New(cfg.Sim())
	simulator.SetLogger(log)

	res, err := simulator.Run(bars, sigs)
	if err != nil {
		return fmt.Errorf("run simulation: %w", err)
	}

	sim.PrintResult(os.Stdout, res)

	run := journal.RunRecord{
		RunID:    id.New(),
		Created:  time.Now().UTC(),
		Symbol:   runSymbol,
		Dataset:  runBarsPath,
		Strategy: strategyName,
	}
	run.FillResult(res)

	if runOrgPath != "" {
		if err := run.WriteOrg(runOrgPath); err != nil {
			return fmt.Errorf("write org report: %w", err)
		}
		log.Info().Str("path", runOrgPath).Msg("org report written")
	}

	if cfg.Journal.Type != "" {
		j, err := openJournal(cfg.Journal)
		if err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
		defer j.Close()

		if err := journal.RecordResult(j, run, res); err != nil {
			return fmt.Errorf("journal run: %w", err)
		}
		log.Info().Str("run_id", run.RunID).Msg("run journaled")
	}

	return nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	if cfg.Type == "csv" {
		runs := cfg.RunsFile
		if runs == "" {
			runs = "runs.csv"
		}
		trades := cfg.TradesFile
		if trades == "" {
			trades = "trades.csv"
		}
		equity := cfg.EquityFile
		if equity == "" {
			equity = "equity.csv"
		}
		return journal.NewCSV(runs, trades, equity)
	}
	return journal.NewSQLite(cfg.DBPath)
}
