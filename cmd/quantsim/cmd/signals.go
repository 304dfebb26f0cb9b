package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quantlab/quantsim/indicators"
	"github.com/quantlab/quantsim/market"
	"github.com/quantlab/quantsim/rules"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Generate a signal file from a strategy rules file",
	Long: `Generate signals: compute the standard indicator set over a bar dataset,
evaluate a strategy's entry/exit rules on every bar and write the resulting
signal list as YAML.

Examples:
  quantsim signals -b eurusd.csv --strategy macd-cross.yaml --symbol EURUSD
  quantsim signals -b eurusd.csv --strategy rsi-dip.yaml -o signals.yaml`,
	RunE: runSignals,
}

var (
	signalsBarsPath     string
	signalsStrategyPath string
	signalsSymbol       string
	signalsOutPath      string
)

func init() {
	rootCmd.AddCommand(signalsCmd)

	signalsCmd.Flags().StringVarP(&signalsBarsPath, "bars", "b", "", "path to bar dataset CSV (required)")
	signalsCmd.Flags().StringVar(&signalsStrategyPath, "strategy", "", "path to strategy rules file (required)")
	signalsCmd.Flags().StringVar(&signalsSymbol, "symbol", "ASSET", "symbol to stamp on generated signals")
	signalsCmd.Flags().StringVarP(&signalsOutPath, "out", "o", "", "output path (default stdout)")
	signalsCmd.MarkFlagRequired("bars")
	signalsCmd.MarkFlagRequired("strategy")
}

func runSignals(cmd *cobra.Command, args []string) error {
	bars, err := market.LoadBars(signalsBarsPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	strat, err := rules.LoadStrategy(signalsStrategyPath)
	if err != nil {
		return fmt.Errorf("load strategy: %w", err)
	}

	bars = indicators.Enrich(bars, indicators.Standard())
	sigs, err := strat.Signals(signalsSymbol, bars)
	if err != nil {
		return fmt.Errorf("generate signals: %w", err)
	}

	data, err := yaml.Marshal(sigs)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}

	if signalsOutPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(signalsOutPath, data, 0644); err != nil {
		return fmt.Errorf("write signals: %w", err)
	}
	fmt.Printf("wrote %d signals to %s\n", len(sigs), signalsOutPath)
	return nil
}
