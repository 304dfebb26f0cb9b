package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/quantsim/market"
)

func testBars(closes []float64, atr []float64) []market.Bar {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:  t0.AddDate(0, 0, i),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
		if atr != nil && atr[i] > 0 {
			bars[i].Indicators = map[string]float64{"ATR": atr[i]}
		}
	}
	return bars
}

func TestStrategySignals(t *testing.T) {
	t.Parallel()

	strat := &Strategy{
		Name:  "close-band",
		Entry: Cmp{Op: OpGT, Left: Ref{NameClose}, Right: Const{105}},
		Exit:  Cmp{Op: OpLT, Left: Ref{NameClose}, Right: Const{103}},
	}

	bars := testBars(
		[]float64{100, 106, 107, 102, 101, 108},
		[]float64{1, 1, 1, 1, 1, 1},
	)

	sigs, err := strat.Signals("EURUSD", bars)
	require.NoError(t, err)
	require.Len(t, sigs, 3)

	// Entry on the first close above 105, stop/take from ATR=1 with the
	// default multiplier of 2.
	assert.Equal(t, market.Long, sigs[0].Direction)
	assert.Equal(t, bars[1].Time, sigs[0].Time)
	assert.Equal(t, "EURUSD", sigs[0].Symbol)
	assert.InDelta(t, 104.0, sigs[0].StopLoss, 1e-9)
	assert.InDelta(t, 110.0, sigs[0].TakeProfit, 1e-9)

	// Exit on the first close below 103 while holding.
	assert.Equal(t, market.Flat, sigs[1].Direction)
	assert.Equal(t, bars[3].Time, sigs[1].Time)

	// Re-entry after going flat.
	assert.Equal(t, market.Long, sigs[2].Direction)
	assert.Equal(t, bars[5].Time, sigs[2].Time)
}

func TestStrategySignalsShort(t *testing.T) {
	t.Parallel()

	strat := &Strategy{
		Name:          "fade",
		Direction:     market.Short,
		Entry:         Cmp{Op: OpGT, Left: Ref{NameClose}, Right: Const{105}},
		Exit:          Cmp{Op: OpLT, Left: Ref{NameClose}, Right: Const{0}}, // never
		ATRMultiplier: 3,
	}

	bars := testBars([]float64{100, 110}, []float64{2, 2})
	sigs, err := strat.Signals("EURUSD", bars)
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	assert.Equal(t, market.Short, sigs[0].Direction)
	// Short: stop above entry, take below.
	assert.InDelta(t, 116.0, sigs[0].StopLoss, 1e-9)
	assert.InDelta(t, 98.0, sigs[0].TakeProfit, 1e-9)
}

func TestStrategySkipsMissingValues(t *testing.T) {
	t.Parallel()

	strat := &Strategy{
		Name:  "rsi-dip",
		Entry: Cmp{Op: OpLT, Left: Ref{"RSI"}, Right: Const{30}},
		Exit:  Cmp{Op: OpGT, Left: Ref{"RSI"}, Right: Const{70}},
	}

	// No bar carries an RSI value, so no rule ever fires.
	bars := testBars([]float64{100, 101, 102}, nil)
	sigs, err := strat.Signals("EURUSD", bars)
	require.NoError(t, err)
	assert.Empty(t, sigs)
}

func TestStrategyNoATRMeansNoTriggers(t *testing.T) {
	t.Parallel()

	strat := &Strategy{
		Name:  "bare",
		Entry: Cmp{Op: OpGT, Left: Ref{NameClose}, Right: Const{100}},
		Exit:  Cmp{Op: OpLT, Left: Ref{NameClose}, Right: Const{0}},
	}

	bars := testBars([]float64{101}, nil)
	sigs, err := strat.Signals("EURUSD", bars)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Zero(t, sigs[0].StopLoss)
	assert.Zero(t, sigs[0].TakeProfit)
}

func TestStrategySpecCompileErrors(t *testing.T) {
	t.Parallel()

	valid := RuleSpec{Cmp: &CmpSpec{Left: ValueSpec{Ref: "close"}, Op: ">", Right: ValueSpec{Const: new(float64)}}}

	tests := []struct {
		name string
		spec StrategySpec
	}{
		{"missing_name", StrategySpec{Entry: valid, Exit: valid}},
		{"bad_direction", StrategySpec{Name: "s", Direction: 2, Entry: valid, Exit: valid}},
		{"bad_entry", StrategySpec{Name: "s", Entry: RuleSpec{}, Exit: valid}},
		{"bad_exit", StrategySpec{Name: "s", Entry: valid, Exit: RuleSpec{}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.spec.Compile()
			assert.Error(t, err)
		})
	}
}

func TestLoadStrategyYAML(t *testing.T) {
	t.Parallel()

	doc := `
name: macd-cross
direction: 1
atr_multiplier: 2
entry:
  cmp:
    left:
      cross:
        a: {ref: MACD}
        b: {ref: MACD_SIGNAL}
    op: ">"
    right: {const: 0}
exit:
  cmp:
    left:
      cross:
        a: {ref: MACD}
        b: {ref: MACD_SIGNAL}
    op: "<"
    right: {const: 0}
`
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	strat, err := LoadStrategy(path)
	require.NoError(t, err)
	assert.Equal(t, "macd-cross", strat.Name)
	assert.Equal(t, market.Long, strat.Direction)

	bars := testBars([]float64{100, 101}, []float64{1, 1})
	bars[0].Indicators["MACD"] = -1
	bars[0].Indicators["MACD_SIGNAL"] = 0
	bars[1].Indicators["MACD"] = 1
	bars[1].Indicators["MACD_SIGNAL"] = 0

	sigs, err := strat.Signals("EURUSD", bars)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, market.Long, sigs[0].Direction)
}
