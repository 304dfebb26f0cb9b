package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/quantsim/market"
)

func barsFromCloses(closes ...float64) []market.Bar {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:  t0.AddDate(0, 0, i),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return bars
}

func feed(ind Indicator, bars []market.Bar) {
	for _, b := range bars {
		ind.Update(b)
	}
}

func TestSMA(t *testing.T) {
	t.Parallel()

	sma := NewSMA(3)
	bars := barsFromCloses(1, 2, 3, 4)

	sma.Update(bars[0])
	sma.Update(bars[1])
	assert.False(t, sma.Ready())
	assert.Zero(t, sma.Value())

	sma.Update(bars[2])
	require.True(t, sma.Ready())
	assert.InDelta(t, 2.0, sma.Value(), 1e-9)

	sma.Update(bars[3])
	assert.InDelta(t, 3.0, sma.Value(), 1e-9)

	sma.Reset()
	assert.False(t, sma.Ready())
}

func TestEMA(t *testing.T) {
	t.Parallel()

	ema := NewEMA(3)
	feed(ema, barsFromCloses(1, 2, 3))
	require.True(t, ema.Ready())
	assert.InDelta(t, 2.0, ema.Value(), 1e-9) // seeded with SMA

	// next: (4-2)*0.5 + 2 = 3
	feed(ema, barsFromCloses(4))
	assert.InDelta(t, 3.0, ema.Value(), 1e-9)
}

func TestRSI(t *testing.T) {
	t.Parallel()

	rsi := NewRSI(14)

	// Straight up: RSI pegs at 100.
	up := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	feed(rsi, barsFromCloses(up...))
	require.True(t, rsi.Ready())
	assert.InDelta(t, 100.0, rsi.Value(), 1e-9)

	// Straight down: RSI pegs at 0.
	rsi.Reset()
	down := make([]float64, 20)
	for i := range down {
		down[i] = 100 - float64(i)
	}
	feed(rsi, barsFromCloses(down...))
	require.True(t, rsi.Ready())
	assert.InDelta(t, 0.0, rsi.Value(), 1e-9)
}

func TestATRConstantRange(t *testing.T) {
	t.Parallel()

	// Constant closes with high-low = 2 on every bar: ATR converges to 2.
	atr := NewATR(5)
	feed(atr, barsFromCloses(100, 100, 100, 100, 100, 100, 100))
	require.True(t, atr.Ready())
	assert.InDelta(t, 2.0, atr.Value(), 1e-9)
}

func TestMACDViews(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	bars := barsFromCloses(closes...)

	line := NewMACD(12, 26, 9).Line()
	signal := NewMACD(12, 26, 9).Signal()
	hist := NewMACD(12, 26, 9).Histogram()
	feed(line, bars)
	feed(signal, bars)
	feed(hist, bars)

	require.True(t, line.Ready())
	require.True(t, signal.Ready())
	require.True(t, hist.Ready())
	assert.InDelta(t, line.Value()-signal.Value(), hist.Value(), 1e-9)
}

func TestADXTrendingMarket(t *testing.T) {
	t.Parallel()

	// A persistent uptrend produces a strong ADX reading.
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + 2*float64(i)
	}
	adx := NewADX(14)
	feed(adx, barsFromCloses(closes...))
	require.True(t, adx.Ready())
	assert.Greater(t, adx.Value(), 25.0)
	assert.LessOrEqual(t, adx.Value(), 100.0)
}

func TestEnrich(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	bars := barsFromCloses(closes...)
	bars[0].Indicators = map[string]float64{"CUSTOM": 42}

	set := []Named{
		{Key: "SMA3", Indicator: NewSMA(3)},
		{Key: "RSI", Indicator: NewRSI(14)},
	}
	out := Enrich(bars, set)
	require.Len(t, out, len(bars))

	// Originals untouched.
	_, ok := bars[5].Indicator("SMA3")
	assert.False(t, ok)

	// Warmup bars lack the value, later bars carry it.
	_, ok = out[1].Indicator("SMA3")
	assert.False(t, ok)
	v, ok := out[5].Indicator("SMA3")
	require.True(t, ok)
	assert.InDelta(t, 104.0, v, 1e-9)

	// Pre-existing values survive.
	v, ok = out[0].Indicator("CUSTOM")
	require.True(t, ok)
	assert.Equal(t, 42.0, v)
}
