package indicators

import (
	"fmt"
	"math"

	"github.com/quantlab/quantsim/market"
)

// ADX is a streaming Average Directional Index (Wilder). It smooths +DM, -DM
// and TR over the period, derives DX from the directional indexes and then
// smooths DX into the ADX.
type ADX struct {
	period int

	prev    market.Bar
	hasPrev bool

	trSum, plusSum, minusSum float64 // Wilder-smoothed accumulators
	dmCount                  int

	adx      float64
	dxSum    float64
	adxCount int
}

func NewADX(period int) *ADX {
	return &ADX{period: period}
}

func (a *ADX) Name() string {
	return fmt.Sprintf("ADX(%d)", a.period)
}

func (a *ADX) Warmup() int {
	// period bars of DM plus period bars of DX.
	return 2*a.period + 1
}

func (a *ADX) Reset() {
	*a = ADX{period: a.period}
}

func (a *ADX) Update(b market.Bar) {
	if !a.hasPrev {
		a.prev = b
		a.hasPrev = true
		return
	}

	upMove := b.High - a.prev.High
	downMove := a.prev.Low - b.Low

	plusDM, minusDM := 0.0, 0.0
	if upMove > downMove && upMove > 0 {
		plusDM = upMove
	}
	if downMove > upMove && downMove > 0 {
		minusDM = downMove
	}
	tr := trueRange(b, a.prev)
	a.prev = b

	p := float64(a.period)
	if a.dmCount < a.period {
		a.trSum += tr
		a.plusSum += plusDM
		a.minusSum += minusDM
		a.dmCount++
		if a.dmCount < a.period {
			return
		}
	} else {
		a.trSum = a.trSum - a.trSum/p + tr
		a.plusSum = a.plusSum - a.plusSum/p + plusDM
		a.minusSum = a.minusSum - a.minusSum/p + minusDM
	}

	dx := a.dx()
	if a.adxCount < a.period {
		a.dxSum += dx
		a.adxCount++
		if a.adxCount == a.period {
			a.adx = a.dxSum / p
		}
		return
	}
	a.adx = (a.adx*(p-1) + dx) / p
}

func (a *ADX) dx() float64 {
	if a.trSum == 0 {
		return 0
	}
	plusDI := 100 * a.plusSum / a.trSum
	minusDI := 100 * a.minusSum / a.trSum
	sum := plusDI + minusDI
	if sum == 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / sum
}

func (a *ADX) Ready() bool {
	return a.adxCount >= a.period
}

func (a *ADX) Value() float64 {
	if !a.Ready() {
		return 0
	}
	return a.adx
}
