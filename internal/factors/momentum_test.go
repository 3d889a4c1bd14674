package factors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolumeQuant/quantcore/internal/contracts"
)

// syntheticBars generates weekday bars ending at `end`, with close
// prices produced by pricer(i) over n trading days (i=0 oldest).
func syntheticBars(end time.Time, n int, pricer func(i int) float64) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, 0, n)
	day := end
	for len(bars) < n {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			bars = append(bars, contracts.PriceBar{Date: day})
		}
		day = day.AddDate(0, 0, -1)
	}
	// reverse to ascending and assign prices oldest-first
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	for i := range bars {
		bars[i].Close = pricer(i)
	}
	return bars
}

func TestMomentumFactor_ExcludesNegative12M(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	// 꾸준한 하락: 12개월 수익률 음수
	bars := syntheticBars(end, 250, func(i int) float64 {
		return 10000 - float64(i)*10
	})

	out := make(map[contracts.Factor]float64)
	momentumFactor(end, bars, out)

	_, ok := out[contracts.FactorMomentum]
	assert.False(t, ok, "non-positive 12m return must never yield a momentum score")
}

func TestMomentumFactor_PositiveTrend(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	bars := syntheticBars(end, 250, func(i int) float64 {
		return 10000 + float64(i)*20
	})

	out := make(map[contracts.Factor]float64)
	momentumFactor(end, bars, out)

	m, ok := out[contracts.FactorMomentum]
	require.True(t, ok)
	assert.Greater(t, m, 0.0)
}

func TestMomentumFactor_VolatilityFloor(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	// 매일 정확히 +0.1%: 실제 변동성 ≈ 0 → 바닥 15% 적용
	bars := syntheticBars(end, 250, func(i int) float64 {
		p := 10000.0
		for k := 0; k < i; k++ {
			p *= 1.001
		}
		return p
	})

	out := make(map[contracts.Factor]float64)
	momentumFactor(end, bars, out)

	m, ok := out[contracts.FactorMomentum]
	require.True(t, ok)

	// 바닥 적용 없이는 (r12-r1)/~0 로 폭주했을 값
	window := lookbackWindow(bars, end)
	first := window[0].Close
	last := window[len(window)-1].Close
	r12 := last/first - 1
	r1 := last/window[len(window)-1-oneMonthBars].Close - 1
	expected := (r12 - r1) / volatilityFloor

	assert.InDelta(t, expected, m, 1e-9)
}

func TestMomentumFactor_InsufficientHistory(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	bars := syntheticBars(end, 60, func(i int) float64 { return 10000 + float64(i) })

	out := make(map[contracts.Factor]float64)
	momentumFactor(end, bars, out)

	_, ok := out[contracts.FactorMomentum]
	assert.False(t, ok)
}
