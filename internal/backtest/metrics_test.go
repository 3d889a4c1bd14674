package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolumeQuant/quantcore/internal/contracts"
)

func seriesOf(start time.Time, returns ...float64) contracts.ReturnSeries {
	series := make(contracts.ReturnSeries, len(returns))
	for i, r := range returns {
		series[i] = contracts.ReturnPoint{Date: start.AddDate(0, 0, i), Return: r}
	}
	return series
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil, 0.03)

	assert.Equal(t, 0, m.TradingDays)
	assert.Zero(t, m.CAGR)
	assert.Zero(t, m.Sharpe)
}

func TestComputeMetrics_ConstantGain(t *testing.T) {
	// 252 거래일 동안 매일 +0.1%: 1년치, 변동성 0
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	returns := make([]float64, tradingYear)
	for i := range returns {
		returns[i] = 0.001
	}
	m := ComputeMetrics(seriesOf(start, returns...), 0)

	expectedTotal := math.Pow(1.001, tradingYear) - 1
	assert.InDelta(t, expectedTotal, m.TotalReturn, 1e-9)
	assert.InDelta(t, expectedTotal, m.CAGR, 1e-9) // 정확히 1년 → CAGR == 누적
	assert.Zero(t, m.Volatility)
	assert.Zero(t, m.Sharpe) // 변동성 0이면 샤프 미정의 → 0
	assert.Equal(t, 1.0, m.WinRate)
	assert.Zero(t, m.MaxDrawdown)
}

func TestComputeMetrics_MaxDrawdown(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	m := ComputeMetrics(seriesOf(start, 0.10, -0.20, 0.05), 0)

	// 고점 1.10에서 0.88까지: 0.88/1.10 - 1 = -0.2
	assert.InDelta(t, -0.2, m.MaxDrawdown, 1e-9)
	assert.Negative(t, m.MaxDrawdown)
}

func TestHistoricalVaR(t *testing.T) {
	returns := make([]float64, 100)
	for i := range returns {
		if i < 10 {
			returns[i] = -0.05
		} else {
			returns[i] = 0.01
		}
	}

	var95, cvar95 := historicalVaR(returns, 0.95)
	assert.InDelta(t, 0.05, var95, 1e-9)
	assert.InDelta(t, 0.05, cvar95, 1e-9)

	var99, cvar99 := historicalVaR(returns, 0.99)
	assert.InDelta(t, 0.05, var99, 1e-9)
	assert.InDelta(t, 0.05, cvar99, 1e-9)
}

func TestHistoricalVaR_NoLosses(t *testing.T) {
	varValue, cvar := historicalVaR([]float64{0.01, 0.02, 0.03}, 0.95)

	// 손실 구간이 없으면 VaR/CVaR 모두 0
	assert.Zero(t, varValue)
	assert.Zero(t, cvar)
}

func TestInformationRatio(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	portfolio := seriesOf(start, 0.02, 0.01, 0.03, 0.01)
	benchmark := seriesOf(start, 0.01, 0.00, 0.01, 0.00)

	ir := InformationRatio(portfolio, benchmark)
	assert.Positive(t, ir)
}

func TestInformationRatio_IdenticalSeries(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := seriesOf(start, 0.01, -0.02, 0.03)

	// 초과수익이 전부 0 → 추적오차 0 → IR 0
	assert.Zero(t, InformationRatio(series, series))
}

func TestInformationRatio_NoCommonDates(t *testing.T) {
	portfolio := seriesOf(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 0.01, 0.02)
	benchmark := seriesOf(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), 0.01, 0.02)

	assert.Zero(t, InformationRatio(portfolio, benchmark))
}

func TestComputeMetrics_TradingDays(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := seriesOf(start, 0.01, -0.01, 0.02, 0.00, 0.01)

	m := ComputeMetrics(series, 0.03)
	require.Equal(t, 5, m.TradingDays)
	assert.InDelta(t, 0.6, m.WinRate, 1e-9) // 양수 3/5, 0은 패배로 집계
}
