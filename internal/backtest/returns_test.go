package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/internal/strategy"
)

func testCosts() CostModel {
	return NewCostModel(strategy.Costs{
		CommissionRate:   0.00015,
		TaxRate:          0.0020,
		SlippageBase:     0.0010,
		SlippageCap:      0.0050,
		SlippageRefValue: 1_000_000_000,
	})
}

func barsAt(start time.Time, closes ...float64) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.PriceBar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func TestSimulateHolding_SingleDayCosts(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	bars := barsAt(start, 10_000)

	series, delisted := simulateHolding(bars, start, 0.003, 0.005, 0)

	require.False(t, delisted)
	require.Len(t, series, 1)
	// 하루 보유: 매수·매도 비용이 같은 날 함께 차감
	assert.InDelta(t, -0.008, series[0].Return, 1e-12)
}

func TestSimulateHolding_CostsOnEdges(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	bars := barsAt(start, 100, 102, 101)

	series, delisted := simulateHolding(bars, start, 0.003, 0.005, 0)

	require.False(t, delisted)
	require.Len(t, series, 3)
	assert.InDelta(t, -0.003, series[0].Return, 1e-12)          // 진입일: 매수 비용만
	assert.InDelta(t, 0.02, series[1].Return, 1e-12)            // 중간일: 원수익률 그대로
	assert.InDelta(t, 101.0/102.0-1-0.005, series[2].Return, 1e-12) // 청산일: 매도 비용 차감
}

func TestSimulateHolding_Delisted(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	series, delisted := simulateHolding(nil, start, 0.003, 0.005, 0.02)

	assert.True(t, delisted)
	require.Len(t, series, 1)
	assert.Equal(t, start, series[0].Date)
	assert.Equal(t, -1.0, series[0].Return) // 상장폐지: 전액 손실 1회 기록
}

func TestSimulateHolding_DecemberDividend(t *testing.T) {
	start := time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC)
	bars := barsAt(start, 100, 100, 100) // 12/26, 12/27, 12/28

	series, _ := simulateHolding(bars, start, 0, 0, 0.04)

	require.Len(t, series, 3)
	// 12월 마지막 거래일에 보유일수 비례 배당 가산
	expected := 0.04 * 3.0 / tradingYear
	assert.InDelta(t, expected, series[2].Return, 1e-12)
	assert.Zero(t, series[0].Return)
	assert.Zero(t, series[1].Return)
}

func TestSimulateHolding_NoDividendOutsideDecember(t *testing.T) {
	start := time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC)
	bars := barsAt(start, 100, 100)

	series, _ := simulateHolding(bars, start, 0, 0, 0.04)

	for _, p := range series {
		assert.Zero(t, p.Return)
	}
}

func TestCostModel_Slippage(t *testing.T) {
	m := testCosts()

	// 기준 거래대금에서 기본 슬리피지
	assert.InDelta(t, 0.0010, m.Slippage(1_000_000_000), 1e-12)
	// 유동성 2배면 절반
	assert.InDelta(t, 0.0005, m.Slippage(2_000_000_000), 1e-12)
	// 저유동성은 상한에서 캡
	assert.InDelta(t, 0.0050, m.Slippage(10_000_000), 1e-12)
	// 정보 없음 → 최악 가정
	assert.InDelta(t, 0.0050, m.Slippage(0), 1e-12)
}

func TestCostModel_BuySellAsymmetry(t *testing.T) {
	m := testCosts()

	// 매도에는 거래세가 추가
	assert.InDelta(t, m.TaxRate, m.SellCost(1e9)-m.BuyCost(1e9), 1e-12)
}

func TestPortfolioWeights(t *testing.T) {
	equal := portfolioWeights(4, "equal")
	require.Len(t, equal, 4)
	for _, w := range equal {
		assert.InDelta(t, 0.25, w, 1e-12)
	}

	rank := portfolioWeights(4, "rank")
	require.Len(t, rank, 4)
	assert.InDelta(t, 0.4, rank[0], 1e-12) // 1위: 4/10
	assert.InDelta(t, 0.1, rank[3], 1e-12) // 꼴찌: 1/10
	var sum float64
	for _, w := range rank {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestCombineHoldings(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	a := contracts.ReturnSeries{
		{Date: start, Return: 0.02},
		{Date: start.AddDate(0, 0, 1), Return: 0.01},
	}
	// b는 둘째 날 관측 없음 → 그 날 b 기여 0
	b := contracts.ReturnSeries{
		{Date: start, Return: -0.01},
	}

	combined := combineHoldings([]contracts.ReturnSeries{a, b}, []float64{0.5, 0.5})

	require.Len(t, combined, 2)
	assert.InDelta(t, 0.005, combined[0].Return, 1e-12)
	assert.InDelta(t, 0.005, combined[1].Return, 1e-12)
}

func TestMergeSeries_KeepsEarliestCycle(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	first := contracts.ReturnSeries{{Date: start, Return: 0.01}}
	overlap := contracts.ReturnSeries{
		{Date: start, Return: 0.99}, // 겹치는 날짜는 무시돼야 함
		{Date: start.AddDate(0, 0, 1), Return: 0.02},
	}

	merged := mergeSeries(first, overlap)

	require.Len(t, merged, 2)
	assert.InDelta(t, 0.01, merged[0].Return, 1e-12)
	assert.InDelta(t, 0.02, merged[1].Return, 1e-12)
}
