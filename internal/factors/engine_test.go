package factors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

func fundWith(flows map[contracts.Account]float64, stocks map[contracts.Account]float64) *contracts.PointInTimeFundamentals {
	return &contracts.PointInTimeFundamentals{
		Flows:  flows,
		Stocks: stocks,
	}
}

func TestEngine_SingleTickerSectorZIsZero(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// 섹터 구성원이 1개면 z-score는 정확히 0
	rows := map[string]contracts.MarketRow{
		"005930": {Ticker: "005930", Sector: "전기전자", MarketCap: 1e12},
		"000660": {Ticker: "000660", Sector: "반도체", MarketCap: 5e11},
	}
	funds := map[string]*contracts.PointInTimeFundamentals{
		"005930": fundWith(
			map[contracts.Account]float64{contracts.AccountNetIncome: 1e11},
			map[contracts.Account]float64{contracts.AccountEquity: 5e11},
		),
		"000660": fundWith(
			map[contracts.Account]float64{contracts.AccountNetIncome: 4e10},
			map[contracts.Account]float64{contracts.AccountEquity: 2e11},
		),
	}

	records, err := engine.Score(context.Background(), Inputs{
		Date:         time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Rows:         rows,
		Fundamentals: funds,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, r := range records {
		for factor, z := range r.ZScore {
			assert.Equal(t, 0.0, z, "ticker=%s factor=%s", r.Ticker, factor)
		}
	}
}

func TestEngine_LowerBetterInversion(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// 동일 섹터 3종목, PER만 차이: 싼 종목이 높은 점수
	rows := map[string]contracts.MarketRow{}
	funds := map[string]*contracts.PointInTimeFundamentals{}
	for ticker, per := range map[string]float64{"A": 5, "B": 10, "C": 30} {
		rows[ticker] = contracts.MarketRow{Ticker: ticker, Sector: "공통", MarketCap: per * 100}
		funds[ticker] = fundWith(
			map[contracts.Account]float64{contracts.AccountNetIncome: 100},
			nil,
		)
	}

	records, err := engine.Score(context.Background(), Inputs{
		Date:         time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Rows:         rows,
		Fundamentals: funds,
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	byTicker := map[string]contracts.FactorScoreRecord{}
	for _, r := range records {
		byTicker[r.Ticker] = r
	}
	assert.Greater(t, byTicker["A"].ZScore[contracts.FactorPER], byTicker["C"].ZScore[contracts.FactorPER])
	assert.Greater(t, byTicker["A"].Composite, byTicker["C"].Composite)
}

func TestEngine_MomentumMissingDropsTicker(t *testing.T) {
	engine := NewEngine(logger.NewNop())
	date := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	rows := map[string]contracts.MarketRow{
		"UP":   {Ticker: "UP", MarketCap: 1e11},
		"DOWN": {Ticker: "DOWN", MarketCap: 1e11},
	}
	funds := map[string]*contracts.PointInTimeFundamentals{
		"UP": fundWith(
			map[contracts.Account]float64{contracts.AccountNetIncome: 1e10},
			map[contracts.Account]float64{contracts.AccountEquity: 5e10},
		),
		"DOWN": fundWith(
			map[contracts.Account]float64{contracts.AccountNetIncome: 1e10},
			map[contracts.Account]float64{contracts.AccountEquity: 5e10},
		),
	}
	prices := contracts.PriceHistory{
		"UP":   syntheticBars(date, 250, func(i int) float64 { return 10000 + float64(i)*20 }),
		"DOWN": syntheticBars(date, 250, func(i int) float64 { return 10000 - float64(i)*10 }),
	}

	records, err := engine.Score(context.Background(), Inputs{
		Date:         date,
		Rows:         rows,
		Fundamentals: funds,
		Prices:       prices,
	})
	require.NoError(t, err)

	// 가격 데이터가 공급되었으므로 모멘텀 없는 DOWN은 랭킹 제외
	require.Len(t, records, 1)
	assert.Equal(t, "UP", records[0].Ticker)
}

func TestEngine_StructuralMomentumFallback(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	rows := map[string]contracts.MarketRow{
		"A": {Ticker: "A", MarketCap: 1e11},
		"B": {Ticker: "B", MarketCap: 1e11},
	}
	funds := map[string]*contracts.PointInTimeFundamentals{
		"A": fundWith(
			map[contracts.Account]float64{contracts.AccountNetIncome: 2e10},
			map[contracts.Account]float64{contracts.AccountEquity: 5e10},
		),
		"B": fundWith(
			map[contracts.Account]float64{contracts.AccountNetIncome: 1e9},
			map[contracts.Account]float64{contracts.AccountEquity: 5e10},
		),
	}

	// 가격 히스토리 미공급 → 모멘텀 구조적 부재 → 0.6/0.4 폴백, 제외 없음
	records, err := engine.Score(context.Background(), Inputs{
		Date:         time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Rows:         rows,
		Fundamentals: funds,
	})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestEngine_EmptyUniverse(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	_, err := engine.Score(context.Background(), Inputs{
		Date: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, contracts.ErrUniverseEmpty)
}

func TestWinsorize(t *testing.T) {
	values := map[string]float64{}
	for i := 0; i < 100; i++ {
		values[string(rune('a'+i%26))+string(rune('0'+i/26))] = float64(i)
	}
	values["outlier"] = 1e9

	winsorize(values, 1, 99)

	for k, v := range values {
		assert.LessOrEqual(t, v, 99.1, "key=%s", k)
	}
}

func TestCategoryScores_AbsentFactorsDoNotZero(t *testing.T) {
	z := map[contracts.Factor]float64{
		contracts.FactorPER: 1.0,
		contracts.FactorROE: 0.5,
	}

	cats := categoryScores(z)

	// value는 PER 하나의 평균 (1.0), 누락 팩터가 0으로 계산되면 틀림
	assert.InDelta(t, 1.0, cats[contracts.CategoryValue], 1e-9)
	assert.InDelta(t, 0.5, cats[contracts.CategoryQuality], 1e-9)
	_, hasMomentum := cats[contracts.CategoryMomentum]
	assert.False(t, hasMomentum)
}
