package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/VolumeQuant/quantcore/internal/backtest"
	"github.com/VolumeQuant/quantcore/internal/contracts"
)

func sampleResult() *backtest.Result {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	return &backtest.Result{
		StrategyID: "quality-composite-v1",
		Start:      start,
		End:        start.AddDate(0, 2, 0),
		Series: contracts.ReturnSeries{
			{Date: start, Return: 0.01},
			{Date: start.AddDate(0, 0, 1), Return: -0.005},
		},
		Rebalances: []backtest.Rebalance{
			{
				Portfolio: contracts.Portfolio{
					RebalanceDate: start,
					Tickers:       []string{"005930", "000660"},
					Weights:       []float64{0.5, 0.5},
				},
				Weighted: []contracts.WeightedRankEntry{
					{Ticker: "005930", FinalRank: 1, WeightedRank: 1.5, Status: contracts.StatusConfirmed},
					{Ticker: "000660", FinalRank: 2, WeightedRank: 2.1, Status: contracts.StatusNew},
				},
			},
		},
		Metrics: contracts.PerformanceMetrics{
			CAGR: 0.124, Sharpe: 1.1, MaxDrawdown: -0.08, WinRate: 0.55, TradingDays: 2,
		},
		Windows: map[string]contracts.PerformanceMetrics{
			"may": {CAGR: 0.2, TradingDays: 1},
		},
	}
}

func TestWriteRunSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteRunSummary(&buf, sampleResult())

	out := buf.String()
	assert.Contains(t, out, "quality-composite-v1")
	assert.Contains(t, out, "12.40%") // CAGR
	assert.Contains(t, out, "-8.00%") // MDD
	assert.Contains(t, out, "Rebalances")
}

func TestWriteWeightedRanking(t *testing.T) {
	entries := []contracts.WeightedRankEntry{
		{Ticker: "005930", FinalRank: 1, RankT0: 1, RankT1: 2, RankT2: 1, WeightedRank: 1.3, Composite: 0.82, Status: contracts.StatusConfirmed},
		{Ticker: "000660", FinalRank: 2, RankT0: 2, RankT1: 1, RankT2: 3, WeightedRank: 1.9, Composite: 0.74, Status: contracts.StatusWatching},
		{Ticker: "035720", FinalRank: 3, RankT0: 3, RankT1: 50, RankT2: 50, WeightedRank: 21.5, Composite: 0.61, Status: contracts.StatusNew},
	}

	var buf bytes.Buffer
	WriteWeightedRanking(&buf, entries, 2)

	out := buf.String()
	assert.Contains(t, out, "005930")
	assert.Contains(t, out, "확정")
	// limit 2: 3번째 항목은 출력 안 함
	assert.NotContains(t, out, "035720")
}

func TestWriteRunXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, WriteRunXLSX(sampleResult(), path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	assert.ElementsMatch(t, []string{"Metrics", "Returns", "Rebalances"}, fx.GetSheetList())

	ticker, err := fx.GetCellValue("Rebalances", "B2")
	require.NoError(t, err)
	assert.Equal(t, "005930", ticker)

	ret, err := fx.GetCellValue("Returns", "B2")
	require.NoError(t, err)
	assert.Equal(t, "0.01", ret)
}
