package universe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

func TestBuilder_checkExclusion(t *testing.T) {
	builder := NewBuilder(DefaultConfig(), logger.NewNop())

	tests := []struct {
		name     string
		row      contracts.MarketRow
		excluded bool
	}{
		{
			name: "valid large cap",
			row: contracts.MarketRow{
				Ticker:        "005930",
				Name:          "삼성전자",
				MarketCap:     500_000_000_000_000,
				AvgTradingVal: 1_000_000_000_000,
			},
			excluded: false,
		},
		{
			name: "financial keyword",
			row: contracts.MarketRow{
				Ticker:        "105560",
				Name:          "KB금융",
				MarketCap:     30_000_000_000_000,
				AvgTradingVal: 100_000_000_000,
			},
			excluded: true,
		},
		{
			name: "holding company",
			row: contracts.MarketRow{
				Ticker:        "003550",
				Name:          "LG홀딩스",
				MarketCap:     10_000_000_000_000,
				AvgTradingVal: 50_000_000_000,
			},
			excluded: true,
		},
		{
			name: "SPAC numbered",
			row: contracts.MarketRow{
				Ticker:        "999999",
				Name:          "하나금융25호스팩",
				MarketCap:     100_000_000_000,
				AvgTradingVal: 10_000_000_000,
			},
			excluded: true,
		},
		{
			name: "REIT",
			row: contracts.MarketRow{
				Ticker:        "395400",
				Name:          "SK리츠",
				MarketCap:     1_500_000_000_000,
				AvgTradingVal: 5_000_000_000,
			},
			excluded: true,
		},
		{
			name: "low market cap",
			row: contracts.MarketRow{
				Ticker:        "999998",
				Name:          "소형주",
				MarketCap:     10_000_000_000, // 100억 < 500억
				AvgTradingVal: 5_000_000_000,
			},
			excluded: true,
		},
		{
			name: "large cap low liquidity",
			row: contracts.MarketRow{
				Ticker:        "999997",
				Name:          "대형低유동",
				MarketCap:     2_000_000_000_000, // 2조 → 10억 기준
				AvgTradingVal: 500_000_000,       // 5억 미달
			},
			excluded: true,
		},
		{
			name: "small cap enough liquidity",
			row: contracts.MarketRow{
				Ticker:        "999996",
				Name:          "중형주",
				MarketCap:     100_000_000_000, // 1000억 → 3억 기준
				AvgTradingVal: 400_000_000,
			},
			excluded: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := builder.checkExclusion(tt.row)
			if tt.excluded {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	builder := NewBuilder(DefaultConfig(), logger.NewNop())
	date := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	rows := []contracts.MarketRow{
		{Ticker: "005930", Name: "삼성전자", MarketCap: 5e14, AvgTradingVal: 1e12},
		{Ticker: "105560", Name: "KB금융", MarketCap: 3e13, AvgTradingVal: 1e11},
		{Ticker: "000001", Name: "소형주", MarketCap: 1e10, AvgTradingVal: 1e9},
	}

	universe, err := builder.Build(date, rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"005930"}, universe.Tickers)
	assert.Len(t, universe.Excluded, 2)

	excluded, reason := universe.IsExcluded("105560")
	assert.True(t, excluded)
	assert.NotEmpty(t, reason)
}

func TestBuilder_EmptyUniverse(t *testing.T) {
	builder := NewBuilder(DefaultConfig(), logger.NewNop())
	date := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	rows := []contracts.MarketRow{
		{Ticker: "000001", Name: "소형주", MarketCap: 1e10, AvgTradingVal: 1e9},
	}

	_, err := builder.Build(date, rows)
	assert.ErrorIs(t, err, contracts.ErrUniverseEmpty)
}
