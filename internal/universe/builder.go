package universe

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// 금융/지주/스팩/리츠 판별 키워드 패턴
var excludePattern = regexp.MustCompile(
	`(?i)(금융|은행|증권|보험|카드|캐피탈|지주|홀딩스|스팩|SPAC|리츠|REIT|\d+호$|제\d+호)`,
)

// LiquidityTier maps a market-cap floor to its minimum average trading
// value. Tiers are evaluated largest cap first.
type LiquidityTier struct {
	MinMarketCap    float64 `yaml:"min_market_cap"`    // 원
	MinTradingValue float64 `yaml:"min_trading_value"` // 원
}

// Config holds universe filter criteria.
type Config struct {
	MinMarketCap    float64         `yaml:"min_market_cap"` // 최소 시가총액 (원)
	LiquidityTiers  []LiquidityTier `yaml:"liquidity_tiers"`
	ExcludeKeywords bool            `yaml:"exclude_keywords"` // 금융/지주/스팩/리츠 제외
}

// DefaultConfig returns the default universe filter configuration.
func DefaultConfig() Config {
	return Config{
		MinMarketCap: 50_000_000_000, // 500억
		LiquidityTiers: []LiquidityTier{
			{MinMarketCap: 1_000_000_000_000, MinTradingValue: 1_000_000_000}, // 1조 이상: 10억
			{MinMarketCap: 300_000_000_000, MinTradingValue: 500_000_000},    // 3000억 이상: 5억
			{MinMarketCap: 0, MinTradingValue: 300_000_000},                  // 그 외: 3억
		},
		ExcludeKeywords: true,
	}
}

// Builder constructs the investable universe from one date's market
// snapshot rows.
// ⭐ SSOT: 유니버스 필터링은 여기서만
type Builder struct {
	config Config
	logger *logger.Logger
}

// NewBuilder creates a new universe builder
func NewBuilder(config Config, log *logger.Logger) *Builder {
	return &Builder{config: config, logger: log}
}

// Build filters the date's cross-section. Returns
// contracts.ErrUniverseEmpty when nothing survives.
func (b *Builder) Build(date time.Time, rows []contracts.MarketRow) (*contracts.Universe, error) {
	universe := &contracts.Universe{
		Date:     date,
		Tickers:  make([]string, 0, len(rows)),
		Excluded: make(map[string]string),
	}

	for _, row := range rows {
		if reason := b.checkExclusion(row); reason != "" {
			universe.Excluded[row.Ticker] = reason
			continue
		}
		universe.Tickers = append(universe.Tickers, row.Ticker)
	}

	sort.Strings(universe.Tickers) // 결정적 순서
	universe.TotalCount = len(universe.Tickers)

	if universe.TotalCount == 0 {
		return nil, fmt.Errorf("universe %s: %w", date.Format("2006-01-02"), contracts.ErrUniverseEmpty)
	}

	b.logger.WithFields(map[string]interface{}{
		"date":     date.Format("2006-01-02"),
		"passed":   universe.TotalCount,
		"excluded": len(universe.Excluded),
	}).Info("Universe built")

	return universe, nil
}

// checkExclusion returns a non-empty reason when the row must be
// excluded. 우선순위 순서로 체크.
func (b *Builder) checkExclusion(row contracts.MarketRow) string {
	// 1. 키워드 제외 (금융/지주/스팩/리츠)
	if b.config.ExcludeKeywords && excludePattern.MatchString(row.Name) {
		return fmt.Sprintf("제외 키워드 (%s)", row.Name)
	}

	// 2. 시가총액 미달
	if row.MarketCap < b.config.MinMarketCap {
		return fmt.Sprintf("시가총액 미달 (%.0f억)", row.MarketCap/100_000_000)
	}

	// 3. 거래대금 미달 (시총 구간별 기준)
	minValue := b.minTradingValue(row.MarketCap)
	if row.AvgTradingVal < minValue {
		return fmt.Sprintf("거래대금 미달 (%.0f백만)", row.AvgTradingVal/1_000_000)
	}

	return ""
}

// minTradingValue picks the liquidity tier for a market cap.
func (b *Builder) minTradingValue(marketCap float64) float64 {
	for _, tier := range b.config.LiquidityTiers {
		if marketCap >= tier.MinMarketCap {
			return tier.MinTradingValue
		}
	}
	return 0
}
