package strategy

import (
	"time"

	"github.com/VolumeQuant/quantcore/internal/universe"
)

// Config는 랭킹/백테스트 전략의 전체 설정
type Config struct {
	Meta     Meta            `yaml:"meta" json:"meta"`
	Universe universe.Config `yaml:"universe" json:"universe"`
	Ranking  Ranking         `yaml:"ranking" json:"ranking"`
	Backtest Backtest        `yaml:"backtest" json:"backtest"`
	Costs    Costs           `yaml:"costs" json:"costs"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// Ranking: 시계열 랭크 스무딩 파라미터
type Ranking struct {
	TopN        int `yaml:"top_n" json:"top_n"`               // membership threshold
	PenaltyRank int `yaml:"penalty_rank" json:"penalty_rank"` // 이력 없는 종목의 순위
	MaxPicks    int `yaml:"max_picks" json:"max_picks"`       // Slow-In 선정 상한
}

// Backtest: 리밸런싱 및 성과 측정 파라미터
type Backtest struct {
	StartDate     string    `yaml:"start_date" json:"start_date"` // 2006-01-02
	EndDate       string    `yaml:"end_date" json:"end_date"`
	RebalanceDays int       `yaml:"rebalance_days" json:"rebalance_days"` // 달력일 기준 주기
	PortfolioSize int       `yaml:"portfolio_size" json:"portfolio_size"`
	Weighting     string    `yaml:"weighting" json:"weighting"` // equal | rank
	RiskFreeRate  float64   `yaml:"risk_free_rate" json:"risk_free_rate"`
	Benchmark     string    `yaml:"benchmark" json:"benchmark"` // 벤치마크 종목/지수 코드
	Windows       []Window  `yaml:"windows" json:"windows"`     // in-sample / out-of-sample 등
}

// Window is a named metrics sub-window.
type Window struct {
	Name  string `yaml:"name" json:"name"`
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Costs: 거래비용 모델
type Costs struct {
	CommissionRate   float64 `yaml:"commission_rate" json:"commission_rate"`
	TaxRate          float64 `yaml:"tax_rate" json:"tax_rate"` // 매도세
	SlippageBase     float64 `yaml:"slippage_base" json:"slippage_base"`
	SlippageCap      float64 `yaml:"slippage_cap" json:"slippage_cap"`
	SlippageRefValue float64 `yaml:"slippage_ref_value" json:"slippage_ref_value"` // 기준 거래대금 (원)
}

// ParseDate parses a config date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// Default returns a conservative default configuration.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "quality-composite-v1",
			Version:    "1.0.0",
			Timezone:   "Asia/Seoul",
		},
		Universe: universe.DefaultConfig(),
		Ranking: Ranking{
			TopN:        30,
			PenaltyRank: 50,
			MaxPicks:    10,
		},
		Backtest: Backtest{
			RebalanceDays: 30,
			PortfolioSize: 10,
			Weighting:     "equal",
			RiskFreeRate:  0.03,
		},
		Costs: Costs{
			CommissionRate:   0.00015,
			TaxRate:          0.0018,
			SlippageBase:     0.0005,
			SlippageCap:      0.005,
			SlippageRefValue: 1_000_000_000,
		},
	}
}
