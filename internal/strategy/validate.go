package strategy

import "fmt"

// Validate checks structural constraints on a strategy configuration.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return fmt.Errorf("meta.strategy_id is required")
	}

	if cfg.Ranking.TopN <= 0 {
		return fmt.Errorf("ranking.top_n must be positive")
	}
	if cfg.Ranking.PenaltyRank <= cfg.Ranking.TopN {
		return fmt.Errorf("ranking.penalty_rank (%d) must be worse than top_n (%d)",
			cfg.Ranking.PenaltyRank, cfg.Ranking.TopN)
	}
	if cfg.Ranking.MaxPicks <= 0 {
		return fmt.Errorf("ranking.max_picks must be positive")
	}

	if cfg.Backtest.RebalanceDays <= 0 {
		return fmt.Errorf("backtest.rebalance_days must be positive")
	}
	if cfg.Backtest.PortfolioSize <= 0 {
		return fmt.Errorf("backtest.portfolio_size must be positive")
	}
	if cfg.Backtest.Weighting != "equal" && cfg.Backtest.Weighting != "rank" {
		return fmt.Errorf("backtest.weighting must be equal or rank, got %q", cfg.Backtest.Weighting)
	}
	for _, w := range cfg.Backtest.Windows {
		if _, err := ParseDate(w.Start); err != nil {
			return fmt.Errorf("window %s: invalid start: %w", w.Name, err)
		}
		if _, err := ParseDate(w.End); err != nil {
			return fmt.Errorf("window %s: invalid end: %w", w.Name, err)
		}
	}

	if cfg.Costs.CommissionRate < 0 || cfg.Costs.TaxRate < 0 {
		return fmt.Errorf("costs must not be negative")
	}
	if cfg.Costs.SlippageCap < cfg.Costs.SlippageBase {
		return fmt.Errorf("costs.slippage_cap must be >= slippage_base")
	}

	return nil
}
