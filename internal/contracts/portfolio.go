package contracts

import "time"

// Portfolio is one rebalance period's selection. Created once per
// rebalance date; immutable thereafter.
type Portfolio struct {
	RebalanceDate     time.Time `json:"rebalance_date"`
	NextRebalanceDate time.Time `json:"next_rebalance_date"`
	Tickers           []string  `json:"tickers"` // selection order preserved
	Weights           []float64 `json:"weights"` // aligned with Tickers, sums to 1.0
}

// Weight returns the weight assigned to a ticker, 0 when not held.
func (p *Portfolio) Weight(ticker string) float64 {
	for i, t := range p.Tickers {
		if t == ticker {
			return p.Weights[i]
		}
	}
	return 0
}

// Holds reports whether the portfolio contains the ticker.
func (p *Portfolio) Holds(ticker string) bool {
	for _, t := range p.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}
