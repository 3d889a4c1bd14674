package contracts

import (
	"sort"
	"time"
)

// ReturnPoint is one daily portfolio return observation.
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"` // 일간 수익률 (0.01 = +1%)
}

// ReturnSeries is an ordered daily return series.
type ReturnSeries []ReturnPoint

// Sort orders the series ascending by date, stable on insertion order.
func (s ReturnSeries) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
}

// Values extracts the raw return values in date order.
func (s ReturnSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Return
	}
	return out
}

// Cumulative returns the compounded cumulative return series.
func (s ReturnSeries) Cumulative() []float64 {
	out := make([]float64, len(s))
	acc := 1.0
	for i, p := range s {
		acc *= 1 + p.Return
		out[i] = acc - 1
	}
	return out
}

// Window returns the sub-series with dates in [from, to].
func (s ReturnSeries) Window(from, to time.Time) ReturnSeries {
	out := make(ReturnSeries, 0)
	for _, p := range s {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PerformanceMetrics aggregates a return series into scalar statistics.
type PerformanceMetrics struct {
	CAGR             float64 `json:"cagr"`
	TotalReturn      float64 `json:"total_return"`
	Volatility       float64 `json:"volatility"` // annualized
	Sharpe           float64 `json:"sharpe"`
	Sortino          float64 `json:"sortino"`
	MaxDrawdown      float64 `json:"max_drawdown"` // 손실을 음수로 표현
	Calmar           float64 `json:"calmar"`
	VaR95            float64 `json:"var_95"` // 손실을 양수로 표현
	VaR99            float64 `json:"var_99"`
	CVaR95           float64 `json:"cvar_95"`
	CVaR99           float64 `json:"cvar_99"`
	WinRate          float64 `json:"win_rate"`
	InformationRatio float64 `json:"information_ratio"`
	TradingDays      int     `json:"trading_days"`
}
