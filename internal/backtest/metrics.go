package backtest

import (
	"math"
	"sort"

	"github.com/VolumeQuant/quantcore/internal/contracts"
)

const tradingYear = 252

// ComputeMetrics aggregates a daily return series into scalar
// performance statistics. Information Ratio is left at zero here; use
// InformationRatio with a benchmark series.
func ComputeMetrics(series contracts.ReturnSeries, riskFreeRate float64) contracts.PerformanceMetrics {
	m := contracts.PerformanceMetrics{TradingDays: len(series)}
	if len(series) == 0 {
		return m
	}

	returns := series.Values()
	cumulative := series.Cumulative()
	m.TotalReturn = cumulative[len(cumulative)-1]

	// CAGR: 누적 수익률을 경과 거래연수로 연환산
	years := float64(len(series)) / tradingYear
	if years > 0 && 1+m.TotalReturn > 0 {
		m.CAGR = math.Pow(1+m.TotalReturn, 1/years) - 1
	}

	m.Volatility = stdDev(returns) * math.Sqrt(tradingYear)
	if m.Volatility > 0 {
		m.Sharpe = (m.CAGR - riskFreeRate) / m.Volatility
	}

	// Sortino: 하방 변동성만
	downside := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	downsideDev := stdDev(downside) * math.Sqrt(tradingYear)
	if downsideDev > 0 {
		m.Sortino = (m.CAGR - riskFreeRate) / downsideDev
	}

	m.MaxDrawdown = maxDrawdown(cumulative)
	if m.MaxDrawdown < 0 {
		m.Calmar = m.CAGR / math.Abs(m.MaxDrawdown)
	}

	m.VaR95, m.CVaR95 = historicalVaR(returns, 0.95)
	m.VaR99, m.CVaR99 = historicalVaR(returns, 0.99)

	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	m.WinRate = float64(wins) / float64(len(returns))

	return m
}

// InformationRatio computes annualized excess return over tracking
// error versus a benchmark, aligned on common dates.
func InformationRatio(series, benchmark contracts.ReturnSeries) float64 {
	benchByDate := make(map[string]float64, len(benchmark))
	for _, p := range benchmark {
		benchByDate[p.Date.Format("2006-01-02")] = p.Return
	}

	excess := make([]float64, 0, len(series))
	for _, p := range series {
		b, ok := benchByDate[p.Date.Format("2006-01-02")]
		if !ok {
			continue // 공통 일자만 사용
		}
		excess = append(excess, p.Return-b)
	}
	if len(excess) < 2 {
		return 0
	}

	trackingError := stdDev(excess) * math.Sqrt(tradingYear)
	if trackingError == 0 {
		return 0
	}
	return mean(excess) * tradingYear / trackingError
}

// historicalVaR computes empirical VaR and CVaR at a confidence level.
// 반환값은 손실을 양수로 표현 (예: 0.05 = 5% 손실 가능).
func historicalVaR(returns []float64, confidence float64) (varValue, cvar float64) {
	if len(returns) == 0 {
		return 0, 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	// VaR: (1-confidence) 백분위수
	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	if sorted[idx] < 0 {
		varValue = -sorted[idx]
	}

	// CVaR (Expected Shortfall): tail 평균 손실
	var sum float64
	count := 0
	for i := 0; i <= idx && i < len(sorted); i++ {
		sum += sorted[i]
		count++
	}
	if count > 0 {
		if avg := sum / float64(count); avg < 0 {
			cvar = -avg
		}
	}

	return varValue, cvar
}

// maxDrawdown computes the deepest peak-to-trough loss over a
// cumulative return curve. 손실을 음수로 표현.
func maxDrawdown(cumulative []float64) float64 {
	if len(cumulative) == 0 {
		return 0
	}

	mdd := 0.0
	peak := 1.0
	for _, c := range cumulative {
		wealth := 1 + c
		if wealth > peak {
			peak = wealth
		}
		dd := wealth/peak - 1
		if dd < mdd {
			mdd = dd
		}
	}
	return mdd
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev computes the sample standard deviation.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - avg
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
