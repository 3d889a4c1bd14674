package backtest

import (
	"sort"
	"time"

	"github.com/VolumeQuant/quantcore/internal/contracts"
)

// simulateHolding computes one ticker's daily return contributions over
// a holding window [start, next).
//
// Delisting: a ticker with no price data at all across the window gets
// one −100% observation at the period start (생존 편향 보정) instead of
// being silently dropped.
//
// Costs: buy cost comes out of the first day's return, sell cost out of
// the last day's. 보유 기간이 하루면 같은 날 둘 다 차감.
//
// Dividends: an annual dividend yield is pro-rated over the holding
// period and credited on the last December trading date in the window.
func simulateHolding(bars []contracts.PriceBar, start time.Time, buyCost, sellCost, dividendYield float64) (series contracts.ReturnSeries, delisted bool) {
	if len(bars) == 0 {
		return contracts.ReturnSeries{{Date: start, Return: -1.0}}, true
	}

	series = make(contracts.ReturnSeries, 0, len(bars))
	for i, bar := range bars {
		r := 0.0 // 진입일: 종가 매수 가정
		if i > 0 && bars[i-1].Close > 0 {
			r = bar.Close/bars[i-1].Close - 1
		}

		if i == 0 {
			r -= buyCost
		}
		if i == len(bars)-1 {
			r -= sellCost
		}

		series = append(series, contracts.ReturnPoint{Date: bar.Date, Return: r})
	}

	if dividendYield > 0 {
		if idx := lastDecemberIndex(bars); idx >= 0 {
			series[idx].Return += dividendYield * float64(len(bars)) / tradingYear
		}
	}

	return series, false
}

// lastDecemberIndex finds the last bar dated in December, -1 when none.
func lastDecemberIndex(bars []contracts.PriceBar) int {
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Date.Month() == time.December {
			return i
		}
	}
	return -1
}

// combineHoldings aggregates per-ticker return series into the
// portfolio daily series: 일자별 가중합. A ticker without an
// observation on a date contributes zero (flat) for that date.
func combineHoldings(holdings []contracts.ReturnSeries, weights []float64) contracts.ReturnSeries {
	byDate := make(map[time.Time]float64)
	for i, h := range holdings {
		for _, p := range h {
			byDate[p.Date] += p.Return * weights[i]
		}
	}

	out := make(contracts.ReturnSeries, 0, len(byDate))
	for date, r := range byDate {
		out = append(out, contracts.ReturnPoint{Date: date, Return: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// portfolioWeights builds equal or rank-descending weights for n picks.
// rank 가중: 1위가 n, 꼴찌가 1의 비중을 받은 뒤 정규화.
func portfolioWeights(n int, weighting string) []float64 {
	weights := make([]float64, n)
	if n == 0 {
		return weights
	}

	if weighting == "rank" {
		total := float64(n*(n+1)) / 2
		for i := 0; i < n; i++ {
			weights[i] = float64(n-i) / total
		}
		return weights
	}

	for i := 0; i < n; i++ {
		weights[i] = 1.0 / float64(n)
	}
	return weights
}

// mergeSeries concatenates cycle series into the run series,
// deduplicating overlapping dates keeping the earliest cycle's value.
func mergeSeries(into contracts.ReturnSeries, cycle contracts.ReturnSeries) contracts.ReturnSeries {
	seen := make(map[time.Time]bool, len(into))
	for _, p := range into {
		seen[p.Date] = true
	}
	for _, p := range cycle {
		if seen[p.Date] {
			continue // 먼저 계산된 사이클의 값 유지
		}
		into = append(into, p)
		seen[p.Date] = true
	}
	into.Sort()
	return into
}
