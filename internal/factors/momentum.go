package factors

import (
	"math"
	"time"

	"github.com/VolumeQuant/quantcore/internal/contracts"
)

const (
	// 최소 15% 변동성 바닥: 저변동 종목의 점수 폭주 방지
	volatilityFloor = 0.15

	// 12개월 모멘텀 계산에 요구하는 최소 거래일수
	minMomentumBars = 120

	oneMonthBars = 21
	tradingYear  = 252
)

// momentumFactor computes risk-adjusted momentum for one ticker:
// (12개월 수익률 − 1개월 수익률) / 연환산 변동성.
// Tickers with a non-positive 12-month return are excluded entirely,
// as are tickers with too little price history.
func momentumFactor(date time.Time, bars []contracts.PriceBar, out map[contracts.Factor]float64) {
	window := lookbackWindow(bars, date)
	if len(window) < minMomentumBars {
		return
	}

	first := window[0].Close
	last := window[len(window)-1].Close
	if first <= 0 || last <= 0 {
		return
	}

	r12 := last/first - 1
	if r12 <= 0 {
		return // 하락 추세 종목은 모멘텀 스코어 자체를 부여하지 않음
	}

	monthAgo := window[len(window)-1-oneMonthBars].Close
	if monthAgo <= 0 {
		return
	}
	r1 := last/monthAgo - 1

	vol := annualizedVolatility(window)
	if vol < volatilityFloor {
		vol = volatilityFloor
	}

	out[contracts.FactorMomentum] = (r12 - r1) / vol
}

// lookbackWindow returns the bars within the trailing 12 months up to
// and including the scoring date.
func lookbackWindow(bars []contracts.PriceBar, date time.Time) []contracts.PriceBar {
	from := date.AddDate(-1, 0, 0)
	out := make([]contracts.PriceBar, 0, tradingYear)
	for _, b := range bars {
		if b.Date.Before(from) || b.Date.After(date) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// annualizedVolatility computes daily-return stddev scaled by √252.
func annualizedVolatility(bars []contracts.PriceBar) float64 {
	if len(bars) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev <= 0 {
			continue
		}
		returns = append(returns, bars[i].Close/prev-1)
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sumSq float64
	for _, r := range returns {
		diff := r - mean
		sumSq += diff * diff
	}

	return math.Sqrt(sumSq/float64(len(returns)-1)) * math.Sqrt(tradingYear)
}
