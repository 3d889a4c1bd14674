package factors

import (
	"math"
	"sort"
)

// winsorize clips values to the [lowPct, highPct] empirical percentiles
// of the cross-section. 극단값이 z-score를 왜곡하지 않도록 1~99% 클리핑.
func winsorize(values map[string]float64, lowPct, highPct float64) {
	if len(values) < 3 {
		return
	}

	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		sorted = append(sorted, v)
	}
	sort.Float64s(sorted)

	lo := percentile(sorted, lowPct)
	hi := percentile(sorted, highPct)

	for k, v := range values {
		if v < lo {
			values[k] = lo
		} else if v > hi {
			values[k] = hi
		}
	}
}

// percentile computes the p-th percentile (0~100) with linear
// interpolation over a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// groupZScores standardizes each value against its group's mean and
// standard deviation. Groups of size 1 or with degenerate variance get
// a neutral z-score of 0.
func groupZScores(values map[string]float64, groupOf func(ticker string) string) map[string]float64 {
	groups := make(map[string][]string)
	for ticker := range values {
		g := groupOf(ticker)
		groups[g] = append(groups[g], ticker)
	}

	out := make(map[string]float64, len(values))
	for _, members := range groups {
		mean, std := meanStd(values, members)
		for _, ticker := range members {
			if std <= 0 || math.IsNaN(std) {
				out[ticker] = 0 // 단일 종목 섹터 / 분산 0 → 중립
				continue
			}
			out[ticker] = (values[ticker] - mean) / std
		}
	}
	return out
}

// meanStd computes mean and sample standard deviation over the subset.
func meanStd(values map[string]float64, members []string) (float64, float64) {
	if len(members) == 0 {
		return 0, 0
	}

	var sum float64
	for _, m := range members {
		sum += values[m]
	}
	mean := sum / float64(len(members))

	if len(members) < 2 {
		return mean, 0
	}

	var sumSq float64
	for _, m := range members {
		diff := values[m] - mean
		sumSq += diff * diff
	}
	return mean, math.Sqrt(sumSq / float64(len(members)-1))
}
