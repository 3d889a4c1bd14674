package factors

import (
	"context"
	"sort"
	"time"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// Composite weights. 모멘텀 계산 불가 종목은 랭킹에서 제외되므로
// 구조적 부재(가격 데이터 자체가 없는 경우)에만 0.6/0.4 폴백 적용.
const (
	weightValue    = 0.5
	weightQuality  = 0.3
	weightMomentum = 0.2

	fallbackWeightValue   = 0.6
	fallbackWeightQuality = 0.4

	winsorLowPct  = 1.0
	winsorHighPct = 99.0
)

// Engine computes sector-neutral z-scored factors and composite scores
// for a cross-section of tickers.
// ⭐ SSOT: 팩터 스코어링은 여기서만
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new factor scoring engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Inputs is one scoring date's cross-section.
type Inputs struct {
	Date         time.Time
	Rows         map[string]contracts.MarketRow // 시총/섹터/배당 스냅샷
	Fundamentals map[string]*contracts.PointInTimeFundamentals
	Prices       contracts.PriceHistory // nil/empty → 모멘텀 구조적 부재
}

// Score produces one FactorScoreRecord per scorable ticker. Tickers
// failing a factor's preconditions drop out of that factor only;
// tickers lacking a momentum score drop out of the composite ranking
// unless momentum is structurally unavailable for the whole universe.
func (e *Engine) Score(ctx context.Context, in Inputs) ([]contracts.FactorScoreRecord, error) {
	if len(in.Rows) == 0 {
		return nil, contracts.ErrUniverseEmpty
	}

	momentumAvailable := len(in.Prices) > 0

	// 1. Raw factors per ticker.
	raw := make(map[string]map[contracts.Factor]float64, len(in.Rows))
	for ticker, row := range in.Rows {
		values := make(map[contracts.Factor]float64)
		valueFactors(row, in.Fundamentals[ticker], values)
		qualityFactors(in.Fundamentals[ticker], values)
		if momentumAvailable {
			momentumFactor(in.Date, in.Prices.Bars(ticker), values)
		}
		raw[ticker] = values
	}

	// 2. Winsorize + sector z-score per factor cross-section.
	sectorOf := e.sectorFunc(in.Rows)
	zscores := make(map[string]map[contracts.Factor]float64, len(in.Rows))
	for ticker := range raw {
		zscores[ticker] = make(map[contracts.Factor]float64)
	}

	for _, spec := range contracts.AllFactors {
		cross := make(map[string]float64)
		for ticker, values := range raw {
			if v, ok := values[spec.Factor]; ok {
				cross[ticker] = v
			}
		}
		if len(cross) == 0 {
			continue
		}

		winsorize(cross, winsorLowPct, winsorHighPct)
		z := groupZScores(cross, sectorOf)

		for ticker, zv := range z {
			if spec.LowerBetter {
				zv = -zv // 낮을수록 우수한 팩터는 부호 반전
			}
			zscores[ticker][spec.Factor] = zv
		}
	}

	// 3. Category means over present factors, composite, ordering.
	records := make([]contracts.FactorScoreRecord, 0, len(in.Rows))
	dropped := 0
	for ticker := range in.Rows {
		record := contracts.FactorScoreRecord{
			Ticker:     ticker,
			Date:       in.Date,
			Raw:        raw[ticker],
			ZScore:     zscores[ticker],
			Categories: categoryScores(zscores[ticker]),
		}

		composite, ok := compositeScore(record.Categories, momentumAvailable)
		if !ok {
			dropped++
			continue
		}
		record.Composite = composite
		records = append(records, record)
	}

	// 결정적 출력 순서 (동일 입력 → 동일 순서)
	sort.Slice(records, func(i, j int) bool {
		if records[i].Composite != records[j].Composite {
			return records[i].Composite > records[j].Composite
		}
		return records[i].Ticker < records[j].Ticker
	})

	e.logger.WithFields(map[string]interface{}{
		"date":    in.Date.Format("2006-01-02"),
		"scored":  len(records),
		"dropped": dropped,
	}).Info("Factor scoring completed")

	return records, nil
}

// sectorFunc returns the grouping function for z-scores: by sector when
// any sector label exists, else one group for the full cross-section.
func (e *Engine) sectorFunc(rows map[string]contracts.MarketRow) func(string) string {
	hasSectors := false
	for _, row := range rows {
		if row.Sector != "" {
			hasSectors = true
			break
		}
	}
	if !hasSectors {
		return func(string) string { return "" }
	}
	return func(ticker string) string { return rows[ticker].Sector }
}

// categoryScores averages the present factor z-scores per category.
// Absent factors neither count toward the mean nor zero it out.
func categoryScores(z map[contracts.Factor]float64) map[contracts.Category]float64 {
	sums := make(map[contracts.Category]float64)
	counts := make(map[contracts.Category]int)
	for _, spec := range contracts.AllFactors {
		v, ok := z[spec.Factor]
		if !ok {
			continue
		}
		sums[spec.Category] += v
		counts[spec.Category]++
	}

	out := make(map[contracts.Category]float64, len(sums))
	for c, sum := range sums {
		out[c] = sum / float64(counts[c])
	}
	return out
}

// compositeScore combines category scores. Weights over the present
// value/quality categories are renormalized; a missing momentum score
// drops the ticker unless momentum is structurally unavailable.
func compositeScore(categories map[contracts.Category]float64, momentumAvailable bool) (float64, bool) {
	value, hasValue := categories[contracts.CategoryValue]
	quality, hasQuality := categories[contracts.CategoryQuality]
	momentum, hasMomentum := categories[contracts.CategoryMomentum]

	if !hasValue && !hasQuality {
		return 0, false
	}

	if !momentumAvailable {
		// 가격 데이터 자체가 없을 때만 2팩터 폴백
		return renormalized(value, hasValue, fallbackWeightValue, quality, hasQuality, fallbackWeightQuality, 0, false, 0), true
	}

	if !hasMomentum {
		return 0, false
	}

	return renormalized(value, hasValue, weightValue, quality, hasQuality, weightQuality, momentum, true, weightMomentum), true
}

// renormalized computes the weighted mean over present categories with
// weights rescaled to sum to 1.
func renormalized(v float64, hasV bool, wv float64, q float64, hasQ bool, wq float64, m float64, hasM bool, wm float64) float64 {
	var sum, weightSum float64
	if hasV {
		sum += v * wv
		weightSum += wv
	}
	if hasQ {
		sum += q * wq
		weightSum += wq
	}
	if hasM {
		sum += m * wm
		weightSum += wm
	}
	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}
