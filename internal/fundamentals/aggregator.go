package fundamentals

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

const (
	// 공시 지연: 분기보고서 45일, 사업보고서 90일
	QuarterlyLagDays = 45
	AnnualLagDays    = 90

	// 최근 분기일수록 높은 가중치, 합계 4.0 (단순 4분기 합산과 동일 스케일)
	maxQuarters = 4
)

// nominalWeights are the decay weights for the 1st..4th most recent
// quarter. When fewer quarters are available the applied weights are
// rescaled so their sum stays exactly 4.0.
var nominalWeights = [maxQuarters]float64{1.6, 1.2, 0.8, 0.4}

// Aggregator converts raw statement line items into point-in-time TTM
// fundamentals respecting disclosure lag.
// ⭐ SSOT: 재무제표 집계는 여기서만 (look-ahead 방지의 핵심)
type Aggregator struct {
	logger *logger.Logger
}

// NewAggregator creates a new statement aggregator
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{logger: log}
}

// Aggregate produces one PointInTimeFundamentals record for a ticker as
// of the reference date, or contracts.ErrInsufficientData when neither
// quarterly nor annual history qualifies.
func (a *Aggregator) Aggregate(ticker string, items []contracts.StatementLineItem, asOf time.Time) (*contracts.PointInTimeFundamentals, error) {
	quarterly := filterItems(items, contracts.DisclosureQuarterly, asOf.AddDate(0, 0, -QuarterlyLagDays))
	if len(quarterly) > 0 {
		return a.aggregateQuarterly(ticker, quarterly, asOf)
	}

	// Annual fallback: 분기 데이터가 전혀 없을 때만
	annual := filterItems(items, contracts.DisclosureAnnual, asOf.AddDate(0, 0, -AnnualLagDays))
	if len(annual) > 0 {
		return a.aggregateAnnual(ticker, annual, asOf)
	}

	return nil, fmt.Errorf("aggregate %s as of %s: %w",
		ticker, asOf.Format("2006-01-02"), contracts.ErrInsufficientData)
}

// aggregateQuarterly combines up to the four most recent distinct
// quarters. Flow accounts get decay-weighted trailing sums, stock
// accounts take the latest quarter's value only.
func (a *Aggregator) aggregateQuarterly(ticker string, items []contracts.StatementLineItem, asOf time.Time) (*contracts.PointInTimeFundamentals, error) {
	byPeriod := groupByPeriod(items)

	periods := make([]time.Time, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].After(periods[j]) })
	if len(periods) > maxQuarters {
		periods = periods[:maxQuarters]
	}

	out := &contracts.PointInTimeFundamentals{
		Ticker:   ticker,
		AsOf:     asOf,
		Quarters: len(periods),
		Flows:    make(map[contracts.Account]float64),
		Stocks:   make(map[contracts.Account]float64),
	}

	// Flow accounts: 계정별로 존재하는 분기만 가중합, 가중치 합은 4.0으로 재조정
	for _, account := range contracts.FlowAccounts {
		var weighted, weightSum float64
		var found bool
		for i, p := range periods {
			v, ok := byPeriod[p][account]
			if !ok {
				continue
			}
			weighted += v * nominalWeights[i]
			weightSum += nominalWeights[i]
			found = true
		}
		if !found {
			continue // omitted, not zero-filled
		}
		out.Flows[account] = weighted * (4.0 / weightSum)
	}

	// Stock accounts: 최근 분기 값만 사용
	latest := byPeriod[periods[0]]
	for _, account := range contracts.StockAccounts {
		if v, ok := latest[account]; ok {
			out.Stocks[account] = v
		}
	}

	a.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"as_of":    asOf.Format("2006-01-02"),
		"quarters": out.Quarters,
	}).Debug("Aggregated quarterly fundamentals")

	return out, nil
}

// aggregateAnnual uses the single most recent annual disclosure. Annual
// flow values already cover twelve months, so no weighting applies.
func (a *Aggregator) aggregateAnnual(ticker string, items []contracts.StatementLineItem, asOf time.Time) (*contracts.PointInTimeFundamentals, error) {
	byPeriod := groupByPeriod(items)

	var latest time.Time
	for p := range byPeriod {
		if p.After(latest) {
			latest = p
		}
	}
	values := byPeriod[latest]

	out := &contracts.PointInTimeFundamentals{
		Ticker: ticker,
		AsOf:   asOf,
		Annual: true,
		Flows:  make(map[contracts.Account]float64),
		Stocks: make(map[contracts.Account]float64),
	}

	for _, account := range contracts.FlowAccounts {
		if v, ok := values[account]; ok {
			out.Flows[account] = v
		}
	}
	for _, account := range contracts.StockAccounts {
		if v, ok := values[account]; ok {
			out.Stocks[account] = v
		}
	}

	if len(out.Flows) == 0 && len(out.Stocks) == 0 {
		return nil, fmt.Errorf("aggregate %s: annual fallback empty: %w", ticker, contracts.ErrInsufficientData)
	}

	a.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"as_of":  asOf.Format("2006-01-02"),
		"period": latest.Format("2006-01-02"),
	}).Debug("Aggregated annual fundamentals (fallback)")

	return out, nil
}

// filterItems keeps items of one disclosure type whose period end is on
// or before the lag-adjusted cutoff. NaN values are dropped here.
func filterItems(items []contracts.StatementLineItem, disclosure contracts.DisclosureType, cutoff time.Time) []contracts.StatementLineItem {
	out := make([]contracts.StatementLineItem, 0, len(items))
	for _, item := range items {
		if item.Disclosure != disclosure {
			continue
		}
		if item.PeriodEnd.After(cutoff) {
			continue // 공시 전 데이터: look-ahead 차단
		}
		if math.IsNaN(item.Value) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// groupByPeriod indexes items by period end date. A duplicate account on
// the same date keeps the first occurrence.
func groupByPeriod(items []contracts.StatementLineItem) map[time.Time]map[contracts.Account]float64 {
	byPeriod := make(map[time.Time]map[contracts.Account]float64)
	for _, item := range items {
		period := item.PeriodEnd
		if _, ok := byPeriod[period]; !ok {
			byPeriod[period] = make(map[contracts.Account]float64)
		}
		if _, dup := byPeriod[period][item.Account]; dup {
			continue
		}
		byPeriod[period][item.Account] = item.Value
	}
	return byPeriod
}
