package backtest

import "github.com/VolumeQuant/quantcore/internal/strategy"

// CostModel computes round-trip trading frictions.
// 매수: 수수료 + 슬리피지, 매도: 수수료 + 세금 + 슬리피지.
// 슬리피지는 평균 거래대금에 반비례, 상한 적용.
type CostModel struct {
	CommissionRate   float64
	TaxRate          float64
	SlippageBase     float64
	SlippageCap      float64
	SlippageRefValue float64
}

// NewCostModel builds a cost model from strategy configuration.
func NewCostModel(costs strategy.Costs) CostModel {
	return CostModel{
		CommissionRate:   costs.CommissionRate,
		TaxRate:          costs.TaxRate,
		SlippageBase:     costs.SlippageBase,
		SlippageCap:      costs.SlippageCap,
		SlippageRefValue: costs.SlippageRefValue,
	}
}

// Slippage scales inversely with average trading value and is capped.
// 거래대금 정보가 없으면 최악(상한)을 가정한다.
func (m CostModel) Slippage(avgTradingValue float64) float64 {
	if avgTradingValue <= 0 {
		return m.SlippageCap
	}

	slip := m.SlippageBase * m.SlippageRefValue / avgTradingValue
	if slip > m.SlippageCap {
		return m.SlippageCap
	}
	return slip
}

// BuyCost is deducted from the first day's return of a holding period.
func (m CostModel) BuyCost(avgTradingValue float64) float64 {
	return m.CommissionRate + m.Slippage(avgTradingValue)
}

// SellCost is deducted from the last day's return of a holding period.
func (m CostModel) SellCost(avgTradingValue float64) float64 {
	return m.CommissionRate + m.TaxRate + m.Slippage(avgTradingValue)
}
