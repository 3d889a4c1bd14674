package factors

import (
	"github.com/VolumeQuant/quantcore/internal/contracts"
)

// qualityFactors computes raw quality ratios for one ticker.
// ROE = 순이익/자본, GPA = 매출총이익/자산, CFO = 영업현금흐름/자산
func qualityFactors(f *contracts.PointInTimeFundamentals, out map[contracts.Factor]float64) {
	if f == nil {
		return
	}

	if eq, ok := f.Stock(contracts.AccountEquity); ok && eq > 0 {
		if ni, niOK := f.Flow(contracts.AccountNetIncome); niOK {
			out[contracts.FactorROE] = ni / eq
		}
	}

	assets, ok := f.Stock(contracts.AccountAssets)
	if !ok || assets <= 0 {
		return
	}
	if gp, gpOK := f.Flow(contracts.AccountGrossProfit); gpOK {
		out[contracts.FactorGPA] = gp / assets
	}
	if ocf, ocfOK := f.Flow(contracts.AccountOperatingCashFlow); ocfOK {
		out[contracts.FactorCFO] = ocf / assets
	}
}
