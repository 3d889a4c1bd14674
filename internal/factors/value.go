package factors

import (
	"github.com/VolumeQuant/quantcore/internal/contracts"
)

// valueFactors computes raw value ratios for one ticker. Ratios with a
// non-positive denominator are left missing. Market cap comes from the
// live market snapshot; without it no value ratio is computable.
// 가치 팩터: PER/PBR/PCR/PSR은 낮을수록, 배당수익률은 높을수록 우수
func valueFactors(row contracts.MarketRow, f *contracts.PointInTimeFundamentals, out map[contracts.Factor]float64) {
	if row.MarketCap <= 0 {
		return
	}

	if f != nil {
		if ni, ok := f.Flow(contracts.AccountNetIncome); ok && ni > 0 {
			out[contracts.FactorPER] = row.MarketCap / ni
		}
		if eq, ok := f.Stock(contracts.AccountEquity); ok && eq > 0 {
			out[contracts.FactorPBR] = row.MarketCap / eq
		}
		if ocf, ok := f.Flow(contracts.AccountOperatingCashFlow); ok && ocf > 0 {
			out[contracts.FactorPCR] = row.MarketCap / ocf
		}
		if rev, ok := f.Flow(contracts.AccountRevenue); ok && rev > 0 {
			out[contracts.FactorPSR] = row.MarketCap / rev
		}
	}

	// 배당수익률은 0도 유효한 값 (무배당)
	if row.DividendYield >= 0 {
		out[contracts.FactorDivYield] = row.DividendYield
	}
}
