package contracts

import "time"

// DisclosureType distinguishes quarterly from annual statement disclosures.
type DisclosureType string

const (
	DisclosureQuarterly DisclosureType = "quarterly"
	DisclosureAnnual    DisclosureType = "annual"
)

// Account identifies a financial statement line item.
type Account string

// Flow accounts (TTM 합산 대상) and stock accounts (최근 분기 값만 사용).
const (
	AccountNetIncome         Account = "net_income"
	AccountOperatingIncome   Account = "operating_income"
	AccountOperatingCashFlow Account = "operating_cash_flow"
	AccountRevenue           Account = "revenue"
	AccountGrossProfit       Account = "gross_profit"

	AccountAssets             Account = "assets"
	AccountLiabilities        Account = "liabilities"
	AccountEquity             Account = "equity"
	AccountCurrentAssets      Account = "current_assets"
	AccountCurrentLiabilities Account = "current_liabilities"
	AccountCash               Account = "cash"
)

// FlowAccounts lists accounts aggregated as decay-weighted TTM sums.
var FlowAccounts = []Account{
	AccountNetIncome,
	AccountOperatingIncome,
	AccountOperatingCashFlow,
	AccountRevenue,
	AccountGrossProfit,
}

// StockAccounts lists balance-sheet accounts taken from the latest quarter.
var StockAccounts = []Account{
	AccountAssets,
	AccountLiabilities,
	AccountEquity,
	AccountCurrentAssets,
	AccountCurrentLiabilities,
	AccountCash,
}

// IsFlow reports whether the account is aggregated as a trailing sum.
func (a Account) IsFlow() bool {
	for _, f := range FlowAccounts {
		if a == f {
			return true
		}
	}
	return false
}

// StatementLineItem is one raw statement value as produced by the
// statement collaborator. Immutable.
type StatementLineItem struct {
	Ticker     string         `json:"ticker"`
	Account    Account        `json:"account"`
	PeriodEnd  time.Time      `json:"period_end"`
	Disclosure DisclosureType `json:"disclosure"`
	Value      float64        `json:"value"`
}

// PointInTimeFundamentals is a per (ticker, as-of date) snapshot of
// aggregated fundamentals. Flow accounts hold decay-weighted TTM sums,
// stock accounts hold the latest qualifying quarter's value.
// ⭐ SSOT: as_of 시점에 공시되지 않은 데이터는 절대 포함 금지 (look-ahead 방지)
//
// Missing accounts are omitted from the maps, never zero-filled.
// Consumers must treat absence as missing.
type PointInTimeFundamentals struct {
	Ticker   string              `json:"ticker"`
	AsOf     time.Time           `json:"as_of"`
	Quarters int                 `json:"quarters"` // 사용된 분기 수 (annual fallback이면 0)
	Annual   bool                `json:"annual"`   // annual fallback 여부
	Flows    map[Account]float64 `json:"flows"`
	Stocks   map[Account]float64 `json:"stocks"`
}

// Flow returns a flow account's TTM value and whether it is present.
func (f *PointInTimeFundamentals) Flow(a Account) (float64, bool) {
	v, ok := f.Flows[a]
	return v, ok
}

// Stock returns a stock account's value and whether it is present.
func (f *PointInTimeFundamentals) Stock(a Account) (float64, bool) {
	v, ok := f.Stocks[a]
	return v, ok
}
