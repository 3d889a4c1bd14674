package contracts

import (
	"sort"
	"time"
)

// PriceBar is one daily OHLC observation for a ticker.
type PriceBar struct {
	Date         time.Time `json:"date"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       int64     `json:"volume"`
	TradingValue float64   `json:"trading_value"` // 거래대금 (원)
}

// PriceHistory maps ticker -> daily bars, ascending by date.
type PriceHistory map[string][]PriceBar

// Bars returns the bars for a ticker, or nil when none exist.
func (h PriceHistory) Bars(ticker string) []PriceBar {
	return h[ticker]
}

// Window returns the bars for a ticker within [from, to), ascending.
func (h PriceHistory) Window(ticker string, from, to time.Time) []PriceBar {
	bars := h[ticker]
	if len(bars) == 0 {
		return nil
	}
	lo := sort.Search(len(bars), func(i int) bool { return !bars[i].Date.Before(from) })
	hi := sort.Search(len(bars), func(i int) bool { return !bars[i].Date.Before(to) })
	return bars[lo:hi]
}

// MarketRow is one ticker's row of the market cap / trading value table
// for a single date, as delivered by the data-retrieval collaborator.
type MarketRow struct {
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name"`
	Market        string    `json:"market"` // KOSPI, KOSDAQ
	Sector        string    `json:"sector"`
	Date          time.Time `json:"date"`
	Close         float64   `json:"close"`
	MarketCap     float64   `json:"market_cap"`     // 시가총액 (원)
	TradingValue  float64   `json:"trading_value"`  // 당일 거래대금 (원)
	AvgTradingVal float64   `json:"avg_trading_val"` // 20일 평균 거래대금 (원)
	DividendYield float64   `json:"dividend_yield"` // 연 배당수익률 (비율)
}
