package contracts

import "time"

// Universe represents the investable tickers for one date.
// ⭐ SSOT: 유니버스 필터 결과 전달 (제외 사유 포함)
type Universe struct {
	Date       time.Time         `json:"date"`
	Tickers    []string          `json:"tickers"`               // 투자 가능 종목
	Excluded   map[string]string `json:"excluded"`              // 제외 종목: 사유
	TotalCount int               `json:"total_count,omitempty"` // 통과 종목 수
}

// Contains checks if a ticker is in the universe.
func (u *Universe) Contains(ticker string) bool {
	for _, t := range u.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// IsExcluded checks if a ticker was excluded, with the reason.
func (u *Universe) IsExcluded(ticker string) (bool, string) {
	reason, exists := u.Excluded[ticker]
	return exists, reason
}

// Count returns the number of investable tickers.
func (u *Universe) Count() int {
	return len(u.Tickers)
}
