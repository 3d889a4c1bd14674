package contracts

import "time"

// Factor identifies a single scored factor.
type Factor string

const (
	FactorPER      Factor = "per"
	FactorPBR      Factor = "pbr"
	FactorPCR      Factor = "pcr"
	FactorPSR      Factor = "psr"
	FactorDivYield Factor = "div_yield"
	FactorROE      Factor = "roe"
	FactorGPA      Factor = "gpa"
	FactorCFO      Factor = "cfo"
	FactorMomentum Factor = "momentum"
)

// Category groups factors for composite scoring.
type Category string

const (
	CategoryValue    Category = "value"
	CategoryQuality  Category = "quality"
	CategoryMomentum Category = "momentum"
)

// AllFactors lists every factor with its category and direction.
// LowerBetter 팩터는 z-score 단계에서 부호 반전.
var AllFactors = []FactorSpec{
	{FactorPER, CategoryValue, true},
	{FactorPBR, CategoryValue, true},
	{FactorPCR, CategoryValue, true},
	{FactorPSR, CategoryValue, true},
	{FactorDivYield, CategoryValue, false},
	{FactorROE, CategoryQuality, false},
	{FactorGPA, CategoryQuality, false},
	{FactorCFO, CategoryQuality, false},
	{FactorMomentum, CategoryMomentum, false},
}

// FactorSpec describes one factor's category and direction.
type FactorSpec struct {
	Factor      Factor
	Category    Category
	LowerBetter bool
}

// FactorScoreRecord holds one ticker's factor scores for one date.
// Maps carry presence semantics: an absent factor was not computable
// for this ticker and must not be coerced to zero.
type FactorScoreRecord struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`

	Raw    map[Factor]float64 `json:"raw"`
	ZScore map[Factor]float64 `json:"zscore"`

	// Category scores over the present factors only.
	Categories map[Category]float64 `json:"categories"`

	Composite float64 `json:"composite"`
}

// Category returns a category score and whether any factor contributed.
func (r *FactorScoreRecord) Category(c Category) (float64, bool) {
	v, ok := r.Categories[c]
	return v, ok
}

// RankEntry is one row of a ranking snapshot.
type RankEntry struct {
	Ticker    string               `json:"ticker"`
	Rank      int                  `json:"rank"`
	Composite float64              `json:"composite"`
	Breakdown map[Category]float64 `json:"breakdown"`
}

// RankingSnapshot is the persisted ranking for a single date.
// Append-only across dates; an individual snapshot is rewritten in place
// only by an explicit re-ranking migration.
type RankingSnapshot struct {
	Date    time.Time   `json:"date"`
	Entries []RankEntry `json:"entries"` // ordered by rank ascending
}

// TopN returns the tickers holding rank 1..n, in rank order.
func (s *RankingSnapshot) TopN(n int) []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, n)
	for _, e := range s.Entries {
		if e.Rank > n {
			break
		}
		out = append(out, e.Ticker)
	}
	return out
}

// RankOf returns a ticker's rank and whether it appears in the snapshot.
func (s *RankingSnapshot) RankOf(ticker string) (int, bool) {
	if s == nil {
		return 0, false
	}
	for _, e := range s.Entries {
		if e.Ticker == ticker {
			return e.Rank, true
		}
	}
	return 0, false
}
