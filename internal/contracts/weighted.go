package contracts

import "time"

// MembershipStatus classifies how long a ticker has held top-N membership.
type MembershipStatus string

const (
	// StatusConfirmed: 오늘 + 전일 + 전전일 모두 top-N 유지
	StatusConfirmed MembershipStatus = "confirmed"
	// StatusWatching: 오늘 + 전일만 top-N
	StatusWatching MembershipStatus = "watching"
	// StatusNew: 오늘 처음 top-N 진입
	StatusNew MembershipStatus = "new"
)

// WeightedRankEntry is a ticker's decay-weighted rank across the current
// and two preceding ranking dates. Computed against the two prior
// snapshots as they existed at computation time; never recomputed
// retroactively outside an explicit migration.
type WeightedRankEntry struct {
	Ticker       string           `json:"ticker"`
	Date         time.Time        `json:"date"`
	RankT0       int              `json:"rank_t0"`
	RankT1       int              `json:"rank_t1"` // penalty rank when absent from prior top-N
	RankT2       int              `json:"rank_t2"`
	WeightedRank float64          `json:"weighted_rank"`
	FinalRank    int              `json:"final_rank"` // weighted_rank 오름차순 순위
	Composite    float64          `json:"composite"`
	Status       MembershipStatus `json:"status"`
}
