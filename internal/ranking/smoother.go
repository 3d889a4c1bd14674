package ranking

import (
	"sort"
	"time"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// Rank decay weights: 오늘 50%, 전일 30%, 전전일 20%
const (
	weightT0 = 0.5
	weightT1 = 0.3
	weightT2 = 0.2
)

// Config holds rank smoothing parameters.
type Config struct {
	TopN        int // membership threshold (기본 30)
	PenaltyRank int // 이력 없는 종목에 부여하는 순위 (기본 50, 실제 순위보다 나쁨)
	MaxPicks    int // Slow-In 최종 선정 종목 수 상한
}

// DefaultConfig returns the default smoothing configuration.
func DefaultConfig() Config {
	return Config{
		TopN:        30,
		PenaltyRank: 50,
		MaxPicks:    10,
	}
}

// Smoother maintains decay-weighted composite ranks across trading days.
// ⭐ SSOT: 시계열 랭크 스무딩은 여기서만
//
// Weighted ranks are computed against the two prior snapshots as they
// existed at computation time; later re-ranking of the past does not
// retroactively change an already-computed day outside an explicit
// migration (see Migrator).
type Smoother struct {
	cfg    Config
	logger *logger.Logger
}

// NewSmoother creates a new rank smoother
func NewSmoother(cfg Config, log *logger.Logger) *Smoother {
	return &Smoother{cfg: cfg, logger: log}
}

// BuildSnapshot converts a scored cross-section into the day's ranking
// snapshot. Records must already be ordered by composite descending;
// ties keep their stable insertion order.
func BuildSnapshot(date time.Time, records []contracts.FactorScoreRecord) *contracts.RankingSnapshot {
	entries := make([]contracts.RankEntry, len(records))
	for i, r := range records {
		entries[i] = contracts.RankEntry{
			Ticker:    r.Ticker,
			Rank:      i + 1,
			Composite: r.Composite,
			Breakdown: r.Categories,
		}
	}
	return &contracts.RankingSnapshot{Date: date, Entries: entries}
}

// Weigh produces weighted ranks and membership status for every entry
// of today's snapshot. prev and prev2 may be nil (cold start): missing
// history takes the penalty rank and the entry is marked new.
func (s *Smoother) Weigh(today, prev, prev2 *contracts.RankingSnapshot) []contracts.WeightedRankEntry {
	prevTop := topNSet(prev, s.cfg.TopN)
	prev2Top := topNSet(prev2, s.cfg.TopN)

	entries := make([]contracts.WeightedRankEntry, 0, len(today.Entries))
	for _, e := range today.Entries {
		r1 := s.priorRank(prev, prevTop, e.Ticker)
		r2 := s.priorRank(prev2, prev2Top, e.Ticker)

		entries = append(entries, contracts.WeightedRankEntry{
			Ticker:       e.Ticker,
			Date:         today.Date,
			RankT0:       e.Rank,
			RankT1:       r1,
			RankT2:       r2,
			WeightedRank: float64(e.Rank)*weightT0 + float64(r1)*weightT1 + float64(r2)*weightT2,
			Composite:    e.Composite,
			Status:       s.status(e.Ticker, prevTop, prev2Top),
		})
	}

	// 가중 순위 오름차순으로 최종 표시 순위 부여
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].WeightedRank != entries[j].WeightedRank {
			return entries[i].WeightedRank < entries[j].WeightedRank
		}
		return entries[i].RankT0 < entries[j].RankT0
	})
	for i := range entries {
		entries[i].FinalRank = i + 1
	}

	s.logger.WithFields(map[string]interface{}{
		"date":       today.Date.Format("2006-01-02"),
		"entries":    len(entries),
		"cold_start": prev == nil,
	}).Debug("Weighted ranks computed")

	return entries
}

// Intersection implements the Slow-In selection policy: only tickers
// present in the top-N of all three of the last three snapshots,
// ordered by weighted rank, truncated to MaxPicks.
func (s *Smoother) Intersection(weighted []contracts.WeightedRankEntry, today, prev, prev2 *contracts.RankingSnapshot) []contracts.WeightedRankEntry {
	todayTop := topNSet(today, s.cfg.TopN)
	prevTop := topNSet(prev, s.cfg.TopN)
	prev2Top := topNSet(prev2, s.cfg.TopN)

	picks := make([]contracts.WeightedRankEntry, 0, s.cfg.MaxPicks)
	for _, e := range weighted { // already ordered by weighted rank
		if !todayTop[e.Ticker] || !prevTop[e.Ticker] || !prev2Top[e.Ticker] {
			continue
		}
		picks = append(picks, e)
		if len(picks) >= s.cfg.MaxPicks {
			break
		}
	}
	return picks
}

// priorRank looks up a ticker's rank in a prior snapshot, counting only
// top-N membership. Anything else takes the penalty rank.
func (s *Smoother) priorRank(snapshot *contracts.RankingSnapshot, top map[string]bool, ticker string) int {
	if snapshot == nil || !top[ticker] {
		return s.cfg.PenaltyRank
	}
	rank, ok := snapshot.RankOf(ticker)
	if !ok {
		return s.cfg.PenaltyRank
	}
	return rank
}

// status classifies top-N persistence: 3일 연속 → confirmed,
// 오늘+전일 → watching, 오늘 처음 → new.
func (s *Smoother) status(ticker string, prevTop, prev2Top map[string]bool) contracts.MembershipStatus {
	switch {
	case prevTop[ticker] && prev2Top[ticker]:
		return contracts.StatusConfirmed
	case prevTop[ticker]:
		return contracts.StatusWatching
	default:
		return contracts.StatusNew
	}
}

// topNSet collects a snapshot's top-N tickers. Nil snapshot → empty set.
func topNSet(snapshot *contracts.RankingSnapshot, n int) map[string]bool {
	out := make(map[string]bool)
	if snapshot == nil {
		return out
	}
	for _, t := range snapshot.TopN(n) {
		out[t] = true
	}
	return out
}
