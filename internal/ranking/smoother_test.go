package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

// snapshotOf builds a snapshot from tickers in rank order.
func snapshotOf(date time.Time, tickers ...string) *contracts.RankingSnapshot {
	entries := make([]contracts.RankEntry, len(tickers))
	for i, t := range tickers {
		entries[i] = contracts.RankEntry{
			Ticker:    t,
			Rank:      i + 1,
			Composite: float64(len(tickers) - i),
		}
	}
	return &contracts.RankingSnapshot{Date: date, Entries: entries}
}

func TestSmoother_WeightedRankFormula(t *testing.T) {
	// r0=1, r1=3, r2=5 → 0.5 + 0.9 + 1.0 = 2.4
	s := NewSmoother(DefaultConfig(), logger.NewNop())

	today := snapshotOf(day(3), "A")
	prev := snapshotOf(day(2), "X", "Y", "A")  // A rank 3
	prev2 := snapshotOf(day(1), "X", "Y", "Z", "W", "A") // A rank 5

	entries := s.Weigh(today, prev, prev2)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, 1, e.RankT0)
	assert.Equal(t, 3, e.RankT1)
	assert.Equal(t, 5, e.RankT2)
	assert.InDelta(t, 2.4, e.WeightedRank, 1e-9)
}

func TestSmoother_PenaltyRankForMissingHistory(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSmoother(cfg, logger.NewNop())

	today := snapshotOf(day(3), "A", "B")
	prev := snapshotOf(day(2), "A") // B는 전일 top-N 밖

	entries := s.Weigh(today, prev, nil)
	require.Len(t, entries, 2)

	byTicker := map[string]contracts.WeightedRankEntry{}
	for _, e := range entries {
		byTicker[e.Ticker] = e
	}

	b := byTicker["B"]
	assert.Equal(t, cfg.PenaltyRank, b.RankT1)
	assert.Equal(t, cfg.PenaltyRank, b.RankT2)
	assert.InDelta(t, 2*0.5+50*0.3+50*0.2, b.WeightedRank, 1e-9)
}

func TestSmoother_PriorRankRequiresTopNMembership(t *testing.T) {
	cfg := Config{TopN: 2, PenaltyRank: 50, MaxPicks: 10}
	s := NewSmoother(cfg, logger.NewNop())

	today := snapshotOf(day(3), "C")
	prev := snapshotOf(day(2), "A", "B", "C") // C는 rank 3 > TopN=2

	entries := s.Weigh(today, prev, nil)
	require.Len(t, entries, 1)
	assert.Equal(t, 50, entries[0].RankT1, "rank outside prior top-N must take penalty")
}

func TestSmoother_ColdStart(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSmoother(cfg, logger.NewNop())

	today := snapshotOf(day(1), "A", "B", "C")

	entries := s.Weigh(today, nil, nil)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, cfg.PenaltyRank, e.RankT1)
		assert.Equal(t, cfg.PenaltyRank, e.RankT2)
		assert.Equal(t, contracts.StatusNew, e.Status)
	}
}

func TestSmoother_StatusClassification(t *testing.T) {
	s := NewSmoother(DefaultConfig(), logger.NewNop())

	today := snapshotOf(day(3), "confirmed", "watching", "fresh")
	prev := snapshotOf(day(2), "confirmed", "watching")
	prev2 := snapshotOf(day(1), "confirmed")

	entries := s.Weigh(today, prev, prev2)
	byTicker := map[string]contracts.WeightedRankEntry{}
	for _, e := range entries {
		byTicker[e.Ticker] = e
	}

	assert.Equal(t, contracts.StatusConfirmed, byTicker["confirmed"].Status)
	assert.Equal(t, contracts.StatusWatching, byTicker["watching"].Status)
	assert.Equal(t, contracts.StatusNew, byTicker["fresh"].Status)
}

func TestSmoother_FinalRankOrder(t *testing.T) {
	s := NewSmoother(DefaultConfig(), logger.NewNop())

	// B는 오늘 2위지만 이력이 좋아 가중 순위에서 A를 추월
	today := snapshotOf(day(3), "A", "B")
	prev := snapshotOf(day(2), "B", "A")
	prev2 := snapshotOf(day(1), "B", "A")

	entries := s.Weigh(today, prev, prev2)
	require.Len(t, entries, 2)

	// A: 0.5*1+0.3*2+0.2*2 = 1.5, B: 0.5*2+0.3*1+0.2*1 = 1.5 → tie → r0 우선
	assert.InDelta(t, entries[0].WeightedRank, entries[1].WeightedRank, 1e-9)
	assert.Equal(t, "A", entries[0].Ticker)
	assert.Equal(t, 1, entries[0].FinalRank)
	assert.Equal(t, 2, entries[1].FinalRank)
}

// 스펙 종단 시나리오: 3일 연속 양 종목 top-30 유지
func TestSmoother_EndToEndThreeDayIntersection(t *testing.T) {
	s := NewSmoother(DefaultConfig(), logger.NewNop())

	// A 점수 [10,10,10], B 점수 [-5,-5,-5] → 매일 A=1위, B=2위
	mk := func(d time.Time) *contracts.RankingSnapshot {
		return &contracts.RankingSnapshot{
			Date: d,
			Entries: []contracts.RankEntry{
				{Ticker: "A", Rank: 1, Composite: 10},
				{Ticker: "B", Rank: 2, Composite: -5},
			},
		}
	}

	day1 := mk(day(1))
	day2 := mk(day(2))
	day3 := mk(day(3))

	entries := s.Weigh(day3, day2, day1)
	require.Len(t, entries, 2)

	byTicker := map[string]contracts.WeightedRankEntry{}
	for _, e := range entries {
		byTicker[e.Ticker] = e
	}
	assert.Equal(t, contracts.StatusConfirmed, byTicker["A"].Status)
	assert.Equal(t, contracts.StatusConfirmed, byTicker["B"].Status)

	picks := s.Intersection(entries, day3, day2, day1)
	require.Len(t, picks, 2)
	assert.Equal(t, "A", picks[0].Ticker)
	assert.Equal(t, "B", picks[1].Ticker)
}

func TestSmoother_IntersectionExcludesNonPersistent(t *testing.T) {
	cfg := Config{TopN: 2, PenaltyRank: 50, MaxPicks: 10}
	s := NewSmoother(cfg, logger.NewNop())

	today := snapshotOf(day(3), "A", "NEW")
	prev := snapshotOf(day(2), "A", "B")
	prev2 := snapshotOf(day(1), "A", "B")

	entries := s.Weigh(today, prev, prev2)
	picks := s.Intersection(entries, today, prev, prev2)

	require.Len(t, picks, 1)
	assert.Equal(t, "A", picks[0].Ticker)
}

func TestSmoother_IntersectionTruncatesToMaxPicks(t *testing.T) {
	cfg := Config{TopN: 30, PenaltyRank: 50, MaxPicks: 2}
	s := NewSmoother(cfg, logger.NewNop())

	today := snapshotOf(day(3), "A", "B", "C", "D")
	prev := snapshotOf(day(2), "A", "B", "C", "D")
	prev2 := snapshotOf(day(1), "A", "B", "C", "D")

	entries := s.Weigh(today, prev, prev2)
	picks := s.Intersection(entries, today, prev, prev2)

	assert.Len(t, picks, 2)
}

func TestBuildSnapshot_StableTies(t *testing.T) {
	records := []contracts.FactorScoreRecord{
		{Ticker: "A", Composite: 1.0},
		{Ticker: "B", Composite: 1.0}, // 동점: 입력 순서 유지
		{Ticker: "C", Composite: 0.5},
	}

	snapshot := BuildSnapshot(day(1), records)
	require.Len(t, snapshot.Entries, 3)
	assert.Equal(t, "A", snapshot.Entries[0].Ticker)
	assert.Equal(t, 1, snapshot.Entries[0].Rank)
	assert.Equal(t, "B", snapshot.Entries[1].Ticker)
	assert.Equal(t, 2, snapshot.Entries[1].Rank)
}
