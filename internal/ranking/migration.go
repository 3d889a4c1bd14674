package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// RescoreFunc recomputes a date's composite ordering from scratch.
type RescoreFunc func(ctx context.Context, date time.Time) ([]contracts.FactorScoreRecord, error)

// Migrator performs the explicit bulk re-ranking migration: every
// stored snapshot is rewritten in place oldest-to-newest, and the
// dependent weighted ranks of later dates are rebuilt forward
// transitively. This is the only operation allowed to mutate an
// existing snapshot.
type Migrator struct {
	store    SnapshotStore
	smoother *Smoother
	logger   *logger.Logger
}

// NewMigrator creates a migrator over a snapshot store.
func NewMigrator(store SnapshotStore, smoother *Smoother, log *logger.Logger) *Migrator {
	return &Migrator{store: store, smoother: smoother, logger: log}
}

// DayResult is one rebuilt date's weighted-rank output.
type DayResult struct {
	Date    time.Time
	Entries []contracts.WeightedRankEntry
}

// Rebuild re-scores and rewrites every snapshot in date order, folding
// forward only the two most recent rebuilt snapshots so each day stays
// O(1) in history depth. A date whose rescore fails is skipped and the
// fold continues with the history window unchanged.
func (m *Migrator) Rebuild(ctx context.Context, rescore RescoreFunc) ([]DayResult, error) {
	dates, err := m.store.Dates()
	if err != nil {
		return nil, fmt.Errorf("list snapshot dates: %w", err)
	}

	m.logger.WithField("dates", len(dates)).Info("Starting re-ranking migration")

	var prev, prev2 *contracts.RankingSnapshot
	results := make([]DayResult, 0, len(dates))
	skipped := 0

	for _, date := range dates {
		records, err := rescore(ctx, date)
		if err != nil {
			skipped++
			m.logger.WithError(err).WithField("date", date.Format(dateLayout)).Warn("Rescore failed, keeping history window")
			continue
		}

		snapshot := BuildSnapshot(date, records)
		if err := m.store.Put(date, snapshot); err != nil {
			return results, fmt.Errorf("rewrite snapshot %s: %w", date.Format(dateLayout), err)
		}

		entries := m.smoother.Weigh(snapshot, prev, prev2)
		results = append(results, DayResult{Date: date, Entries: entries})

		prev2 = prev
		prev = snapshot
	}

	m.logger.WithFields(map[string]interface{}{
		"rebuilt": len(results),
		"skipped": skipped,
	}).Info("Re-ranking migration completed")

	return results, nil
}
