package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/VolumeQuant/quantcore/internal/pipeline"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// RankingJob appends today's ranking snapshot after data collection.
// ⭐ SSOT: 일일 랭킹 스냅샷 스케줄은 이 Job에서만
type RankingJob struct {
	runner *pipeline.Runner
	logger *logger.Logger
}

func NewRankingJob(runner *pipeline.Runner, log *logger.Logger) *RankingJob {
	return &RankingJob{runner: runner, logger: log}
}

func (j *RankingJob) Name() string { return "daily_ranking" }

// Schedule: 매일 17:30 KST, 수집 완료 이후.
func (j *RankingJob) Schedule() string { return "0 30 17 * * *" }

func (j *RankingJob) Run(ctx context.Context) error {
	date := time.Now().Truncate(24 * time.Hour)

	weighted, err := j.runner.Snapshot(ctx, date)
	if err != nil {
		return fmt.Errorf("daily snapshot: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"tickers": len(weighted),
	}).Info("Daily ranking appended")
	return nil
}
