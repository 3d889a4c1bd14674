package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/VolumeQuant/quantcore/internal/marketdata"
	"github.com/VolumeQuant/quantcore/pkg/config"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// CollectionJob refreshes the market data cache every trading day:
// 시장 스냅샷 → 시세 → 재무제표 순서.
// ⭐ SSOT: 데이터 수집 스케줄은 이 Job에서만
type CollectionJob struct {
	collector *marketdata.Collector
	config    *config.Config
	logger    *logger.Logger
}

func NewCollectionJob(collector *marketdata.Collector, cfg *config.Config, log *logger.Logger) *CollectionJob {
	return &CollectionJob{
		collector: collector,
		config:    cfg,
		logger:    log,
	}
}

func (j *CollectionJob) Name() string { return "data_collection" }

// Schedule: 매일 16:30 KST, 장 마감 후.
func (j *CollectionJob) Schedule() string { return "0 30 16 * * *" }

func (j *CollectionJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled data collection")

	today := time.Now()
	if _, err := j.collector.CollectSnapshot(ctx, today); err != nil {
		return fmt.Errorf("collect snapshot: %w", err)
	}

	cfg := marketdata.CollectorConfig{Workers: j.config.CollectorWorkers}

	// 최근 5일치만 갱신, 과거 구간은 초기 적재에서 처리
	from := today.AddDate(0, 0, -5)
	if _, err := j.collector.CollectPrices(ctx, from, today, cfg); err != nil {
		return fmt.Errorf("collect prices: %w", err)
	}

	if _, err := j.collector.CollectStatements(ctx, cfg); err != nil {
		return fmt.Errorf("collect statements: %w", err)
	}

	j.logger.Info("Scheduled data collection finished")
	return nil
}
