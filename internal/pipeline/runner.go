package pipeline

import (
	"context"
	"time"

	"github.com/VolumeQuant/quantcore/internal/backtest"
	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/internal/factors"
	"github.com/VolumeQuant/quantcore/internal/fundamentals"
	"github.com/VolumeQuant/quantcore/internal/ranking"
	"github.com/VolumeQuant/quantcore/internal/strategy"
	"github.com/VolumeQuant/quantcore/internal/universe"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// 모멘텀 계산용 과거 시세 구간 (12개월 + 여유분)
const momentumLookbackDays = 400

// Runner executes the daily scoring pipeline: universe → point-in-time
// fundamentals → factor scores → ranking snapshot → temporal smoothing.
// ⭐ SSOT: 일일 랭킹 파이프라인 순서는 여기서만
type Runner struct {
	source   backtest.Source
	store    ranking.SnapshotStore
	agg      *fundamentals.Aggregator
	engine   *factors.Engine
	builder  *universe.Builder
	smoother *ranking.Smoother
	logger   *logger.Logger
}

func NewRunner(cfg *strategy.Config, source backtest.Source, store ranking.SnapshotStore, log *logger.Logger) *Runner {
	rankCfg := ranking.Config{
		TopN:        cfg.Ranking.TopN,
		PenaltyRank: cfg.Ranking.PenaltyRank,
		MaxPicks:    cfg.Ranking.MaxPicks,
	}
	return &Runner{
		source:   source,
		store:    store,
		agg:      fundamentals.NewAggregator(log),
		engine:   factors.NewEngine(log),
		builder:  universe.NewBuilder(cfg.Universe, log),
		smoother: ranking.NewSmoother(rankCfg, log),
		logger:   log.WithField("component", "pipeline"),
	}
}

// Score computes factor scores for one date without persisting.
func (r *Runner) Score(ctx context.Context, date time.Time) ([]contracts.FactorScoreRecord, error) {
	rows, err := r.source.MarketRows(ctx, date)
	if err != nil {
		return nil, err
	}

	univ, err := r.builder.Build(date, rows)
	if err != nil {
		return nil, err
	}

	rowByTicker := make(map[string]contracts.MarketRow, len(rows))
	for _, row := range rows {
		rowByTicker[row.Ticker] = row
	}

	funds := make(map[string]*contracts.PointInTimeFundamentals, len(univ.Tickers))
	scorable := make(map[string]contracts.MarketRow, len(univ.Tickers))
	for _, ticker := range univ.Tickers {
		items, err := r.source.Statements(ctx, ticker)
		if err != nil {
			r.logger.WithError(err).Debugf("statements unavailable: %s", ticker)
			continue
		}
		fund, err := r.agg.Aggregate(ticker, items, date)
		if err != nil {
			r.logger.WithError(err).Debugf("aggregation failed: %s", ticker)
			continue
		}
		funds[ticker] = fund
		scorable[ticker] = rowByTicker[ticker]
	}

	prices, err := r.source.Prices(ctx, univ.Tickers, date.AddDate(0, 0, -momentumLookbackDays), date)
	if err != nil {
		return nil, err
	}

	return r.engine.Score(ctx, factors.Inputs{
		Date:         date,
		Rows:         scorable,
		Fundamentals: funds,
		Prices:       prices,
	})
}

// Snapshot scores a date, persists the snapshot and returns the
// smoothed ranking against the stored history.
func (r *Runner) Snapshot(ctx context.Context, date time.Time) ([]contracts.WeightedRankEntry, error) {
	records, err := r.Score(ctx, date)
	if err != nil {
		return nil, err
	}

	snapshot := ranking.BuildSnapshot(date, records)
	if err := r.store.Put(date, snapshot); err != nil {
		return nil, err
	}

	prev, prev2, err := ranking.Prior(r.store, date)
	if err != nil {
		return nil, err
	}

	weighted := r.smoother.Weigh(snapshot, prev, prev2)

	r.logger.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"tickers": len(weighted),
	}).Info("Ranking snapshot stored")
	return weighted, nil
}

// Picks returns the Slow-In selection for a date already snapshotted.
func (r *Runner) Picks(ctx context.Context, date time.Time) ([]contracts.WeightedRankEntry, error) {
	snapshot, err := r.store.Get(date)
	if err != nil {
		return nil, err
	}

	prev, prev2, err := ranking.Prior(r.store, date)
	if err != nil {
		return nil, err
	}

	weighted := r.smoother.Weigh(snapshot, prev, prev2)
	return r.smoother.Intersection(weighted, snapshot, prev, prev2), nil
}

// Rebuild rescores the whole stored history oldest to newest. 랭킹
// 정책이 바뀐 뒤 과거 스냅샷을 새 정책으로 재생성할 때 사용.
func (r *Runner) Rebuild(ctx context.Context) ([]ranking.DayResult, error) {
	migrator := ranking.NewMigrator(r.store, r.smoother, r.logger)
	return migrator.Rebuild(ctx, r.Score)
}
