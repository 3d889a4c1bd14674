package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VolumeQuant/quantcore/internal/backtest"
	"github.com/VolumeQuant/quantcore/internal/external/naver"
	"github.com/VolumeQuant/quantcore/internal/marketdata"
	"github.com/VolumeQuant/quantcore/internal/ranking"
	"github.com/VolumeQuant/quantcore/internal/strategy"
	"github.com/VolumeQuant/quantcore/pkg/config"
	"github.com/VolumeQuant/quantcore/pkg/httputil"
	"github.com/VolumeQuant/quantcore/pkg/logger"
	"github.com/VolumeQuant/quantcore/pkg/redis"
)

// app wires shared dependencies for CLI commands.
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	pool      *pgxpool.Pool
	repo      *marketdata.Repository
	source    backtest.Source
	redis     *redis.Client
	snapshots *ranking.FileStore
	runs      *backtest.RunStore
	strategy  *strategy.Config
}

// newApp loads config and connects shared infrastructure. DB가 필요
// 없는 명령은 withDB=false로 호출한다.
func newApp(ctx context.Context, withDB bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	a.strategy, err = loadStrategy(cfg)
	if err != nil {
		return nil, err
	}

	a.snapshots, err = ranking.NewFileStore(cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}
	a.runs, err = backtest.NewRunStore(cfg.BacktestDir)
	if err != nil {
		return nil, err
	}

	if !withDB {
		return a, nil
	}

	a.pool, err = marketdata.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.repo = marketdata.NewRepository(a.pool)
	a.source = a.repo

	a.redis, err = redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, fetch cache disabled")
		a.redis, _ = redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	}
	if a.redis.Enabled() {
		a.source = marketdata.NewCachedSource(a.repo, a.redis, 6*time.Hour, log)
	}

	return a, nil
}

// Close releases connections.
func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

// naverClient builds the rate-limited Naver Finance client.
func (a *app) naverClient() *naver.Client {
	httpClient := httputil.New(a.log).
		WithTimeout(15 * time.Second).
		WithRetry(3, time.Second).
		WithRateLimit(a.cfg.Naver.RateRPS)
	return naver.NewClient(a.cfg.Naver, httpClient, a.log)
}

// collector builds the data collector over the repository.
func (a *app) collector() *marketdata.Collector {
	return marketdata.NewCollector(a.naverClient(), a.repo, a.log)
}

// loadStrategy reads the strategy YAML, falling back to defaults when
// no path is configured.
func loadStrategy(cfg *config.Config) (*strategy.Config, error) {
	path := strategyFile
	if path == "" {
		path = cfg.StrategyCfg
	}
	if path == "" {
		return strategy.Default(), nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("strategy config %s: %w", path, err)
	}

	loaded, _, err := strategy.Load(path)
	if err != nil {
		return nil, err
	}
	return loaded, nil
}
