package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/VolumeQuant/quantcore/internal/external/naver"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// Collector orchestrates data collection from external sources into the
// local cache. ⭐ SSOT: 데이터 수집 오케스트레이션은 이 타입에서만
type Collector struct {
	client *naver.Client
	repo   *Repository
	logger *logger.Logger
}

// CollectorConfig holds collection parameters.
type CollectorConfig struct {
	Workers int // bounded worker pool size
}

func NewCollector(client *naver.Client, repo *Repository, log *logger.Logger) *Collector {
	return &Collector{
		client: client,
		repo:   repo,
		logger: log.WithField("module", "collector"),
	}
}

// FetchResult reports one ticker's collection outcome.
type FetchResult struct {
	Ticker         string
	BarCount       int
	StatementCount int
	Err            error
}

// CollectSnapshot fetches today's market listing and stores it.
func (c *Collector) CollectSnapshot(ctx context.Context, date time.Time) (int, error) {
	rows, err := c.client.FetchMarketRows(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("fetch market listing: %w", err)
	}
	if err := c.repo.SaveMarketRows(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// CollectPrices fetches daily bars for every active ticker with a
// bounded worker pool. 실패 종목은 결과에 기록하고 계속 진행.
func (c *Collector) CollectPrices(ctx context.Context, from, to time.Time, cfg CollectorConfig) ([]FetchResult, error) {
	tickers, err := c.repo.ActiveTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("active tickers: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"workers": cfg.Workers,
	}).Info("Starting price collection")

	return c.forEachTicker(ctx, tickers, cfg.Workers, func(ctx context.Context, ticker string) FetchResult {
		bars, err := c.client.FetchPrices(ctx, ticker, from, to)
		if err != nil {
			return FetchResult{Ticker: ticker, Err: err}
		}
		if err := c.repo.SaveBars(ctx, ticker, bars); err != nil {
			return FetchResult{Ticker: ticker, Err: err}
		}
		return FetchResult{Ticker: ticker, BarCount: len(bars)}
	})
}

// CollectStatements fetches financial statements for every active ticker.
func (c *Collector) CollectStatements(ctx context.Context, cfg CollectorConfig) ([]FetchResult, error) {
	tickers, err := c.repo.ActiveTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("active tickers: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": cfg.Workers,
	}).Info("Starting statement collection")

	return c.forEachTicker(ctx, tickers, cfg.Workers, func(ctx context.Context, ticker string) FetchResult {
		items, err := c.client.FetchStatements(ctx, ticker)
		if err != nil {
			return FetchResult{Ticker: ticker, Err: err}
		}
		if err := c.repo.SaveStatements(ctx, items); err != nil {
			return FetchResult{Ticker: ticker, Err: err}
		}
		return FetchResult{Ticker: ticker, StatementCount: len(items)}
	})
}

// forEachTicker fans tickers out to a bounded worker pool and collects
// per-ticker results. 컨텍스트 취소 시 남은 작업은 버린다.
func (c *Collector) forEachTicker(ctx context.Context, tickers []string, workers int, fn func(context.Context, string) FetchResult) ([]FetchResult, error) {
	if workers < 1 {
		workers = 1
	}

	tickerCh := make(chan string, len(tickers))
	resultCh := make(chan FetchResult, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range tickerCh {
				select {
				case <-ctx.Done():
					resultCh <- FetchResult{Ticker: ticker, Err: ctx.Err()}
					continue
				default:
				}
				resultCh <- fn(ctx, ticker)
			}
		}()
	}

	for _, ticker := range tickers {
		tickerCh <- ticker
	}
	close(tickerCh)
	wg.Wait()
	close(resultCh)

	results := make([]FetchResult, 0, len(tickers))
	failed := 0
	for result := range resultCh {
		if result.Err != nil {
			failed++
			c.logger.WithError(result.Err).Warnf("collection failed: %s", result.Ticker)
		}
		results = append(results, result)
	}

	c.logger.WithFields(map[string]interface{}{
		"total":  len(results),
		"failed": failed,
	}).Info("Collection finished")

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
