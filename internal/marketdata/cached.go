package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VolumeQuant/quantcore/internal/backtest"
	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/pkg/logger"
	"github.com/VolumeQuant/quantcore/pkg/redis"
)

// CachedSource layers a Redis fetch cache over a data source. 반복
// 백테스트에서 동일 구간 재조회를 줄인다. Redis 미설정 시 투명하게
// 원본 소스로 위임.
type CachedSource struct {
	source backtest.Source
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

var _ backtest.Source = (*CachedSource)(nil)

func NewCachedSource(source backtest.Source, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  redis.NewCache(client, "marketdata"),
		ttl:    ttl,
		logger: log.WithField("module", "cached_source"),
	}
}

func (s *CachedSource) MarketRows(ctx context.Context, date time.Time) ([]contracts.MarketRow, error) {
	key := "rows:" + date.Format("2006-01-02")

	var rows []contracts.MarketRow
	if hit, err := s.cache.Get(ctx, key, &rows); err != nil {
		s.logger.WithError(err).Debug("cache read failed")
	} else if hit {
		return rows, nil
	}

	rows, err := s.source.MarketRows(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, rows, s.ttl); err != nil {
		s.logger.WithError(err).Debug("cache write failed")
	}
	return rows, nil
}

func (s *CachedSource) Statements(ctx context.Context, ticker string) ([]contracts.StatementLineItem, error) {
	key := "stmt:" + ticker

	var items []contracts.StatementLineItem
	if hit, err := s.cache.Get(ctx, key, &items); err != nil {
		s.logger.WithError(err).Debug("cache read failed")
	} else if hit {
		return items, nil
	}

	items, err := s.source.Statements(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, items, s.ttl); err != nil {
		s.logger.WithError(err).Debug("cache write failed")
	}
	return items, nil
}

func (s *CachedSource) Prices(ctx context.Context, tickers []string, from, to time.Time) (contracts.PriceHistory, error) {
	key := fmt.Sprintf("px:%s:%s:%s",
		from.Format("2006-01-02"), to.Format("2006-01-02"), strings.Join(tickers, ","))

	var history contracts.PriceHistory
	if hit, err := s.cache.Get(ctx, key, &history); err != nil {
		s.logger.WithError(err).Debug("cache read failed")
	} else if hit {
		return history, nil
	}

	history, err := s.source.Prices(ctx, tickers, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, history, s.ttl); err != nil {
		s.logger.WithError(err).Debug("cache write failed")
	}
	return history, nil
}
