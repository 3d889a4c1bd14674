package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VolumeQuant/quantcore/internal/backtest"
	"github.com/VolumeQuant/quantcore/internal/contracts"
)

// Repository reads and writes the local market data cache.
// ⭐ SSOT: 시장 데이터 저장소는 여기서만
//
// Serves as the simulation data source: snapshots, statements and daily
// bars collected from external sources land here first.
type Repository struct {
	pool *pgxpool.Pool
}

var _ backtest.Source = (*Repository)(nil)

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MarketRows returns the full market snapshot on or before a date.
// 휴장일이면 직전 거래일의 스냅샷을 사용한다.
func (r *Repository) MarketRows(ctx context.Context, date time.Time) ([]contracts.MarketRow, error) {
	query := `
		SELECT ticker, name, market, sector, snapshot_date,
		       close_price, market_cap, trading_value, avg_trading_value, dividend_yield
		FROM data.market_snapshots
		WHERE snapshot_date = (
			SELECT MAX(snapshot_date) FROM data.market_snapshots WHERE snapshot_date <= $1
		)
		ORDER BY ticker
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query market snapshot: %w", err)
	}
	defer rows.Close()

	var out []contracts.MarketRow
	for rows.Next() {
		var m contracts.MarketRow
		if err := rows.Scan(&m.Ticker, &m.Name, &m.Market, &m.Sector, &m.Date,
			&m.Close, &m.MarketCap, &m.TradingValue, &m.AvgTradingVal, &m.DividendYield); err != nil {
			return nil, fmt.Errorf("scan market row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Statements returns every statement line item stored for a ticker.
func (r *Repository) Statements(ctx context.Context, ticker string) ([]contracts.StatementLineItem, error) {
	query := `
		SELECT ticker, account, period_end, disclosure, value
		FROM data.statement_items
		WHERE ticker = $1
		ORDER BY period_end DESC
	`

	rows, err := r.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query statements %s: %w", ticker, err)
	}
	defer rows.Close()

	var items []contracts.StatementLineItem
	for rows.Next() {
		var item contracts.StatementLineItem
		if err := rows.Scan(&item.Ticker, &item.Account, &item.PeriodEnd,
			&item.Disclosure, &item.Value); err != nil {
			return nil, fmt.Errorf("scan statement item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Prices returns daily bars for the tickers over [from, to).
func (r *Repository) Prices(ctx context.Context, tickers []string, from, to time.Time) (contracts.PriceHistory, error) {
	query := `
		SELECT ticker, trade_date, open_price, high_price, low_price, close_price, volume, trading_value
		FROM data.daily_prices
		WHERE ticker = ANY($1) AND trade_date >= $2 AND trade_date < $3
		ORDER BY ticker, trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, tickers, from, to)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	history := make(contracts.PriceHistory)
	for rows.Next() {
		var ticker string
		var bar contracts.PriceBar
		if err := rows.Scan(&ticker, &bar.Date, &bar.Open, &bar.High, &bar.Low,
			&bar.Close, &bar.Volume, &bar.TradingValue); err != nil {
			return nil, fmt.Errorf("scan price bar: %w", err)
		}
		history[ticker] = append(history[ticker], bar)
	}
	return history, rows.Err()
}

// SaveBars upserts daily bars in one batch.
func (r *Repository) SaveBars(ctx context.Context, ticker string, bars []contracts.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO data.daily_prices
			(ticker, trade_date, open_price, high_price, low_price, close_price, volume, trading_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume,
			trading_value = EXCLUDED.trading_value
	`

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(query, ticker, bar.Date, bar.Open, bar.High, bar.Low,
			bar.Close, bar.Volume, bar.TradingValue)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save bars %s: %w", ticker, err)
		}
	}
	return nil
}

// SaveStatements upserts statement line items for a ticker.
func (r *Repository) SaveStatements(ctx context.Context, items []contracts.StatementLineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO data.statement_items (ticker, account, period_end, disclosure, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticker, account, period_end, disclosure) DO UPDATE SET
			value = EXCLUDED.value
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.Ticker, item.Account, item.PeriodEnd, item.Disclosure, item.Value)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save statements: %w", err)
		}
	}
	return nil
}

// SaveMarketRows upserts one date's market snapshot.
func (r *Repository) SaveMarketRows(ctx context.Context, rows []contracts.MarketRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO data.market_snapshots
			(ticker, name, market, sector, snapshot_date,
			 close_price, market_cap, trading_value, avg_trading_value, dividend_yield)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (ticker, snapshot_date) DO UPDATE SET
			close_price = EXCLUDED.close_price,
			market_cap = EXCLUDED.market_cap,
			trading_value = EXCLUDED.trading_value,
			avg_trading_value = EXCLUDED.avg_trading_value,
			dividend_yield = EXCLUDED.dividend_yield
	`

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, row.Ticker, row.Name, row.Market, row.Sector, row.Date,
			row.Close, row.MarketCap, row.TradingValue, row.AvgTradingVal, row.DividendYield)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save market rows: %w", err)
		}
	}
	return nil
}

// ActiveTickers lists tickers present in the latest market snapshot.
func (r *Repository) ActiveTickers(ctx context.Context) ([]string, error) {
	query := `
		SELECT ticker FROM data.market_snapshots
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM data.market_snapshots)
		ORDER BY ticker
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}
