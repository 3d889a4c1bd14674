package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/internal/factors"
	"github.com/VolumeQuant/quantcore/internal/fundamentals"
	"github.com/VolumeQuant/quantcore/internal/ranking"
	"github.com/VolumeQuant/quantcore/internal/strategy"
	"github.com/VolumeQuant/quantcore/internal/universe"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// momentumLookbackDays: 12개월 수익률 계산에 필요한 과거 구간 + 여유분.
const momentumLookbackDays = 400

// Source supplies point-in-time inputs for a simulation date. 구현체는
// marketdata 저장소 또는 테스트용 인메모리 페이크.
type Source interface {
	// MarketRows returns the market snapshot (시총, 섹터, 거래대금,
	// 배당수익률) for every listed ticker on a date.
	MarketRows(ctx context.Context, date time.Time) ([]contracts.MarketRow, error)

	// Statements returns every statement line item ever disclosed for a
	// ticker. Point-in-time filtering happens downstream.
	Statements(ctx context.Context, ticker string) ([]contracts.StatementLineItem, error)

	// Prices returns daily bars for the tickers over [from, to).
	Prices(ctx context.Context, tickers []string, from, to time.Time) (contracts.PriceHistory, error)
}

// Rebalance records one cycle's outcome.
type Rebalance struct {
	Portfolio contracts.Portfolio           `json:"portfolio"`
	Weighted  []contracts.WeightedRankEntry `json:"weighted"`
	Delisted  []string                      `json:"delisted,omitempty"`
}

// Result is a completed simulation run.
type Result struct {
	StrategyID    string                                 `json:"strategy_id"`
	ConfigHash    string                                 `json:"config_hash"`
	Start         time.Time                              `json:"start"`
	End           time.Time                              `json:"end"`
	Series        contracts.ReturnSeries                 `json:"series"`
	Rebalances    []Rebalance                            `json:"rebalances"`
	SkippedCycles int                                    `json:"skipped_cycles"`
	Metrics       contracts.PerformanceMetrics           `json:"metrics"`
	Windows       map[string]contracts.PerformanceMetrics `json:"windows,omitempty"`
	Benchmark     contracts.ReturnSeries                 `json:"benchmark,omitempty"`
}

// Simulator drives the full ranking pipeline forward through time and
// measures realized portfolio returns.
//
// ⭐ SSOT: 리밸런싱 루프와 사이클 스킵 정책은 여기서만 결정한다.
type Simulator struct {
	cfg      *strategy.Config
	source   Source
	agg      *fundamentals.Aggregator
	engine   *factors.Engine
	builder  *universe.Builder
	smoother *ranking.Smoother
	costs    CostModel
	log      *logger.Logger
}

func NewSimulator(cfg *strategy.Config, source Source, log *logger.Logger) *Simulator {
	rankCfg := ranking.Config{
		TopN:        cfg.Ranking.TopN,
		PenaltyRank: cfg.Ranking.PenaltyRank,
		MaxPicks:    cfg.Ranking.MaxPicks,
	}
	return &Simulator{
		cfg:      cfg,
		source:   source,
		agg:      fundamentals.NewAggregator(log),
		engine:   factors.NewEngine(log),
		builder:  universe.NewBuilder(cfg.Universe, log),
		smoother: ranking.NewSmoother(rankCfg, log),
		costs:    NewCostModel(cfg.Costs),
		log:      log.WithField("component", "backtest"),
	}
}

// Run executes every rebalance cycle between the configured start and
// end dates. A cycle that fails (빈 유니버스, 데이터 누락) is skipped
// with a warning; the rank history window carries over unchanged so the
// next successful cycle still smooths against real history.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	start, err := strategy.ParseDate(s.cfg.Backtest.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	end, err := strategy.ParseDate(s.cfg.Backtest.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}

	hash, err := strategy.Hash(s.cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		StrategyID: s.cfg.Meta.StrategyID,
		ConfigHash: hash,
		Start:      start,
		End:        end,
	}

	var prev, prev2 *contracts.RankingSnapshot
	for date := start; date.Before(end); date = date.AddDate(0, 0, s.cfg.Backtest.RebalanceDays) {
		next := date.AddDate(0, 0, s.cfg.Backtest.RebalanceDays)
		if next.After(end) {
			next = end
		}

		snapshot, rebalance, cycleSeries, err := s.cycle(ctx, date, next, prev, prev2)
		if err != nil {
			result.SkippedCycles++
			s.log.WithError(err).Warnf("cycle skipped: %s", date.Format("2006-01-02"))
			continue
		}

		prev2, prev = prev, snapshot
		result.Series = mergeSeries(result.Series, cycleSeries)
		result.Rebalances = append(result.Rebalances, *rebalance)
	}

	if len(result.Series) == 0 {
		return nil, fmt.Errorf("simulation produced no returns: %w", contracts.ErrInsufficientData)
	}

	result.Metrics = ComputeMetrics(result.Series, s.cfg.Backtest.RiskFreeRate)
	s.attachBenchmark(ctx, result, start, end)
	s.attachWindows(result)

	s.log.WithFields(map[string]interface{}{
		"strategy": result.StrategyID,
		"cycles":   len(result.Rebalances),
		"skipped":  result.SkippedCycles,
		"cagr":     result.Metrics.CAGR,
		"sharpe":   result.Metrics.Sharpe,
	}).Info("simulation complete")

	return result, nil
}

// cycle runs one rebalance: universe → fundamentals → scores → smoothed
// ranks → selection → holding-period returns.
func (s *Simulator) cycle(ctx context.Context, date, next time.Time, prev, prev2 *contracts.RankingSnapshot) (*contracts.RankingSnapshot, *Rebalance, contracts.ReturnSeries, error) {
	rows, err := s.source.MarketRows(ctx, date)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("market rows: %w", err)
	}

	univ, err := s.builder.Build(date, rows)
	if err != nil {
		return nil, nil, nil, err
	}

	rowByTicker := make(map[string]contracts.MarketRow, len(rows))
	for _, row := range rows {
		rowByTicker[row.Ticker] = row
	}

	// 재무제표 집계: 실패 종목은 해당 사이클에서만 제외.
	funds := make(map[string]*contracts.PointInTimeFundamentals, len(univ.Tickers))
	scorable := make(map[string]contracts.MarketRow, len(univ.Tickers))
	for _, ticker := range univ.Tickers {
		items, err := s.source.Statements(ctx, ticker)
		if err != nil {
			s.log.WithError(err).Debugf("statements unavailable: %s", ticker)
			continue
		}
		fund, err := s.agg.Aggregate(ticker, items, date)
		if err != nil {
			s.log.WithError(err).Debugf("aggregation failed: %s", ticker)
			continue
		}
		funds[ticker] = fund
		scorable[ticker] = rowByTicker[ticker]
	}

	prices, err := s.source.Prices(ctx, univ.Tickers, date.AddDate(0, 0, -momentumLookbackDays), date)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("momentum prices: %w", err)
	}

	records, err := s.engine.Score(ctx, factors.Inputs{
		Date:         date,
		Rows:         scorable,
		Fundamentals: funds,
		Prices:       prices,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	snapshot := ranking.BuildSnapshot(date, records)
	weighted := s.smoother.Weigh(snapshot, prev, prev2)

	size := s.cfg.Backtest.PortfolioSize
	if size > len(weighted) {
		size = len(weighted)
	}
	if size == 0 {
		return nil, nil, nil, contracts.ErrUniverseEmpty
	}

	tickers := make([]string, size)
	for i := 0; i < size; i++ {
		tickers[i] = weighted[i].Ticker
	}
	weights := portfolioWeights(size, s.cfg.Backtest.Weighting)

	portfolio := contracts.Portfolio{
		RebalanceDate:     date,
		NextRebalanceDate: next,
		Tickers:           tickers,
		Weights:           weights,
	}

	cycleSeries, delisted, err := s.holdingReturns(ctx, &portfolio)
	if err != nil {
		return nil, nil, nil, err
	}

	rebalance := &Rebalance{Portfolio: portfolio, Weighted: weighted, Delisted: delisted}
	return snapshot, rebalance, cycleSeries, nil
}

// holdingReturns simulates the selected portfolio over its holding
// window, applying costs, dividends and delisting handling per ticker.
func (s *Simulator) holdingReturns(ctx context.Context, p *contracts.Portfolio) (contracts.ReturnSeries, []string, error) {
	prices, err := s.source.Prices(ctx, p.Tickers, p.RebalanceDate, p.NextRebalanceDate)
	if err != nil {
		return nil, nil, fmt.Errorf("holding prices: %w", err)
	}

	rows, err := s.source.MarketRows(ctx, p.RebalanceDate)
	if err != nil {
		return nil, nil, fmt.Errorf("market rows: %w", err)
	}
	rowByTicker := make(map[string]contracts.MarketRow, len(rows))
	for _, row := range rows {
		rowByTicker[row.Ticker] = row
	}

	var delisted []string
	holdings := make([]contracts.ReturnSeries, len(p.Tickers))
	for i, ticker := range p.Tickers {
		row := rowByTicker[ticker]
		buy := s.costs.BuyCost(row.AvgTradingVal)
		sell := s.costs.SellCost(row.AvgTradingVal)

		bars := prices.Window(ticker, p.RebalanceDate, p.NextRebalanceDate)
		series, gone := simulateHolding(bars, p.RebalanceDate, buy, sell, row.DividendYield)
		if gone {
			delisted = append(delisted, ticker)
			s.log.Warnf("delisted during holding window: %s", ticker)
		}
		holdings[i] = series
	}

	return combineHoldings(holdings, p.Weights), delisted, nil
}

// attachBenchmark fetches benchmark bars over the run and computes the
// Information Ratio. 벤치마크 미설정/조회 실패 시 IR은 0으로 남는다.
func (s *Simulator) attachBenchmark(ctx context.Context, result *Result, start, end time.Time) {
	code := s.cfg.Backtest.Benchmark
	if code == "" {
		return
	}

	prices, err := s.source.Prices(ctx, []string{code}, start, end)
	if err != nil {
		s.log.WithError(err).Warnf("benchmark unavailable: %s", code)
		return
	}
	bars := prices.Bars(code)
	if len(bars) < 2 {
		return
	}

	bench := make(contracts.ReturnSeries, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		if bars[i-1].Close <= 0 {
			continue
		}
		bench = append(bench, contracts.ReturnPoint{
			Date:   bars[i].Date,
			Return: bars[i].Close/bars[i-1].Close - 1,
		})
	}

	result.Benchmark = bench
	result.Metrics.InformationRatio = InformationRatio(result.Series, bench)
}

// attachWindows computes metrics for each configured named sub-window.
func (s *Simulator) attachWindows(result *Result) {
	if len(s.cfg.Backtest.Windows) == 0 {
		return
	}

	result.Windows = make(map[string]contracts.PerformanceMetrics, len(s.cfg.Backtest.Windows))
	for _, w := range s.cfg.Backtest.Windows {
		from, err := strategy.ParseDate(w.Start)
		if err != nil {
			s.log.WithError(err).Warnf("window start invalid: %s", w.Name)
			continue
		}
		to, err := strategy.ParseDate(w.End)
		if err != nil {
			s.log.WithError(err).Warnf("window end invalid: %s", w.Name)
			continue
		}

		sub := result.Series.Window(from, to)
		m := ComputeMetrics(sub, s.cfg.Backtest.RiskFreeRate)
		if len(result.Benchmark) > 0 {
			m.InformationRatio = InformationRatio(sub, result.Benchmark.Window(from, to))
		}
		result.Windows[w.Name] = m
	}
}
