package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/VolumeQuant/quantcore/internal/marketdata"
)

// collectCmd groups manual data collection operations.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "외부 소스에서 시장 데이터 수집",
	Long: `Naver Finance에서 시장 스냅샷, 일별 시세, 재무제표를 수집해
로컬 캐시 DB에 적재합니다.

Example:
  go run ./cmd/quant collect all
  go run ./cmd/quant collect snapshot
  go run ./cmd/quant collect prices --from 2024-01-01
  go run ./cmd/quant collect statements`,
}

var (
	collectAllCmd = &cobra.Command{
		Use:   "all",
		Short: "스냅샷 → 시세 → 재무제표 순서로 전체 수집",
		RunE:  runCollectAll,
	}

	collectSnapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "오늘자 시장 스냅샷 수집",
		RunE:  runCollectSnapshot,
	}

	collectPricesCmd = &cobra.Command{
		Use:   "prices",
		Short: "활성 종목 일별 시세 수집",
		RunE:  runCollectPrices,
	}

	collectStatementsCmd = &cobra.Command{
		Use:   "statements",
		Short: "활성 종목 재무제표 수집",
		RunE:  runCollectStatements,
	}

	collectFrom string
	collectTo   string
)

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.AddCommand(collectAllCmd)
	collectCmd.AddCommand(collectSnapshotCmd)
	collectCmd.AddCommand(collectPricesCmd)
	collectCmd.AddCommand(collectStatementsCmd)

	collectPricesCmd.Flags().StringVar(&collectFrom, "from", "", "시작 날짜 (YYYY-MM-DD, 기본: 5일 전)")
	collectPricesCmd.Flags().StringVar(&collectTo, "to", "", "종료 날짜 (YYYY-MM-DD, 기본: 오늘)")
	collectAllCmd.Flags().StringVar(&collectFrom, "from", "", "시세 시작 날짜 (YYYY-MM-DD, 기본: 5일 전)")
}

func collectRange() (time.Time, time.Time, error) {
	to := time.Now()
	if collectTo != "" {
		parsed, err := time.Parse("2006-01-02", collectTo)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		to = parsed
	}

	from := to.AddDate(0, 0, -5)
	if collectFrom != "" {
		parsed, err := time.Parse("2006-01-02", collectFrom)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		from = parsed
	}
	return from, to, nil
}

func runCollectAll(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	from, to, err := collectRange()
	if err != nil {
		return err
	}

	col := a.collector()
	cfg := marketdata.CollectorConfig{Workers: a.cfg.CollectorWorkers}

	count, err := col.CollectSnapshot(ctx, to)
	if err != nil {
		return err
	}
	fmt.Printf("snapshot: %d tickers\n", count)

	priceResults, err := col.CollectPrices(ctx, from, to, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("prices: %d tickers\n", len(priceResults))

	stmtResults, err := col.CollectStatements(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("statements: %d tickers\n", len(stmtResults))
	return nil
}

func runCollectSnapshot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.collector().CollectSnapshot(ctx, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("snapshot: %d tickers\n", count)
	return nil
}

func runCollectPrices(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	from, to, err := collectRange()
	if err != nil {
		return err
	}

	results, err := a.collector().CollectPrices(ctx, from, to,
		marketdata.CollectorConfig{Workers: a.cfg.CollectorWorkers})
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	fmt.Printf("prices: %d tickers, %d failed\n", len(results), failed)
	return nil
}

func runCollectStatements(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.collector().CollectStatements(ctx,
		marketdata.CollectorConfig{Workers: a.cfg.CollectorWorkers})
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	fmt.Printf("statements: %d tickers, %d failed\n", len(results), failed)
	return nil
}
