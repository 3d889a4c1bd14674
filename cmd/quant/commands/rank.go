package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/VolumeQuant/quantcore/internal/pipeline"
	"github.com/VolumeQuant/quantcore/internal/report"
)

// rankCmd groups ranking operations.
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "일일 랭킹 스냅샷 생성 및 조회",
	Long: `팩터 스코어를 계산해 일별 랭킹 스냅샷을 쌓고, 시간 평활된
순위와 Slow-In 선정 목록을 출력합니다.

Example:
  go run ./cmd/quant rank snapshot
  go run ./cmd/quant rank snapshot --date 2025-08-29
  go run ./cmd/quant rank picks --date 2025-08-29
  go run ./cmd/quant rank rebuild`,
}

var (
	rankSnapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "해당 일자의 랭킹 스냅샷 생성",
		RunE:  runRankSnapshot,
	}

	rankPicksCmd = &cobra.Command{
		Use:   "picks",
		Short: "교집합 기반 Slow-In 선정 목록 조회",
		RunE:  runRankPicks,
	}

	rankRebuildCmd = &cobra.Command{
		Use:   "rebuild",
		Short: "저장된 전체 이력을 현재 정책으로 재랭킹",
		Long: `랭킹 정책(팩터 가중치, top-N 등)이 바뀐 뒤 실행합니다.
모든 스냅샷을 과거→최신 순으로 다시 채점하고, 이후 일자의
가중 순위를 전방 전이 방식으로 재구성합니다.`,
		RunE: runRankRebuild,
	}

	rankDate string
)

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.AddCommand(rankSnapshotCmd)
	rankCmd.AddCommand(rankPicksCmd)
	rankCmd.AddCommand(rankRebuildCmd)

	rankSnapshotCmd.Flags().StringVar(&rankDate, "date", "", "기준 일자 (YYYY-MM-DD, 기본: 오늘)")
	rankPicksCmd.Flags().StringVar(&rankDate, "date", "", "기준 일자 (YYYY-MM-DD, 기본: 최신 스냅샷)")
}

func parseRankDate() (time.Time, error) {
	if rankDate == "" {
		return time.Now().Truncate(24 * time.Hour), nil
	}
	return time.Parse("2006-01-02", rankDate)
}

func runRankSnapshot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := parseRankDate()
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}

	runner := pipeline.NewRunner(a.strategy, a.source, a.snapshots, a.log)
	weighted, err := runner.Snapshot(ctx, date)
	if err != nil {
		return err
	}

	report.WriteWeightedRanking(os.Stdout, weighted, a.strategy.Ranking.TopN)
	return nil
}

func runRankPicks(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := parseRankDate()
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	if rankDate == "" {
		dates, err := a.snapshots.Dates()
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			return fmt.Errorf("no stored snapshots")
		}
		date = dates[len(dates)-1]
	}

	runner := pipeline.NewRunner(a.strategy, a.source, a.snapshots, a.log)
	picks, err := runner.Picks(ctx, date)
	if err != nil {
		return err
	}

	fmt.Printf("=== Slow-In picks %s ===\n", date.Format("2006-01-02"))
	report.WriteWeightedRanking(os.Stdout, picks, 0)
	return nil
}

func runRankRebuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	runner := pipeline.NewRunner(a.strategy, a.source, a.snapshots, a.log)
	results, err := runner.Rebuild(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("rebuilt %d snapshot(s)\n", len(results))
	if len(results) > 0 {
		last := results[len(results)-1]
		fmt.Printf("=== latest (%s) ===\n", last.Date.Format("2006-01-02"))
		report.WriteWeightedRanking(os.Stdout, last.Entries, a.strategy.Ranking.TopN)
	}
	return nil
}
