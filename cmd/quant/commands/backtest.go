package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VolumeQuant/quantcore/internal/backtest"
	"github.com/VolumeQuant/quantcore/internal/report"
	"github.com/VolumeQuant/quantcore/internal/strategy"
)

// backtestCmd groups simulation operations.
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "백테스트 시뮬레이션",
	Long: `저장된 시장 데이터로 전체 랭킹 파이프라인을 과거 구간에
걸쳐 실행하고 거래비용·상장폐지·배당을 반영한 성과를 계산합니다.

Example:
  go run ./cmd/quant backtest run
  go run ./cmd/quant backtest run --from 2023-01-01 --to 2024-12-31
  go run ./cmd/quant backtest show quality-composite-v1_2023-01-01_2024-12-31
  go run ./cmd/quant backtest export <run-id> --out run.xlsx`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "백테스트 실행 후 결과 저장",
		RunE:  runBacktest,
	}

	backtestShowCmd = &cobra.Command{
		Use:   "show [run-id]",
		Short: "저장된 결과 조회 (run-id 생략 시 목록 출력)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showBacktest,
	}

	backtestExportCmd = &cobra.Command{
		Use:   "export <run-id>",
		Short: "결과를 Excel로 내보내기",
		Args:  cobra.ExactArgs(1),
		RunE:  exportBacktest,
	}

	backtestFrom string
	backtestTo   string
	backtestOut  string
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)
	backtestCmd.AddCommand(backtestShowCmd)
	backtestCmd.AddCommand(backtestExportCmd)

	backtestRunCmd.Flags().StringVar(&backtestFrom, "from", "", "시작 날짜 (YYYY-MM-DD, 기본: 전략 설정값)")
	backtestRunCmd.Flags().StringVar(&backtestTo, "to", "", "종료 날짜 (YYYY-MM-DD, 기본: 전략 설정값)")
	backtestExportCmd.Flags().StringVar(&backtestOut, "out", "", "출력 경로 (기본: <run-id>.xlsx)")
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	// 플래그가 전략 설정을 덮어씀
	if backtestFrom != "" {
		a.strategy.Backtest.StartDate = backtestFrom
	}
	if backtestTo != "" {
		a.strategy.Backtest.EndDate = backtestTo
	}
	if err := strategy.Validate(a.strategy); err != nil {
		return err
	}

	sim := backtest.NewSimulator(a.strategy, a.source, a.log)
	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	runID, err := a.runs.Save(result)
	if err != nil {
		return err
	}

	report.WriteRunSummary(os.Stdout, result)
	fmt.Printf("saved: %s\n", runID)
	return nil
}

func showBacktest(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		ids, err := a.runs.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("no stored runs")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	result, err := a.runs.Load(args[0])
	if err != nil {
		return err
	}
	report.WriteRunSummary(os.Stdout, result)
	return nil
}

func exportBacktest(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.runs.Load(args[0])
	if err != nil {
		return err
	}

	out := backtestOut
	if out == "" {
		out = args[0] + ".xlsx"
	}
	if err := report.WriteRunXLSX(result, out); err != nil {
		return err
	}

	fmt.Printf("exported: %s\n", out)
	return nil
}
