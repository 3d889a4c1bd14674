package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VolumeQuant/quantcore/internal/pipeline"
	"github.com/VolumeQuant/quantcore/internal/scheduler"
	"github.com/VolumeQuant/quantcore/internal/scheduler/jobs"
)

// schedulerCmd runs the daily collection + ranking schedule.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "일일 수집·랭킹 스케줄러 실행",
	Long: `장 마감 후 데이터 수집(16:30 KST)과 일일 랭킹 스냅샷
생성(17:30 KST)을 cron 스케줄로 실행합니다.

Example:
  go run ./cmd/quant scheduler
  go run ./cmd/quant scheduler --now data_collection`,
	RunE: runScheduler,
}

var schedulerNow string

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.Flags().StringVar(&schedulerNow, "now", "", "등록 직후 즉시 실행할 작업 이름")
}

func runScheduler(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	runner := pipeline.NewRunner(a.strategy, a.source, a.snapshots, a.log)

	s := scheduler.New(a.log)
	if err := s.AddJob(jobs.NewCollectionJob(a.collector(), a.cfg, a.log)); err != nil {
		return err
	}
	if err := s.AddJob(jobs.NewRankingJob(runner, a.log)); err != nil {
		return err
	}

	if schedulerNow != "" {
		if err := s.RunJob(schedulerNow); err != nil {
			return err
		}
	}

	s.Start()
	defer s.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	return nil
}
