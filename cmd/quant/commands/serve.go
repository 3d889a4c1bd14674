package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/VolumeQuant/quantcore/internal/api"
	"github.com/VolumeQuant/quantcore/internal/api/handlers"
	"github.com/VolumeQuant/quantcore/internal/ranking"
)

// serveCmd starts the read-only reporting API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "랭킹/백테스트 조회 API 서버 실행",
	Long: `저장된 랭킹 스냅샷과 백테스트 결과를 조회하는 읽기 전용
HTTP API를 실행합니다.

Endpoints:
  GET /health
  GET /api/ranking/latest
  GET /api/ranking/latest/weighted
  GET /api/ranking/{date}
  GET /api/backtest/runs
  GET /api/backtest/runs/{id}`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	rankCfg := ranking.Config{
		TopN:        a.strategy.Ranking.TopN,
		PenaltyRank: a.strategy.Ranking.PenaltyRank,
		MaxPicks:    a.strategy.Ranking.MaxPicks,
	}
	smoother := ranking.NewSmoother(rankCfg, a.log)

	router := api.NewRouter(
		handlers.NewRankingHandler(a.snapshots, smoother, a.log),
		handlers.NewBacktestHandler(a.runs, a.log),
		a.log,
	)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
