package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "quantcore - 멀티팩터 퀄리티 랭킹 & 백테스트 시스템",
	Long: `quantcore Unified CLI

시점 기준(point-in-time) 재무 집계, 섹터 중립 팩터 스코어링,
시간 평활 랭킹, 백테스트 시뮬레이션을 하나의 CLI로 제공합니다.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant rank snapshot
  go run ./cmd/quant backtest run
  go run ./cmd/quant collect all
  go run ./cmd/quant serve`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "전략 YAML 경로 (기본: STRATEGY_CONFIG 환경변수)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
