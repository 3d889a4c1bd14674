package main

import (
	"os"

	"github.com/VolumeQuant/quantcore/cmd/quant/commands"
)

// main is the entry point for the quantcore CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/quant [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
