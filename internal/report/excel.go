package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/VolumeQuant/quantcore/internal/backtest"
)

// WriteRunXLSX exports a simulation result to an Excel workbook with
// Metrics, Returns and Rebalances sheets.
func WriteRunXLSX(result *backtest.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const metricsSheet = "Metrics"
	const returnsSheet = "Returns"
	const rebalanceSheet = "Rebalances"

	fx.SetSheetName(fx.GetSheetName(0), metricsSheet)
	fx.NewSheet(returnsSheet)
	fx.NewSheet(rebalanceSheet)

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E79"}},
	})
	if err != nil {
		return err
	}

	if err := writeMetricsSheet(fx, metricsSheet, result, headerStyle); err != nil {
		return err
	}
	if err := writeReturnsSheet(fx, returnsSheet, result, headerStyle); err != nil {
		return err
	}
	if err := writeRebalanceSheet(fx, rebalanceSheet, result, headerStyle); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func writeMetricsSheet(fx *excelize.File, sheet string, result *backtest.Result, headerStyle int) error {
	rows := [][]interface{}{
		{"Strategy", result.StrategyID},
		{"Config Hash", result.ConfigHash},
		{"Period", fmt.Sprintf("%s ~ %s", result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))},
		{"Skipped Cycles", result.SkippedCycles},
		{},
		{"CAGR", result.Metrics.CAGR},
		{"Total Return", result.Metrics.TotalReturn},
		{"Volatility", result.Metrics.Volatility},
		{"Sharpe", result.Metrics.Sharpe},
		{"Sortino", result.Metrics.Sortino},
		{"Max Drawdown", result.Metrics.MaxDrawdown},
		{"Calmar", result.Metrics.Calmar},
		{"VaR 95", result.Metrics.VaR95},
		{"VaR 99", result.Metrics.VaR99},
		{"CVaR 95", result.Metrics.CVaR95},
		{"CVaR 99", result.Metrics.CVaR99},
		{"Win Rate", result.Metrics.WinRate},
		{"Information Ratio", result.Metrics.InformationRatio},
		{"Trading Days", result.Metrics.TradingDays},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	// 서브 윈도우 지표는 별도 열 블록으로
	col := 4
	for name, m := range result.Windows {
		cell, err := excelize.CoordinatesToCellName(col, 1)
		if err != nil {
			return err
		}
		block := []interface{}{name, m.CAGR, m.Sharpe, m.MaxDrawdown, m.TradingDays}
		if err := fx.SetSheetRow(sheet, cell, &block); err != nil {
			return err
		}
		col += 6
	}

	return fx.SetCellStyle(sheet, "A1", "A1", headerStyle)
}

func writeReturnsSheet(fx *excelize.File, sheet string, result *backtest.Result, headerStyle int) error {
	header := []interface{}{"Date", "Return", "Cumulative"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return err
	}

	cumulative := result.Series.Cumulative()
	for i, p := range result.Series {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{p.Date.Format("2006-01-02"), p.Return, cumulative[i]}
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeRebalanceSheet(fx *excelize.File, sheet string, result *backtest.Result, headerStyle int) error {
	header := []interface{}{"Date", "Ticker", "Weight", "Final Rank", "Status"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "E1", headerStyle); err != nil {
		return err
	}

	rowIdx := 2
	for _, rb := range result.Rebalances {
		statusOf := make(map[string]string, len(rb.Weighted))
		rankOf := make(map[string]int, len(rb.Weighted))
		for _, e := range rb.Weighted {
			statusOf[e.Ticker] = string(e.Status)
			rankOf[e.Ticker] = e.FinalRank
		}

		for i, ticker := range rb.Portfolio.Tickers {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx)
			if err != nil {
				return err
			}
			row := []interface{}{
				rb.Portfolio.RebalanceDate.Format("2006-01-02"),
				ticker,
				rb.Portfolio.Weights[i],
				rankOf[ticker],
				statusOf[ticker],
			}
			if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
				return err
			}
			rowIdx++
		}
	}
	return nil
}
