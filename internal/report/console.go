package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/VolumeQuant/quantcore/internal/backtest"
	"github.com/VolumeQuant/quantcore/internal/contracts"
)

// WriteMetrics renders performance metrics as a console table.
func WriteMetrics(w io.Writer, title string, m contracts.PerformanceMetrics) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"CAGR", pct(m.CAGR)},
		{"Total Return", pct(m.TotalReturn)},
		{"Volatility (ann.)", pct(m.Volatility)},
		{"Sharpe", fmt.Sprintf("%.2f", m.Sharpe)},
		{"Sortino", fmt.Sprintf("%.2f", m.Sortino)},
		{"Max Drawdown", pct(m.MaxDrawdown)},
		{"Calmar", fmt.Sprintf("%.2f", m.Calmar)},
		{"VaR 95 / 99", fmt.Sprintf("%s / %s", pct(m.VaR95), pct(m.VaR99))},
		{"CVaR 95 / 99", fmt.Sprintf("%s / %s", pct(m.CVaR95), pct(m.CVaR99))},
		{"Win Rate", pct(m.WinRate)},
		{"Information Ratio", fmt.Sprintf("%.2f", m.InformationRatio)},
		{"Trading Days", m.TradingDays},
	})
	t.SetStyle(table.StyleLight)
	t.Render()
}

// WriteRunSummary renders a full simulation result: headline metrics,
// named sub-windows and the rebalance history.
func WriteRunSummary(w io.Writer, result *backtest.Result) {
	title := fmt.Sprintf("%s  %s ~ %s",
		result.StrategyID,
		result.Start.Format("2006-01-02"),
		result.End.Format("2006-01-02"))
	WriteMetrics(w, title, result.Metrics)

	for name, m := range result.Windows {
		WriteMetrics(w, "window: "+name, m)
	}

	if result.SkippedCycles > 0 {
		fmt.Fprintf(w, "skipped cycles: %d\n", result.SkippedCycles)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Rebalances")
	t.AppendHeader(table.Row{"Date", "Holdings", "Delisted"})
	for _, rb := range result.Rebalances {
		delisted := "-"
		if len(rb.Delisted) > 0 {
			delisted = fmt.Sprintf("%v", rb.Delisted)
		}
		t.AppendRow(table.Row{
			rb.Portfolio.RebalanceDate.Format("2006-01-02"),
			len(rb.Portfolio.Tickers),
			delisted,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// WriteWeightedRanking renders smoothed ranks with membership status.
func WriteWeightedRanking(w io.Writer, entries []contracts.WeightedRankEntry, limit int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Ticker", "r(t)", "r(t-1)", "r(t-2)", "Weighted", "Composite", "Status"})

	for i, e := range entries {
		if limit > 0 && i >= limit {
			break
		}
		t.AppendRow(table.Row{
			e.FinalRank, e.Ticker, e.RankT0, e.RankT1, e.RankT2,
			fmt.Sprintf("%.1f", e.WeightedRank),
			fmt.Sprintf("%.4f", e.Composite),
			statusLabel(e.Status),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func statusLabel(s contracts.MembershipStatus) string {
	switch s {
	case contracts.StatusConfirmed:
		return "확정"
	case contracts.StatusWatching:
		return "관찰"
	default:
		return "신규"
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
