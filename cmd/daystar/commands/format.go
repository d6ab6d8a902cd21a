package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wrenqi/daystar/internal/backtest"
	"github.com/wrenqi/daystar/internal/perf"
)

// formatNumber renders a float with thousands separators, two decimals.
func formatNumber(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	whole := int64(v)
	frac := int64((v-float64(whole))*100 + 0.5)
	if frac >= 100 {
		whole++
		frac -= 100
	}

	s := fmt.Sprintf("%d", whole)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := fmt.Sprintf("%s.%02d", strings.Join(parts, ","), frac)
	if neg {
		out = "-" + out
	}
	return out
}

// printReport renders the run summary to stdout.
func printReport(result *backtest.Result, report *perf.Report) {
	fmt.Println("\n✅ Backtest Completed")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	fmt.Println("📊 Summary")
	if len(result.Days) > 0 {
		fmt.Printf("Period: %s ~ %s (%d trading days)\n",
			result.Days[0].Format("2006-01-02"),
			result.Days[len(result.Days)-1].Format("2006-01-02"),
			len(result.Days))
	}
	fmt.Printf("Trades: %d  Data gaps: %d\n", len(result.Trades), len(result.Gaps))
	fmt.Println()

	fmt.Println("💰 Performance")
	fmt.Printf("Initial Capital: %s\n", formatNumber(report.InitialCapital))
	fmt.Printf("Final Equity:    %s\n", formatNumber(report.FinalEquity))
	fmt.Printf("Total Return:    %+.2f%%\n", report.TotalReturn*100)
	fmt.Printf("Max Drawdown:    %.2f%%\n", report.MaxDrawdown*100)
	fmt.Println()

	fmt.Println("📈 Trade Statistics")
	fmt.Printf("Win Rate:        %.1f%% (%d/%d)\n", report.WinRate*100, report.WinCount, report.TradeCount)
	fmt.Printf("Avg Win:         %+.2f%%\n", report.AvgWin*100)
	fmt.Printf("Avg Loss:        %+.2f%%\n", report.AvgLoss*100)
	fmt.Printf("Profit Factor:   %.2f\n", report.ProfitFactor)
	fmt.Printf("Avg Holding:     %.1f days\n", report.AvgHoldingDays)
	fmt.Println()

	if len(report.ExitReasons) > 0 {
		fmt.Println("🚪 Exit Reasons")
		for reason, count := range report.ExitReasons {
			fmt.Printf("%-16s %d\n", string(reason)+":", count)
		}
		fmt.Println()
	}

	if len(report.MonthlyReturns) > 0 {
		fmt.Println("📅 Monthly Returns")
		months := make([]string, 0, len(report.MonthlyReturns))
		for m := range report.MonthlyReturns {
			months = append(months, m)
		}
		sort.Strings(months)
		for _, m := range months {
			fmt.Printf("%s: %+.2f%%\n", m, report.MonthlyReturns[m]*100)
		}
	}
}
