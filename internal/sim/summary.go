package sim

import (
	"fmt"
	"io"
	"text/tabwriter"

	"marketsim/internal/strategy"
)

// PrintSummary prints a final book-and-per-agent performance table. No
// pack repo carries a table-rendering library, so text/tabwriter is the
// stdlib substitute for the original's tabulate-based summary.
func (s *Simulator) PrintSummary(w io.Writer, agentNames []string, riskFreeRate float64) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	bookStats := s.BookMetrics.Stats(s.recordInterval, riskFreeRate)
	fmt.Fprintln(tw, "== book ==")
	fmt.Fprintf(tw, "mid\tann.return\tann.vol\tmax dd\tsharpe\n")
	fmt.Fprintf(tw, "%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
		s.Book.Mid(), bookStats.AnnualizedReturn, bookStats.AnnualizedVolatility,
		bookStats.MaxDrawdown, bookStats.Sharpe)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "== agents ==")
	fmt.Fprintf(tw, "agent\tcash\tinventory\ttotal pnl\tequity\tann.return\tsharpe\n")
	for i, agent := range s.Agents {
		base, ok := baseOf(agent)
		if !ok {
			continue
		}
		name := fmt.Sprintf("agent-%d", i)
		if i < len(agentNames) {
			name = agentNames[i]
		}
		stats := base.Metrics.Stats(s.recordInterval, riskFreeRate)
		samples := base.Metrics.Samples()
		var totalPnL, equity float64
		if len(samples) > 0 {
			last := samples[len(samples)-1]
			totalPnL, equity = last.TotalPnL, last.Equity
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%.2f\t%.2f\t%.4f\t%.4f\n",
			name, base.Cash, base.Inventory, totalPnL, equity,
			stats.AnnualizedReturn, stats.Sharpe)
	}
}

// baseOf extracts the embedded *BaseStrategy from any concrete agent that
// embeds one, without requiring every Strategy implementation to expose
// it through the interface itself.
func baseOf(agent strategy.Strategy) (*strategy.BaseStrategy, bool) {
	type baseHolder interface {
		Base() *strategy.BaseStrategy
	}
	if h, ok := agent.(baseHolder); ok {
		return h.Base(), true
	}
	return nil, false
}
