// Package csvexport writes the metrics series and order-book snapshots
// spec.md names as out-of-core persisted state. CSV is the spec's own
// named format for this boundary, so stdlib encoding/csv is used directly
// rather than reaching for a third-party writer.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"

	"marketsim/internal/book"
	"marketsim/internal/metrics"
)

// WriteBookMetrics writes one row per sampling boundary: time, best_bid,
// best_ask, mid, spread, bid_size_total, ask_size_total, bid_depth,
// ask_depth, trade_volume, trade_count.
func WriteBookMetrics(w io.Writer, samples []metrics.BookSample) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"time", "best_bid", "best_ask", "mid", "spread",
		"bid_size_total", "ask_size_total", "bid_depth", "ask_depth",
		"trade_volume", "trade_count",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			fmt.Sprintf("%f", s.Time),
			fmt.Sprintf("%f", s.BestBid),
			fmt.Sprintf("%f", s.BestAsk),
			fmt.Sprintf("%f", s.Mid),
			fmt.Sprintf("%f", s.Spread),
			fmt.Sprintf("%d", s.BidSizeTotal),
			fmt.Sprintf("%d", s.AskSizeTotal),
			fmt.Sprintf("%d", s.BidDepth),
			fmt.Sprintf("%d", s.AskDepth),
			fmt.Sprintf("%d", s.TradeVolume),
			fmt.Sprintf("%d", s.TradeCount),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// WriteStrategyMetrics writes one row per sampling boundary: time, cash,
// inventory, realized_pnl, unrealized_pnl, total_pnl, equity,
// avg_slippage, cumulative_slippage, trade_count.
func WriteStrategyMetrics(w io.Writer, samples []metrics.StrategySample) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"time", "cash", "inventory", "realized_pnl", "unrealized_pnl",
		"total_pnl", "equity", "avg_slippage", "cumulative_slippage", "trade_count",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			fmt.Sprintf("%f", s.Time),
			fmt.Sprintf("%f", s.Cash),
			fmt.Sprintf("%d", s.Inventory),
			fmt.Sprintf("%f", s.RealizedPnL),
			fmt.Sprintf("%f", s.UnrealizedPnL),
			fmt.Sprintf("%f", s.TotalPnL),
			fmt.Sprintf("%f", s.Equity),
			fmt.Sprintf("%f", s.AverageSlippage),
			fmt.Sprintf("%f", s.CumulativeSlip),
			fmt.Sprintf("%d", s.TradeCount),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// WriteDepthSnapshot writes one row per resting order, sorted by
// priority: side, price, size.
func WriteDepthSnapshot(w io.Writer, levels []book.DepthLevel) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"side", "price", "size"}); err != nil {
		return err
	}
	for _, lvl := range levels {
		row := []string{
			lvl.Side.String(),
			fmt.Sprintf("%f", lvl.Price),
			fmt.Sprintf("%d", lvl.Size),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}
