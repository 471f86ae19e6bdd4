// Package strategy defines the capability every trading agent satisfies
// and the shared scheduling/slippage/validation bookkeeping common to all
// of them, plus the concrete agents built on top: a symmetric market
// maker and signal-driven takers.
package strategy

import (
	"marketsim/internal/book"
	"marketsim/internal/common"
)

// History is the read-only access a Signal or agent has into past book
// state. metrics.BookMetrics satisfies it structurally, so signals and
// Step implementations depend only on this interface, not on that type.
type History interface {
	MidSeries() []float64
}

// Strategy is the capability every agent satisfies. The simulator calls
// Step once per tick, Update after every order the agent submits is
// processed, Record at each sampling boundary, and Reset between runs.
type Strategy interface {
	// Step is called every tick and returns cancels and new orders to
	// submit, in that order. bk is a read-only view: Strategy
	// implementations must never call bk.Process directly.
	Step(now float64, bk *book.Book, hist History) (cancels, news []common.Order)

	// Update lets the agent observe fills on orders it owns, from the
	// combined event batch its own submissions and concurrent orderflow
	// produced this tick.
	Update(now float64, events []book.Event)

	// Record snapshots agent state into its own metrics series.
	Record(now float64, bk *book.Book)

	// Reset restores the agent to a pristine state. Nil arguments keep
	// the agent's existing initial cash/inventory.
	Reset(initialCash *float64, initialInventory *uint64)
}
