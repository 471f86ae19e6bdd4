package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketsim/internal/book"
	"marketsim/internal/common"
	"marketsim/internal/rng"
	"marketsim/internal/strategy"
)

// TestBaseStrategy_BuyFill_PnLIdentityHolds drives one real BUY fill
// through a book.Book and checks cash-initial_cash+inventory*mid ==
// total_pnl at the resulting sampling boundary.
func TestBaseStrategy_BuyFill_PnLIdentityHolds(t *testing.T) {
	r := rng.New(11)
	base := strategy.NewBaseStrategy("agent", 10_000, 0, r)

	b := book.New(0.01)
	b.Process(common.Order{ID: "resting-ask", ParentID: "resting-ask", Side: common.Sell, Type: common.Limit, Size: 10, Price: common.WithPrice(100.0)}, 0)

	parentID, err := base.ScheduleOrder(0, 5, common.Buy, strategy.Block{})
	require.NoError(t, err)

	due := base.DueChildren(0, b)
	require.Len(t, due, 1)
	order := due[0]
	assert.Equal(t, parentID, order.ParentID)
	assert.Equal(t, common.Market, order.Type)

	events := b.Process(order, 0)
	base.Update(0, events)
	base.Record(0, b)

	samples := base.Metrics.Samples()
	require.Len(t, samples, 1)
	last := samples[0]

	identity := (base.Cash - base.InitialCash) + float64(base.Inventory)*b.Mid()
	assert.InDelta(t, identity, last.TotalPnL, 1e-9)
	assert.Equal(t, uint64(5), base.Inventory)
	assert.InDelta(t, 10_000-5*100.0, base.Cash, 1e-9)
}

// TestBaseStrategy_SellFill_PnLIdentityHolds mirrors the BUY case for an
// agent that starts with inventory and sells it off.
func TestBaseStrategy_SellFill_PnLIdentityHolds(t *testing.T) {
	r := rng.New(12)
	base := strategy.NewBaseStrategy("agent", 10_000, 20, r)

	b := book.New(0.01)
	b.Process(common.Order{ID: "resting-bid", ParentID: "resting-bid", Side: common.Buy, Type: common.Limit, Size: 10, Price: common.WithPrice(99.0)}, 0)

	_, err := base.ScheduleOrder(0, 8, common.Sell, strategy.Block{})
	require.NoError(t, err)

	due := base.DueChildren(0, b)
	require.Len(t, due, 1)

	events := b.Process(due[0], 0)
	base.Update(0, events)
	base.Record(0, b)

	samples := base.Metrics.Samples()
	require.Len(t, samples, 1)
	last := samples[0]

	identity := (base.Cash - base.InitialCash) + float64(base.Inventory)*b.Mid()
	assert.InDelta(t, identity, last.TotalPnL, 1e-9)
	assert.Equal(t, uint64(12), base.Inventory) // 20 - 8
	assert.InDelta(t, 10_000+8*99.0, base.Cash, 1e-9)
}

// TestBaseStrategy_ValidateOrder_RejectsSellBeyondInventory enforces the
// non-negative-inventory invariant decided for SELL orders: a scheduled
// sell larger than current holdings must never reach the book.
func TestBaseStrategy_ValidateOrder_RejectsSellBeyondInventory(t *testing.T) {
	r := rng.New(13)
	base := strategy.NewBaseStrategy("agent", 10_000, 3, r)

	b := book.New(0.01)
	b.Process(common.Order{ID: "resting-bid", ParentID: "resting-bid", Side: common.Buy, Type: common.Limit, Size: 50, Price: common.WithPrice(99.0)}, 0)

	_, err := base.ScheduleOrder(0, 10, common.Sell, strategy.Block{})
	require.NoError(t, err)

	due := base.DueChildren(0, b)
	assert.Empty(t, due, "a sell exceeding inventory must be rejected by validateOrder, not submitted")
	assert.Equal(t, uint64(3), base.Inventory)
}

// TestBaseStrategy_ValidateOrder_RejectsBuyBeyondCash mirrors the above for
// the cash-side check.
func TestBaseStrategy_ValidateOrder_RejectsBuyBeyondCash(t *testing.T) {
	r := rng.New(14)
	base := strategy.NewBaseStrategy("agent", 100, 0, r)

	b := book.New(0.01)
	b.Process(common.Order{ID: "resting-ask", ParentID: "resting-ask", Side: common.Sell, Type: common.Limit, Size: 50, Price: common.WithPrice(100.0)}, 0)

	_, err := base.ScheduleOrder(0, 10, common.Buy, strategy.Block{})
	require.NoError(t, err)

	due := base.DueChildren(0, b)
	assert.Empty(t, due, "a buy whose estimated cost exceeds cash must be rejected")
	assert.Equal(t, 100.0, base.Cash)
}

// TestBaseStrategy_Reset_RestoresPristineState checks that Reset clears
// bookkeeping and optionally overrides starting cash/inventory.
func TestBaseStrategy_Reset_RestoresPristineState(t *testing.T) {
	r := rng.New(15)
	base := strategy.NewBaseStrategy("agent", 1_000, 0, r)

	b := book.New(0.01)
	b.Process(common.Order{ID: "resting-ask", ParentID: "resting-ask", Side: common.Sell, Type: common.Limit, Size: 10, Price: common.WithPrice(10.0)}, 0)
	_, err := base.ScheduleOrder(0, 5, common.Buy, strategy.Block{})
	require.NoError(t, err)
	events := b.Process(base.DueChildren(0, b)[0], 0)
	base.Update(0, events)
	require.NotEqual(t, 1_000.0, base.Cash)

	newCash := 5_000.0
	newInv := uint64(7)
	base.Reset(&newCash, &newInv)

	assert.Equal(t, 5_000.0, base.Cash)
	assert.Equal(t, uint64(7), base.Inventory)
	assert.Empty(t, base.TradeLog())
	assert.Empty(t, base.Metrics.Samples())
}
