package book_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketsim/internal/book"
	"marketsim/internal/common"
)

func limitOrder(id string, side common.Side, price float64, size uint64) common.Order {
	return common.Order{ID: id, ParentID: id, Side: side, Type: common.Limit, Size: size, Price: common.WithPrice(price)}
}

func marketOrder(id string, side common.Side, size uint64) common.Order {
	return common.Order{ID: id, ParentID: id, Side: side, Type: common.Market, Size: size}
}

func cancelOrder(id string) common.Order {
	return common.Order{ID: id, Type: common.Cancel}
}

func TestMarketOrder_EmptyBook_NoEvents(t *testing.T) {
	b := book.New(0.01)
	events := b.Process(marketOrder("t1", common.Buy, 10), 0)
	assert.Empty(t, events)
	assert.Equal(t, 0, b.BidDepth())
	assert.Equal(t, 0, b.AskDepth())
}

func TestLimitOrder_RestsWhenNonCrossing(t *testing.T) {
	b := book.New(0.01)
	events := b.Process(limitOrder("b1", common.Buy, 100.00, 5), 0)
	require.Len(t, events, 1)
	_, ok := events[0].(book.NewOrderEvent)
	assert.True(t, ok)

	assert.Equal(t, uint64(5), b.BestBid().Size)
	assert.Equal(t, "-1", b.BestAsk().ID)
	assert.Equal(t, 1, b.BidDepth())
}

func TestLimitOrder_PartialCross(t *testing.T) {
	b := book.New(0.01)
	b.Process(limitOrder("b1", common.Buy, 100.00, 5), 0)

	events := b.Process(limitOrder("s1", common.Sell, 99.99, 3), 1)
	require.Len(t, events, 1)
	trade, ok := events[0].(book.TradeEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(3), trade.Size)
	assert.Equal(t, 100.00, trade.Price) // trades at the resting (maker) price

	assert.Equal(t, uint64(2), b.BestBid().Size)
	assert.Equal(t, "-1", b.BestAsk().ID) // fully filled taker never rests
	assert.Equal(t, 1, b.BidDepth())
	assert.Equal(t, 0, b.AskDepth())
}

func TestMarketOrder_PriceTimePriority_SweepsOldestFirst(t *testing.T) {
	b := book.New(0.01)
	b.Process(limitOrder("b1", common.Buy, 100.00, 4), 0)
	b.Process(limitOrder("b2", common.Buy, 100.00, 6), 1)

	events := b.Process(marketOrder("s1", common.Sell, 7), 2)
	require.Len(t, events, 2)

	first := events[0].(book.TradeEvent)
	second := events[1].(book.TradeEvent)
	assert.Equal(t, uint64(4), first.Size)
	assert.Equal(t, uint64(3), second.Size)
	assert.Equal(t, "b1", first.BuyOrderID)
	assert.Equal(t, "b2", second.BuyOrderID)

	assert.Equal(t, uint64(3), b.BestBid().Size)
	assert.Equal(t, "b2", b.BestBid().ID)
}

func TestMarketOrder_SweepsMultipleLevels(t *testing.T) {
	b := book.New(0.01)
	b.Process(limitOrder("s1", common.Sell, 100.00, 5), 0)
	b.Process(limitOrder("s2", common.Sell, 101.00, 5), 1)

	events := b.Process(marketOrder("buyer", common.Buy, 8), 2)
	require.Len(t, events, 2)

	assert.Equal(t, uint64(5), events[0].(book.TradeEvent).Size)
	assert.Equal(t, 100.00, events[0].(book.TradeEvent).Price)
	assert.Equal(t, uint64(3), events[1].(book.TradeEvent).Size)
	assert.Equal(t, 101.00, events[1].(book.TradeEvent).Price)

	assert.Equal(t, uint64(2), b.BestAsk().Size)
}

func TestCancel_RemovesRestingOrder(t *testing.T) {
	b := book.New(0.01)
	b.Process(limitOrder("b1", common.Buy, 100.00, 5), 0)

	events := b.Process(cancelOrder("b1"), 1)
	require.Len(t, events, 1)
	_, ok := events[0].(book.CancelEvent)
	assert.True(t, ok)

	assert.Equal(t, 0, b.BidDepth())
	assert.Equal(t, "-1", b.BestBid().ID)
}

func TestCancel_ThenMarketOrder_NoLongerMatchesCancelled(t *testing.T) {
	b := book.New(0.01)
	b.Process(limitOrder("b1", common.Buy, 100.00, 5), 0)
	b.Process(limitOrder("b2", common.Buy, 99.00, 5), 1)
	b.Process(cancelOrder("b1"), 2)

	events := b.Process(marketOrder("s1", common.Sell, 5), 3)
	require.Len(t, events, 1)
	trade := events[0].(book.TradeEvent)
	assert.Equal(t, "b2", trade.BuyOrderID)
}

func TestCancel_UnknownID_NoEventNoPanic(t *testing.T) {
	b := book.New(0.01)
	events := b.Process(cancelOrder("ghost"), 0)
	assert.Nil(t, events)
}

func TestSpread_DegenerateCases(t *testing.T) {
	b := book.New(0.01)
	assert.Equal(t, 0.0, b.Spread())

	b.Process(limitOrder("b1", common.Buy, 100.00, 5), 0)
	assert.True(t, b.Spread() > 0) // one side only: +Inf

	b.Process(limitOrder("s1", common.Sell, 101.00, 5), 1)
	assert.InDelta(t, 1.00, b.Spread(), 1e-9)
}

func TestMid_AveragesBests(t *testing.T) {
	b := book.New(0.01)
	b.Process(limitOrder("b1", common.Buy, 99.00, 5), 0)
	b.Process(limitOrder("s1", common.Sell, 101.00, 5), 1)
	assert.InDelta(t, 100.00, b.Mid(), 1e-9)
}

func TestLimitOrder_PriceAtOrBelowZero_RejectedAfterMatching(t *testing.T) {
	b := book.New(0.01)
	events := b.Process(limitOrder("b1", common.Buy, 0, 5), 0)
	assert.Empty(t, events)
	assert.Equal(t, 0, b.BidDepth())
}

func TestDepthSnapshot_AsksThenBids_PerOrder(t *testing.T) {
	b := book.New(0.01)
	b.Process(limitOrder("b1", common.Buy, 99.00, 4), 0)
	b.Process(limitOrder("b2", common.Buy, 99.00, 6), 1)
	b.Process(limitOrder("s1", common.Sell, 101.00, 5), 2)

	snap := b.DepthSnapshot(10)
	require.Len(t, snap, 3)
	assert.Equal(t, common.Sell, snap[0].Side)
	assert.Equal(t, common.Buy, snap[1].Side)
	assert.Equal(t, common.Buy, snap[2].Side)
	assert.Equal(t, uint64(4), snap[1].Size)
	assert.Equal(t, uint64(6), snap[2].Size)
}
