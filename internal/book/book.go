// Package book implements the price-time-priority matching engine backing a
// single-asset limit order book.
//
// The teacher's original matching core kept one learned heap with prices
// negated for the bid side. Per the recommended refinement, each side here
// is a github.com/tidwall/btree.BTreeG of price levels, each level a FIFO
// queue of resting orders, with an auxiliary id index for cancel-by-id.
package book

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"marketsim/internal/common"
)

var (
	// ErrUnknownOrder names the condition of a cancel whose target id is
	// not resting. Process does not return it: an unknown cancel target
	// yields no event and leaves the book unchanged.
	ErrUnknownOrder = errors.New("book: unknown order id")
)

// priceLevel holds every resting order at one price, in arrival order:
// index 0 is the earliest (next to be matched against).
type priceLevel struct {
	price  float64
	orders []*common.Order
}

type priceLevels = btree.BTreeG[*priceLevel]

// restingLoc locates a resting order for cancel: the side and price its
// level sits at, so the level is found with an O(log n) tree lookup and the
// order with a linear scan of that level only.
type restingLoc struct {
	side  common.Side
	price float64
}

// Book is a single-asset limit order book. It exclusively owns resting
// orders; callers never hold references into it — BestBid, BestAsk, and
// DepthSnapshot all return copies.
type Book struct {
	tickSize float64

	bids *priceLevels
	asks *priceLevels

	byID    map[string]*restingLoc
	bidN    int
	askN    int
	events  EventQueue
}

// New creates an empty book rounding limit prices to the given tick size.
func New(tickSize float64) *Book {
	bids := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price > b.price // highest price first
	})
	asks := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price < b.price // lowest price first
	})
	return &Book{
		tickSize: tickSize,
		bids:     bids,
		asks:     asks,
		byID:     make(map[string]*restingLoc),
	}
}

// emptyOrder is the sentinel BestBid/BestAsk return for an empty side:
// price 0, id "-1".
func emptyOrder(side common.Side) common.Order {
	return common.Order{ID: "-1", Side: side, Size: 0, Price: common.WithPrice(0)}
}

// BestBid returns the bid side's priority leader, or the empty sentinel.
func (b *Book) BestBid() common.Order {
	lvl, ok := b.bids.Min()
	if !ok || len(lvl.orders) == 0 {
		return emptyOrder(common.Buy)
	}
	return *lvl.orders[0]
}

// BestAsk returns the ask side's priority leader, or the empty sentinel.
func (b *Book) BestAsk() common.Order {
	lvl, ok := b.asks.Min()
	if !ok || len(lvl.orders) == 0 {
		return emptyOrder(common.Sell)
	}
	return *lvl.orders[0]
}

// Mid returns the arithmetic mean of both bests, the lone side's best if
// only one is present, or 0 if the book is empty.
func (b *Book) Mid() float64 {
	bidOk := b.bidN > 0
	askOk := b.askN > 0
	switch {
	case bidOk && askOk:
		return (b.BestBid().PriceOrZero() + b.BestAsk().PriceOrZero()) / 2
	case bidOk:
		return b.BestBid().PriceOrZero()
	case askOk:
		return b.BestAsk().PriceOrZero()
	default:
		return 0
	}
}

// Spread returns best ask minus best bid. It is 0 when both sides are
// empty and +Inf when exactly one side is empty.
func (b *Book) Spread() float64 {
	bidOk := b.bidN > 0
	askOk := b.askN > 0
	switch {
	case bidOk && askOk:
		return b.BestAsk().PriceOrZero() - b.BestBid().PriceOrZero()
	case !bidOk && !askOk:
		return 0
	default:
		return math.Inf(1)
	}
}

// BidSize sums resting size across the top N bid price levels; with no
// argument (or <= 0), it sums every level.
func (b *Book) BidSize(levels ...int) uint64 {
	return sumSize(b.bids, depthArg(levels))
}

// AskSize sums resting size across the top N ask price levels; with no
// argument (or <= 0), it sums every level.
func (b *Book) AskSize(levels ...int) uint64 {
	return sumSize(b.asks, depthArg(levels))
}

func depthArg(levels []int) int {
	if len(levels) == 0 {
		return 0
	}
	return levels[0]
}

func sumSize(tree *priceLevels, limit int) uint64 {
	var total uint64
	n := 0
	tree.Scan(func(lvl *priceLevel) bool {
		for _, o := range lvl.orders {
			total += o.Size
		}
		n++
		return limit <= 0 || n < limit
	})
	return total
}

// BidDepth is the count of resting bid orders.
func (b *Book) BidDepth() int { return b.bidN }

// AskDepth is the count of resting ask orders.
func (b *Book) AskDepth() int { return b.askN }

// AllOrderIDs enumerates every resting order id, in no particular order;
// used by the order-flow generator to pick a cancel target.
func (b *Book) AllOrderIDs() []string {
	ids := make([]string, 0, len(b.byID))
	for id := range b.byID {
		ids = append(ids, id)
	}
	return ids
}

// DrainEvents returns and clears the event queue.
func (b *Book) DrainEvents() []Event {
	return b.events.Drain()
}

// DepthLevel is one row of a depth snapshot.
type DepthLevel struct {
	Side  common.Side
	Price float64
	Size  uint64
}

// DepthSnapshot lists up to k resting orders per side in priority order,
// without mutating the book.
func (b *Book) DepthSnapshot(k int) []DepthLevel {
	var out []DepthLevel
	out = append(out, snapshotSide(b.asks, common.Sell, k)...)
	out = append(out, snapshotSide(b.bids, common.Buy, k)...)
	return out
}

func snapshotSide(tree *priceLevels, side common.Side, k int) []DepthLevel {
	var out []DepthLevel
	tree.Scan(func(lvl *priceLevel) bool {
		for _, o := range lvl.orders {
			out = append(out, DepthLevel{Side: side, Price: lvl.price, Size: o.Size})
			if len(out) >= k {
				return false
			}
		}
		return len(out) < k
	})
	return out
}

// Process dispatches an order to the matching engine by its type. now is
// the simulated clock time; the book never reads wall-clock time.
func (b *Book) Process(order common.Order, now float64) []Event {
	switch order.Type {
	case common.Cancel:
		return b.processCancel(order, now)
	case common.Market:
		return b.processMarket(order, now)
	case common.Limit:
		return b.processLimit(order, now)
	default:
		return nil
	}
}

func (b *Book) processCancel(order common.Order, now float64) []Event {
	loc, ok := b.byID[order.ID]
	if !ok {
		return nil
	}

	tree := b.sideTree(loc.side)
	lvl, ok := tree.Get(&priceLevel{price: loc.price})
	if !ok {
		return nil
	}
	for i, o := range lvl.orders {
		if o.ID != order.ID {
			continue
		}
		lvl.orders = append(lvl.orders[:i], lvl.orders[i+1:]...)
		if len(lvl.orders) == 0 {
			tree.Delete(lvl)
		}
		delete(b.byID, order.ID)
		b.decrDepth(loc.side)

		evt := CancelEvent{OrderID: order.ID, Timestamp: now}
		b.events.Publish(evt)
		return []Event{evt}
	}
	return nil
}

func (b *Book) processMarket(order common.Order, now float64) []Event {
	if order.Size == 0 {
		return nil
	}

	var events []Event
	opposite := b.sideTree(oppositeSide(order.Side))

	for order.Size > 0 {
		lvl, ok := opposite.Min()
		if !ok {
			break // residual silently discarded: no opposing liquidity
		}
		evts := b.matchAgainstLevel(opposite, lvl, &order, now)
		events = append(events, evts...)
	}
	return events
}

func (b *Book) processLimit(order common.Order, now float64) []Event {
	if !order.HasPrice() {
		return nil // malformed: LIMIT without a price, no state mutated
	}
	price := roundToTick(*order.Price, b.tickSize)
	order.Price = &price

	var events []Event
	opposite := b.sideTree(oppositeSide(order.Side))

	for order.Size > 0 {
		lvl, ok := opposite.Min()
		if !ok || !crosses(order.Side, price, lvl.price) {
			break
		}
		evts := b.matchAgainstLevel(opposite, lvl, &order, now)
		events = append(events, evts...)
	}

	if order.Size > 0 && price > 0 {
		evt := b.restOrder(order, now)
		events = append(events, evt)
	}
	return events
}

// matchAgainstLevel consumes the level's FIFO queue against the taker while
// both have size remaining, publishing one TradeEvent per elementary match.
func (b *Book) matchAgainstLevel(tree *priceLevels, lvl *priceLevel, taker *common.Order, now float64) []Event {
	var events []Event
	for len(lvl.orders) > 0 && taker.Size > 0 {
		maker := lvl.orders[0]
		qty := min(taker.Size, maker.Size)

		maker.Size -= qty
		taker.Size -= qty

		evt := b.tradeEvent(taker, maker, lvl.price, qty, now)
		b.events.Publish(evt)
		events = append(events, evt)

		if maker.Size == 0 {
			lvl.orders = lvl.orders[1:]
			delete(b.byID, maker.ID)
			b.decrDepth(oppositeSide(taker.Side))
		}
	}
	if len(lvl.orders) == 0 {
		tree.Delete(lvl)
	}
	return events
}

// tradeEvent records the maker side explicitly: for an incoming BUY the
// maker is the ask being consumed, for an incoming SELL the maker is the
// bid. The taker's parent id flows into the event.
func (b *Book) tradeEvent(taker, maker *common.Order, price float64, qty uint64, now float64) TradeEvent {
	buyID, sellID := maker.ID, taker.ID
	if taker.Side == common.Buy {
		buyID, sellID = taker.ID, maker.ID
	}
	return TradeEvent{
		TradeID:     uuid.NewString(),
		Price:       price,
		Size:        qty,
		BuyOrderID:  buyID,
		SellOrderID: sellID,
		ParentID:    taker.ParentID,
		Timestamp:   now,
	}
}

func (b *Book) restOrder(order common.Order, now float64) Event {
	resting := order // copy: the book owns this instance from here on
	tree := b.sideTree(order.Side)

	lvl, ok := tree.Get(&priceLevel{price: *order.Price})
	if !ok {
		lvl = &priceLevel{price: *order.Price}
		tree.Set(lvl)
	}
	lvl.orders = append(lvl.orders, &resting)

	b.byID[order.ID] = &restingLoc{side: order.Side, price: *order.Price}
	b.incrDepth(order.Side)

	evt := NewOrderEvent{
		OrderID:   order.ID,
		ParentID:  order.ParentID,
		Side:      order.Side,
		Size:      order.Size,
		Price:     *order.Price,
		Type:      order.Type,
		Timestamp: now,
	}
	b.events.Publish(evt)
	return evt
}

func (b *Book) sideTree(side common.Side) *priceLevels {
	if side == common.Buy {
		return b.bids
	}
	return b.asks
}

func (b *Book) incrDepth(side common.Side) {
	if side == common.Buy {
		b.bidN++
	} else {
		b.askN++
	}
}

func (b *Book) decrDepth(side common.Side) {
	if side == common.Buy {
		b.bidN--
	} else {
		b.askN--
	}
}

func oppositeSide(s common.Side) common.Side {
	if s == common.Buy {
		return common.Sell
	}
	return common.Buy
}

// crosses reports whether the opposite side's best price crosses the
// incoming limit's price: <= for a BUY, >= for a SELL.
func crosses(side common.Side, limitPrice, oppositeBest float64) bool {
	if side == common.Buy {
		return oppositeBest <= limitPrice
	}
	return oppositeBest >= limitPrice
}

func roundToTick(price, tickSize float64) float64 {
	return math.Round(price/tickSize) * tickSize
}
