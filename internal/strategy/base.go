package strategy

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"marketsim/internal/book"
	"marketsim/internal/common"
	"marketsim/internal/metrics"
	"marketsim/internal/rng"
)

// ErrNegativeSize is a hard error: negative order sizes are never silently
// clamped.
var ErrNegativeSize = errors.New("strategy: negative order size")

// SlippageEntry is one (signed_delta, filled_size) observation.
type SlippageEntry struct {
	SignedDelta float64
	FilledSize  uint64
}

// BaseStrategy is the shared scheduling, identity, validation, and
// slippage bookkeeping every concrete agent embeds. It is not itself a
// Strategy: concrete agents implement Step and call into BaseStrategy's
// helpers.
type BaseStrategy struct {
	ID string

	InitialCash      float64
	Cash             float64
	InitialInventory uint64
	Inventory        uint64

	schedule        []ScheduledChild
	parentOrderDict map[string]float64
	ownIDs          map[string]string // child order id -> parent id
	slippage        []SlippageEntry
	tradeLog        []common.Fill

	Metrics *metrics.StrategyMetrics

	rng *rng.RNG
}

// NewBaseStrategy constructs a BaseStrategy with the given identity,
// starting capital, and RNG. r is the same process-wide RNG instance every
// other sampler draws from.
func NewBaseStrategy(id string, initialCash float64, initialInventory uint64, r *rng.RNG) *BaseStrategy {
	b := &BaseStrategy{
		ID:               id,
		InitialInventory: initialInventory,
		InitialCash:      initialCash,
		rng:              r,
		Metrics:          metrics.NewStrategyMetrics(),
	}
	b.resetState()
	return b
}

func (b *BaseStrategy) resetState() {
	b.Cash = b.InitialCash
	b.Inventory = b.InitialInventory
	b.schedule = nil
	b.parentOrderDict = make(map[string]float64)
	b.ownIDs = make(map[string]string)
	b.slippage = nil
	b.tradeLog = nil
}

// Reset restores the agent to its initial cash/inventory, optionally
// overriding them, and clears all bookkeeping.
func (b *BaseStrategy) Reset(initialCash *float64, initialInventory *uint64) {
	if initialCash != nil {
		b.InitialCash = *initialCash
	}
	if initialInventory != nil {
		b.InitialInventory = *initialInventory
	}
	b.resetState()
	b.Metrics.Reset()
}

// ScheduleOrder delegates to exec to split totalSize into children, merges
// them into the schedule sorted by execution time, and returns the fresh
// parent id every child will share.
func (b *BaseStrategy) ScheduleOrder(now float64, totalSize float64, side common.Side, exec Execution) (string, error) {
	if totalSize < 0 {
		return "", ErrNegativeSize
	}
	parentID := b.ID + "-" + uuid.NewString()
	children := exec.Schedule(now, totalSize, side, parentID, b.rng)
	b.schedule = append(b.schedule, children...)
	sort.SliceStable(b.schedule, func(i, j int) bool {
		return b.schedule[i].ExecuteAt < b.schedule[j].ExecuteAt
	})
	return parentID, nil
}

// DueChildren pops every scheduled child whose execution time has arrived
// and builds a MARKET order for each, recording the parent's reference
// price on first execution and validating cash/inventory before returning
// it.
func (b *BaseStrategy) DueChildren(now float64, bk *book.Book) []common.Order {
	var due []ScheduledChild
	i := 0
	for i < len(b.schedule) && b.schedule[i].ExecuteAt <= now {
		i++
	}
	due, b.schedule = b.schedule[:i], b.schedule[i:]

	var orders []common.Order
	for _, child := range due {
		if child.Size == 0 {
			continue
		}
		b.recordReferencePrice(bk, child.ParentID, child.Side)

		id := b.ID + "-" + uuid.NewString()
		order := common.Order{
			ID:        id,
			ParentID:  child.ParentID,
			Side:      child.Side,
			Type:      common.Market,
			Size:      child.Size,
			Timestamp: now,
		}
		if !b.validateOrder(order, bk) {
			continue
		}
		b.ownIDs[id] = child.ParentID
		orders = append(orders, order)
	}
	return orders
}

// recordReferencePrice stashes the opposite-side best as a parent's
// benchmark the first time any of its children executes.
func (b *BaseStrategy) recordReferencePrice(bk *book.Book, parentID string, side common.Side) {
	if _, ok := b.parentOrderDict[parentID]; ok {
		return
	}
	var ref float64
	if side == common.Buy {
		ref = bk.BestAsk().PriceOrZero()
	} else {
		ref = bk.BestBid().PriceOrZero()
	}
	b.parentOrderDict[parentID] = ref
}

// validateOrder rejects a BUY whose projected cash cost exceeds available
// cash (estimated as the current best ask times size, which understates the
// cost of a fill that walks deeper levels; an empty ask side passes), and
// rejects a SELL that would drive inventory negative.
func (b *BaseStrategy) validateOrder(order common.Order, bk *book.Book) bool {
	if order.Side == common.Buy {
		estPrice := bk.BestAsk().PriceOrZero()
		if estPrice > 0 && estPrice*float64(order.Size) > b.Cash {
			return false
		}
	} else {
		if order.Size > b.Inventory {
			return false
		}
	}
	return true
}

// RegisterOwnOrder lets an agent that builds its own orders outside
// DueChildren (e.g. a market maker's quotes) register ownership so Update
// can attribute fills back to it.
func (b *BaseStrategy) RegisterOwnOrder(orderID, parentID string) {
	b.ownIDs[orderID] = parentID
}

// Update scans a drained event batch for trades touching the agent's own
// order ids, updating cash, inventory, slippage, and the trade log.
func (b *BaseStrategy) Update(now float64, events []book.Event) {
	for _, e := range events {
		trade, ok := e.(book.TradeEvent)
		if !ok {
			continue
		}
		b.observeFill(trade)
	}
}

func (b *BaseStrategy) observeFill(trade book.TradeEvent) {
	if parentID, ok := b.ownIDs[trade.BuyOrderID]; ok {
		b.applyFill(trade, parentID, common.Buy, trade.SellOrderID)
	}
	if parentID, ok := b.ownIDs[trade.SellOrderID]; ok {
		b.applyFill(trade, parentID, common.Sell, trade.BuyOrderID)
	}
}

func (b *BaseStrategy) applyFill(trade book.TradeEvent, parentID string, side common.Side, counterpart string) {
	notional := trade.Price * float64(trade.Size)
	sign := 1.0
	if side == common.Buy {
		b.Cash -= notional
		b.Inventory += trade.Size
	} else {
		b.Cash += notional
		b.Inventory -= trade.Size
		sign = -1.0
	}

	if ref, ok := b.parentOrderDict[parentID]; ok {
		delta := (ref - trade.Price) * sign
		b.slippage = append(b.slippage, SlippageEntry{SignedDelta: delta, FilledSize: trade.Size})
	}

	b.tradeLog = append(b.tradeLog, common.Fill{
		TradeID:     trade.TradeID,
		ParentID:    parentID,
		Side:        side,
		Size:        trade.Size,
		Price:       trade.Price,
		Timestamp:   trade.Timestamp,
		Counterpart: counterpart,
	})
}

// Record samples current agent state into Metrics at a sampling boundary.
func (b *BaseStrategy) Record(now float64, bk *book.Book) {
	avg, cum := b.slippageStats()
	b.Metrics.Record(now, b.Cash, b.InitialCash, b.Inventory, bk.Mid(), avg, cum, len(b.tradeLog))
}

// slippageStats returns the size-weighted average and the cumulative
// (unweighted sum) signed slippage across every recorded fill.
func (b *BaseStrategy) slippageStats() (avg, cumulative float64) {
	var weighted, totalSize float64
	for _, s := range b.slippage {
		weighted += s.SignedDelta * float64(s.FilledSize)
		totalSize += float64(s.FilledSize)
		cumulative += s.SignedDelta
	}
	if totalSize == 0 {
		return 0, cumulative
	}
	return weighted / totalSize, cumulative
}

// TradeLog returns every fill this agent has been a party to.
func (b *BaseStrategy) TradeLog() []common.Fill {
	return b.tradeLog
}

// Base returns the receiver itself, letting code generic over concrete
// agents reach the shared bookkeeping through a narrow interface.
func (b *BaseStrategy) Base() *BaseStrategy {
	return b
}
