package book

import "marketsim/internal/common"

// EventKind tags the three event variants the book emits.
type EventKind int

const (
	KindNewOrder EventKind = iota
	KindCancel
	KindTrade
)

// Event is the common capability of every book-emitted event: its kind and
// the simulated time it was emitted at. Concrete variants are NewOrderEvent,
// CancelEvent, and TradeEvent.
type Event interface {
	Kind() EventKind
	Time() float64
}

// NewOrderEvent is emitted when a LIMIT order has residual quantity added
// to the book after matching.
type NewOrderEvent struct {
	OrderID   string
	ParentID  string
	Side      common.Side
	Size      uint64
	Price     float64
	Type      common.OrderType
	Timestamp float64
}

func (e NewOrderEvent) Kind() EventKind { return KindNewOrder }
func (e NewOrderEvent) Time() float64   { return e.Timestamp }

// CancelEvent is emitted when a resting order is removed from the book by id.
type CancelEvent struct {
	OrderID   string
	Timestamp float64
}

func (e CancelEvent) Kind() EventKind { return KindCancel }
func (e CancelEvent) Time() float64   { return e.Timestamp }

// TradeEvent is emitted for each elementary match. BuyOrderID/SellOrderID
// name the maker and taker by side, not by who initiated the match: for an
// incoming BUY the maker is the resting ask; for an incoming SELL the maker
// is the resting bid. ParentID is always the taker's parent id.
type TradeEvent struct {
	TradeID     string
	Price       float64
	Size        uint64
	BuyOrderID  string
	SellOrderID string
	ParentID    string
	Timestamp   float64
}

func (e TradeEvent) Kind() EventKind { return KindTrade }
func (e TradeEvent) Time() float64   { return e.Timestamp }

// EventQueue is the FIFO the book publishes into. The simulator drains it
// as a whole at every sampling boundary; consumers that read a drained
// batch own their own copy, the queue never aliases it after Drain.
type EventQueue struct {
	events []Event
}

// Publish appends an event to the back of the queue.
func (q *EventQueue) Publish(e Event) {
	q.events = append(q.events, e)
}

// Drain returns every queued event in emission order and empties the queue.
func (q *EventQueue) Drain() []Event {
	if len(q.events) == 0 {
		return nil
	}
	drained := q.events
	q.events = nil
	return drained
}

// Len reports the number of events currently queued, without draining them.
func (q *EventQueue) Len() int {
	return len(q.events)
}
