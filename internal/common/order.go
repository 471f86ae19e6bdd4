// Package common holds the value types shared by the book, the order-flow
// generator, and the strategies: sides, order types, and the order itself.
package common

import "fmt"

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

type OrderType int

const (
	Limit OrderType = iota
	Market
	Cancel
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	case Cancel:
		return "CANCEL"
	default:
		return "UNKNOWN"
	}
}

// Order is an intent to trade. A LIMIT must carry a Price; MARKET and
// CANCEL never do. ParentID links a child order back to the user-facing
// parent an execution strategy split it from; it equals ID when there is
// no parent.
type Order struct {
	ID        string    // Stable order identifier
	ParentID  string    // Parent order identifier (equals ID when no parent)
	Side      Side      // Buy or Sell
	Type      OrderType // Limit, Market, or Cancel
	Size      uint64    // Remaining quantity
	Price     *float64  // Required for Limit, nil for Market/Cancel
	Timestamp float64   // Simulated clock time of creation
}

// HasPrice reports whether the order carries a price.
func (o Order) HasPrice() bool {
	return o.Price != nil
}

// PriceOrZero returns the order's price, or 0 if it has none.
func (o Order) PriceOrZero() float64 {
	if o.Price == nil {
		return 0
	}
	return *o.Price
}

func (o Order) String() string {
	price := "nil"
	if o.Price != nil {
		price = fmt.Sprintf("%.4f", *o.Price)
	}
	return fmt.Sprintf(
		"Order(id=%s parent=%s side=%s type=%s size=%d price=%s t=%.3f)",
		o.ID, o.ParentID, o.Side, o.Type, o.Size, price, o.Timestamp,
	)
}

// WithPrice is a small helper for constructing a LIMIT order's price pointer.
func WithPrice(p float64) *float64 {
	return &p
}
