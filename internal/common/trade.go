package common

import "fmt"

// Fill is one agent's own record of a trade it was a party to: kept in a
// strategy's trade log, distinct from the book's TradeEvent which records
// both counterparties. Side is the agent's own side; Price is the trade
// price as matched, always unsigned.
type Fill struct {
	TradeID     string
	ParentID    string
	Side        Side
	Size        uint64
	Price       float64
	Timestamp   float64
	Counterpart string // owning order id on the other side of the trade
}

func (f Fill) String() string {
	return fmt.Sprintf(
		"Fill(trade=%s parent=%s side=%s size=%d price=%.4f t=%.3f vs=%s)",
		f.TradeID, f.ParentID, f.Side, f.Size, f.Price, f.Timestamp, f.Counterpart,
	)
}
