package strategy

import (
	"math"

	"github.com/google/uuid"

	"marketsim/internal/book"
	"marketsim/internal/common"
)

// SymmetricMaker quotes both sides around mid on a fixed cadence, skewing
// the quote midpoint by Gamma*inventory (an inventory-risk penalty in the
// spirit of Avellaneda-Stoikov) and staying within an inventory band.
type SymmetricMaker struct {
	*BaseStrategy

	baseSpread          float64
	maxInventory        uint64
	gamma               float64
	quoteSize           uint64
	quoteUpdateInterval float64

	bidQuoteID    string
	askQuoteID    string
	lastQuoteTime float64
	hasQuoted     bool
}

// NewSymmetricMaker builds a symmetric market maker per STRATEGY_PARAMS.market_maker.
func NewSymmetricMaker(base *BaseStrategy, baseSpread float64, maxInventory uint64, gamma float64, quoteSize uint64, quoteUpdateInterval float64) *SymmetricMaker {
	return &SymmetricMaker{
		BaseStrategy:        base,
		baseSpread:          baseSpread,
		maxInventory:        maxInventory,
		gamma:               gamma,
		quoteSize:           quoteSize,
		quoteUpdateInterval: quoteUpdateInterval,
	}
}

func (m *SymmetricMaker) Step(now float64, bk *book.Book, _ History) (cancels, news []common.Order) {
	if m.hasQuoted && now-m.lastQuoteTime < m.quoteUpdateInterval {
		return nil, nil
	}
	m.lastQuoteTime = now
	m.hasQuoted = true

	if m.bidQuoteID != "" {
		cancels = append(cancels, common.Order{ID: m.bidQuoteID, Type: common.Cancel})
		m.bidQuoteID = ""
	}
	if m.askQuoteID != "" {
		cancels = append(cancels, common.Order{ID: m.askQuoteID, Type: common.Cancel})
		m.askQuoteID = ""
	}

	mid := bk.Mid()
	spread := bk.Spread()
	if mid <= 0 || math.IsInf(spread, 1) {
		return cancels, nil
	}

	skewedMid := mid - m.gamma*float64(m.Inventory)
	halfSpread := spread / 2

	if m.Inventory+m.quoteSize <= m.maxInventory {
		bidPrice := skewedMid - halfSpread
		id := m.ID + "-" + uuid.NewString()
		m.bidQuoteID = id
		m.RegisterOwnOrder(id, id)
		news = append(news, common.Order{
			ID: id, ParentID: id, Side: common.Buy, Type: common.Limit,
			Size: m.quoteSize, Price: common.WithPrice(bidPrice), Timestamp: now,
		})
	}

	if m.Inventory >= m.quoteSize && m.Inventory-m.quoteSize <= m.maxInventory {
		askPrice := skewedMid + halfSpread
		id := m.ID + "-" + uuid.NewString()
		m.askQuoteID = id
		m.RegisterOwnOrder(id, id)
		news = append(news, common.Order{
			ID: id, ParentID: id, Side: common.Sell, Type: common.Limit,
			Size: m.quoteSize, Price: common.WithPrice(askPrice), Timestamp: now,
		})
	}

	return cancels, news
}
