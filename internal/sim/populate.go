package sim

import (
	"github.com/google/uuid"

	"marketsim/internal/common"
)

// PopulateRandom seeds the book with symmetric synthetic levels around
// initialPrice before a run starts: levels resting bids below and asks
// above, each level tickSize further out with a size drawn uniformly from
// [sizeMin, sizeMax] via the simulator's own RNG, mirroring the original model's
// populate_initial_book_rand.
func (s *Simulator) PopulateRandom(levels int, tickSize, initialPrice float64, sizeMin, sizeMax uint64) {
	for i := 1; i <= levels; i++ {
		offset := float64(i) * tickSize
		bidPrice := initialPrice - offset
		askPrice := initialPrice + offset
		if bidPrice <= 0 {
			continue
		}

		bidSize := sizeMin + uint64(s.RNG.Uniform(0, float64(sizeMax-sizeMin+1)))
		askSize := sizeMin + uint64(s.RNG.Uniform(0, float64(sizeMax-sizeMin+1)))

		s.seedOrder(common.Buy, bidPrice, bidSize)
		s.seedOrder(common.Sell, askPrice, askSize)
	}
}

// Level is one explicit (side, price, size) row for PopulateFromLevels,
// the Go analogue of the original's DataFrame-loaded initial book.
type Level struct {
	Side  common.Side
	Price float64
	Size  uint64
}

// PopulateFromLevels seeds the book from an explicit slice of levels.
func (s *Simulator) PopulateFromLevels(levels []Level) {
	for _, lvl := range levels {
		s.seedOrder(lvl.Side, lvl.Price, lvl.Size)
	}
}

func (s *Simulator) seedOrder(side common.Side, price float64, size uint64) {
	if size == 0 {
		return
	}
	id := uuid.NewString()
	order := common.Order{
		ID: id, ParentID: id, Side: side, Type: common.Limit,
		Size: size, Price: common.WithPrice(price), Timestamp: s.now,
	}
	events := s.Book.Process(order, s.now)
	_ = events // seeding events are not logged; the book is pre-run
}
