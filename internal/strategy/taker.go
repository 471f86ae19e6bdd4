package strategy

import (
	"math"

	"marketsim/internal/book"
	"marketsim/internal/common"
)

// SignalTaker schedules market orders off an EMA-smoothed Signal reading:
// long when the smoothed state clears +Sensitivity, short when it clears
// -Sensitivity, gated by a cooldown since its last trade.
type SignalTaker struct {
	*BaseStrategy

	signal      Signal
	smoothing   float64
	sensitivity float64
	cashBuffer  float64
	cooldown    float64

	state         float64
	lastTradeTime float64
	hasTraded     bool
}

// NewSignalTaker builds a signal-driven taker. smoothing, sensitivity,
// cashBuffer, and cooldown follow the strategy contract's named EMA/firing
// parameters.
func NewSignalTaker(base *BaseStrategy, sig Signal, smoothing, sensitivity, cashBuffer, cooldown float64) *SignalTaker {
	return &SignalTaker{
		BaseStrategy: base,
		signal:       sig,
		smoothing:    smoothing,
		sensitivity:  sensitivity,
		cashBuffer:   cashBuffer,
		cooldown:     cooldown,
	}
}

// NewMomentumTaker builds a SignalTaker driven by tanh-normalized mid
// momentum.
func NewMomentumTaker(base *BaseStrategy, lookback int, scale, smoothing, sensitivity, cashBuffer, cooldown float64) *SignalTaker {
	return NewSignalTaker(base, MomentumSignal{Lookback: lookback, Scale: scale}, smoothing, sensitivity, cashBuffer, cooldown)
}

// NewImbalanceTaker builds a SignalTaker driven by top-of-book bid/ask
// size imbalance.
func NewImbalanceTaker(base *BaseStrategy, levels int, smoothing, sensitivity, cashBuffer, cooldown float64) *SignalTaker {
	return NewSignalTaker(base, ImbalanceSignal{Levels: levels}, smoothing, sensitivity, cashBuffer, cooldown)
}

func (s *SignalTaker) Step(now float64, bk *book.Book, hist History) (cancels, news []common.Order) {
	raw := s.signal.Compute(bk, hist)
	s.state = s.smoothing*raw + (1-s.smoothing)*s.state

	if s.hasTraded && now-s.lastTradeTime < s.cooldown {
		return nil, nil
	}

	switch {
	case s.state > s.sensitivity:
		bestAsk := bk.BestAsk().PriceOrZero()
		if bestAsk <= 0 {
			return nil, nil
		}
		size := math.Floor(s.Cash * (1 - s.cashBuffer) * s.state / bestAsk)
		if size <= 0 {
			return nil, nil
		}
		s.fireMarketOrder(now, bk, common.Buy, uint64(size))
	case s.state < -s.sensitivity:
		size := math.Floor(math.Abs(s.state) * float64(s.Inventory))
		if size <= 0 {
			return nil, nil
		}
		s.fireMarketOrder(now, bk, common.Sell, uint64(size))
	default:
		return nil, nil
	}

	return nil, s.BaseStrategy.DueChildren(now, bk)
}

// fireMarketOrder schedules total via Block execution so it becomes due on
// this same tick, and marks the cooldown clock.
func (s *SignalTaker) fireMarketOrder(now float64, bk *book.Book, side common.Side, size uint64) {
	if _, err := s.ScheduleOrder(now, float64(size), side, Block{}); err != nil {
		return
	}
	s.lastTradeTime = now
	s.hasTraded = true
}
