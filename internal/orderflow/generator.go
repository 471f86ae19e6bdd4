// Package orderflow samples one exogenous order per simulation tick from a
// configured stochastic mixture, providing the background liquidity the
// strategy agents trade against.
package orderflow

import (
	"math"

	"github.com/google/uuid"

	"marketsim/internal/common"
	"marketsim/internal/config"
	"marketsim/internal/rng"
)

// action is the drawn flow type, in the fixed order the Bernoulli mixture
// weights are specified in.
type action int

const (
	actionLimitBuy action = iota
	actionLimitSell
	actionMarketBuy
	actionMarketSell
	actionCancel
)

// Generator draws one synthetic order per call, per the configured
// ORDERFLOW_PARAMS mixture. It holds no book state; callers pass the
// current best bid/ask so the generator stays a pure function of its RNG
// and those two reference prices.
type Generator struct {
	rng          *rng.RNG
	params       config.OrderflowParams
	tick         float64
	initialPrice float64
}

// New builds a Generator over the given RNG and configuration. tickSize and
// initialPrice come from SIM_PARAMS, not ORDERFLOW_PARAMS, since they are
// properties of the market the flow trades into.
func New(r *rng.RNG, params config.OrderflowParams, tickSize, initialPrice float64) *Generator {
	return &Generator{rng: r, params: params, tick: tickSize, initialPrice: initialPrice}
}

// GenOrder samples one order. A drawn cancel action returns a CANCEL order
// with an empty ID and Size 0; the simulator is responsible for
// filling in a concrete target id from the book's resting ids and skipping
// the tick if the book is empty.
func (g *Generator) GenOrder(bestAsk, bestBid common.Order) common.Order {
	act := action(g.rng.Choice(g.params.OrderBernoulli.Weights()))

	if act == actionCancel {
		return common.Order{Type: common.Cancel}
	}

	size := g.sampleSize()

	switch act {
	case actionMarketBuy:
		id := uuid.NewString()
		return common.Order{ID: id, ParentID: id, Side: common.Buy, Type: common.Market, Size: size}
	case actionMarketSell:
		id := uuid.NewString()
		return common.Order{ID: id, ParentID: id, Side: common.Sell, Type: common.Market, Size: size}
	}

	side := common.Buy
	if act == actionLimitSell {
		side = common.Sell
	}
	price := g.samplePrice(side, bestAsk, bestBid)
	id := uuid.NewString()
	return common.Order{ID: id, ParentID: id, Side: side, Type: common.Limit, Size: size, Price: &price}
}

// sampleSize draws a lognormal size, truncated to the configured bounds.
func (g *Generator) sampleSize() uint64 {
	d := g.params.SizeDistribution
	raw := g.rng.LogNormal(d.Mu, d.Sigma)
	size := uint64(math.Max(0, math.Trunc(raw)))
	if size < d.MinSize {
		size = d.MinSize
	}
	if size > d.MaxSize {
		size = d.MaxSize
	}
	return size
}

// samplePrice computes the reference price for the requested side, then
// displaces it by a signed, ticked distance: a point-mass near the spread
// mixed with a heavy Zipf tail for the rest of the book.
func (g *Generator) samplePrice(side common.Side, bestAsk, bestBid common.Order) float64 {
	ref := g.referencePrice(side, bestAsk, bestBid)

	displacement := g.sampleDisplacement()
	sign := g.rng.Sign()

	price := ref + float64(sign*displacement)*g.tickSize()
	price = math.Max(0, price)
	return roundToTick(price, g.tickSize())
}

// referencePrice prefers the same-side best, falling back to the opposite
// side's best, falling back to the configured initial price.
func (g *Generator) referencePrice(side common.Side, bestAsk, bestBid common.Order) float64 {
	sameSide, oppSide := bestBid, bestAsk
	if side == common.Sell {
		sameSide, oppSide = bestAsk, bestBid
	}
	if sameSide.ID != "-1" {
		return sameSide.PriceOrZero()
	}
	if oppSide.ID != "-1" {
		return oppSide.PriceOrZero()
	}
	return g.initialPrice
}

func (g *Generator) sampleDisplacement() int {
	pl := g.params.PlacementDistribution
	var d int
	if g.rng.Bernoulli(pl.RPointmass) {
		d = g.rng.Geometric(pl.PGeom)
	} else {
		d = g.rng.DiscreteZipf(pl.AlphaZipf, pl.MaxDistance)
	}
	if d > pl.MaxDistance {
		d = pl.MaxDistance
	}
	if d < 0 {
		d = 0
	}
	return d
}

func (g *Generator) tickSize() float64 {
	return g.tick
}

func roundToTick(price, tickSize float64) float64 {
	return math.Round(price/tickSize) * tickSize
}
