package orderflow_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketsim/internal/common"
	"marketsim/internal/config"
	"marketsim/internal/orderflow"
	"marketsim/internal/rng"
)

func baseParams() config.OrderflowParams {
	return config.OrderflowParams{
		OrderBernoulli: config.OrderBernoulli{
			LimitBuy: 0.4, LimitSell: 0.4, MarketBuy: 0.1, MarketSell: 0.1, Cancel: 0,
		},
		SizeDistribution: config.SizeDistribution{
			Mu: 2.0, Sigma: 1.0, MinSize: 1, MaxSize: 50,
		},
		PlacementDistribution: config.PlacementDistribution{
			PGeom: 0.3, MaxDistance: 20, RPointmass: 0.5, AlphaZipf: 2.0,
		},
	}
}

func emptySide() (common.Order, common.Order) {
	return common.Order{ID: "-1"}, common.Order{ID: "-1"}
}

func TestGenOrder_ActionMixture_MatchesWeightsRoughly(t *testing.T) {
	params := baseParams()
	params.OrderBernoulli = config.OrderBernoulli{MarketBuy: 0.5, MarketSell: 0.5}
	r := rng.New(42)
	g := orderflow.New(r, params, 0.01, 100.0)
	bestAsk, bestBid := emptySide()

	var buys, sells int
	const n = 4000
	for i := 0; i < n; i++ {
		o := g.GenOrder(bestAsk, bestBid)
		require.Equal(t, common.Market, o.Type)
		if o.Side == common.Buy {
			buys++
		} else {
			sells++
		}
	}
	frac := float64(buys) / float64(n)
	assert.InDelta(t, 0.5, frac, 0.05)
}

func TestGenOrder_CancelAction_ReturnsBareCancel(t *testing.T) {
	params := baseParams()
	params.OrderBernoulli = config.OrderBernoulli{Cancel: 1}
	r := rng.New(1)
	g := orderflow.New(r, params, 0.01, 100.0)
	bestAsk, bestBid := emptySide()

	o := g.GenOrder(bestAsk, bestBid)
	assert.Equal(t, common.Cancel, o.Type)
	assert.Equal(t, "", o.ID)
	assert.Equal(t, uint64(0), o.Size)
}

func TestGenOrder_Size_RespectsConfiguredBounds(t *testing.T) {
	params := baseParams()
	params.OrderBernoulli = config.OrderBernoulli{MarketBuy: 1}
	params.SizeDistribution = config.SizeDistribution{Mu: 5, Sigma: 3, MinSize: 2, MaxSize: 10}
	r := rng.New(9)
	g := orderflow.New(r, params, 0.01, 100.0)
	bestAsk, bestBid := emptySide()

	for i := 0; i < 500; i++ {
		o := g.GenOrder(bestAsk, bestBid)
		assert.GreaterOrEqual(t, o.Size, uint64(2))
		assert.LessOrEqual(t, o.Size, uint64(10))
	}
}

func TestGenOrder_LimitPrice_FallsBackToInitialPriceOnEmptyBook(t *testing.T) {
	params := baseParams()
	params.OrderBernoulli = config.OrderBernoulli{LimitBuy: 1}
	r := rng.New(5)
	g := orderflow.New(r, params, 0.5, 200.0)
	bestAsk, bestBid := emptySide()

	for i := 0; i < 200; i++ {
		o := g.GenOrder(bestAsk, bestBid)
		require.True(t, o.HasPrice())
		price := *o.Price
		assert.GreaterOrEqual(t, price, 0.0)
		// anchored on the initial price: at most max_distance (20) ticks away
		assert.InDelta(t, 200.0, price, 20*0.5)
		// price must land on a tick boundary of 0.5 starting from 0
		ticks := price / 0.5
		assert.InDelta(t, math.Round(ticks), ticks, 1e-9)
	}
}

func TestGenOrder_LimitPrice_AnchorsToSameSideBest(t *testing.T) {
	params := baseParams()
	params.OrderBernoulli = config.OrderBernoulli{LimitBuy: 1}
	params.PlacementDistribution.RPointmass = 1 // force the point-mass (geometric) branch
	params.PlacementDistribution.PGeom = 1      // geometric(1) always draws displacement 0
	r := rng.New(2)
	g := orderflow.New(r, params, 0.01, 100.0)

	bestBid := common.Order{ID: "b1", Price: common.WithPrice(99.5)}
	bestAsk := common.Order{ID: "-1"}

	o := g.GenOrder(bestAsk, bestBid)
	require.True(t, o.HasPrice())
	assert.InDelta(t, 99.5, *o.Price, 1e-9)
}
