package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"marketsim/internal/book"
	"marketsim/internal/common"
	"marketsim/internal/config"
	"marketsim/internal/csvexport"
	"marketsim/internal/introspect"
	"marketsim/internal/orderflow"
	"marketsim/internal/rng"
	"marketsim/internal/sim"
	"marketsim/internal/strategy"
)

// ScenarioRun bundles a built Simulator with the agent names a scenario
// assigned (for the summary table) and a snapshot function for the
// introspection server.
type ScenarioRun struct {
	Simulator  *sim.Simulator
	AgentNames []string
}

// Snapshot renders the current book/metrics state for the introspection
// server.
func (r *ScenarioRun) Snapshot() introspect.Snapshot {
	return introspect.Snapshot{
		Now:         r.Simulator.Now(),
		Depth:       r.Simulator.Book.DepthSnapshot(50),
		BookMetrics: r.Simulator.BookMetrics,
	}
}

type scenarioFunc func(cfg config.Config) (*ScenarioRun, error)

func lookupScenario(name string) (scenarioFunc, error) {
	switch name {
	case "basic":
		return scenarioBasic, nil
	case "twap-taker":
		return scenarioTWAPTaker, nil
	case "market-maker":
		return scenarioMarketMaker, nil
	default:
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
}

func seedFrom(cfg config.Config) uint64 {
	if cfg.Sim.RandomSeed != nil {
		return *cfg.Sim.RandomSeed
	}
	return 42
}

func newSimulator(cfg config.Config, agents []strategy.Strategy) (*sim.Simulator, *rng.RNG) {
	r := rng.New(seedFrom(cfg))
	gen := orderflow.New(r, cfg.Orderflow, cfg.Sim.TickSize, cfg.Sim.InitialPrice)
	s := sim.New(cfg.Sim, r, gen, agents)
	s.PopulateRandom(20, cfg.Sim.TickSize, cfg.Sim.InitialPrice, cfg.Orderflow.SizeDistribution.MinSize, cfg.Orderflow.SizeDistribution.MaxSize)
	return s, r
}

// scenarioBasic runs pure exogenous order flow against an empty-then-seeded
// book with no agents: a baseline microstructure sanity run.
func scenarioBasic(cfg config.Config) (*ScenarioRun, error) {
	s, _ := newSimulator(cfg, nil)
	return &ScenarioRun{Simulator: s}, nil
}

// scenarioTWAPTaker runs a single agent that schedules one TWAP-sliced BUY
// parent order at the start of the run, alongside background order flow.
func scenarioTWAPTaker(cfg config.Config) (*ScenarioRun, error) {
	r := rng.New(seedFrom(cfg))
	gen := orderflow.New(r, cfg.Orderflow, cfg.Sim.TickSize, cfg.Sim.InitialPrice)

	base := strategy.NewBaseStrategy("twap-taker", 1_000_000, 0, r)
	taker := &twapAgent{
		BaseStrategy: base,
		twap: strategy.TWAP{
			Intervals: cfg.Strategy.Taker.TWAP.Intervals,
			Duration:  cfg.Strategy.Taker.TWAP.Duration,
		},
		size: float64(cfg.Strategy.Taker.TWAP.Intervals) * float64(cfg.Orderflow.SizeDistribution.MaxSize),
	}

	s := sim.New(cfg.Sim, r, gen, []strategy.Strategy{taker})
	s.PopulateRandom(20, cfg.Sim.TickSize, cfg.Sim.InitialPrice, cfg.Orderflow.SizeDistribution.MinSize, cfg.Orderflow.SizeDistribution.MaxSize)

	return &ScenarioRun{Simulator: s, AgentNames: []string{"twap-taker"}}, nil
}

// twapAgent schedules a single TWAP-sliced BUY parent order once, on its
// first Step, then lets BaseStrategy's scheduling machinery drip out the
// children over the configured duration.
type twapAgent struct {
	*strategy.BaseStrategy
	twap      strategy.TWAP
	size      float64
	scheduled bool
}

func (a *twapAgent) Step(now float64, bk *book.Book, hist strategy.History) (cancels, news []common.Order) {
	if !a.scheduled {
		if _, err := a.ScheduleOrder(now, a.size, common.Buy, a.twap); err == nil {
			a.scheduled = true
		}
	}
	return nil, a.DueChildren(now, bk)
}

// scenarioMarketMaker runs a single symmetric market maker against
// background order flow.
func scenarioMarketMaker(cfg config.Config) (*ScenarioRun, error) {
	r := rng.New(seedFrom(cfg))
	gen := orderflow.New(r, cfg.Orderflow, cfg.Sim.TickSize, cfg.Sim.InitialPrice)

	base := strategy.NewBaseStrategy("market-maker", 1_000_000, 0, r)
	maker := strategy.NewSymmetricMaker(
		base,
		cfg.Strategy.MarketMaker.BaseSpread,
		cfg.Strategy.MarketMaker.InventoryLimit,
		cfg.Strategy.MarketMaker.Gamma,
		cfg.Strategy.MarketMaker.QuoteSize,
		cfg.Strategy.MarketMaker.QuoteUpdateInterval,
	)

	s := sim.New(cfg.Sim, r, gen, []strategy.Strategy{maker})
	s.PopulateRandom(20, cfg.Sim.TickSize, cfg.Sim.InitialPrice, cfg.Orderflow.SizeDistribution.MinSize, cfg.Orderflow.SizeDistribution.MaxSize)

	return &ScenarioRun{Simulator: s, AgentNames: []string{"market-maker"}}, nil
}

func splitHostPort(hostport string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

func writeCSVs(dir string, run *ScenarioRun) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, "book_metrics.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := csvexport.WriteBookMetrics(f, run.Simulator.BookMetrics.Samples()); err != nil {
		return err
	}

	depthFile, err := os.Create(filepath.Join(dir, "depth_snapshot.csv"))
	if err != nil {
		return err
	}
	defer depthFile.Close()
	if err := csvexport.WriteDepthSnapshot(depthFile, run.Simulator.Book.DepthSnapshot(1000)); err != nil {
		return err
	}

	for i, agent := range run.Simulator.Agents {
		base, ok := strategyBase(agent)
		if !ok {
			continue
		}
		name := fmt.Sprintf("agent-%d", i)
		if i < len(run.AgentNames) {
			name = run.AgentNames[i]
		}
		agentFile, err := os.Create(filepath.Join(dir, fmt.Sprintf("strategy_metrics_%s.csv", name)))
		if err != nil {
			return err
		}
		err = csvexport.WriteStrategyMetrics(agentFile, base.Metrics.Samples())
		agentFile.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// strategyBase extracts the embedded *strategy.BaseStrategy from any
// concrete agent that embeds one, mirroring internal/sim/summary.go's
// baseOf helper for the same purpose in this package.
func strategyBase(agent strategy.Strategy) (*strategy.BaseStrategy, bool) {
	type baseHolder interface {
		Base() *strategy.BaseStrategy
	}
	if h, ok := agent.(baseHolder); ok {
		return h.Base(), true
	}
	return nil, false
}
