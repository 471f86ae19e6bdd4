// Package sim orchestrates the discrete-time simulation loop: exogenous
// order flow, agent decisions, event dispatch, and sampled metric
// recording, in that fixed order every tick.
package sim

import (
	"marketsim/internal/book"
	"marketsim/internal/common"
	"marketsim/internal/config"
	"marketsim/internal/metrics"
	"marketsim/internal/orderflow"
	"marketsim/internal/rng"
	"marketsim/internal/simlog"
	"marketsim/internal/strategy"
)

// Simulator owns the book, the order-flow generator, the agent roster,
// the clock, and both metrics series. It is the sole writer of the clock.
type Simulator struct {
	Book      *book.Book
	Generator *orderflow.Generator
	RNG       *rng.RNG
	Agents    []strategy.Strategy

	BookMetrics *metrics.BookMetrics

	now            float64
	dt             float64
	horizon        float64
	recordInterval float64
	nextRecordTime float64
}

// New builds a Simulator from configuration. agents must already be
// constructed (with their own RNG-threaded BaseStrategy) and are stepped
// in the given order every tick, per the ordering guarantee in spec §4.4.
func New(cfg config.SimParams, r *rng.RNG, gen *orderflow.Generator, agents []strategy.Strategy) *Simulator {
	return &Simulator{
		Book:        book.New(cfg.TickSize),
		Generator:   gen,
		RNG:         r,
		Agents:      agents,
		BookMetrics: metrics.NewBookMetrics(),
		dt:          cfg.Dt,
		horizon:     cfg.Horizon,
		recordInterval: cfg.RecordInterval,
	}
}

// Now returns the current simulated clock time.
func (s *Simulator) Now() float64 { return s.now }

// Run drives the simulator from t=0 to horizon, one tick of length dt at
// a time.
func (s *Simulator) Run() {
	for s.now < s.horizon {
		s.tick()
		s.now += s.dt
	}
}

// tick executes one control-flow pass: orderflow, then every agent in
// registration order, then sampling if due.
func (s *Simulator) tick() {
	orderflowEvents := s.stepOrderflow()

	for _, agent := range s.Agents {
		s.stepAgent(agent, orderflowEvents)
	}

	if s.now >= s.nextRecordTime {
		s.sample()
		s.nextRecordTime += s.recordInterval
	}
}

// stepOrderflow draws and submits one exogenous order, filling in a
// concrete cancel target when the generator drew a CANCEL; a CANCEL tick
// is skipped entirely if the book has nothing resting.
func (s *Simulator) stepOrderflow() []book.Event {
	order := s.Generator.GenOrder(s.Book.BestAsk(), s.Book.BestBid())

	if order.Type == common.Cancel {
		ids := s.Book.AllOrderIDs()
		if len(ids) == 0 {
			return nil
		}
		order.ID = s.RNG.ChoiceString(ids)
	}

	events := s.Book.Process(order, s.now)
	simlog.LogEvents(s.now, events)
	return events
}

// stepAgent calls the agent's Step, submits its cancels then its new
// orders in order, and feeds each submission's own events plus this
// tick's orderflow events back into Update so the agent observes its own
// fills.
func (s *Simulator) stepAgent(agent strategy.Strategy, orderflowEvents []book.Event) {
	cancels, news := agent.Step(s.now, s.Book, s.BookMetrics)

	for _, c := range cancels {
		events := s.Book.Process(c, s.now)
		simlog.LogEvents(s.now, events)
		agent.Update(s.now, appendEvents(events, orderflowEvents))
	}
	for _, o := range news {
		events := s.Book.Process(o, s.now)
		simlog.LogEvents(s.now, events)
		agent.Update(s.now, appendEvents(events, orderflowEvents))
	}
}

func appendEvents(own, concurrent []book.Event) []book.Event {
	if len(concurrent) == 0 {
		return own
	}
	combined := make([]book.Event, 0, len(own)+len(concurrent))
	combined = append(combined, own...)
	combined = append(combined, concurrent...)
	return combined
}

// sample drains the bus as a whole and feeds the batch to book metrics and
// every agent's recorder.
func (s *Simulator) sample() {
	drained := s.Book.DrainEvents()
	s.BookMetrics.Record(s.now, s.Book, drained)
	for _, agent := range s.Agents {
		agent.Record(s.now, s.Book)
	}
}

// Reset discards the book, restarts the clock, reinitializes book
// metrics, and rebinds a fresh agent set; existing agents keep whatever
// state their own Reset leaves them in.
func (s *Simulator) Reset(tickSize float64, agents []strategy.Strategy) {
	s.Book = book.New(tickSize)
	s.BookMetrics.Reset()
	s.now = 0
	s.nextRecordTime = 0
	s.Agents = agents
}
