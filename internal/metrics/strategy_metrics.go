package metrics

// StrategySample is one sampling boundary's agent-performance snapshot.
type StrategySample struct {
	Time            float64
	Cash            float64
	Inventory       uint64
	RealizedPnL     float64
	UnrealizedPnL   float64
	TotalPnL        float64
	Equity          float64
	AverageSlippage float64
	CumulativeSlip  float64
	TradeCount      int
}

// StrategyMetrics accumulates one StrategySample per sampling boundary and
// derives performance statistics from the equity series on demand.
type StrategyMetrics struct {
	samples []StrategySample
}

// NewStrategyMetrics returns an empty metrics series.
func NewStrategyMetrics() *StrategyMetrics {
	return &StrategyMetrics{}
}

// Record snapshots the agent's current cash/inventory/slippage state
// against the current mid price.
func (m *StrategyMetrics) Record(now, cash, initialCash float64, inventory uint64, mid, avgSlippage, cumSlippage float64, tradeCount int) {
	realized := cash - initialCash
	unrealized := float64(inventory) * mid
	m.samples = append(m.samples, StrategySample{
		Time:            now,
		Cash:            cash,
		Inventory:       inventory,
		RealizedPnL:     realized,
		UnrealizedPnL:   unrealized,
		TotalPnL:        realized + unrealized,
		Equity:          cash + unrealized,
		AverageSlippage: avgSlippage,
		CumulativeSlip:  cumSlippage,
		TradeCount:      tradeCount,
	})
}

// Samples returns every recorded sample in recording order.
func (m *StrategyMetrics) Samples() []StrategySample {
	return m.samples
}

// EquitySeries returns the recorded equity series.
func (m *StrategyMetrics) EquitySeries() []float64 {
	out := make([]float64, len(m.samples))
	for i, s := range m.samples {
		out[i] = s.Equity
	}
	return out
}

// Stats derives annualized return/volatility, Sharpe, and max drawdown
// from the equity series.
func (m *StrategyMetrics) Stats(stepSeconds, riskFreeRate float64) DerivedStats {
	return deriveStats(m.EquitySeries(), stepSeconds, riskFreeRate)
}

// Reset discards every recorded sample.
func (m *StrategyMetrics) Reset() {
	m.samples = nil
}
