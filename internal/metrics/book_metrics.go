package metrics

import "marketsim/internal/book"

// BookSample is one sampling boundary's book snapshot.
type BookSample struct {
	Time         float64
	BestBid      float64
	BestAsk      float64
	Mid          float64
	Spread       float64
	BidSizeTotal uint64
	AskSizeTotal uint64
	BidDepth     int
	AskDepth     int
	TradeVolume  uint64
	TradeCount   int
}

// BookMetrics accumulates one BookSample per sampling boundary and derives
// performance statistics from the mid-price series on demand.
type BookMetrics struct {
	samples []BookSample
}

// NewBookMetrics returns an empty metrics series.
func NewBookMetrics() *BookMetrics {
	return &BookMetrics{}
}

// Record snapshots current book state plus the aggregated volume/count of
// a just-drained event batch.
func (m *BookMetrics) Record(now float64, bk *book.Book, drained []book.Event) {
	var volume uint64
	var count int
	for _, e := range drained {
		if t, ok := e.(book.TradeEvent); ok {
			volume += t.Size
			count++
		}
	}

	m.samples = append(m.samples, BookSample{
		Time:         now,
		BestBid:      bk.BestBid().PriceOrZero(),
		BestAsk:      bk.BestAsk().PriceOrZero(),
		Mid:          bk.Mid(),
		Spread:       bk.Spread(),
		BidSizeTotal: bk.BidSize(),
		AskSizeTotal: bk.AskSize(),
		BidDepth:     bk.BidDepth(),
		AskDepth:     bk.AskDepth(),
		TradeVolume:  volume,
		TradeCount:   count,
	})
}

// Samples returns every recorded sample in recording order.
func (m *BookMetrics) Samples() []BookSample {
	return m.samples
}

// MidSeries returns the recorded mid-price series. Satisfies the
// strategy package's History interface structurally.
func (m *BookMetrics) MidSeries() []float64 {
	out := make([]float64, len(m.samples))
	for i, s := range m.samples {
		out[i] = s.Mid
	}
	return out
}

// Stats derives annualized return/volatility, Sharpe, and max drawdown
// from the mid series. stepSeconds is the sampling interval (record_interval).
func (m *BookMetrics) Stats(stepSeconds, riskFreeRate float64) DerivedStats {
	return deriveStats(m.MidSeries(), stepSeconds, riskFreeRate)
}

// Reset discards every recorded sample.
func (m *BookMetrics) Reset() {
	m.samples = nil
}
