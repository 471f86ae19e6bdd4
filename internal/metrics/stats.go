// Package metrics records per-tick book and strategy state into
// time-aligned series and derives standard performance statistics
// (annualized return/volatility, Sharpe, max drawdown) from them on
// demand.
package metrics

import "math"

// AnnualTimeSeconds is a standard trading-year length: 252 sessions of
// 6.5 hours, used to annualize per-step returns.
const AnnualTimeSeconds = 252 * 6.5 * 60 * 60

// simpleReturns computes (level[i]-level[i-1])/level[i-1] for each
// consecutive pair in the series, skipping pairs whose earlier level is
// non-positive (a degenerate mid/equity) rather than producing Inf/NaN.
func simpleReturns(levels []float64) []float64 {
	if len(levels) < 2 {
		return nil
	}
	out := make([]float64, 0, len(levels)-1)
	for i := 1; i < len(levels); i++ {
		prev, cur := levels[i-1], levels[i]
		if prev <= 0 {
			continue
		}
		out = append(out, (cur-prev)/prev)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}

// annualizedVolatility scales the per-step return standard deviation up
// to a full trading year given the step length in seconds.
func annualizedVolatility(returns []float64, stepSeconds float64) float64 {
	if stepSeconds <= 0 {
		return 0
	}
	return stddev(returns) * math.Sqrt(AnnualTimeSeconds/stepSeconds)
}

// annualizedReturn compounds the per-step returns into a cumulative
// return, then annualizes it by the ratio of a trading year to the total
// elapsed time the series covers.
func annualizedReturn(returns []float64, stepSeconds float64) float64 {
	if len(returns) == 0 || stepSeconds <= 0 {
		return 0
	}
	cumulative := 1.0
	for _, r := range returns {
		cumulative *= 1 + r
	}
	totalSeconds := stepSeconds * float64(len(returns))
	if totalSeconds <= 0 {
		return 0
	}
	exponent := AnnualTimeSeconds / totalSeconds
	return math.Pow(cumulative, exponent) - 1
}

// maxDrawdown is the largest peak-to-trough decline observed in levels,
// expressed as a positive fraction (0 when the series is monotonically
// non-decreasing or too short to have a peak).
func maxDrawdown(levels []float64) float64 {
	if len(levels) == 0 {
		return 0
	}
	peak := levels[0]
	var worst float64
	for _, v := range levels {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		drawdown := (peak - v) / peak
		if drawdown > worst {
			worst = drawdown
		}
	}
	return worst
}

// sharpe is (annualized return - risk free rate) / annualized volatility,
// 0 when volatility is 0 (rather than propagating a division by zero).
func sharpe(annReturn, riskFree, annVol float64) float64 {
	if annVol == 0 {
		return 0
	}
	return (annReturn - riskFree) / annVol
}

// DerivedStats is the on-demand performance summary computed from a level
// series (mid for book metrics, equity for strategy metrics).
type DerivedStats struct {
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	MaxDrawdown          float64
	Sharpe               float64
}

func deriveStats(levels []float64, stepSeconds, riskFreeRate float64) DerivedStats {
	returns := simpleReturns(levels)
	annRet := annualizedReturn(returns, stepSeconds)
	annVol := annualizedVolatility(returns, stepSeconds)
	return DerivedStats{
		AnnualizedReturn:     annRet,
		AnnualizedVolatility: annVol,
		MaxDrawdown:          maxDrawdown(levels),
		Sharpe:               sharpe(annRet, riskFreeRate, annVol),
	}
}
