// Package rng is the single deterministic pseudorandom source threaded
// through the order-flow generator, execution strategies, and any
// stochastic agent. One instance is created per run and passed explicitly
// everywhere a draw is needed — never captured in a global or
// thread-local.
package rng

import (
	"math"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// RNG wraps a seeded source and the handful of distributions the
// simulator's samplers need. Every sampling method draws from the same
// underlying source, so call order determines reproducibility.
type RNG struct {
	src  *xrand.Rand
	seed uint64
}

// New creates an RNG seeded deterministically. Two RNGs built with the same
// seed and drawn from in the same order produce identical sequences.
func New(seed uint64) *RNG {
	return &RNG{src: xrand.New(xrand.NewSource(seed)), seed: seed}
}

// Uniform draws from [low, high).
func (r *RNG) Uniform(low, high float64) float64 {
	return distuv.Uniform{Min: low, Max: high, Src: r.src}.Rand()
}

// Bernoulli returns true with probability p.
func (r *RNG) Bernoulli(p float64) bool {
	return distuv.Bernoulli{P: p, Src: r.src}.Rand() == 1
}

// LogNormal draws from a log-normal distribution parameterized by the
// underlying normal's mean and standard deviation.
func (r *RNG) LogNormal(mu, sigma float64) float64 {
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: r.src}.Rand()
}

// Geometric draws the number of Bernoulli(p) failures before the first
// success (i.e. the zero-inclusive, "number of failures" convention), via
// the standard inverse-CDF transform over a Uniform(0,1) draw.
func (r *RNG) Geometric(p float64) int {
	if p >= 1 {
		return 0
	}
	u := distuv.Uniform{Min: 0, Max: 1, Src: r.src}.Rand()
	trials := int(math.Floor(math.Log(1-u)/math.Log(1-p))) + 1
	return trials - 1
}

// zipfWeights caches the un-normalized-then-normalized Zipf probability
// mass for a given (alpha, maxValue) pair, matching the original model's
// discrete_zipf_prob precompute-then-categorical-draw approach.
func zipfWeights(alpha float64, maxValue int) []float64 {
	weights := make([]float64, maxValue)
	var sum float64
	for k := 0; k < maxValue; k++ {
		rank := float64(k + 1)
		w := 1.0 / math.Pow(rank, alpha)
		weights[k] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// DiscreteZipf draws a rank in [1, maxValue] from a Zipf(alpha) mass over
// that truncated support.
func (r *RNG) DiscreteZipf(alpha float64, maxValue int) int {
	weights := zipfWeights(alpha, maxValue)
	cat := distuv.NewCategorical(weights, r.src)
	return int(cat.Rand()) + 1
}

// Choice picks an index according to the given (already-normalized)
// weights, implementing the weighted categorical draw the order-flow
// generator uses to select an action type.
func (r *RNG) Choice(weights []float64) int {
	cat := distuv.NewCategorical(weights, r.src)
	return int(cat.Rand())
}

// Sign draws -1 or +1 with equal probability.
func (r *RNG) Sign() int {
	if r.Bernoulli(0.5) {
		return 1
	}
	return -1
}

// ChoiceString picks one element of ids uniformly at random. Used by the
// simulator to select a cancel target from the book's resting order ids.
func (r *RNG) ChoiceString(ids []string) string {
	idx := r.src.Intn(len(ids))
	return ids[idx]
}

// Seed reports the seed this RNG was constructed with, for logging.
func (r *RNG) Seed() uint64 {
	return r.seed
}
