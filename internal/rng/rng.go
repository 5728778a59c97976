// Package rng provides deterministic, per-module random sources derived from
// a single master seed. Each subsystem asks for its own named stream, so
// adding draws to one module never perturbs the sequences seen by another.
package rng

import (
	"hash/fnv"
	"math/rand"
)

// Registry derives independent streams from a master seed.
type Registry struct {
	seed int64
}

// NewRegistry creates a registry for the given master seed.
func NewRegistry(seed int64) *Registry {
	return &Registry{seed: seed}
}

// Seed returns the master seed.
func (r *Registry) Seed() int64 { return r.seed }

// Module returns the stream for the named subsystem. Calling Module twice
// with the same name yields two sources that produce identical sequences.
func (r *Registry) Module(name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(r.seed ^ int64(h.Sum64())))
}

// Bernoulli draws true with probability p.
func Bernoulli(r *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64() < p
}

// Choice picks an index with probability proportional to the given weights.
// Weights are renormalised, so they need not sum to one. Panics on an empty
// or all-zero weight slice.
func Choice(r *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if len(weights) == 0 || total <= 0 {
		panic("rng: choice over empty or zero-weight distribution")
	}
	x := r.Float64() * total
	for i, w := range weights {
		x -= w
		if x < 0 {
			return i
		}
	}
	return len(weights) - 1
}
