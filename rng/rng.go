// Package rng defines the random source threaded through the simulation.
package rng

import "math/rand"

// Source is the random source the simulation draws from.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// New returns a seeded pseudo-random source.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Bernoulli draws true with probability p.
func Bernoulli(src Source, p float64) bool {
	return src.Float64() < p
}

// Pick returns a uniformly chosen index into a collection of length n.
func Pick(src Source, n int) int {
	return src.Intn(n)
}
