package engine

import "math/rand"

// RNG wraps math/rand.Rand with deterministic position tracking. Each
// session owns its own RNG so concurrent sessions stay independently
// reproducible. Position increments with every draw, enabling exact
// restoration from a save.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed this RNG was created from.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a random integer in [0, n).
func (r *RNG) Intn(n int) int {
	r.pos++
	return r.src.Intn(n)
}

// Chance returns true with probability p (clamped to [0, 1]).
func (r *RNG) Chance(p float64) bool {
	r.pos++
	return r.src.Float64() < p
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty; entries below 1 are treated as 1 so every
// candidate keeps a non-zero probability.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		if w < 1 {
			w = 1
		}
		total += w
	}
	r.pos++
	roll := r.src.Intn(total)
	cumulative := 0
	for i, w := range weights {
		if w < 1 {
			w = 1
		}
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// RestoreRNG creates an RNG and advances it to the given position,
// reproducing the exact stream state recorded in a save.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.src.Int63()
	}
	rng.pos = position
	return rng
}
