// Package gen implements the Generator oracle: the single
// abstraction through which the engine asks for a nondeterministic choice.
// Running the same program through different Generators yields different
// executions — exhaustive DFS, or random sampling.
package gen

import (
	"math/big"
	"math/rand"
)

// Generator is consumed linearly and is single-owner per execution.
type Generator interface {
	// Bool returns a nondeterministic boolean choice.
	Bool() bool
	// Int returns a nondeterministic integer. If bound is nil the range is
	// unbounded (enumeration order 0, 1, -1, 2, -2, ...); otherwise
	// the result lies in [-bound, bound].
	Int(bound *big.Int) *big.Int
	// Index returns a nondeterministic choice in [0, n).
	Index(n int) int
}

// Random is a Generator backed by a seeded math/rand source.
type Random struct {
	rng  *rand.Rand
	seed int64
}

// NewRandom creates a Random generator with the given seed.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed returns the seed this generator was constructed with.
func (r *Random) Seed() int64 { return r.seed }

func (r *Random) Bool() bool { return r.rng.Intn(2) == 1 }

func (r *Random) Int(bound *big.Int) *big.Int {
	if bound == nil {
		// Unbounded: sample a small magnitude and a sign, matching the
		// "0, 1, -1, 2, -2, ..." enumeration order's spirit without
		// actually enumerating it.
		mag := int64(r.rng.Intn(1 << 20))
		if mag != 0 && r.rng.Intn(2) == 1 {
			mag = -mag
		}
		return big.NewInt(mag)
	}
	if bound.Sign() == 0 {
		return big.NewInt(0)
	}
	span := new(big.Int).Mul(bound, big.NewInt(2))
	span.Add(span, big.NewInt(1))
	n := new(big.Int).Rand(r.rng, span)
	n.Sub(n, bound)
	return n
}

func (r *Random) Index(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.Intn(n)
}

// Exhaustive is a stream-based DFS Generator: it replays a fixed choice
// sequence recorded on a previous pass, and past the end of that sequence
// takes the first alternative (index 0) at each new choice point. NextPath
// derives the following sequence by advancing the deepest choice point
// that still has untried alternatives. This
// lets a driver call Execute repeatedly with successive Exhaustive
// generators to enumerate every path depth-first, bounded by a solution
// count B.
type Exhaustive struct {
	// replay holds the choices (as alternative indices) made on a prior
	// run, consumed in order as this run makes the same sequence of
	// decisions.
	replay []int
	// next collects the choices this run actually makes, becoming the
	// next run's replay after incrementing the last entry that still has
	// untried alternatives.
	next []int
	pos  int
}

// NewExhaustive creates the first Exhaustive generator in a DFS
// enumeration (an empty replay always takes alternative 0 everywhere).
func NewExhaustive() *Exhaustive {
	return &Exhaustive{}
}

// Resume creates an Exhaustive generator that replays a prior choice
// sequence, used by a driver stepping to the next path in the
// enumeration.
func Resume(choices []int) *Exhaustive {
	return &Exhaustive{replay: choices}
}

func (e *Exhaustive) choose(n int) int {
	if n <= 0 {
		n = 1
	}
	var c int
	if e.pos < len(e.replay) {
		c = e.replay[e.pos]
		if c >= n {
			c = n - 1
		}
	} else {
		c = 0
	}
	e.pos++
	e.next = append(e.next, c)
	return c
}

func (e *Exhaustive) Bool() bool      { return e.choose(2) == 1 }
func (e *Exhaustive) Index(n int) int { return e.choose(n) }

func (e *Exhaustive) Int(bound *big.Int) *big.Int {
	// Enumerate 0, 1, -1, 2, -2, ..., the trivial solver's unbounded
	// order; Index selects how far into that sequence to go.
	span := 1 << 16
	if bound != nil && bound.IsInt64() {
		b := bound.Int64()
		if b >= 0 && b < int64(span) {
			span = int(b)*2 + 1
		}
	}
	i := e.choose(span)
	if i == 0 {
		return big.NewInt(0)
	}
	mag := int64((i + 1) / 2)
	if i%2 == 1 {
		return big.NewInt(mag)
	}
	return big.NewInt(-mag)
}

// Choices returns the sequence of alternative indices this run actually
// consumed, the seed a driver replays to resume or extend the DFS.
func (e *Exhaustive) Choices() []int {
	return e.next
}

// NextPath advances a completed choice sequence to the next untried
// sibling in DFS order: increment the last decision that still has
// untried alternatives, dropping everything after it. Returns false once
// every path up to len(choices) decisions has been tried (i.e. the whole
// tree down to that depth is exhausted).
func NextPath(choices []int, altCounts []int) ([]int, bool) {
	out := append([]int(nil), choices...)
	for i := len(out) - 1; i >= 0; i-- {
		max := 2
		if i < len(altCounts) {
			max = altCounts[i]
		}
		if out[i]+1 < max {
			out[i]++
			return out[:i+1], true
		}
		out = out[:i]
	}
	return nil, false
}
