// Package visit tracks which subsequence start positions a search has
// already examined.
package visit

import (
	"math/rand/v2"

	"github.com/bits-and-blooms/bitset"

	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// NoPosition is returned by NextRandomUnvisited once every position has
// been visited.
const NoPosition = -1

// sparseRatio is the unvisited fraction below which sampling switches from
// rejection to selecting the k-th clear bit directly.
const sparseRatio = 16

// Registry is a fixed-capacity visited set with uniform sampling of the
// positions that are still unvisited.
type Registry struct {
	bits      *bitset.BitSet
	capacity  int
	unvisited int
	rng       *rand.Rand
}

// New returns a registry over positions [0, capacity) drawing from rng. A nil
// rng is seeded from the runtime.
func New(capacity int, rng *rand.Rand) *Registry {
	if capacity < 0 {
		capacity = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Registry{
		bits:      bitset.New(uint(capacity)),
		capacity:  capacity,
		unvisited: capacity,
		rng:       rng,
	}
}

// NewSeeded returns a registry with a deterministic generator.
func NewSeeded(capacity int, seed uint64) *Registry {
	return New(capacity, rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d)))
}

func (r *Registry) Capacity() int { return r.capacity }

func (r *Registry) UnvisitedCount() int { return r.unvisited }

func (r *Registry) check(pos int) error {
	if pos < 0 || pos >= r.capacity {
		return apperrors.Newf(apperrors.ErrIndexOutOfBounds, "visit", "position %d outside [0, %d)", pos, r.capacity)
	}
	return nil
}

func (r *Registry) MarkVisited(pos int) error {
	if err := r.check(pos); err != nil {
		return err
	}
	r.set(uint(pos))
	return nil
}

func (r *Registry) set(p uint) {
	if !r.bits.Test(p) {
		r.bits.Set(p)
		r.unvisited--
	}
}

// MarkRange marks [from, to) visited. Both ends are bounds-checked; an empty
// range is a no-op.
func (r *Registry) MarkRange(from, to int) error {
	if to <= from {
		return nil
	}
	if err := r.check(from); err != nil {
		return err
	}
	if err := r.check(to - 1); err != nil {
		return err
	}
	for p := from; p < to; p++ {
		r.set(uint(p))
	}
	return nil
}

func (r *Registry) IsVisited(pos int) (bool, error) {
	if err := r.check(pos); err != nil {
		return false, err
	}
	return r.bits.Test(uint(pos)), nil
}

// NextRandomUnvisited draws a uniformly random unvisited position without
// marking it, or returns NoPosition when none remain.
func (r *Registry) NextRandomUnvisited() int {
	if r.unvisited == 0 {
		return NoPosition
	}
	if r.unvisited*sparseRatio >= r.capacity {
		for {
			p := r.rng.IntN(r.capacity)
			if !r.bits.Test(uint(p)) {
				return p
			}
		}
	}
	k := r.rng.IntN(r.unvisited)
	p, ok := r.bits.NextClear(0)
	for ok && k > 0 {
		p, ok = r.bits.NextClear(p + 1)
		k--
	}
	if !ok || int(p) >= r.capacity {
		return NoPosition
	}
	return int(p)
}

// Clone returns an independent copy with its own generator derived from r's.
func (r *Registry) Clone() *Registry {
	return &Registry{
		bits:      r.bits.Clone(),
		capacity:  r.capacity,
		unvisited: r.unvisited,
		rng:       rand.New(rand.NewPCG(r.rng.Uint64(), r.rng.Uint64())),
	}
}
