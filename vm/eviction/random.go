package eviction

import (
	"math/rand"

	"github.com/sarchlab/pagesim/vm"
)

// RandomVictimFinder evicts a uniformly chosen slot.
type RandomVictimFinder struct {
	rng *rand.Rand
}

// NewRandomVictimFinder returns a random evictor that draws from rng.
func NewRandomVictimFinder(rng *rand.Rand) *RandomVictimFinder {
	return &RandomVictimFinder{rng: rng}
}

// FindVictim returns the first empty slot, or a random slot if the memory is
// full.
func (e *RandomVictimFinder) FindVictim(
	mem *vm.Memory,
	_ vm.PageTable,
) (int, error) {
	i, found, err := firstEmptySlot(mem)
	if err != nil || found {
		return i, err
	}

	return e.rng.Intn(mem.Len()), nil
}
