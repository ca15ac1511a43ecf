package eviction

import "github.com/sarchlab/pagesim/vm"

// LRUVictimFinder evicts the least recently used page.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the first empty slot, or the slot whose page was
// referenced the longest time ago.
func (e *LRUVictimFinder) FindVictim(
	mem *vm.Memory,
	pageTable vm.PageTable,
) (int, error) {
	i, found, err := firstEmptySlot(mem)
	if err != nil || found {
		return i, err
	}

	return oldestBy(residentCandidates(mem, pageTable),
		func(e vm.PageTableEntry) uint64 { return e.LastReferenced })
}
