package eviction

import "github.com/sarchlab/pagesim/vm"

// FIFOVictimFinder evicts the page whose entry was created first.
type FIFOVictimFinder struct {
}

// NewFIFOVictimFinder returns a newly constructed fifo evictor
func NewFIFOVictimFinder() *FIFOVictimFinder {
	e := new(FIFOVictimFinder)
	return e
}

// FindVictim returns the first empty slot, or the slot holding the oldest
// page.
func (e *FIFOVictimFinder) FindVictim(
	mem *vm.Memory,
	pageTable vm.PageTable,
) (int, error) {
	i, found, err := firstEmptySlot(mem)
	if err != nil || found {
		return i, err
	}

	return oldestBy(residentCandidates(mem, pageTable),
		func(e vm.PageTableEntry) uint64 { return e.CreatedAt })
}
