// Package eviction provides the page-replacement policies that decide which
// physical slot gives up its page when a page fault hits a full memory.
package eviction

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/sarchlab/pagesim/vm"
)

// ErrNoSlots is returned when a victim is requested from a memory without any
// slot.
var ErrNoSlots = errors.New("memory has no slot")

// ErrNoCandidate is returned when a full memory holds no page that the policy
// can evict.
var ErrNoCandidate = errors.New("no eviction candidate")

// ErrUnknownPolicy is returned when a policy name is not recognized.
var ErrUnknownPolicy = errors.New("unknown eviction policy")

// A VictimFinder decides which slot should be evicted.
type VictimFinder interface {
	FindVictim(mem *vm.Memory, pageTable vm.PageTable) (int, error)
}

// Policy enumerates the supported replacement policies.
type Policy int

// The supported policies.
const (
	PolicyRandom Policy = iota
	PolicyLRU
	PolicyFIFO
)

var policyNames = map[Policy]string{
	PolicyRandom: "random",
	PolicyLRU:    "lru",
	PolicyFIFO:   "fifo",
}

// AllPolicies lists the policies in the order reports use.
func AllPolicies() []Policy {
	return []Policy{PolicyLRU, PolicyFIFO, PolicyRandom}
}

func (p Policy) String() string {
	name, ok := policyNames[p]
	if !ok {
		return fmt.Sprintf("Policy(%d)", int(p))
	}

	return name
}

// Valid tells if p is one of the supported policies.
func (p Policy) Valid() bool {
	_, ok := policyNames[p]
	return ok
}

// ParsePolicy converts "random", "lru" or "fifo" into a Policy.
func ParsePolicy(name string) (Policy, error) {
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}

	names := make([]string, 0, len(policyNames))
	for _, n := range policyNames {
		names = append(names, n)
	}
	sort.Strings(names)

	return 0, fmt.Errorf("%w %q, expected one of %s",
		ErrUnknownPolicy, name, strings.Join(names, "|"))
}

// NewVictimFinder creates the victim finder of the given policy. The random
// number generator is only used by PolicyRandom; if it is nil, a generator
// seeded from the current time is created.
func NewVictimFinder(p Policy, rng *rand.Rand) (VictimFinder, error) {
	switch p {
	case PolicyRandom:
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}

		return NewRandomVictimFinder(rng), nil
	case PolicyLRU:
		return NewLRUVictimFinder(), nil
	case PolicyFIFO:
		return NewFIFOVictimFinder(), nil
	default:
		return nil, fmt.Errorf("%w %s", ErrUnknownPolicy, p)
	}
}

// firstEmptySlot implements the rule shared by all policies: an empty slot is
// always used before anything gets evicted.
func firstEmptySlot(mem *vm.Memory) (int, bool, error) {
	if mem.Len() == 0 {
		return 0, false, ErrNoSlots
	}

	i, found := mem.FirstEmpty()

	return i, found, nil
}

// A candidate is a resident page together with its page table entry.
type candidate struct {
	slot  int
	entry vm.PageTableEntry
}

// residentCandidates pairs each occupied slot with the entry of the page in
// it. Slots whose page has no entry are skipped.
func residentCandidates(
	mem *vm.Memory,
	pageTable vm.PageTable,
) []candidate {
	candidates := make([]candidate, 0, mem.Len())

	for i := 0; i < mem.Len(); i++ {
		slot := mem.Slot(i)
		if !slot.Occupied {
			continue
		}

		entry, found := pageTable.Find(slot.VirtualPageNumber)
		if !found {
			continue
		}

		candidates = append(candidates, candidate{slot: i, entry: entry})
	}

	return candidates
}

// oldestBy returns the slot of the candidate with the smallest key. Equal keys
// resolve to the lowest slot index.
func oldestBy(
	candidates []candidate,
	key func(vm.PageTableEntry) uint64,
) (int, error) {
	if len(candidates) == 0 {
		return 0, ErrNoCandidate
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if key(c.entry) < key(best.entry) {
			best = c
		}
	}

	return best.slot, nil
}
