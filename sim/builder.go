package sim

import (
	"fmt"
	"math/rand"

	"github.com/rs/xid"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm"
	"github.com/sarchlab/pagesim/vm/eviction"
)

// A Builder can build simulations.
type Builder struct {
	numPages     int
	policy       eviction.Policy
	randSource   rand.Source
	retention    EntryRetention
	reader       trace.LineReader
	victimFinder eviction.VictimFinder
	pageTable    vm.PageTable
	hooks        []Hook
}

// MakeBuilder creates a builder with LRU replacement and no trace.
func MakeBuilder() Builder {
	return Builder{
		policy:    eviction.PolicyLRU,
		retention: RemoveOnEvict,
	}
}

// WithNumPages sets the number of physical page frames.
func (b Builder) WithNumPages(n int) Builder {
	b.numPages = n
	return b
}

// WithPolicy sets the replacement policy.
func (b Builder) WithPolicy(p eviction.Policy) Builder {
	b.policy = p
	return b
}

// Policy returns the replacement policy that built simulations will use.
func (b Builder) Policy() eviction.Policy {
	return b.policy
}

// WithRandSource sets the source of randomness of the random policy. Without
// it, the random policy is seeded from the clock.
func (b Builder) WithRandSource(src rand.Source) Builder {
	b.randSource = src
	return b
}

// WithSeed seeds the random policy.
func (b Builder) WithSeed(seed int64) Builder {
	b.randSource = rand.NewSource(seed)
	return b
}

// WithEntryRetention sets what happens to the entries of clean evicted pages.
func (b Builder) WithEntryRetention(r EntryRetention) Builder {
	b.retention = r
	return b
}

// WithTrace sets the reader that the simulation consumes.
func (b Builder) WithTrace(r trace.LineReader) Builder {
	b.reader = r
	return b
}

// WithVictimFinder replaces the victim finder derived from the policy.
func (b Builder) WithVictimFinder(f eviction.VictimFinder) Builder {
	b.victimFinder = f
	return b
}

// WithPageTable sets the page table that the simulation uses. The page table
// must be empty.
func (b Builder) WithPageTable(pt vm.PageTable) Builder {
	b.pageTable = pt
	return b
}

// WithHook registers a hook on the simulation.
func (b Builder) WithHook(h Hook) Builder {
	hooks := make([]Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, h)

	return b
}

// Build returns a newly created simulation. It fails with
// ErrInvalidConfiguration before anything is read from the trace.
func (b Builder) Build(name string) (*Simulation, error) {
	err := b.validate()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		HookableBase: NewHookableBase(),
		name:         name,
		id:           xid.New().String(),
		policy:       b.policy,
		retention:    b.retention,
		reader:       b.reader,
		memory:       vm.NewMemory(b.numPages),
		pageTable:    b.pageTable,
		victimFinder: b.victimFinder,
	}

	if s.pageTable == nil {
		s.pageTable = vm.NewPageTable()
	}

	if s.victimFinder == nil {
		s.victimFinder, err = b.createVictimFinder()
		if err != nil {
			return nil, err
		}
	}

	for _, h := range b.hooks {
		s.AcceptHook(h)
	}

	return s, nil
}

func (b Builder) validate() error {
	if b.numPages <= 0 {
		return fmt.Errorf("%w: number of pages must be positive, got %d",
			ErrInvalidConfiguration, b.numPages)
	}

	if !b.policy.Valid() {
		return fmt.Errorf("%w: %w %s",
			ErrInvalidConfiguration, eviction.ErrUnknownPolicy, b.policy)
	}

	if b.retention != RemoveOnEvict && b.retention != RetainCleanEntries {
		return fmt.Errorf("%w: unknown entry retention %s",
			ErrInvalidConfiguration, b.retention)
	}

	if b.reader == nil {
		return fmt.Errorf("%w: no trace", ErrInvalidConfiguration)
	}

	return nil
}

func (b Builder) createVictimFinder() (eviction.VictimFinder, error) {
	var rng *rand.Rand
	if b.randSource != nil {
		rng = rand.New(b.randSource)
	}

	f, err := eviction.NewVictimFinder(b.policy, rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	return f, nil
}
