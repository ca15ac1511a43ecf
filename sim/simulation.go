// Package sim replays a memory-access trace against a fixed-size physical
// memory and counts page loads and write-backs.
package sim

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm"
	"github.com/sarchlab/pagesim/vm/eviction"
)

// A Simulation processes one trace, one access at a time. It owns its memory
// and page table; independent runs need independent simulations.
type Simulation struct {
	*HookableBase

	name         string
	id           string
	policy       eviction.Policy
	retention    EntryRetention
	reader       trace.LineReader
	victimFinder eviction.VictimFinder
	memory       *vm.Memory
	pageTable    vm.PageTable

	state State
	done  bool
	err   error
}

// Name returns the name given when the simulation was built.
func (s *Simulation) Name() string {
	return s.name
}

// ID returns a unique identifier of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Policy returns the replacement policy in use.
func (s *Simulation) Policy() eviction.Policy {
	return s.policy
}

// Retention returns what happens to the entries of clean victims.
func (s *Simulation) Retention() EntryRetention {
	return s.retention
}

// NumPages returns the number of physical page frames.
func (s *Simulation) NumPages() int {
	return s.memory.Len()
}

// Memory returns the physical memory. Callers must not modify it.
func (s *Simulation) Memory() *vm.Memory {
	return s.memory
}

// PageTable returns the page table. Callers must not modify it.
func (s *Simulation) PageTable() vm.PageTable {
	return s.pageTable
}

// State returns the statistics after the last processed access.
func (s *Simulation) State() State {
	return s.state
}

// Done tells if the trace is exhausted or the run has failed.
func (s *Simulation) Done() bool {
	return s.done || s.err != nil
}

// Err returns the error that stopped the run, if any.
func (s *Simulation) Err() error {
	return s.err
}

// Advance processes the next access of the trace and returns the updated
// statistics. The bool return value is false once the trace is exhausted.
// Any error is fatal: the simulation keeps returning it afterwards.
func (s *Simulation) Advance() (State, bool, error) {
	if s.err != nil {
		return s.state, false, s.err
	}

	if s.done {
		return s.state, false, nil
	}

	line, err := s.reader.ReadLine()
	if errors.Is(err, io.EOF) {
		s.done = true
		return s.state, false, nil
	}

	if err != nil {
		return s.fail(err)
	}

	op, err := vm.ParseOperation(line)
	if err != nil {
		return s.fail(fmt.Errorf("event %d: %w", s.state.TotalEvents+1, err))
	}

	err = s.access(op)
	if err != nil {
		return s.fail(fmt.Errorf("event %d: %w", s.state.TotalEvents+1, err))
	}

	return s.state, true, nil
}

// Run processes the whole trace and returns the final statistics.
func (s *Simulation) Run() (State, error) {
	for {
		state, ok, err := s.Advance()
		if err != nil {
			return state, err
		}

		if !ok {
			return state, nil
		}
	}
}

// Close releases the trace reader.
func (s *Simulation) Close() error {
	return trace.Close(s.reader)
}

func (s *Simulation) fail(err error) (State, bool, error) {
	s.err = err
	return s.state, false, err
}

// access applies one operation. The statistics are only committed once the
// access has completed.
func (s *Simulation) access(op vm.Operation) error {
	state := s.state
	state.TotalEvents++
	now := state.TotalEvents
	vpn := op.VirtualPageNumber

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosBeforeEvent, Item: op})

	if _, found := s.pageTable.Find(vpn); !found {
		s.pageTable.Insert(vm.PageTableEntry{
			VirtualPageNumber: vpn,
			CreatedAt:         now,
			LastReferenced:    now,
		})
	}

	if !s.memory.Contains(vpn) {
		err := s.handlePageFault(op, &state)
		if err != nil {
			return err
		}
	}

	entry, _ := s.pageTable.Find(vpn)
	entry.LastReferenced = now
	if op.Kind == vm.Write {
		entry.IsDirty = true
	}
	s.pageTable.Update(entry)

	s.state = state

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosAfterEvent,
		Item:   op,
		Detail: state,
	})

	return nil
}

func (s *Simulation) handlePageFault(op vm.Operation, state *State) error {
	slotIndex, err := s.victimFinder.FindVictim(s.memory, s.pageTable)
	if err != nil {
		return err
	}

	slot := s.memory.Slot(slotIndex)
	if slot.Occupied {
		s.evict(op, slotIndex, slot.VirtualPageNumber, state)
	}

	state.ReadCount++
	s.memory.Place(slotIndex, op.VirtualPageNumber)

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosPageFault,
		Item:   op,
		Detail: PageFaultDetail{
			Slot:              slotIndex,
			VirtualPageNumber: op.VirtualPageNumber,
		},
	})

	return nil
}

func (s *Simulation) evict(
	op vm.Operation,
	slotIndex int,
	victim uint32,
	state *State,
) {
	entry, found := s.pageTable.Find(victim)
	if !found {
		return
	}

	removed := false
	if entry.IsDirty {
		state.WriteCount++
		removed = true
	} else if s.retention == RemoveOnEvict {
		removed = true
	}

	if removed {
		s.pageTable.Remove(victim)
	}

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosEviction,
		Item:   op,
		Detail: EvictionDetail{
			Slot:              slotIndex,
			VirtualPageNumber: victim,
			WasDirty:          entry.IsDirty,
			EntryRemoved:      removed,
		},
	})
}
