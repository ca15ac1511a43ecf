package vm

import (
	"fmt"
	"strings"
)

// A Slot is one physical page frame. It is either empty or holds the number
// of the virtual page loaded into it.
type Slot struct {
	VirtualPageNumber uint32
	Occupied          bool
}

// Memory is a fixed number of physical page frames.
type Memory struct {
	slots []Slot
}

// NewMemory creates a memory with numPages empty slots.
func NewMemory(numPages int) *Memory {
	return &Memory{
		slots: make([]Slot, numPages),
	}
}

// Len returns the number of slots.
func (m *Memory) Len() int {
	return len(m.slots)
}

// Slot returns the content of the i-th slot.
func (m *Memory) Slot(i int) Slot {
	return m.slots[i]
}

// FirstEmpty returns the index of the lowest empty slot. The bool return value
// is false if the memory is full.
func (m *Memory) FirstEmpty() (int, bool) {
	for i, s := range m.slots {
		if !s.Occupied {
			return i, true
		}
	}

	return 0, false
}

// Find returns the slot that holds the given page. It scans every slot, so
// the cost grows with the memory size.
func (m *Memory) Find(vpn uint32) (int, bool) {
	for i, s := range m.slots {
		if s.Occupied && s.VirtualPageNumber == vpn {
			return i, true
		}
	}

	return 0, false
}

// Contains tells if the given page is resident.
func (m *Memory) Contains(vpn uint32) bool {
	_, found := m.Find(vpn)
	return found
}

// Place loads a page into the i-th slot, replacing whatever was there.
func (m *Memory) Place(i int, vpn uint32) {
	m.slots[i] = Slot{VirtualPageNumber: vpn, Occupied: true}
}

// NumResident returns the number of occupied slots.
func (m *Memory) NumResident() int {
	n := 0
	for _, s := range m.slots {
		if s.Occupied {
			n++
		}
	}

	return n
}

func (m *Memory) String() string {
	b := new(strings.Builder)

	b.WriteString("[")
	for i, s := range m.slots {
		if i > 0 {
			b.WriteString(" ")
		}

		if s.Occupied {
			fmt.Fprintf(b, "0x%x", s.VirtualPageNumber)
		} else {
			b.WriteString("-")
		}
	}
	b.WriteString("]")

	return b.String()
}
