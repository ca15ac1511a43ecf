package sim

import "fmt"

// State is the cumulative statistics of a run.
type State struct {
	// TotalEvents is the number of accesses processed.
	TotalEvents uint64 `json:"total_events"`

	// ReadCount is the number of page loads, one per page fault.
	ReadCount uint64 `json:"read_count"`

	// WriteCount is the number of dirty pages written back on eviction.
	WriteCount uint64 `json:"write_count"`
}

func (s State) String() string {
	return fmt.Sprintf("events: %d, reads: %d, writes: %d",
		s.TotalEvents, s.ReadCount, s.WriteCount)
}

// EvictionDetail describes the page pushed out by a page fault.
type EvictionDetail struct {
	Slot              int
	VirtualPageNumber uint32
	WasDirty          bool

	// EntryRemoved tells if the evicted page's entry left the page table.
	EntryRemoved bool
}

// PageFaultDetail describes where a faulting page was loaded.
type PageFaultDetail struct {
	Slot              int
	VirtualPageNumber uint32
}

// EntryRetention decides what happens to the page table entry of a clean
// page when it is evicted. Dirty pages always lose their entry.
type EntryRetention int

const (
	// RemoveOnEvict drops the entry of every evicted page, so a reloaded
	// page starts with fresh timestamps.
	RemoveOnEvict EntryRetention = iota

	// RetainCleanEntries keeps the entry of clean evicted pages. A reloaded
	// page then reuses its old creation time.
	RetainCleanEntries
)

func (r EntryRetention) String() string {
	switch r {
	case RemoveOnEvict:
		return "remove-on-evict"
	case RetainCleanEntries:
		return "retain-clean"
	default:
		return fmt.Sprintf("EntryRetention(%d)", int(r))
	}
}
