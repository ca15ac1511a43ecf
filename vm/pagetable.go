package vm

import (
	"container/list"
	"fmt"
)

// A PageTableEntry holds what the simulation knows about a virtual page.
// Timestamps are logical times, not wall-clock times.
type PageTableEntry struct {
	VirtualPageNumber uint32
	IsDirty           bool
	CreatedAt         uint64
	LastReferenced    uint64
}

func (e PageTableEntry) String() string {
	return fmt.Sprintf(
		"PageTableEntry{vpn: 0x%x, dirty: %t, created_at: %d, last_referenced: %d}",
		e.VirtualPageNumber, e.IsDirty, e.CreatedAt, e.LastReferenced)
}

// A PageTable maps virtual page numbers to page table entries.
type PageTable interface {
	Insert(entry PageTableEntry)
	Remove(vpn uint32)
	Find(vpn uint32) (PageTableEntry, bool)
	Update(entry PageTableEntry)
	Len() int
	Entries() []PageTableEntry
}

// NewPageTable creates an empty PageTable.
func NewPageTable() PageTable {
	return &pageTableImpl{
		entries:      list.New(),
		entriesTable: make(map[uint32]*list.Element),
	}
}

// pageTableImpl keeps the entries in creation order so that dumps are
// deterministic, and indexes them by page number.
type pageTableImpl struct {
	entries      *list.List
	entriesTable map[uint32]*list.Element
}

// Insert adds a new entry. Inserting a page that already has an entry is a
// programming error.
func (pt *pageTableImpl) Insert(entry PageTableEntry) {
	pt.entryMustNotExist(entry.VirtualPageNumber)

	elem := pt.entries.PushBack(entry)
	pt.entriesTable[entry.VirtualPageNumber] = elem
}

// Remove discards the entry of the given page.
func (pt *pageTableImpl) Remove(vpn uint32) {
	pt.entryMustExist(vpn)

	elem := pt.entriesTable[vpn]
	pt.entries.Remove(elem)
	delete(pt.entriesTable, vpn)
}

// Find returns the entry of the given page. The bool return value indicates
// if the entry is found or not.
func (pt *pageTableImpl) Find(vpn uint32) (PageTableEntry, bool) {
	elem, found := pt.entriesTable[vpn]
	if !found {
		return PageTableEntry{}, false
	}

	return elem.Value.(PageTableEntry), true
}

// Update replaces an existing entry. The VirtualPageNumber field locates the
// entry to update.
func (pt *pageTableImpl) Update(entry PageTableEntry) {
	pt.entryMustExist(entry.VirtualPageNumber)

	elem := pt.entriesTable[entry.VirtualPageNumber]
	elem.Value = entry
}

// Len returns the number of entries.
func (pt *pageTableImpl) Len() int {
	return len(pt.entriesTable)
}

// Entries returns all the entries in creation order.
func (pt *pageTableImpl) Entries() []PageTableEntry {
	entries := make([]PageTableEntry, 0, pt.entries.Len())
	for e := pt.entries.Front(); e != nil; e = e.Next() {
		entries = append(entries, e.Value.(PageTableEntry))
	}

	return entries
}

func (pt *pageTableImpl) entryMustExist(vpn uint32) {
	_, found := pt.entriesTable[vpn]
	if !found {
		panic(fmt.Sprintf("page 0x%x does not exist", vpn))
	}
}

func (pt *pageTableImpl) entryMustNotExist(vpn uint32) {
	_, found := pt.entriesTable[vpn]
	if found {
		panic(fmt.Sprintf("page 0x%x exists", vpn))
	}
}
