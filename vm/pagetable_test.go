package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PageTable", func() {
	var pt PageTable

	BeforeEach(func() {
		pt = NewPageTable()
	})

	It("should insert and find", func() {
		pt.Insert(PageTableEntry{VirtualPageNumber: 3, CreatedAt: 1})

		entry, found := pt.Find(3)

		Expect(found).To(BeTrue())
		Expect(entry.CreatedAt).To(Equal(uint64(1)))
		Expect(pt.Len()).To(Equal(1))
	})

	It("should not find missing entries", func() {
		_, found := pt.Find(3)

		Expect(found).To(BeFalse())
	})

	It("should update", func() {
		pt.Insert(PageTableEntry{VirtualPageNumber: 3, CreatedAt: 1})

		pt.Update(PageTableEntry{
			VirtualPageNumber: 3,
			CreatedAt:         1,
			LastReferenced:    5,
			IsDirty:           true,
		})

		entry, _ := pt.Find(3)
		Expect(entry.LastReferenced).To(Equal(uint64(5)))
		Expect(entry.IsDirty).To(BeTrue())
	})

	It("should remove", func() {
		pt.Insert(PageTableEntry{VirtualPageNumber: 3})
		pt.Insert(PageTableEntry{VirtualPageNumber: 4})

		pt.Remove(3)

		_, found := pt.Find(3)
		Expect(found).To(BeFalse())
		Expect(pt.Len()).To(Equal(1))
	})

	It("should list entries in creation order", func() {
		pt.Insert(PageTableEntry{VirtualPageNumber: 9})
		pt.Insert(PageTableEntry{VirtualPageNumber: 2})
		pt.Insert(PageTableEntry{VirtualPageNumber: 5})
		pt.Remove(2)

		entries := pt.Entries()

		Expect(entries).To(HaveLen(2))
		Expect(entries[0].VirtualPageNumber).To(Equal(uint32(9)))
		Expect(entries[1].VirtualPageNumber).To(Equal(uint32(5)))
	})

	It("should panic when inserting an existing page", func() {
		pt.Insert(PageTableEntry{VirtualPageNumber: 3})

		Expect(func() { pt.Insert(PageTableEntry{VirtualPageNumber: 3}) }).
			To(Panic())
	})

	It("should panic when updating a missing page", func() {
		Expect(func() { pt.Update(PageTableEntry{VirtualPageNumber: 3}) }).
			To(Panic())
	})

	It("should panic when removing a missing page", func() {
		Expect(func() { pt.Remove(3) }).To(Panic())
	})
})
