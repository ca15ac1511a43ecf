package eviction

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/pagesim/vm"
	"go.uber.org/mock/gomock"
)

func fullMemory(vpns ...uint32) *vm.Memory {
	mem := vm.NewMemory(len(vpns))
	for i, vpn := range vpns {
		mem.Place(i, vpn)
	}

	return mem
}

var _ = Describe("Policy", func() {
	DescribeTable("should parse names",
		func(name string, expected Policy) {
			p, err := ParsePolicy(name)

			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(expected))
			Expect(p.String()).To(Equal(name))
			Expect(p.Valid()).To(BeTrue())
		},
		Entry("random", "random", PolicyRandom),
		Entry("lru", "lru", PolicyLRU),
		Entry("fifo", "fifo", PolicyFIFO),
	)

	It("should reject unknown names", func() {
		_, err := ParsePolicy("clock")

		Expect(errors.Is(err, ErrUnknownPolicy)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("fifo|lru|random"))
	})

	It("should not build finders for unknown policies", func() {
		_, err := NewVictimFinder(Policy(42), nil)

		Expect(errors.Is(err, ErrUnknownPolicy)).To(BeTrue())
		Expect(Policy(42).Valid()).To(BeFalse())
	})

	It("should build one finder per policy", func() {
		f, _ := NewVictimFinder(PolicyRandom, nil)
		Expect(f).To(BeAssignableToTypeOf(&RandomVictimFinder{}))

		f, _ = NewVictimFinder(PolicyLRU, nil)
		Expect(f).To(BeAssignableToTypeOf(&LRUVictimFinder{}))

		f, _ = NewVictimFinder(PolicyFIFO, nil)
		Expect(f).To(BeAssignableToTypeOf(&FIFOVictimFinder{}))
	})
})

var _ = Describe("VictimFinders", func() {
	var (
		mockCtrl  *gomock.Controller
		pageTable *MockPageTable
		finders   map[string]VictimFinder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		pageTable = NewMockPageTable(mockCtrl)
		finders = map[string]VictimFinder{
			"random": NewRandomVictimFinder(rand.New(rand.NewSource(1))),
			"lru":    NewLRUVictimFinder(),
			"fifo":   NewFIFOVictimFinder(),
		}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should pick the first empty slot with any policy", func() {
		mem := vm.NewMemory(4)
		mem.Place(0, 7)
		mem.Place(2, 8)

		for name, f := range finders {
			i, err := f.FindVictim(mem, pageTable)

			Expect(err).NotTo(HaveOccurred(), name)
			Expect(i).To(Equal(1), name)
		}
	})

	It("should fail on memory without slots", func() {
		mem := vm.NewMemory(0)

		for name, f := range finders {
			_, err := f.FindVictim(mem, pageTable)

			Expect(errors.Is(err, ErrNoSlots)).To(BeTrue(), name)
		}
	})

	Context("lru", func() {
		It("should evict the least recently referenced page", func() {
			mem := fullMemory(10, 11, 12)
			pageTable.EXPECT().Find(uint32(10)).
				Return(vm.PageTableEntry{CreatedAt: 1, LastReferenced: 9}, true)
			pageTable.EXPECT().Find(uint32(11)).
				Return(vm.PageTableEntry{CreatedAt: 2, LastReferenced: 4}, true)
			pageTable.EXPECT().Find(uint32(12)).
				Return(vm.PageTableEntry{CreatedAt: 3, LastReferenced: 6}, true)

			i, err := finders["lru"].FindVictim(mem, pageTable)

			Expect(err).NotTo(HaveOccurred())
			Expect(i).To(Equal(1))
		})

		It("should break ties with the lowest slot", func() {
			mem := fullMemory(10, 11, 12)
			pageTable.EXPECT().Find(uint32(10)).
				Return(vm.PageTableEntry{LastReferenced: 9}, true)
			pageTable.EXPECT().Find(uint32(11)).
				Return(vm.PageTableEntry{LastReferenced: 3}, true)
			pageTable.EXPECT().Find(uint32(12)).
				Return(vm.PageTableEntry{LastReferenced: 3}, true)

			i, err := finders["lru"].FindVictim(mem, pageTable)

			Expect(err).NotTo(HaveOccurred())
			Expect(i).To(Equal(1))
		})

		It("should skip pages without entry", func() {
			mem := fullMemory(10, 11)
			pageTable.EXPECT().Find(uint32(10)).
				Return(vm.PageTableEntry{}, false)
			pageTable.EXPECT().Find(uint32(11)).
				Return(vm.PageTableEntry{LastReferenced: 3}, true)

			i, err := finders["lru"].FindVictim(mem, pageTable)

			Expect(err).NotTo(HaveOccurred())
			Expect(i).To(Equal(1))
		})

		It("should fail if no page has an entry", func() {
			mem := fullMemory(10)
			pageTable.EXPECT().Find(uint32(10)).
				Return(vm.PageTableEntry{}, false)

			_, err := finders["lru"].FindVictim(mem, pageTable)

			Expect(errors.Is(err, ErrNoCandidate)).To(BeTrue())
		})
	})

	Context("fifo", func() {
		It("should evict the page created first", func() {
			mem := fullMemory(10, 11, 12)
			pageTable.EXPECT().Find(uint32(10)).
				Return(vm.PageTableEntry{CreatedAt: 5, LastReferenced: 5}, true)
			pageTable.EXPECT().Find(uint32(11)).
				Return(vm.PageTableEntry{CreatedAt: 6, LastReferenced: 6}, true)
			pageTable.EXPECT().Find(uint32(12)).
				Return(vm.PageTableEntry{CreatedAt: 2, LastReferenced: 20}, true)

			i, err := finders["fifo"].FindVictim(mem, pageTable)

			Expect(err).NotTo(HaveOccurred())
			Expect(i).To(Equal(2))
		})

		It("should break ties with the lowest slot", func() {
			mem := fullMemory(10, 11)
			pageTable.EXPECT().Find(uint32(10)).
				Return(vm.PageTableEntry{CreatedAt: 1}, true)
			pageTable.EXPECT().Find(uint32(11)).
				Return(vm.PageTableEntry{CreatedAt: 1}, true)

			i, err := finders["fifo"].FindVictim(mem, pageTable)

			Expect(err).NotTo(HaveOccurred())
			Expect(i).To(Equal(0))
		})
	})

	Context("random", func() {
		It("should stay within the memory", func() {
			mem := fullMemory(1, 2, 3, 4)
			seen := map[int]bool{}

			for n := 0; n < 200; n++ {
				i, err := finders["random"].FindVictim(mem, pageTable)

				Expect(err).NotTo(HaveOccurred())
				Expect(i).To(BeNumerically(">=", 0))
				Expect(i).To(BeNumerically("<", 4))
				seen[i] = true
			}

			Expect(seen).To(HaveLen(4))
		})

		It("should repeat with the same seed", func() {
			mem := fullMemory(1, 2, 3, 4, 5, 6, 7, 8)
			a := NewRandomVictimFinder(rand.New(rand.NewSource(42)))
			b := NewRandomVictimFinder(rand.New(rand.NewSource(42)))

			for n := 0; n < 20; n++ {
				i, _ := a.FindVictim(mem, pageTable)
				j, _ := b.FindVictim(mem, pageTable)
				Expect(i).To(Equal(j))
			}
		})
	})
})
