package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm/eviction"
)

var _ = Describe("Builder", func() {
	var reader trace.LineReader

	BeforeEach(func() {
		reader, _ = trace.NewLinesSource("t", "0 R").Open()
	})

	It("should build a simulation", func() {
		s, err := MakeBuilder().
			WithNumPages(4).
			WithPolicy(eviction.PolicyFIFO).
			WithTrace(reader).
			Build("sim")

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name()).To(Equal("sim"))
		Expect(s.ID()).NotTo(BeEmpty())
		Expect(s.NumPages()).To(Equal(4))
		Expect(s.Policy()).To(Equal(eviction.PolicyFIFO))
		Expect(s.State()).To(BeZero())
		Expect(s.PageTable().Len()).To(Equal(0))
		Expect(s.Done()).To(BeFalse())
	})

	It("should give every simulation its own id", func() {
		b := MakeBuilder().WithNumPages(1).WithTrace(reader)

		s1, _ := b.Build("a")
		s2, _ := b.Build("b")

		Expect(s1.ID()).NotTo(Equal(s2.ID()))
	})

	DescribeTable("should reject invalid configurations",
		func(b Builder) {
			s, err := b.Build("sim")

			Expect(s).To(BeNil())
			Expect(errors.Is(err, ErrInvalidConfiguration)).To(BeTrue())
		},
		Entry("zero pages",
			MakeBuilder().WithNumPages(0).WithTrace(nopReader{})),
		Entry("negative pages",
			MakeBuilder().WithNumPages(-3).WithTrace(nopReader{})),
		Entry("unknown policy",
			MakeBuilder().WithNumPages(1).WithPolicy(eviction.Policy(9)).
				WithTrace(nopReader{})),
		Entry("unknown retention",
			MakeBuilder().WithNumPages(1).WithEntryRetention(EntryRetention(5)).
				WithTrace(nopReader{})),
		Entry("no trace", MakeBuilder().WithNumPages(1)),
	)

	It("should report unknown policies as such", func() {
		_, err := MakeBuilder().
			WithNumPages(1).
			WithPolicy(eviction.Policy(9)).
			WithTrace(reader).
			Build("sim")

		Expect(errors.Is(err, eviction.ErrUnknownPolicy)).To(BeTrue())
	})

	It("should not share hooks between builds", func() {
		b := MakeBuilder().WithNumPages(1).WithTrace(reader)
		b1 := b.WithHook(HookFunc(func(HookCtx) {}))
		b2 := b.WithHook(HookFunc(func(HookCtx) {}))

		s1, _ := b1.Build("a")
		s2, _ := b2.WithHook(HookFunc(func(HookCtx) {})).Build("b")

		Expect(s1.NumHooks()).To(Equal(1))
		Expect(s2.NumHooks()).To(Equal(2))
	})
})

type nopReader struct{}

func (nopReader) ReadLine() (string, error) {
	panic("should not read")
}
