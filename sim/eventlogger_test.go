package sim

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm/eviction"
)

var _ = Describe("EventLogger", func() {
	It("should print accesses and evictions", func() {
		buf := new(bytes.Buffer)
		logger := log.New(buf, "", 0)
		r, _ := trace.NewLinesSource("t", "1001 W", "2003 R").Open()

		s, err := MakeBuilder().
			WithNumPages(1).
			WithPolicy(eviction.PolicyLRU).
			WithTrace(r).
			WithHook(NewEventLogger(logger)).
			Build("sim")
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())

		out := buf.String()
		Expect(out).To(ContainSubstring(`Perform "Write" operation`))
		Expect(out).To(ContainSubstring(`Perform "Read" operation`))
		Expect(out).To(ContainSubstring(
			"virtual address     0b00000000000000000001000000000001"))
		Expect(out).To(ContainSubstring(
			"virtual page number 0b00000000000000000001"))
		Expect(out).To(ContainSubstring("0b000000000011"))
		Expect(out).To(ContainSubstring(
			"evict page 0x1 (dirty: true) from slot 0 to load page 0x2"))
	})

	It("should write to the standard logger by default", func() {
		h := NewEventLogger(nil)

		Expect(h.Logger).To(BeIdenticalTo(log.Default()))
	})
})
