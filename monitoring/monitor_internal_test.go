package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm/eviction"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func buildSimulation(lines ...string) *sim.Simulation {
	reader, err := trace.NewLinesSource("t", lines...).Open()
	Expect(err).ToNot(HaveOccurred())

	s, err := sim.MakeBuilder().
		WithNumPages(1).
		WithPolicy(eviction.PolicyFIFO).
		WithTrace(reader).
		Build("t-fifo-1")
	Expect(err).ToNot(HaveOccurred())

	return s
}

func get(m *Monitor, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	m.createRouter().ServeHTTP(rec, req)

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should fall back to a random port", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})

	It("should create and complete progress bars", func() {
		bar1 := m.CreateProgressBar("a", 10)
		bar2 := m.CreateProgressBar("b", 0)

		bar1.IncrementFinished(3)
		m.CompleteProgressBar(bar2)

		bars := m.ProgressBars()
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("a"))
		Expect(bars[0].Finished).To(Equal(uint64(3)))
	})

	It("should track the progress of a run", func() {
		s := buildSimulation("0 W", "1000 R", "0 R")

		m.RunStarted(s)
		_, _, err := s.Advance()
		Expect(err).ToNot(HaveOccurred())
		_, _, err = s.Advance()
		Expect(err).ToNot(HaveOccurred())

		bars := m.ProgressBars()
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("t-fifo-1"))
		Expect(bars[0].Finished).To(Equal(uint64(2)))

		runs := m.Runs()
		Expect(runs).To(HaveLen(1))
		Expect(runs[0].TotalEvents).To(Equal(uint64(2)))
		Expect(runs[0].WriteCount).To(Equal(uint64(1)))
		Expect(runs[0].Done).To(BeFalse())
	})

	It("should keep finished runs and drop their progress bars", func() {
		s := buildSimulation("0 W", "1000 R")

		m.RunStarted(s)
		state, err := s.Run()
		Expect(err).ToNot(HaveOccurred())
		m.RunFinished(s, state, nil)

		Expect(m.ProgressBars()).To(BeEmpty())

		runs := m.Runs()
		Expect(runs).To(HaveLen(1))
		Expect(runs[0].Done).To(BeTrue())
		Expect(runs[0].ReadCount).To(Equal(uint64(2)))
		Expect(runs[0].Error).To(BeEmpty())
	})

	It("should record the error of a failed run", func() {
		s := buildSimulation("zz R")

		m.RunStarted(s)
		state, err := s.Run()
		Expect(err).To(HaveOccurred())
		m.RunFinished(s, state, err)

		Expect(m.Runs()[0].Error).To(ContainSubstring("malformed"))
	})

	Context("when serving", func() {
		var s *sim.Simulation

		BeforeEach(func() {
			s = buildSimulation("0 W", "1000 R")
			m.RunStarted(s)
			_, err := s.Run()
			Expect(err).ToNot(HaveOccurred())
		})

		It("should list progress bars", func() {
			rec := get(m, "/api/progress")

			Expect(rec.Code).To(Equal(http.StatusOK))

			var bars []map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
			Expect(bars).To(HaveLen(1))
			Expect(bars[0]["finished"]).To(BeNumerically("==", 2))
		})

		It("should list runs", func() {
			rec := get(m, "/api/runs")

			var runs []RunInfo
			Expect(json.Unmarshal(rec.Body.Bytes(), &runs)).To(Succeed())
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].ID).To(Equal(s.ID()))
			Expect(runs[0].Policy).To(Equal("fifo"))
		})

		It("should serialize a run", func() {
			rec := get(m, "/api/run/"+s.ID())

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("t-fifo-1"))
		})

		It("should report unknown runs", func() {
			rec := get(m, "/api/run/nothing")

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("should reject malformed field requests", func() {
			rec := get(m, "/api/field/notjson")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should report resource usage", func() {
			rec := get(m, "/api/resource")

			var rsp resourceRsp
			Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
			Expect(rsp.MemorySize).To(BeNumerically(">", 0))
		})

		It("should serve the web page", func() {
			rec := get(m, "/")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
		})
	})
})
