package analysis

import (
	"github.com/sarchlab/pagesim/sim"
)

// PerfAnalyzerEntry is a single entry in the performance database. Start and
// End are event indexes; the entry covers events Start+1 to End.
type PerfAnalyzerEntry struct {
	Start     uint64
	End       uint64
	Where     string
	What      string
	EntryType string
	Value     float64
	Unit      string
}

// PerfLogger is the interface that provide the service that can record
// performance data entries.
type PerfLogger interface {
	AddDataEntry(entry PerfAnalyzerEntry)
}

// PerfAnalyzer reports how page faults and write-backs evolve over a run, one
// set of entries per period of events.
type PerfAnalyzer struct {
	period    uint64
	backend   PerfAnalyzerBackend
	analyzers []*FaultAnalyzer
}

// RegisterSimulation attaches a FaultAnalyzer to the simulation.
func (p *PerfAnalyzer) RegisterSimulation(s *sim.Simulation) *FaultAnalyzer {
	a := &FaultAnalyzer{
		PerfLogger: p,
		simID:      s.ID(),
		where:      s.Name(),
		period:     p.period,
	}

	s.AcceptHook(a)
	p.analyzers = append(p.analyzers, a)

	return a
}

// AddDataEntry adds a data entry to the backend.
func (p *PerfAnalyzer) AddDataEntry(entry PerfAnalyzerEntry) {
	p.backend.AddDataEntry(entry)
}

// Flush summarizes the unfinished periods and flushes the backend.
func (p *PerfAnalyzer) Flush() {
	for _, a := range p.analyzers {
		a.Summarize()
	}

	p.backend.Flush()
}

// RunStarted registers every probed simulation, so that a PerfAnalyzer can
// observe a Prober.
func (p *PerfAnalyzer) RunStarted(s *sim.Simulation) {
	p.RegisterSimulation(s)
}

// RunFinished summarizes the last period of the run.
func (p *PerfAnalyzer) RunFinished(s *sim.Simulation, _ sim.State, _ error) {
	remaining := p.analyzers[:0]
	for _, a := range p.analyzers {
		if a.simID == s.ID() {
			a.Summarize()
			continue
		}

		remaining = append(remaining, a)
	}

	p.analyzers = remaining
}

// PerfAnalyzerBuilder is a builder that can build a PerfAnalyzer.
type PerfAnalyzerBuilder struct {
	period      uint64
	backendType string
	dbFilename  string
	backend     PerfAnalyzerBackend
}

// MakePerfAnalyzerBuilder creates a new PerfAnalyzerBuilder.
func MakePerfAnalyzerBuilder() PerfAnalyzerBuilder {
	return PerfAnalyzerBuilder{
		period:      10000,
		backendType: "csv",
		dbFilename:  "perf",
	}
}

// WithPeriod sets the number of events summarized by each entry.
func (b PerfAnalyzerBuilder) WithPeriod(period uint64) PerfAnalyzerBuilder {
	b.period = period
	return b
}

// WithSQLiteBackend sets the backend of the PerfAnalyzer to be a SQLite.
func (b PerfAnalyzerBuilder) WithSQLiteBackend() PerfAnalyzerBuilder {
	b.backendType = "sqlite"
	return b
}

// WithDBFilename sets the filename of the database file, without extension.
func (b PerfAnalyzerBuilder) WithDBFilename(
	filename string,
) PerfAnalyzerBuilder {
	b.dbFilename = filename
	return b
}

// WithBackend sets an already created backend.
func (b PerfAnalyzerBuilder) WithBackend(
	backend PerfAnalyzerBackend,
) PerfAnalyzerBuilder {
	b.backend = backend
	return b
}

// Build creates a PerfAnalyzer.
func (b PerfAnalyzerBuilder) Build() *PerfAnalyzer {
	if b.period == 0 {
		panic("period must be positive")
	}

	backend := b.backend
	if backend == nil {
		switch b.backendType {
		case "csv":
			backend = NewCSVPerfAnalyzerBackend(b.dbFilename)
		case "sqlite":
			backend = NewSQLitePerfAnalyzerBackend(b.dbFilename)
		default:
			panic("Unknown backend type")
		}
	}

	return &PerfAnalyzer{
		period:  b.period,
		backend: backend,
	}
}
