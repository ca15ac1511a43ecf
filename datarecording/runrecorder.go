package datarecording

import (
	"github.com/sarchlab/pagesim/sim"
)

const (
	runTable     = "runs"
	sampleTable  = "sweep_samples"
	minimumTable = "minimal_memory"
)

type runEntry struct {
	RunID       string
	Simulation  string
	Policy      string
	Pages       int
	TotalEvents uint64
	ReadCount   uint64
	WriteCount  uint64
	Completed   bool
	Error       string
}

type sampleEntry struct {
	Trace  string
	Policy string
	Pages  int
	Writes uint64
}

type minimumEntry struct {
	Trace  string
	Policy string
	Pages  int
}

// A RunRecorder stores the outcome of simulations, sweeps and searches in a
// DataRecorder.
type RunRecorder struct {
	recorder DataRecorder
}

// NewRunRecorder creates the tables that the RunRecorder writes into.
func NewRunRecorder(recorder DataRecorder) *RunRecorder {
	r := &RunRecorder{recorder: recorder}

	recorder.CreateTable(runTable, runEntry{})
	recorder.CreateTable(sampleTable, sampleEntry{})
	recorder.CreateTable(minimumTable, minimumEntry{})

	return r
}

// RunStarted does nothing. Runs are recorded when they finish.
func (r *RunRecorder) RunStarted(_ *sim.Simulation) {
	// Do nothing
}

// RunFinished records the last state of a simulation. A run that stopped
// before the end of the trace is recorded as not completed.
func (r *RunRecorder) RunFinished(s *sim.Simulation, state sim.State, err error) {
	entry := runEntry{
		RunID:       s.ID(),
		Simulation:  s.Name(),
		Policy:      s.Policy().String(),
		Pages:       s.NumPages(),
		TotalEvents: state.TotalEvents,
		ReadCount:   state.ReadCount,
		WriteCount:  state.WriteCount,
		Completed:   s.Done() && s.Err() == nil,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	r.recorder.InsertData(runTable, entry)
}

// RecordSample stores one point of a memory-size sweep.
func (r *RunRecorder) RecordSample(
	traceName, policy string,
	pages int,
	writes uint64,
) {
	r.recorder.InsertData(sampleTable, sampleEntry{
		Trace:  traceName,
		Policy: policy,
		Pages:  pages,
		Writes: writes,
	})
}

// RecordMinimalMemory stores the result of a minimal memory search.
func (r *RunRecorder) RecordMinimalMemory(traceName, policy string, pages int) {
	r.recorder.InsertData(minimumTable, minimumEntry{
		Trace:  traceName,
		Policy: policy,
		Pages:  pages,
	})
}
