// Package analysis drives repeated simulations of a trace to answer questions
// about memory sizes, and records how faults evolve during a run.
package analysis

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm"
)

// ErrNoZeroWriteSize is returned when every probed memory size up to the
// limit causes write-backs.
var ErrNoZeroWriteSize = errors.New("no memory size without write-backs")

// A RunObserver is notified when a probe starts and ends.
type RunObserver interface {
	RunStarted(s *sim.Simulation)
	RunFinished(s *sim.Simulation, state sim.State, err error)
}

// A Prober runs one trace at different memory sizes. Every probe opens the
// trace again and builds an independent simulation.
type Prober struct {
	source    trace.Source
	builder   sim.Builder
	observers []RunObserver
	maxPages  int
}

// NewProber creates a Prober. The builder provides everything except the
// number of pages and the trace.
func NewProber(source trace.Source, builder sim.Builder) *Prober {
	return &Prober{
		source:   source,
		builder:  builder,
		maxPages: vm.MaxNumPages,
	}
}

// WithMaxPages bounds the memory sizes that the drivers will try.
func (p *Prober) WithMaxPages(n int) *Prober {
	p.maxPages = n
	return p
}

// MaxPages returns the largest memory size the drivers will try.
func (p *Prober) MaxPages() int {
	return p.maxPages
}

// AddObserver registers an observer that is notified about every probe.
func (p *Prober) AddObserver(o RunObserver) {
	p.observers = append(p.observers, o)
}

// RunToEnd replays the whole trace with numPages page frames.
func (p *Prober) RunToEnd(numPages int) (sim.State, error) {
	return p.probe(numPages, func(sim.State) bool { return false })
}

// RunUntilWrite replays the trace with numPages page frames, stopping at the
// first write-back. The bool return value is true if the whole trace ran
// without any write-back.
func (p *Prober) RunUntilWrite(numPages int) (bool, sim.State, error) {
	state, err := p.probe(numPages, func(s sim.State) bool {
		return s.WriteCount > 0
	})
	if err != nil {
		return false, state, err
	}

	return state.WriteCount == 0, state, nil
}

func (p *Prober) probe(
	numPages int,
	stop func(sim.State) bool,
) (sim.State, error) {
	reader, err := p.source.Open()
	if err != nil {
		return sim.State{}, err
	}
	defer trace.Close(reader)

	s, err := p.builder.
		WithNumPages(numPages).
		WithTrace(reader).
		Build(fmt.Sprintf("%s-%s-%d",
			p.source.Name(), p.builder.Policy(), numPages))
	if err != nil {
		return sim.State{}, err
	}

	for _, o := range p.observers {
		o.RunStarted(s)
	}

	state, err := p.advanceUntil(s, stop)

	for _, o := range p.observers {
		o.RunFinished(s, state, err)
	}

	return state, err
}

func (p *Prober) advanceUntil(
	s *sim.Simulation,
	stop func(sim.State) bool,
) (sim.State, error) {
	for {
		state, ok, err := s.Advance()
		if err != nil {
			return state, fmt.Errorf("%s: %w", p.source.Name(), err)
		}

		if !ok || stop(state) {
			return state, nil
		}
	}
}
