package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/pagesim/analysis"
	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/monitoring"
	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm/eviction"
	"github.com/spf13/cobra"
)

// addSessionFlags registers the flags shared by all the subcommands.
func addSessionFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.Bool("retain-clean", false,
		"Keep the page table entries of clean pages after they are evicted.")
	flags.Int64("seed", 0,
		"Seed of the random replacement policy. Unseeded if not given.")
	flags.Bool("monitor", false,
		"Serve the progress of the simulations over HTTP.")
	flags.Int("monitor-port", 0,
		"Port of the monitoring server. A random port is used if not given. "+
			"Defaults to "+envMonitorPort+".")
	flags.Bool("open-browser", false,
		"Open the monitoring page in a web browser.")
	flags.String("record", "",
		"Record the runs into the given SQLite database, without extension. "+
			"Defaults to "+envRecordDB+".")
	flags.Bool("perf", false,
		"Report page faults and write-backs per period of events.")
	flags.Uint64("perf-period", 10000,
		"Number of events summarized by each performance entry.")
	flags.String("perf-db", "perf",
		"Filename of the performance report, without extension.")
	flags.String("perf-backend", "csv",
		"Storage of the performance report, csv or sqlite.")
}

// A session holds what the subcommands share: the simulation configuration
// and the observers of every run.
type session struct {
	builder   sim.Builder
	observers []analysis.RunObserver
	recorder  *datarecording.RunRecorder
	perf      *analysis.PerfAnalyzer
}

func newSession(cmd *cobra.Command) (*session, error) {
	s := &session{builder: sim.MakeBuilder()}

	s.configureBuilder(cmd)

	err := s.startMonitor(cmd)
	if err != nil {
		return nil, err
	}

	s.startRecorder(cmd)

	err = s.startPerfAnalyzer(cmd)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *session) configureBuilder(cmd *cobra.Command) {
	flags := cmd.Flags()

	retainClean, _ := flags.GetBool("retain-clean")
	if retainClean {
		s.builder = s.builder.WithEntryRetention(sim.RetainCleanEntries)
	}

	if flags.Changed("seed") {
		seed, _ := flags.GetInt64("seed")
		s.builder = s.builder.WithSeed(seed)
	}
}

func (s *session) startMonitor(cmd *cobra.Command) error {
	enabled, _ := cmd.Flags().GetBool("monitor")
	if !enabled {
		return nil
	}

	port, err := intOption(cmd, "monitor-port", envMonitorPort)
	if err != nil {
		return err
	}

	openBrowser, _ := cmd.Flags().GetBool("open-browser")

	m := monitoring.NewMonitor().
		WithPortNumber(port).
		WithBrowser(openBrowser)
	m.StartServer()

	s.observers = append(s.observers, m)

	return nil
}

func (s *session) startRecorder(cmd *cobra.Command) {
	path := stringOption(cmd, "record", envRecordDB)
	if path == "" {
		return
	}

	s.recorder = datarecording.NewRunRecorder(
		datarecording.NewDataRecorder(path))
	s.observers = append(s.observers, s.recorder)
}

func (s *session) startPerfAnalyzer(cmd *cobra.Command) error {
	flags := cmd.Flags()

	enabled, _ := flags.GetBool("perf")
	if !enabled {
		return nil
	}

	period, _ := flags.GetUint64("perf-period")
	if period == 0 {
		return errors.New("perf period must be positive")
	}

	filename, _ := flags.GetString("perf-db")
	builder := analysis.MakePerfAnalyzerBuilder().
		WithPeriod(period).
		WithDBFilename(filename)

	backend, _ := flags.GetString("perf-backend")
	switch backend {
	case "csv":
	case "sqlite":
		builder = builder.WithSQLiteBackend()
	default:
		return fmt.Errorf("unknown perf backend %q, expected csv or sqlite",
			backend)
	}

	s.perf = builder.Build()
	s.observers = append(s.observers, s.perf)

	return nil
}

// prober creates a Prober that replays the source with the given policy and
// reports every run to the session observers.
func (s *session) prober(
	source trace.Source,
	policy eviction.Policy,
	extra ...analysis.RunObserver,
) *analysis.Prober {
	p := analysis.NewProber(source, s.builder.WithPolicy(policy))

	for _, o := range s.observers {
		p.AddObserver(o)
	}

	for _, o := range extra {
		p.AddObserver(o)
	}

	return p
}

// finish flushes what the session has collected.
func (s *session) finish() {
	if s.perf != nil {
		s.perf.Flush()
	}
}

// probeLogger prints a line before every probe of a sweep.
type probeLogger struct {
	w io.Writer
}

func (l probeLogger) RunStarted(s *sim.Simulation) {
	fmt.Fprintf(l.w, "  testing with %d pages\n", s.NumPages())
}

func (l probeLogger) RunFinished(*sim.Simulation, sim.State, error) {
	// Do nothing
}
