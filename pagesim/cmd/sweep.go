package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sarchlab/pagesim/analysis"
	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm"
	"github.com/sarchlab/pagesim/vm/eviction"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep [random|lru|fifo]",
		Short: "Record write-backs at growing memory sizes.",
		Long: "`sweep` replays every trace with a growing number of page " +
			"frames until no page is written back, and stores the number " +
			"of write-backs of every size in <out>/<trace>-<policy>.csv. " +
			"All policies are swept if none is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: runSweep,
	}

	sweepCmd.Flags().StringSlice("traces", nil,
		"Trace files. Defaults to "+envTraces+" or the traces directory.")
	sweepCmd.Flags().String("out", defaultOutDir,
		"Output directory. Defaults to "+envOutDir+".")
	sweepCmd.Flags().Int("step", analysis.DefaultSweepStep,
		"Number of page frames added between runs.")
	sweepCmd.Flags().Int("max-pages", vm.MaxNumPages,
		"Largest number of page frames to try.")

	return sweepCmd
}

func policiesFromArgs(args []string) ([]eviction.Policy, error) {
	if len(args) == 0 {
		return eviction.AllPolicies(), nil
	}

	p, err := eviction.ParsePolicy(args[0])
	if err != nil {
		return nil, err
	}

	return []eviction.Policy{p}, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	policies, err := policiesFromArgs(args)
	if err != nil {
		return err
	}

	step, _ := cmd.Flags().GetInt("step")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	if step <= 0 || maxPages <= 0 {
		return fmt.Errorf("step and max-pages must be positive")
	}

	outDir := stringOption(cmd, "out", envOutDir)

	cmd.SilenceUsage = true

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.finish()

	out := cmd.OutOrStdout()
	for _, path := range traceOption(cmd) {
		source := trace.NewFileSource(path)

		for _, policy := range policies {
			fmt.Fprintf(out, "running %s algorithm for %s trace\n",
				policy, path)

			prober := s.prober(source, policy, probeLogger{w: out}).
				WithMaxPages(maxPages)

			samples, err := analysis.SweepToZeroWrites(prober, step)
			if err != nil {
				return err
			}

			csvPath := filepath.Join(outDir,
				fmt.Sprintf("%s-%s.csv", source.Name(), policy))

			err = s.writeSamples(csvPath, source.Name(), policy, samples)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "  stored data for %s algorithm to %s\n\n",
				policy, csvPath)
		}
	}

	return nil
}

func (s *session) writeSamples(
	path, traceName string,
	policy eviction.Policy,
	samples []analysis.Sample,
) error {
	w, err := datarecording.NewSampleCSVWriter(path)
	if err != nil {
		return err
	}

	for _, sample := range samples {
		err = w.Write(sample.Pages, sample.Writes)
		if err != nil {
			return err
		}

		if s.recorder != nil {
			s.recorder.RecordSample(
				traceName, policy.String(), sample.Pages, sample.Writes)
		}
	}

	return w.Close()
}
