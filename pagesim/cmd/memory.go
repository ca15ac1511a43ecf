package cmd

import (
	"fmt"

	"github.com/sarchlab/pagesim/analysis"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm"
	"github.com/spf13/cobra"
)

func newMemoryCmd() *cobra.Command {
	memoryCmd := &cobra.Command{
		Use:   "memory [random|lru|fifo]",
		Short: "Find the smallest memory that causes no write-back.",
		Long: "`memory` searches, for every trace and policy, the smallest " +
			"number of page frames with which the trace replays without " +
			"writing any page back.",
		Args: cobra.MaximumNArgs(1),
		RunE: runMemory,
	}

	memoryCmd.Flags().StringSlice("traces", nil,
		"Trace files. Defaults to "+envTraces+" or the traces directory.")
	memoryCmd.Flags().Int("step", analysis.DefaultSearchStep,
		"Coarse number of page frames added between probes.")
	memoryCmd.Flags().Int("max-pages", vm.MaxNumPages,
		"Largest number of page frames to try.")

	return memoryCmd
}

func runMemory(cmd *cobra.Command, args []string) error {
	policies, err := policiesFromArgs(args)
	if err != nil {
		return err
	}

	step, _ := cmd.Flags().GetInt("step")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	if step <= 0 || maxPages <= 0 {
		return fmt.Errorf("step and max-pages must be positive")
	}

	cmd.SilenceUsage = true

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.finish()

	for _, path := range traceOption(cmd) {
		source := trace.NewFileSource(path)

		for _, policy := range policies {
			prober := s.prober(source, policy).WithMaxPages(maxPages)

			pages, err := analysis.FindMinimalMemory(prober, step)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"optimal memory for %s trace with %s algorithm is %d pages\n",
				path, policy, pages)

			if s.recorder != nil {
				s.recorder.RecordMinimalMemory(
					source.Name(), policy.String(), pages)
			}
		}
	}

	return nil
}
