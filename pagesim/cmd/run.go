package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm/eviction"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <nframes> <random|lru|fifo> <tracefile>",
		Short: "Replay a trace with a fixed number of page frames.",
		Long: "`run` replays the trace and prints the number of events, " +
			"disk reads and disk writes.",
		Args: cobra.ExactArgs(3),
		RunE: runSingle,
	}

	runCmd.Flags().Bool("debug", false,
		"Print every access and eviction.")

	return runCmd
}

func runSingle(cmd *cobra.Command, args []string) error {
	numFrames, err := strconv.Atoi(args[0])
	if err != nil || numFrames <= 0 {
		return fmt.Errorf("expected a positive number of frames, got %q",
			args[0])
	}

	policy, err := eviction.ParsePolicy(args[1])
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.finish()

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		logger := log.New(cmd.OutOrStdout(), "", 0)
		s.builder = s.builder.WithHook(sim.NewEventLogger(logger))
	}

	prober := s.prober(trace.NewFileSource(args[2]), policy)

	state, err := prober.RunToEnd(numFrames)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"total memory frames: %d\n"+
			"events in trace:     %d\n"+
			"total disk reads:    %d\n"+
			"total disk writes:   %d\n",
		numFrames, state.TotalEvents, state.ReadCount, state.WriteCount)

	return nil
}
