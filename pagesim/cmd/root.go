// Package cmd provides the command-line interface of pagesim.
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// NewRootCmd creates the pagesim command together with its subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pagesim",
		Short: "pagesim replays memory traces against a paged memory.",
		Long: `pagesim replays traces of virtual memory accesses against a ` +
			`physical memory with a fixed number of page frames and counts ` +
			`the disk reads and writes caused by a page replacement policy.`,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadEnv(envFile)
		},
	}

	addSessionFlags(rootCmd)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newMemoryCmd())

	return rootCmd
}

// Execute runs the root command and logs the error it fails with. Registered exit handlers, which flush the
// output files, run before the process exits.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		log.Print(err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
