package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const envFile = ".env"

// Environment variables that provide defaults for flags.
const (
	envTraces      = "PAGESIM_TRACES"
	envOutDir      = "PAGESIM_OUT_DIR"
	envMonitorPort = "PAGESIM_MONITOR_PORT"
	envRecordDB    = "PAGESIM_RECORD_DB"
)

var defaultTraces = []string{
	"traces/gcc.trace",
	"traces/sixpack.trace",
	"traces/swim.trace",
}

const defaultOutDir = "out"

// loadEnv reads the variables defined in filename into the environment.
// Variables that are already set are kept. A missing file is not an error.
func loadEnv(filename string) error {
	err := godotenv.Load(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// stringOption returns the flag value if it is set on the command line, the
// environment variable if it is set, and the default otherwise.
func stringOption(cmd *cobra.Command, flag, env string) string {
	value, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return value
	}

	if v, found := os.LookupEnv(env); found {
		return v
	}

	return value
}

func intOption(cmd *cobra.Command, flag, env string) (int, error) {
	value, _ := cmd.Flags().GetInt(flag)
	if cmd.Flags().Changed(flag) {
		return value, nil
	}

	v, found := os.LookupEnv(env)
	if !found {
		return value, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("invalid " + env + ": " + v)
	}

	return n, nil
}

// traceOption returns the traces given by --traces, then PAGESIM_TRACES,
// then the default traces.
func traceOption(cmd *cobra.Command) []string {
	if cmd.Flags().Changed("traces") {
		traces, _ := cmd.Flags().GetStringSlice("traces")
		return traces
	}

	if v, found := os.LookupEnv(envTraces); found && v != "" {
		var traces []string
		for _, t := range strings.Split(v, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				traces = append(traces, t)
			}
		}

		return traces
	}

	return defaultTraces
}
