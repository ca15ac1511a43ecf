package sim

import (
	"log"
)

// A LogHook writes what happens to pages during a simulation, such as the
// accesses, the faults and the evictions, into a log.Logger.
type LogHook interface {
	Hook
}

// LogHookBase holds the logger that a LogHook writes into.
type LogHookBase struct {
	*log.Logger
}

// NewLogHookBase wraps logger. A nil logger falls back to the standard
// logger so that debug output goes to stderr.
func NewLogHookBase(logger *log.Logger) LogHookBase {
	if logger == nil {
		logger = log.Default()
	}

	return LogHookBase{Logger: logger}
}
