package datarecording

import (
	"os"
	"strings"
	"time"
)

// execInfo is one property of the program execution.
type execInfo struct {
	Property string
	Value    string
}

// execRecorder records when and how the program was executed.
type execRecorder struct {
	tablename string
	recorder  DataRecorder
	entries   []execInfo
}

// Start records the start time, the command line and the working directory.
func (e *execRecorder) Start() {
	currentTime := time.Now()
	startTime := currentTime.Format("2006-01-02 15:04:05.000000000")
	e.entries = append(e.entries, execInfo{"Start Time", startTime})

	cmd := strings.Join(os.Args, " ")
	e.entries = append(e.entries, execInfo{"Command", cmd})

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	e.entries = append(e.entries, execInfo{"Working Directory", cwd})
}

// End writes the recorded properties along with the exit time.
func (e *execRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(e.tablename, entry)
	}

	endTime := time.Now()
	endValue := endTime.Format("2006-01-02 15:04:05.000000000")
	e.recorder.InsertData(e.tablename, execInfo{"End Time", endValue})

	e.entries = nil
}

// newExecRecorderWithWriter creates a new execRecorder with given writer
func newExecRecorderWithWriter(writer DataRecorder) *execRecorder {
	e := &execRecorder{
		tablename: "exec_info",
		recorder:  writer,
	}

	e.recorder.CreateTable(e.tablename, execInfo{})

	return e
}
