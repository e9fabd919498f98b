package datarecording

import (
	"os"
	"strings"
	"time"
)

// ExecTable is the table that describes the recorded process.
const ExecTable = "exec_info"

const timeLayout = "2006-01-02 15:04:05.000000000"

// ExecInfo is one property of the recorded process.
type ExecInfo struct {
	RunID    string
	Property string
	Value    string
}

// ExecRecorder records when and how the process ran.
type ExecRecorder struct {
	runID    string
	recorder DataRecorder
	entries  []ExecInfo
}

// NewExecRecorder creates the exec table on recorder.
func NewExecRecorder(recorder DataRecorder, runID string) *ExecRecorder {
	recorder.CreateTable(ExecTable, ExecInfo{})

	return &ExecRecorder{
		runID:    runID,
		recorder: recorder,
	}
}

// Set records an additional property, such as the rank or the strategy.
func (e *ExecRecorder) Set(property, value string) {
	e.entries = append(e.entries, ExecInfo{e.runID, property, value})
}

// Start records the start time, the command line and the working directory.
func (e *ExecRecorder) Start() {
	e.Set("Start Time", time.Now().Format(timeLayout))
	e.Set("Command", strings.Join(os.Args, " "))

	if cwd, err := os.Getwd(); err == nil {
		e.Set("Working Directory", cwd)
	}
}

// End records the exit time and writes all properties.
func (e *ExecRecorder) End() error {
	e.Set("End Time", time.Now().Format(timeLayout))

	for _, entry := range e.entries {
		e.recorder.InsertData(ExecTable, entry)
	}

	e.entries = nil

	return e.recorder.Flush()
}
