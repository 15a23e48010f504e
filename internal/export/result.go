package export

import (
	"errors"
	"fmt"
)

// State is the progress of one function through the exporter.
type State int

const (
	StateInit State = iota
	StateNodeCreated
	StateASTLinked
	StateCFGLinked
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateNodeCreated:
		return "node_created"
	case StateASTLinked:
		return "ast_linked"
	case StateCFGLinked:
		return "cfg_linked"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MalformedFunctionError reports a function missing required structure.
type MalformedFunctionError struct {
	Reason string
}

func (e *MalformedFunctionError) Error() string {
	return "malformed function: " + e.Reason
}

var errNilFunction = &MalformedFunctionError{Reason: "nil function"}

// Result is the outcome of exporting one function.
type Result struct {
	Function   string
	FunctionID int64
	State      State
	FailedIn   State // last state reached before the fault
	Nodes      int
	Edges      int
	HasCFG     bool
	Err        error
}

// OK reports whether the function was fully exported.
func (r Result) OK() bool { return r.State == StateDone }

// FileResult aggregates the function results of one file.
type FileResult struct {
	Path       string
	FileNodeID int64
	Functions  []Result
	Err        error // set when the file node itself could not be written
}

// Failed returns the results of functions that did not export.
func (r FileResult) Failed() []Result {
	var out []Result
	for _, fr := range r.Functions {
		if !fr.OK() {
			out = append(out, fr)
		}
	}
	return out
}

// Errors joins every fault of the file, nil when all succeeded.
func (r FileResult) Errors() error {
	errs := []error{r.Err}
	for _, fr := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", fr.Function, fr.Err))
	}
	return errors.Join(errs...)
}
