// Package tools routes assistant tool calls to the backend services behind a
// closed registry. Argument validation, vocabulary reconciliation and the
// error taxonomy all live here so the orchestrator only sees typed outcomes.
package tools

import "fmt"

// ValidationError reports a tool argument that failed validation. Field names
// the offending argument in backend vocabulary.
type ValidationError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tool %s: invalid argument %q: %s", e.Tool, e.Field, e.Reason)
}

// UnknownToolError reports a tool name outside the registry. The registry is
// closed: nothing is ever dispatched by guessing.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Tool)
}

// ToolExecutionError wraps a backend failure during dispatch. The cause is
// preserved for errors.Is/As.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}
