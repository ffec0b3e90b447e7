package tool

import (
	"errors"
	"fmt"
)

// ErrUnknownTool is returned by Invoke when no descriptor matches the name.
var ErrUnknownTool = errors.New("unknown tool")

// InvalidArgumentsError indicates the arguments failed schema validation
// before the executor ever ran.
type InvalidArgumentsError struct {
	Tool   string
	Reason error
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %s: %v", e.Tool, e.Reason)
}

func (e *InvalidArgumentsError) Unwrap() error { return e.Reason }

// ExecutionError wraps a failure raised by a tool's executor.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
