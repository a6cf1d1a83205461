package domain

import (
	"fmt"
	"strings"
)

// ToolError describes an external tool that ran to completion with a non-zero exit code.
type ToolError struct {
	Tool     string
	Source   string
	ExitCode int
	Output   string
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d for %s", e.Tool, e.ExitCode, e.Source)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

// Unwrap ties the error to ErrFatalToolFailure so callers can branch on it.
func (e *ToolError) Unwrap() error {
	return ErrFatalToolFailure
}

// Command describes one external tool invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// ToolResult is the outcome of a tool that started and exited.
type ToolResult struct {
	ExitCode int
	Output   []byte
}

// Succeeded reports whether the tool exited with code 0.
func (r ToolResult) Succeeded() bool {
	return r.ExitCode == 0
}
