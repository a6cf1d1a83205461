package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// ToolRunner runs external tools to completion.
//
//go:generate go run go.uber.org/mock/mockgen -source=tool_runner.go -destination=mocks/mock_tool_runner.go -package=mocks
type ToolRunner interface {
	// Run starts cmd, waits for it and returns its exit code with the combined output.
	// A non-zero exit code is not an error; an error means the tool could not be started.
	Run(ctx context.Context, cmd domain.Command) (domain.ToolResult, error)
	// LookPath resolves the executable of a tool.
	LookPath(name string) (string, error)
}
