// Package shell runs the external conversion tools.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/creack/pty"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ToolRunner = (*Runner)(nil)

// Runner implements ports.ToolRunner using os/exec.
// Where pseudo terminals exist tools run attached to one, so interleaved stdout and
// stderr arrive in write order.
type Runner struct {
	usePTY bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithPTY toggles running tools in a pseudo terminal.
func WithPTY(enable bool) Option {
	return func(r *Runner) {
		r.usePTY = enable
	}
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{usePTY: runtime.GOOS != "windows"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LookPath resolves the executable of a tool. Absolute paths are checked in place.
func (r *Runner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrToolNotFound.Error()), "tool", name)
	}
	return path, nil
}

// Run starts cmd and waits for it to exit.
func (r *Runner) Run(ctx context.Context, cmd domain.Command) (domain.ToolResult, error) {
	var (
		out     []byte
		waitErr error
		err     error
	)

	if r.usePTY {
		out, waitErr, err = runPTY(command(ctx, cmd))
		if errors.Is(err, pty.ErrUnsupported) {
			out, waitErr, err = runPipes(command(ctx, cmd))
		}
	} else {
		out, waitErr, err = runPipes(command(ctx, cmd))
	}
	if err != nil {
		return domain.ToolResult{}, startError(err, cmd)
	}

	result := domain.ToolResult{Output: normalizeOutput(out)}
	if waitErr == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, zerr.With(zerr.Wrap(ctxErr, "tool interrupted"), "tool", cmd.Name)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, startError(waitErr, cmd)
}

func command(ctx context.Context, cmd domain.Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // tool paths come from kiln.yaml
	c.Dir = cmd.Dir
	c.Env = os.Environ()
	return c
}

func startError(err error, cmd domain.Command) error {
	return zerr.With(zerr.Wrap(err, domain.ErrToolNotStarted.Error()), "command", cmd.String())
}

// runPTY runs c with a pseudo terminal as its stdio. err reports start failures;
// waitErr reports how the process exited.
func runPTY(c *exec.Cmd) (out []byte, waitErr, err error) {
	ptmx, err := pty.Start(c)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// The read ends with EIO once the child closes its side.
		_, _ = io.Copy(&buf, ptmx)
	}()

	waitErr = c.Wait()
	<-ioDone
	_ = ptmx.Close()

	return buf.Bytes(), waitErr, nil
}

func runPipes(c *exec.Cmd) (out []byte, waitErr, err error) {
	var buf bytes.Buffer
	c.Stdout = &buf
	c.Stderr = &buf

	if err := c.Start(); err != nil {
		return nil, nil, err
	}
	waitErr = c.Wait()
	return buf.Bytes(), waitErr, nil
}

// normalizeOutput drops the carriage returns terminals add to line endings.
func normalizeOutput(out []byte) []byte {
	return bytes.ReplaceAll(out, []byte("\r\n"), []byte("\n"))
}
