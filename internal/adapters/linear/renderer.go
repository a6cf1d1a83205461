// Package linear provides a synchronous, line-oriented progress renderer for CI environments.
package linear

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer for CI and non-interactive environments.
// Every finished item is one line prefixed with its stage; successes go to stdout, failures
// and stage summaries to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu     sync.Mutex
	stages map[string]*stageState
}

type stageState struct {
	startTime time.Time
	total     int
	done      int
	failed    int
}

// NewRenderer creates a new Renderer. Nil writers default to the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stderr, output.ColorProfileANSI),
		stages: make(map[string]*stageState),
	}
}

// Start is a no-op for linear renderer (synchronous).
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop is a no-op for linear renderer (synchronous).
func (r *Renderer) Stop() error {
	return nil
}

// Wait is a no-op for linear renderer (synchronous).
func (r *Renderer) Wait() error {
	return nil
}

// OnStageStart prints the stage header.
func (r *Renderer) OnStageStart(stage string, total int, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stages[stage] = &stageState{startTime: startTime, total: total}
	_, _ = fmt.Fprintf(r.stderr, "%s Processing %d file(s)\n", r.prefix(stage), total)
}

// OnItemComplete prints one line per finished item.
func (r *Renderer) OnItemComplete(stage, item string, _ time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.stageLocked(stage)
	st.done++

	if err != nil {
		st.failed++
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s %s: %v\n", r.prefix(stage), symbol, item, err)
		return
	}

	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.stdout, "%s %s %s (%d/%d)\n", r.prefix(stage), symbol, item, st.done, st.total)
}

// OnStageComplete prints the stage outcome with its duration.
func (r *Renderer) OnStageComplete(stage string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.stageLocked(stage)
	duration := endTime.Sub(st.startTime).Round(time.Millisecond)
	delete(r.stages, stage)

	switch {
	case err != nil:
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Aborted after %v: %v\n", r.prefix(stage), symbol, duration, err)
	case st.failed > 0:
		symbol := r.output.String(style.Warning).Foreground(termenv.ANSIYellow).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v with %d error(s)\n",
			r.prefix(stage), symbol, duration, st.failed)
	default:
		symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", r.prefix(stage), symbol, duration)
	}
}

// stageLocked returns the state of stage, creating it for events of an unannounced stage.
// Must be called with r.mu held.
func (r *Renderer) stageLocked(stage string) *stageState {
	st, ok := r.stages[stage]
	if !ok {
		st = &stageState{startTime: time.Now()}
		r.stages[stage] = st
	}
	return st
}

func (r *Renderer) prefix(stage string) string {
	return r.output.String(fmt.Sprintf("[%s]", stage)).Faint().String()
}
