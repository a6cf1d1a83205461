package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer wraps the Bubble Tea model as a ports.Renderer.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
}

// NewRenderer creates a new TUI renderer.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	program := tea.NewProgram(model, opts...)
	return &Renderer{
		program: program,
		model:   model,
		errCh:   make(chan error, 1),
	}
}

// Start launches the TUI in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop signals the TUI to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the TUI has terminated.
func (r *Renderer) Wait() error {
	return <-r.errCh
}

// OnStageStart forwards stage start events to the TUI.
func (r *Renderer) OnStageStart(stage string, total int, startTime time.Time) {
	r.program.Send(MsgStageStart{Stage: stage, Total: total, StartTime: startTime})
}

// OnItemComplete forwards item completion events to the TUI.
func (r *Renderer) OnItemComplete(stage, item string, endTime time.Time, err error) {
	r.program.Send(MsgItemComplete{Stage: stage, Item: item, EndTime: endTime, Err: err})
}

// OnStageComplete forwards stage completion events to the TUI.
func (r *Renderer) OnStageComplete(stage string, endTime time.Time, err error) {
	r.program.Send(MsgStageComplete{Stage: stage, EndTime: endTime, Err: err})
}

// Program returns the underlying tea.Program for testing.
func (r *Renderer) Program() *tea.Program {
	return r.program
}
