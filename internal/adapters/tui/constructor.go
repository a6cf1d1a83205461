// Package tui provides the interactive progress view of a build.
package tui

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/ui/output"
)

const (
	defaultTickInterval = 100 * time.Millisecond
	defaultWidth        = 80
	// maxRecentFailures bounds the failures listed below the stages.
	maxRecentFailures = 5
)

// NewModel creates a new progress model drawing for w.
func NewModel(w io.Writer) Model {
	if w == nil {
		w = os.Stderr
	}

	out := output.New(w)
	lipgloss.SetColorProfile(out.Profile)

	return Model{
		stageMap:     make(map[string]*StageNode),
		Width:        defaultWidth,
		TickInterval: defaultTickInterval,
	}
}

// WithDisableTick turns the running indicator off, for tests and dumb terminals.
func (m Model) WithDisableTick() Model {
	m.DisableTick = true
	return m
}
