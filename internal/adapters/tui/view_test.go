package tui_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/tui"
)

func TestView_Empty(t *testing.T) {
	m := newModel(t)
	view := m.View()

	assert.Contains(t, view, "KILN")
	assert.NotContains(t, view, "error(s)")
}

func TestView_RendersStageRows(t *testing.T) {
	m := newModel(t)
	start := time.Now()

	send(m,
		tui.MsgStageStart{Stage: "animations", Total: 4, StartTime: start},
		tui.MsgItemComplete{Stage: "animations", Item: "joy.spine"},
		tui.MsgStageStart{Stage: "static", Total: 1, StartTime: start},
		tui.MsgItemComplete{Stage: "static", Item: "fonts"},
		tui.MsgStageComplete{Stage: "static", EndTime: start.Add(1500 * time.Millisecond)},
	)

	view := m.View()

	assert.Contains(t, view, "animations")
	assert.Contains(t, view, "1/4")
	assert.Contains(t, view, "→ joy.spine")
	assert.Contains(t, view, "✓ static")
	assert.Contains(t, view, "1/1")
	assert.Contains(t, view, "1.5s")
	assert.Contains(t, view, "█")
	assert.Contains(t, view, "░")
}

func TestView_BarFitsWidth(t *testing.T) {
	m := newModel(t)
	m.Width = 20
	send(m, tui.MsgStageStart{Stage: "static", Total: 1})
	send(m, tui.MsgItemComplete{Stage: "static", Item: "fonts"})
	send(m, tui.MsgStageComplete{Stage: "static"})

	narrow := strings.Count(m.View(), "█")
	assert.Equal(t, 10, narrow)

	m.Width = 200
	assert.Greater(t, strings.Count(m.View(), "█"), narrow)
}

func TestView_Failures(t *testing.T) {
	m := newModel(t)

	send(m,
		tui.MsgStageStart{Stage: "lipsync", Total: 1},
		tui.MsgItemComplete{Stage: "lipsync", Item: "de_001.ogg", Err: errors.New("rhubarb failed\nstack trace")},
	)

	view := m.View()
	assert.Contains(t, view, "KILN ✗ 1 error(s)")
	assert.Contains(t, view, "✗ lipsync de_001.ogg: rhubarb failed")
	assert.NotContains(t, view, "stack trace")
}
