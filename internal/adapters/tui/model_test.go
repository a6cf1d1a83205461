package tui_test

import (
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/tui"
	"go.trai.ch/kiln/internal/core/domain"
)

func newModel(t *testing.T) *tui.Model {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	m := tui.NewModel(io.Discard).WithDisableTick()
	return &m
}

func send(m *tui.Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func TestModel_InitWithoutTick(t *testing.T) {
	m := newModel(t)
	assert.Nil(t, m.Init())
}

func TestModel_StageLifecycle(t *testing.T) {
	m := newModel(t)
	start := time.Now()

	send(m,
		tui.MsgStageStart{Stage: "animations", Total: 2, StartTime: start},
		tui.MsgItemComplete{Stage: "animations", Item: "joy.spine", EndTime: start},
	)

	require.Len(t, m.Stages, 1)
	node := m.Stages[0]
	assert.Equal(t, domain.ItemStatusRunning, node.Status)
	assert.Equal(t, 1, node.Done)
	assert.Equal(t, "joy.spine", node.LastItem)
	assert.InDelta(t, 0.5, node.Ratio(), 0.001)

	send(m,
		tui.MsgItemComplete{Stage: "animations", Item: "fear.spine", EndTime: start},
		tui.MsgStageComplete{Stage: "animations", EndTime: start.Add(time.Second)},
	)

	assert.Equal(t, domain.ItemStatusDone, node.Status)
	assert.Equal(t, 2, node.Done)
	assert.InDelta(t, 1.0, node.Ratio(), 0.001)
	assert.Zero(t, m.ErrorCount)
}

func TestModel_StagesKeepFirstSeenOrder(t *testing.T) {
	m := newModel(t)

	send(m,
		tui.MsgStageStart{Stage: "static", Total: 1},
		tui.MsgStageStart{Stage: "animations", Total: 1},
		tui.MsgStageStart{Stage: "static", Total: 3},
	)

	require.Len(t, m.Stages, 2)
	assert.Equal(t, "static", m.Stages[0].Name)
	assert.Equal(t, 3, m.Stages[0].Total)
	assert.Equal(t, "animations", m.Stages[1].Name)
}

func TestModel_ItemFailureMarksStageFailed(t *testing.T) {
	m := newModel(t)

	send(m,
		tui.MsgStageStart{Stage: "lipsync", Total: 1},
		tui.MsgItemComplete{Stage: "lipsync", Item: "de_001.ogg", Err: errors.New("rhubarb exited with code 1")},
		tui.MsgStageComplete{Stage: "lipsync"},
	)

	assert.Equal(t, domain.ItemStatusFailed, m.Stages[0].Status)
	assert.Equal(t, 1, m.ErrorCount)
	require.Len(t, m.Failures, 1)
	assert.Equal(t, tui.Failure{Stage: "lipsync", Item: "de_001.ogg", Err: "rhubarb exited with code 1"}, m.Failures[0])
}

func TestModel_StageAbort(t *testing.T) {
	m := newModel(t)

	send(m,
		tui.MsgStageStart{Stage: "build", Total: 1},
		tui.MsgStageComplete{Stage: "build", Err: errors.New("exited with code 2")},
	)

	assert.Equal(t, domain.ItemStatusFailed, m.Stages[0].Status)
	assert.Equal(t, 1, m.ErrorCount)
	assert.Empty(t, m.Failures[0].Item)
}

func TestModel_FailuresAreBounded(t *testing.T) {
	m := newModel(t)
	send(m, tui.MsgStageStart{Stage: "animations", Total: 10})

	for i := range 10 {
		send(m, tui.MsgItemComplete{Stage: "animations", Item: string(rune('a' + i)), Err: errors.New("boom")})
	}

	assert.Equal(t, 10, m.ErrorCount)
	assert.Len(t, m.Failures, 5)
	assert.Equal(t, "j", m.Failures[len(m.Failures)-1].Item)
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(key.String(), func(t *testing.T) {
			m := newModel(t)
			_, cmd := m.Update(key)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := newModel(t)
	send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.Width)
}

func TestModel_TickAdvancesFrame(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	m := tui.NewModel(io.Discard)

	_, cmd := m.Update(tui.MsgTick{})

	assert.Equal(t, 1, m.Frame)
	assert.NotNil(t, cmd)
}

func TestStageNode_RatioWithoutTotal(t *testing.T) {
	node := &tui.StageNode{Status: domain.ItemStatusRunning}
	assert.Zero(t, node.Ratio())

	node.Status = domain.ItemStatusDone
	assert.InDelta(t, 1.0, node.Ratio(), 0.001)
}
