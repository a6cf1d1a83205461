package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/kiln/internal/core/domain"
)

// StageNode is the progress of one stage.
type StageNode struct {
	Name      string
	Status    domain.ItemStatus
	Total     int
	Done      int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	LastItem  string
}

// Failure is one failed item shown below the stages.
type Failure struct {
	Stage string
	Item  string
	Err   string
}

// Model represents the progress view state.
type Model struct {
	Stages       []*StageNode
	stageMap     map[string]*StageNode
	Failures     []Failure
	ErrorCount   int
	Width        int
	Frame        int
	TickInterval time.Duration
	DisableTick  bool
}

// Init starts the tick loop.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	if m.DisableTick {
		return nil
	}
	return tea.Tick(m.TickInterval, func(time.Time) tea.Msg {
		return MsgTick{}
	})
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	case MsgTick:
		m.Frame++
		return m, m.tick()
	case MsgStageStart:
		node := m.stage(msg.Stage)
		node.Status = domain.ItemStatusRunning
		node.Total = msg.Total
		node.Done = 0
		node.Failed = 0
		node.StartTime = msg.StartTime
		node.EndTime = time.Time{}
	case MsgItemComplete:
		node := m.stage(msg.Stage)
		node.Done++
		node.LastItem = msg.Item
		if msg.Err != nil {
			node.Failed++
			m.recordFailure(msg.Stage, msg.Item, msg.Err)
		}
	case MsgStageComplete:
		node := m.stage(msg.Stage)
		node.EndTime = msg.EndTime
		node.LastItem = ""
		switch {
		case msg.Err != nil:
			node.Status = domain.ItemStatusFailed
			m.recordFailure(msg.Stage, "", msg.Err)
		case node.Failed > 0:
			node.Status = domain.ItemStatusFailed
		default:
			node.Status = domain.ItemStatusDone
		}
	}
	return m, nil
}

// stage returns the node of name, appending it in first-seen order.
func (m *Model) stage(name string) *StageNode {
	if m.stageMap == nil {
		m.stageMap = make(map[string]*StageNode)
	}
	node, ok := m.stageMap[name]
	if !ok {
		node = &StageNode{Name: name, Status: domain.ItemStatusPending}
		m.stageMap[name] = node
		m.Stages = append(m.Stages, node)
	}
	return node
}

func (m *Model) recordFailure(stage, item string, err error) {
	m.ErrorCount++
	m.Failures = append(m.Failures, Failure{Stage: stage, Item: item, Err: fmt.Sprint(err)})
	if len(m.Failures) > maxRecentFailures {
		m.Failures = m.Failures[len(m.Failures)-maxRecentFailures:]
	}
}

// Ratio returns the completed fraction of a stage in [0, 1].
func (n *StageNode) Ratio() float64 {
	if n.Status == domain.ItemStatusDone {
		return 1
	}
	if n.Total <= 0 {
		return 0
	}
	return min(float64(n.Done)/float64(n.Total), 1)
}
