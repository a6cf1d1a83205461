package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/ui/style"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Ember).
			Foreground(style.Bone)

	failureTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(style.Red).
				Foreground(style.Bone)

	stageNameStyle = lipgloss.NewStyle().Width(stageNameWidth)

	mutedStyle = lipgloss.NewStyle().Foreground(style.Ash)

	barFillStyle  = lipgloss.NewStyle().Foreground(style.Ember)
	barErrorStyle = lipgloss.NewStyle().Foreground(style.Red)
	barEmptyStyle = lipgloss.NewStyle().Foreground(style.Ash)

	failureStyle = lipgloss.NewStyle().Foreground(style.Red)
)
