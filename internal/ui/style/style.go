// Package style provides the shared colours and icons of kiln's terminal output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/core/domain"
)

// Palette.
var (
	Ember  = lipgloss.Color("#E8590C")
	Ash    = lipgloss.Color("#667085")
	Bone   = lipgloss.Color("#F6F7FB")
	Soot   = lipgloss.Color("#0B0F19")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Skip    = "~"
	Dot     = "●"
	Circle  = "○"
	Arrow   = "→"
)

// StatusIcon returns the icon of an item status.
func StatusIcon(s domain.ItemStatus) string {
	switch s {
	case domain.ItemStatusDone:
		return Check
	case domain.ItemStatusFailed:
		return Cross
	case domain.ItemStatusSkipped:
		return Skip
	case domain.ItemStatusRunning:
		return Dot
	default:
		return Circle
	}
}

// StatusColor returns the colour of an item status.
func StatusColor(s domain.ItemStatus) lipgloss.Color {
	switch s {
	case domain.ItemStatusDone:
		return Green
	case domain.ItemStatusFailed:
		return Red
	case domain.ItemStatusRunning:
		return Ember
	default:
		return Ash
	}
}
