package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/ui/style"
)

const (
	stageNameWidth = 14
	minBarWidth    = 10
	// rowChrome is the width of everything on a stage row except the bar.
	rowChrome = 2 + stageNameWidth + 1 + 12 + 10
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// View renders the UI.
func (m *Model) View() string {
	var s strings.Builder

	title := titleStyle.Render("KILN")
	if m.ErrorCount > 0 {
		title = failureTitleStyle.Render(fmt.Sprintf("KILN %s %d error(s)", style.Cross, m.ErrorCount))
	}
	s.WriteString(title + "\n\n")

	for _, node := range m.Stages {
		s.WriteString(m.renderStageRow(node) + "\n")
	}

	if len(m.Failures) > 0 {
		s.WriteString("\n")
		for _, f := range m.Failures {
			s.WriteString(failureStyle.Render(renderFailure(f)) + "\n")
		}
	}

	return s.String()
}

func (m *Model) renderStageRow(node *StageNode) string {
	icon := style.StatusIcon(node.Status)
	if node.Status == domain.ItemStatusRunning {
		icon = spinnerFrames[m.Frame%len(spinnerFrames)]
	}
	icon = lipgloss.NewStyle().Foreground(style.StatusColor(node.Status)).Render(icon)

	counts := fmt.Sprintf("%d/%d", node.Done, node.Total)
	row := fmt.Sprintf("%s %s %s %-11s %s",
		icon,
		stageNameStyle.Render(node.Name),
		m.renderBar(node),
		counts,
		mutedStyle.Render(elapsed(node)),
	)

	if node.Status == domain.ItemStatusRunning && node.LastItem != "" {
		row += " " + mutedStyle.Render(style.Arrow+" "+node.LastItem)
	}
	return row
}

// renderBar draws the stage's progress. The bar turns red once any error was recorded.
func (m *Model) renderBar(node *StageNode) string {
	width := max(m.Width-rowChrome, minBarWidth)
	filled := int(node.Ratio() * float64(width))

	fill := barFillStyle
	if m.ErrorCount > 0 {
		fill = barErrorStyle
	}
	return fill.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

func elapsed(node *StageNode) string {
	if node.StartTime.IsZero() {
		return ""
	}
	end := node.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(node.StartTime).Round(100 * time.Millisecond).String()
}

func renderFailure(f Failure) string {
	msg := strings.SplitN(f.Err, "\n", 2)[0]
	if f.Item == "" {
		return fmt.Sprintf("%s %s: %s", style.Cross, f.Stage, msg)
	}
	return fmt.Sprintf("%s %s %s: %s", style.Cross, f.Stage, f.Item, msg)
}
