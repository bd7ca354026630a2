package root

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	IconOK      = "✅"
	IconError   = "🧨"
	IconWarn    = "⚠️"
	IconSparkle = "✨"
	IconBox     = "📦"
)

var (
	cPrimary = lipgloss.Color("63")
	cGood    = lipgloss.Color("42")
	cWarn    = lipgloss.Color("214")
	cBad     = lipgloss.Color("196")
	cMuted   = lipgloss.Color("244")
	cGold    = lipgloss.Color("220")
)

var (
	H1    = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

func LabelValue(label string, value interface{}) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// ProgressBar renders filled/total as a fixed width bar.
func ProgressBar(filled, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	n := filled * width / total
	n = max(0, min(n, width))
	return Good.Render(strings.Repeat("█", n)) + Muted.Render(strings.Repeat("░", width-n))
}
