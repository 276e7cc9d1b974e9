package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/imagedrop/service/internal/intake"
)

var (
	appStyle    = lipgloss.NewStyle().Padding(1, 2)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	slotStyle   = lipgloss.NewStyle().Faint(true)
	zoneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	promptStyle = lipgloss.NewStyle().MarginTop(1)
)

// appPadTop and appPadLeft mirror appStyle's padding; the title and the blank
// line under it push the zone one more row down.
const (
	appPadTop  = 1
	appPadLeft = 2
	titleLines = 2
)

// Border colours per visual state.
var stateColors = map[intake.VisualState]lipgloss.Color{
	intake.Idle:            lipgloss.Color("240"),
	intake.Active:          lipgloss.Color("12"),
	intake.AllImages:       lipgloss.Color("10"),
	intake.MixedOrNonImage: lipgloss.Color("9"),
}

func borderColor(s intake.VisualState) lipgloss.Color {
	if c, ok := stateColors[s]; ok {
		return c
	}
	return stateColors[intake.Idle]
}
