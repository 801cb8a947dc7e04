package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Column widths shared by the task list and the board.
const (
	ColWidthID    = 10
	ColWidthScore = 5
)

// LevelStyle returns the style for a priority level name.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "high":
		return HighStyle
	case "medium":
		return MediumStyle
	default:
		return LowStyle
	}
}

// LevelIcon returns the icon for a priority level name.
func LevelIcon(level string) string {
	switch level {
	case "high":
		return IconHigh
	case "medium":
		return IconMedium
	default:
		return IconLow
	}
}

// ScoreBadge renders a fixed-width score in the level's color.
func ScoreBadge(score int, level string) string {
	return lipgloss.NewStyle().Width(ColWidthScore).Render(LevelStyle(level).Render(fmt.Sprintf("%3d", score)))
}

// ShortID trims an id to the ID column.
func ShortID(id string) string {
	r := []rune(id)
	if len(r) > ColWidthID-2 {
		r = r[:ColWidthID-2]
	}
	return string(r)
}

// DueLabel describes a deadline relative to now. A zero deadline yields "".
func DueLabel(deadline, now time.Time) string {
	if deadline.IsZero() {
		return ""
	}
	d := deadline.Sub(now)
	switch {
	case d < 0:
		return Error.Render(fmt.Sprintf("overdue %s", humanize(-d)))
	case d < time.Hour:
		return Warning.Render(fmt.Sprintf("due in %dm", int(d.Minutes())))
	case d < 24*time.Hour:
		return Warning.Render(fmt.Sprintf("due in %s", humanize(d)))
	case d < 7*24*time.Hour:
		return Muted.Render("due " + deadline.Local().Format("Mon 15:04"))
	default:
		return Muted.Render("due " + deadline.Local().Format("Jan 2"))
	}
}

func humanize(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
