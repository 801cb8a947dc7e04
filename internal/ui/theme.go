package ui

import "github.com/charmbracelet/lipgloss"

// prio's palette: chalkboard greens, highlighter accents.
var (
	// Primary colors
	Chalk  = lipgloss.Color("#F5F5F0")
	Slate  = lipgloss.Color("#3C4A46")
	Marker = lipgloss.Color("#F2C94C")
	Coral  = lipgloss.Color("#EB5757")
	Amber  = lipgloss.Color("#F2994A")
	Mint   = lipgloss.Color("#6FCF97")
	Sky    = lipgloss.Color("#56CCF2")
	Dim    = lipgloss.Color("#666666")
	Subtle = lipgloss.Color("#AAAAAA")
	Bright = lipgloss.Color("#FFFFFF")

	// Semantic styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Marker)

	Subtitle = lipgloss.NewStyle().
			Foreground(Amber)

	Success = lipgloss.NewStyle().
		Foreground(Mint)

	Error = lipgloss.NewStyle().
		Foreground(Coral)

	Warning = lipgloss.NewStyle().
		Foreground(Amber)

	Info = lipgloss.NewStyle().
		Foreground(Sky)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	Accent = lipgloss.NewStyle().
		Foreground(Marker).
		Bold(true)

	// Priority level styles
	HighStyle = lipgloss.NewStyle().
			Foreground(Coral).
			Bold(true)

	MediumStyle = lipgloss.NewStyle().
			Foreground(Amber)

	LowStyle = lipgloss.NewStyle().
			Foreground(Mint)

	// Component styles
	Banner = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Marker).
		Padding(0, 1)

	Tag = lipgloss.NewStyle().
		Foreground(Chalk).
		Background(Slate).
		Padding(0, 1).
		Bold(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Bright)
)

const (
	IconRank    = "⚡"
	IconTask    = "📋"
	IconDone    = "✅"
	IconOverdue = "🔴"
	IconHigh    = "🔥"
	IconMedium  = "🟠"
	IconLow     = "🟢"
	IconAI      = "✨"
	IconStreak  = "📈"
	IconWarn    = "⚠️ "
	IconError   = "✗ "
	IconOk      = "✓ "
	IconArrow   = "→"
	IconDot     = "·"
)
