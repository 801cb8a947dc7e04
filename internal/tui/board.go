package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/studydesk/prio/internal/priority"
	"github.com/studydesk/prio/internal/ui"
)

// RankFinishedMsg is delivered when a ranking call returns.
type RankFinishedMsg struct {
	Err error
}

// RankDroppedMsg is delivered when a rank request fired while another call
// was still running.
type RankDroppedMsg struct{}

// ReloadMsg asks the board to reload its tasks.
type ReloadMsg struct{}

// BoardDeps connects the board to the ranking pipeline. RequestRank and
// SetStatus may be nil.
type BoardDeps struct {
	Load        func() ([]priority.Task, error)
	SetStatus   func(id string, s priority.Status) error
	RequestRank func()
	Now         func() time.Time
}

// BoardModel is the interactive priority board.
type BoardModel struct {
	deps BoardDeps

	tasks    []priority.Task
	filtered []priority.Task
	cursor   int
	filter   string
	mode     boardMode
	showAll  bool

	ranking    bool
	lastRanked time.Time
	rankErr    error
	notice     string

	width  int
	height int

	quitting bool
}

type boardMode int

const (
	boardModeNormal boardMode = iota
	boardModeFilter
)

// NewBoardModel creates a board and performs the initial load.
func NewBoardModel(deps BoardDeps) *BoardModel {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := &BoardModel{
		deps:   deps,
		width:  80,
		height: 24,
	}
	m.reload()
	return m
}

// NewBoardProgram wraps the model in a full-screen program. Callers keep the
// program to deliver RankFinishedMsg from other goroutines via Send.
func NewBoardProgram(m *BoardModel) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

// RunBoard runs the program until the user quits.
func RunBoard(p *tea.Program) error {
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("board tui: %w", err)
	}
	return nil
}

// IsTTY returns true when stdin and stdout are connected to a terminal.
func IsTTY() bool {
	in := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	out := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return in && out
}

func (m *BoardModel) Init() tea.Cmd {
	return nil
}

func (m *BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RankFinishedMsg:
		m.ranking = false
		if msg.Err != nil {
			m.rankErr = msg.Err
			return m, nil
		}
		m.rankErr = nil
		m.lastRanked = m.deps.Now()
		m.reload()
		return m, nil

	case RankDroppedMsg:
		m.notice = "rank request dropped: a call was already running"
		return m, nil

	case ReloadMsg:
		m.reload()
		return m, nil

	case tea.KeyMsg:
		if m.mode == boardModeFilter {
			return m.handleFilterKey(msg)
		}
		return m.handleNormalKey(msg)
	}
	return m, nil
}

func (m *BoardModel) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "g":
		m.cursor = 0

	case "G":
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		}

	case "r":
		m.requestRank()

	case "x":
		m.rankErr = nil
		m.notice = ""

	case "d":
		m.setSelectedStatus(priority.StatusSubmitted)

	case "u":
		m.setSelectedStatus(priority.StatusInProgress)

	case "a":
		m.showAll = !m.showAll
		m.applyFilter()

	case "/":
		m.mode = boardModeFilter
		m.filter = ""
		m.applyFilter()
	}
	return m, nil
}

func (m *BoardModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = boardModeNormal
		m.filter = ""
		m.applyFilter()

	case "enter":
		m.mode = boardModeNormal

	case "backspace":
		if len(m.filter) > 0 {
			runes := []rune(m.filter)
			m.filter = string(runes[:len(runes)-1])
			m.applyFilter()
		}

	default:
		if len(msg.Runes) > 0 {
			m.filter += string(msg.Runes)
			m.applyFilter()
		}
	}
	return m, nil
}

func (m *BoardModel) requestRank() {
	if m.deps.RequestRank == nil {
		m.notice = "AI ranking is not configured; showing local scores"
		return
	}
	m.ranking = true
	m.notice = ""
	m.deps.RequestRank()
}

func (m *BoardModel) setSelectedStatus(s priority.Status) {
	t, ok := m.Selected()
	if !ok || m.deps.SetStatus == nil || t.Status == s {
		return
	}
	if err := m.deps.SetStatus(t.ID, s); err != nil {
		m.notice = "status change failed: " + err.Error()
		return
	}
	m.notice = fmt.Sprintf("%s %s %s", ui.ShortID(t.ID), ui.IconArrow, s)
	if m.deps.RequestRank != nil {
		m.ranking = true
	}
	m.reload()
}

func (m *BoardModel) reload() {
	if m.deps.Load == nil {
		return
	}
	tasks, err := m.deps.Load()
	if err != nil {
		m.notice = "load failed: " + err.Error()
		return
	}
	priority.SortByScore(tasks)
	m.tasks = tasks
	m.applyFilter()
}

func (m *BoardModel) applyFilter() {
	m.filtered = nil
	for _, t := range m.tasks {
		if !m.showAll && !t.Status.IsActive() {
			continue
		}
		if matchTask(m.filter, t) {
			m.filtered = append(m.filtered, t)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
}

// Selected returns the task under the cursor.
func (m *BoardModel) Selected() (priority.Task, bool) {
	if len(m.filtered) == 0 {
		return priority.Task{}, false
	}
	return m.filtered[m.cursor], true
}

func (m *BoardModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	now := m.deps.Now()

	header := ui.Title.Render("  " + ui.IconRank + " Priorities")
	if m.ranking {
		header += ui.Info.Render("  ranking…")
	}
	if m.filter != "" {
		header += ui.Muted.Render(fmt.Sprintf("  filter: %q", m.filter))
	}
	b.WriteString(header + "\n\n")

	visHeight := m.height - 14
	if visHeight < 3 {
		visHeight = 3
	}
	offset := 0
	if m.cursor >= visHeight {
		offset = m.cursor - visHeight + 1
	}

	if len(m.filtered) == 0 {
		if m.filter != "" {
			b.WriteString("  " + ui.Muted.Render("No matches. Press esc to clear filter.") + "\n")
		} else {
			b.WriteString("  " + ui.Muted.Render("Nothing to do. Import assignments with `prio import`.") + "\n")
		}
	} else {
		end := min(offset+visHeight, len(m.filtered))
		for i := offset; i < end; i++ {
			b.WriteString(m.renderRow(m.filtered[i], i == m.cursor, now) + "\n")
		}
	}
	b.WriteString("\n")

	if t, ok := m.Selected(); ok {
		b.WriteString(m.renderDetail(t))
	}

	if m.rankErr != nil {
		b.WriteString("  " + ui.Error.Render("rank failed: "+m.rankErr.Error()) + ui.Muted.Render("  (x to dismiss)") + "\n")
	} else if m.notice != "" {
		b.WriteString("  " + ui.Warning.Render(m.notice) + "\n")
	} else {
		b.WriteString("\n")
	}

	if m.mode == boardModeFilter {
		prompt := lipgloss.NewStyle().Foreground(ui.Marker).Bold(true).Render("/")
		b.WriteString("  " + prompt + " " + m.filter + blinkCursor() + "\n")
	}

	active := 0
	for _, t := range m.tasks {
		if t.Status.IsActive() {
			active++
		}
	}
	status := fmt.Sprintf("  %d shown · %d active", len(m.filtered), active)
	if !m.lastRanked.IsZero() {
		status += " · ranked " + m.lastRanked.Format("15:04")
	}
	b.WriteString(ui.Muted.Render(status) + "\n")

	if m.mode == boardModeFilter {
		b.WriteString(ui.Muted.Render("  esc clear · enter confirm") + "\n")
	} else {
		b.WriteString(ui.Muted.Render("  j/k move · r rank · d done · u reopen · a all · / filter · x dismiss · q quit") + "\n")
	}
	return b.String()
}

func (m *BoardModel) renderRow(t priority.Task, selected bool, now time.Time) string {
	pointer := "  "
	titleStyle := lipgloss.NewStyle()
	if selected {
		pointer = ui.Accent.Render(ui.IconArrow + " ")
		titleStyle = lipgloss.NewStyle().Foreground(ui.Marker).Bold(true)
	}

	id := lipgloss.NewStyle().Width(ui.ColWidthID).Render(ui.Muted.Render(ui.ShortID(t.ID)))
	title := titleStyle.Render(t.Title)
	if !t.Status.IsActive() {
		title = ui.Muted.Render(t.Title + " (" + string(t.Status) + ")")
	}

	line := fmt.Sprintf("  %s%s %s %s %s", pointer, ui.ScoreBadge(t.PriorityScore, string(t.PriorityLevel)),
		ui.LevelIcon(string(t.PriorityLevel)), id, title)
	if t.Subject != "" {
		line += ui.Muted.Render(" [" + t.Subject + "]")
	}
	if t.Status.IsActive() {
		if due := ui.DueLabel(t.Deadline, now); due != "" {
			line += " " + due
		}
	}
	if t.Source != priority.SourceLocal {
		line += " " + ui.IconAI
	}
	return line
}

func (m *BoardModel) renderDetail(t priority.Task) string {
	var b strings.Builder
	for _, r := range t.PriorityReason {
		b.WriteString("    " + r + "\n")
	}
	for _, a := range t.NextActions {
		b.WriteString("    " + ui.Success.Render(ui.IconArrow+" "+a) + "\n")
	}
	for _, a := range t.Assumptions {
		b.WriteString("    " + ui.Muted.Render("assumes: "+a) + "\n")
	}
	if b.Len() == 0 {
		return ""
	}
	return b.String() + "\n"
}

func blinkCursor() string {
	return lipgloss.NewStyle().Foreground(ui.Marker).Render("▎")
}
