package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/studydesk/prio/internal/priority"
	"github.com/studydesk/prio/internal/ui"
)

var (
	tasksAll  bool
	tasksJSON bool
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"ls"},
	Short:   "List tasks by priority",
	Long: `List your active tasks, highest priority first.

Scores come from the last AI ranking when one exists, otherwise from the
local estimate (deadline, weight, effort). Use --all to include finished work.`,
	RunE: runTasks,
}

func init() {
	tasksCmd.Flags().BoolVarP(&tasksAll, "all", "a", false, "Include submitted and reviewed tasks")
	tasksCmd.Flags().BoolVar(&tasksJSON, "json", false, "Output as JSON")
}

func runTasks(cmd *cobra.Command, _ []string) error {
	a, err := openApp(commandContext(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	now := time.Now()
	tasks, skipped, err := a.svc.Load(commandContext(cmd), a.viewer, now)
	if err != nil {
		return err
	}

	var list []priority.Task
	if tasksAll {
		list = append(list, tasks...)
		priority.SortByScore(list)
	} else {
		list = priority.Ranked(tasks)
	}

	if tasksJSON {
		if list == nil {
			list = []priority.Task{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	printTaskList(list, now)
	if len(skipped) > 0 {
		ui.Warnf("%d assignment(s) skipped due to invalid data (run with PRIO_DEBUG=1 for details)", len(skipped))
	}
	if t, ok := a.lastRanked(); ok {
		ui.Note("last AI ranking " + t.Local().Format("Mon Jan 2 15:04"))
	} else if a.svc.Ranker != nil && len(list) > 0 {
		ui.Tip("ask the AI ranking service with", "prio rank")
	}
	ui.Blank()
	return nil
}

func printTaskList(list []priority.Task, now time.Time) {
	ui.Section(ui.IconTask, "Priorities")

	if len(list) == 0 {
		ui.Puts(ui.Muted.Render("  Nothing to do. Import assignments with ") + ui.Accent.Render("prio import <file>"))
		return
	}

	for _, t := range list {
		ui.Puts(formatTaskLine(t, now))
		if len(t.PriorityReason) > 0 && t.Source != priority.SourceLocal {
			ui.Note("      " + t.PriorityReason[0])
		}
	}
	ui.Blank()
}

func formatTaskLine(t priority.Task, now time.Time) string {
	id := lipgloss.NewStyle().Width(ui.ColWidthID).Render(ui.Muted.Render(ui.ShortID(t.ID)))
	title := t.Title
	if !t.Status.IsActive() {
		title = ui.Muted.Render(title + " (" + string(t.Status) + ")")
	}
	line := fmt.Sprintf("  %s %s %s %s", ui.ScoreBadge(t.PriorityScore, string(t.PriorityLevel)),
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
