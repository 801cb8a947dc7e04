package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/studydesk/prio/internal/stats"
	"github.com/studydesk/prio/internal/ui"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion rate and streaks",
	Long: `Show task counts, the on-time completion rate, and completion streaks.

A streak counts consecutive calendar days with at least one on-time
completion. The current streak must include today.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.svc.Stats(ctx, a.viewer, time.Now())
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	if statsJSON {
		return json.NewEncoder(os.Stdout).Encode(st)
	}
	printStats(st)
	return nil
}

func printStats(st stats.Stats) {
	ui.Section(ui.IconStreak, "Stats")

	if st.Total == 0 {
		ui.Puts(ui.Muted.Render("  No tasks yet. Import some: ") + ui.Accent.Render("prio import <file>"))
		ui.Blank()
		return
	}

	ui.Kv("Tasks", fmt.Sprintf("%d total", st.Total))
	ui.Kv("Active", fmt.Sprintf("%d", st.ActiveCount))
	backlog := fmt.Sprintf("%d", st.BacklogCount)
	if st.BacklogCount > 0 {
		backlog = ui.Error.Render(backlog + " overdue")
	}
	ui.Kv("Backlog", backlog)
	ui.Kv("Done", fmt.Sprintf("%d", st.DoneCount))
	ui.Kv("On time", fmt.Sprintf("%d%%", st.OnTimeRate))

	streak := fmt.Sprintf("%d day(s)", st.CurrentStreak)
	if st.CurrentStreak > 0 {
		streak = ui.Success.Render(streak)
	}
	ui.Kv("Streak", streak)
	ui.Kv("Best streak", fmt.Sprintf("%d day(s)", st.LongestStreak))
	ui.Blank()
}
