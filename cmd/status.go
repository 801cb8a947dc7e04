package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/studydesk/prio/internal/priority"
	"github.com/studydesk/prio/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change a task's status",
	Long: `Change a task's status. The id may be a unique prefix.

Statuses: not_started, in_progress, ready_to_submit, submitted,
pending_review, returned.
Moving a task into submitted or pending_review records a completion;
moving it back out removes that record.`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := priority.ParseStatus(args[1])
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.svc.SetStatus(ctx, a.viewer, args[0], status, time.Now())
	if err != nil {
		return err
	}
	ui.Okf("%s %s %s", ui.ShortID(id), ui.IconArrow, status)
	return nil
}
