package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/studydesk/prio/internal/priority"
	"github.com/studydesk/prio/internal/ranking"
	"github.com/studydesk/prio/internal/ui"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Ask the AI ranking service to re-rank active tasks",
	Long: `Send every active task to the configured AI ranking service in one batch
and store the returned scores. On failure nothing changes and the local
scores stay in effect.`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.svc.Ranker == nil {
		return fmt.Errorf("AI ranking is not available: %w", a.rankErr)
	}

	var outcome ranking.RankOutcome
	done := make(chan error, 1)
	ctrl := ranking.NewController(a.cfg.Rank.DebounceDelay(), ranking.RealScheduler{},
		func(rctx context.Context) error {
			var err error
			outcome, err = a.svc.Rank(rctx, a.viewer, time.Now())
			return err
		},
		ranking.WithOnDone(func(err error) { done <- err }),
	)
	defer ctrl.Close()

	ctrl.RequestRank()
	select {
	case err = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	if outcome.Sent == 0 {
		ui.Note("No active tasks to rank.")
		return nil
	}
	a.markRanked(time.Now())

	ui.Okf("Ranked %d task(s): %d updated, %d ignored", outcome.Sent, outcome.Applied, outcome.Ignored)
	printTaskList(priority.Ranked(outcome.Tasks), time.Now())
	return nil
}
