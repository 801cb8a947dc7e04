package cmd

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/studydesk/prio/internal/events"
	"github.com/studydesk/prio/internal/priority"
	"github.com/studydesk/prio/internal/ranking"
	"github.com/studydesk/prio/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive priority board",
	Long: `Open the interactive priority board.

Status changes made on the board trigger a debounced AI re-rank when a
ranking service is configured. Falls back to the plain task list when not
attached to a terminal.`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

func runBoard(cmd *cobra.Command, args []string) error {
	if !tui.IsTTY() {
		return runTasks(cmd, args)
	}

	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	deps := tui.BoardDeps{
		Load: func() ([]priority.Task, error) {
			tasks, _, err := a.svc.Load(ctx, a.viewer, time.Now())
			return tasks, err
		},
		SetStatus: func(id string, s priority.Status) error {
			_, err := a.svc.SetStatus(ctx, a.viewer, id, s, time.Now())
			return err
		},
	}

	var ctrl *ranking.Controller
	if a.svc.Ranker != nil {
		deps.RequestRank = func() { ctrl.RequestRank() }
	}

	m := tui.NewBoardModel(deps)
	p := tui.NewBoardProgram(m)

	if a.svc.Ranker != nil {
		ctrl = ranking.NewController(a.cfg.Rank.DebounceDelay(), ranking.RealScheduler{},
			func(rctx context.Context) error {
				_, err := a.svc.Rank(rctx, a.viewer, time.Now())
				if err == nil {
					a.markRanked(time.Now())
				}
				return err
			},
			ranking.WithOnDone(func(err error) {
				if err != nil {
					log.WithError(err).Debug("board rank failed")
				}
				p.Send(tui.RankFinishedMsg{Err: err})
			}),
			ranking.WithOnDrop(func() { p.Send(tui.RankDroppedMsg{}) }),
		)
		defer ctrl.Close()

		unsubscribe := a.bus.Subscribe(events.TasksChanged, "board.rank", func(events.Event) {
			ctrl.RequestRank()
		})
		defer unsubscribe()

		// Published from the controller's goroutine, never from Update.
		unsubscribeReload := a.bus.Subscribe(events.OverridesChanged, "board.reload", func(events.Event) {
			p.Send(tui.ReloadMsg{})
		})
		defer unsubscribeReload()
	}

	return tui.RunBoard(p)
}
