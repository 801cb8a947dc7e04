package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/studydesk/prio/internal/ai"
	"github.com/studydesk/prio/internal/assignment"
	"github.com/studydesk/prio/internal/completion"
	"github.com/studydesk/prio/internal/config"
	"github.com/studydesk/prio/internal/events"
	"github.com/studydesk/prio/internal/override"
	"github.com/studydesk/prio/internal/ranking"
	"github.com/studydesk/prio/internal/store"
)

// app bundles what every command needs: config, store, and the ranking
// service for the configured viewer.
type app struct {
	cfg    *config.Config
	db     *store.DB
	closer io.Closer
	svc    *ranking.Service
	bus    *events.Bus
	viewer assignment.Viewer
	// rankErr explains why svc.Ranker is nil.
	rankErr error
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open()
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	repo, closer, err := override.Open(ctx, cfg.Overrides, db.Conn())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening override store: %w", err)
	}

	a := &app{
		cfg:    cfg,
		db:     db,
		closer: closer,
		bus:    events.NewBus(),
		viewer: viewerFromConfig(cfg),
	}

	ranker, err := ai.New(cfg.AI)
	if err != nil {
		a.rankErr = err
		log.WithError(err).Debug("ai ranking disabled")
	}

	a.bus.Subscribe("*", "log", func(e events.Event) {
		log.WithFields(log.Fields{
			"topic": e.Topic,
			"user":  e.UserID,
			"tasks": e.TaskIDs,
		}).Debug("change published")
	})

	a.svc = &ranking.Service{
		Assignments: assignment.NewStore(db.Conn()),
		Overrides:   repo,
		Completions: completion.NewLog(db.Conn()),
		Ranker:      ranker,
		Bus:         a.bus,
		Weights:     cfg.Priority.Weights(),
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.closer.Close(); err != nil {
		log.WithError(err).Warn("closing override store")
	}
	a.db.Close()
}

// lastRankKey is the kv key holding the time of the last successful rank.
func (a *app) lastRankKey() string {
	return "last_rank:" + a.viewer.ID
}

func (a *app) markRanked(at time.Time) {
	if err := a.db.SetKV(a.lastRankKey(), at.Format(time.RFC3339)); err != nil {
		log.WithError(err).Warn("recording rank time")
	}
}

func (a *app) lastRanked() (time.Time, bool) {
	v, ok, err := a.db.GetKV(a.lastRankKey())
	if err != nil || !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func viewerFromConfig(cfg *config.Config) assignment.Viewer {
	role := assignment.RoleStudent
	if cfg.User.Role == string(assignment.RoleTeacher) {
		role = assignment.RoleTeacher
	}
	return assignment.Viewer{
		ID:             cfg.User.ID,
		Role:           role,
		ClassCode:      cfg.User.ClassCode,
		GradeRoom:      cfg.User.GradeRoom,
		ManagedClasses: cfg.User.Classes,
	}
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
