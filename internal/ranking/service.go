package ranking

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/studydesk/prio/internal/ai"
	"github.com/studydesk/prio/internal/assignment"
	"github.com/studydesk/prio/internal/completion"
	"github.com/studydesk/prio/internal/events"
	"github.com/studydesk/prio/internal/override"
	"github.com/studydesk/prio/internal/priority"
	"github.com/studydesk/prio/internal/stats"
)

// ErrNoRanker is returned by Rank when no AI ranker is configured.
var ErrNoRanker = errors.New("no AI ranker configured")

// Service wires the task pipeline: load, project, rank, merge, persist.
type Service struct {
	Assignments *assignment.Store
	Overrides   override.Repository
	Completions *completion.Log
	Ranker      ai.Ranker // optional
	Bus         *events.Bus
	Weights     priority.ScoreWeights
}

// RankOutcome summarizes one AI ranking pass.
type RankOutcome struct {
	MergeOutcome
	// Sent is the number of active tasks included in the request.
	Sent int
}

// Load returns the viewer's projected tasks. Assignments that fail
// validation are skipped and returned as errors alongside the tasks.
func (s *Service) Load(ctx context.Context, v assignment.Viewer, now time.Time) ([]priority.Task, []error, error) {
	list, err := s.Assignments.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	overrides, err := s.Overrides.All(ctx, v.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading overrides: %w", err)
	}
	tasks, skipped := assignment.ProjectAll(list, v, overrides, now, s.Weights)
	for _, e := range skipped {
		log.WithError(e).Warn("skipping assignment")
	}
	return tasks, skipped, nil
}

// Rank sends every active task to the AI ranker in one batch, merges the
// results, and persists them as overrides. Results for tasks that were not
// sent are ignored. On failure nothing is changed.
func (s *Service) Rank(ctx context.Context, v assignment.Viewer, now time.Time) (RankOutcome, error) {
	if s.Ranker == nil {
		return RankOutcome{}, ErrNoRanker
	}
	tasks, _, err := s.Load(ctx, v, now)
	if err != nil {
		return RankOutcome{}, err
	}

	req := ai.BuildRequest(tasks, now)
	if len(req.Tasks) == 0 {
		return RankOutcome{MergeOutcome: MergeOutcome{Tasks: tasks}}, nil
	}

	results, err := s.Ranker.Rank(ctx, req)
	if err != nil {
		return RankOutcome{}, err
	}

	sent := make(map[string]bool, len(req.Tasks))
	for _, rt := range req.Tasks {
		sent[rt.ID] = true
	}
	kept := make([]ai.RankResult, 0, len(results))
	for _, r := range results {
		if sent[r.TaskID] {
			kept = append(kept, r)
		}
	}

	outcome := Merge(tasks, kept, now)
	outcome.Ignored += len(results) - len(kept)
	if len(outcome.Overrides) > 0 {
		if err := s.Overrides.SetAll(ctx, v.ID, outcome.Overrides); err != nil {
			return RankOutcome{}, fmt.Errorf("saving overrides: %w", err)
		}
	}
	log.WithFields(log.Fields{
		"user":    v.ID,
		"sent":    len(req.Tasks),
		"applied": outcome.Applied,
		"ignored": outcome.Ignored,
	}).Info("ai ranking merged")

	if outcome.Applied > 0 {
		ids := make([]string, 0, len(outcome.Overrides))
		for id := range outcome.Overrides {
			ids = append(ids, id)
		}
		s.Bus.Publish(events.Event{Topic: events.OverridesChanged, UserID: v.ID, TaskIDs: ids, At: now})
	}
	return RankOutcome{MergeOutcome: outcome, Sent: len(req.Tasks)}, nil
}

// SetStatus changes a task's status and keeps the completion log in step.
// It returns the resolved assignment id.
func (s *Service) SetStatus(ctx context.Context, v assignment.Viewer, idOrPrefix string, status priority.Status, at time.Time) (string, error) {
	a, err := s.Assignments.Resolve(ctx, idOrPrefix)
	if err != nil {
		return "", err
	}
	prev, err := s.Assignments.SetStatus(ctx, a.ID, status)
	if err != nil {
		return "", err
	}
	action, err := s.Completions.Apply(ctx, v.ID, a.ID, prev, status, at)
	if err != nil {
		return "", err
	}

	s.Bus.Publish(events.Event{Topic: events.TasksChanged, UserID: v.ID, TaskIDs: []string{a.ID}, At: at})
	if action != completion.NoChange {
		s.Bus.Publish(events.Event{Topic: events.CompletionsChanged, UserID: v.ID, TaskIDs: []string{a.ID}, At: at})
	}
	return a.ID, nil
}

// Import upserts assignments. When a record already exists and the import
// changes its status, the completion log is updated the same way SetStatus
// would. It returns the imported ids.
func (s *Service) Import(ctx context.Context, v assignment.Viewer, list []assignment.Assignment, at time.Time) ([]string, error) {
	ids := make([]string, 0, len(list))
	var completed []string
	for _, a := range list {
		prev, known, err := s.storedStatus(ctx, a.ID)
		if err != nil {
			return ids, err
		}
		if err := s.Assignments.Upsert(ctx, a); err != nil {
			return ids, fmt.Errorf("importing %q: %w", a.Title, err)
		}
		ids = append(ids, a.ID)
		if !known || a.Status == "" {
			continue
		}
		next, err := priority.ParseStatus(a.Status)
		if err != nil {
			continue
		}
		action, err := s.Completions.Apply(ctx, v.ID, a.ID, prev, next, at)
		if err != nil {
			return ids, err
		}
		if action != completion.NoChange {
			completed = append(completed, a.ID)
		}
	}

	if len(ids) > 0 {
		s.Bus.Publish(events.Event{Topic: events.TasksChanged, UserID: v.ID, TaskIDs: ids, At: at})
	}
	if len(completed) > 0 {
		s.Bus.Publish(events.Event{Topic: events.CompletionsChanged, UserID: v.ID, TaskIDs: completed, At: at})
	}
	return ids, nil
}

func (s *Service) storedStatus(ctx context.Context, id string) (priority.Status, bool, error) {
	existing, err := s.Assignments.Get(ctx, id)
	var nf *assignment.NotFoundError
	if errors.As(err, &nf) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	st, err := priority.ParseStatus(existing.Status)
	if err != nil {
		st = priority.StatusNotStarted
	}
	return st, true, nil
}

// Stats computes the dashboard figures for the viewer.
func (s *Service) Stats(ctx context.Context, v assignment.Viewer, now time.Time) (stats.Stats, error) {
	tasks, _, err := s.Load(ctx, v, now)
	if err != nil {
		return stats.Stats{}, err
	}
	entries, err := s.Completions.All(ctx, v.ID)
	if err != nil {
		return stats.Stats{}, err
	}
	return stats.Compute(tasks, entries, now), nil
}
