package ranking

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/studydesk/prio/internal/ai"
	"github.com/studydesk/prio/internal/assignment"
	"github.com/studydesk/prio/internal/completion"
	"github.com/studydesk/prio/internal/events"
	"github.com/studydesk/prio/internal/override"
	"github.com/studydesk/prio/internal/priority"
	"github.com/studydesk/prio/internal/store"
)

type fakeRanker struct {
	results []ai.RankResult
	err     error
	calls   int
	lastReq *ai.RankRequest
}

func (f *fakeRanker) Rank(_ context.Context, req *ai.RankRequest) ([]ai.RankResult, error) {
	f.calls++
	f.lastReq = req
	return f.results, f.err
}

var student = assignment.Viewer{ID: "stu-1", Role: assignment.RoleStudent, ClassCode: "C1"}

func setupService(t *testing.T, ranker ai.Ranker) (*Service, *events.Bus) {
	t.Helper()
	db, err := store.OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	bus := events.NewBus()
	svc := &Service{
		Assignments: assignment.NewStore(db.Conn()),
		Overrides:   override.NewMemoryRepository(),
		Completions: completion.NewLog(db.Conn()),
		Ranker:      ranker,
		Bus:         bus,
		Weights:     priority.DefaultScoreWeights(),
	}

	ctx := context.Background()
	seed := []assignment.Assignment{
		{ID: "A", Title: "Essay", ClassCode: "C1", Deadline: baseTime.Add(30 * time.Minute).Format(time.RFC3339), Importance: 3, EffortMinutes: 60},
		{ID: "B", Title: "Quiz prep", ClassCode: "C1", Deadline: baseTime.Add(50 * time.Hour).Format(time.RFC3339), EffortMinutes: 10},
		{ID: "C", Title: "Old lab", ClassCode: "C1", Status: "submitted"},
		{ID: "D", Title: "Other class", ClassCode: "C9"},
	}
	for _, a := range seed {
		if err := svc.Assignments.Upsert(ctx, a); err != nil {
			t.Fatalf("seed %s: %v", a.ID, err)
		}
	}
	return svc, bus
}

func TestService_LoadProjectsVisibleTasks(t *testing.T) {
	svc, _ := setupService(t, nil)
	tasks, skipped, err := svc.Load(context.Background(), student, baseTime)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("unexpected skipped: %v", skipped)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 visible tasks, got %d", len(tasks))
	}
	ranked := priority.Ranked(tasks)
	if len(ranked) != 2 || ranked[0].ID != "A" || ranked[0].PriorityScore != 100 || ranked[1].PriorityScore != 1 {
		t.Errorf("unexpected ranking: %+v", ranked)
	}
}

func TestService_RankMergesAndPersists(t *testing.T) {
	fr := &fakeRanker{results: []ai.RankResult{
		{TaskID: "B", PriorityScore: score(88), Reason: []string{"counts toward midterm"}},
	}}
	svc, bus := setupService(t, fr)
	var published []events.Event
	bus.Subscribe(events.OverridesChanged, "test", func(e events.Event) { published = append(published, e) })
	ctx := context.Background()

	out, err := svc.Rank(ctx, student, baseTime)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if fr.calls != 1 || out.Sent != 2 || len(fr.lastReq.Tasks) != 2 {
		t.Fatalf("expected one call with 2 active tasks, got calls=%d sent=%d", fr.calls, out.Sent)
	}
	if out.Applied != 1 {
		t.Errorf("applied = %d, want 1", out.Applied)
	}
	if len(published) != 1 || published[0].TaskIDs[0] != "B" {
		t.Errorf("expected overrides.changed for B, got %+v", published)
	}

	ov, ok, _ := svc.Overrides.Get(ctx, student.ID, "B")
	if !ok || *ov.PriorityScore != 88 {
		t.Fatalf("override not persisted: %+v", ov)
	}

	// A fresh load replays the override over the recomputed local score.
	tasks, _, _ := svc.Load(ctx, student, baseTime.Add(time.Hour))
	ranked := priority.Ranked(tasks)
	if ranked[0].ID != "A" || ranked[1].ID != "B" || ranked[1].PriorityScore != 88 {
		t.Errorf("override not applied on reload: %+v", ranked)
	}
	if ranked[1].PriorityReason[0] != "counts toward midterm" {
		t.Errorf("reason = %v", ranked[1].PriorityReason)
	}
}

func TestService_RankIgnoresTasksNotSent(t *testing.T) {
	fr := &fakeRanker{results: []ai.RankResult{
		{TaskID: "C", PriorityScore: score(97)},
		{TaskID: "D", PriorityScore: score(80)},
		{TaskID: "A", PriorityScore: score(60)},
	}}
	svc, _ := setupService(t, fr)
	ctx := context.Background()

	out, err := svc.Rank(ctx, student, baseTime)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if out.Applied != 1 || out.Ignored != 2 {
		t.Errorf("applied=%d ignored=%d, want 1 and 2", out.Applied, out.Ignored)
	}
	all, _ := svc.Overrides.All(ctx, student.ID)
	if len(all) != 1 {
		t.Fatalf("expected only A to be persisted, got %v", all)
	}
	if _, ok := all["C"]; ok {
		t.Error("submitted task C was not in the request and must not get an override")
	}
	for _, task := range out.Tasks {
		if task.ID == "C" && task.Source != priority.SourceLocal {
			t.Errorf("C changed: %+v", task)
		}
	}
}

type failingBatchRepo struct {
	*override.MemoryRepository
}

func (failingBatchRepo) SetAll(context.Context, string, map[string]override.Override) error {
	return errors.New("disk full")
}

func TestService_RankSaveFailurePublishesNothing(t *testing.T) {
	fr := &fakeRanker{results: []ai.RankResult{
		{TaskID: "A", PriorityScore: score(60)},
		{TaskID: "B", PriorityScore: score(70)},
	}}
	svc, bus := setupService(t, fr)
	repo := failingBatchRepo{override.NewMemoryRepository()}
	svc.Overrides = repo
	published := 0
	bus.Subscribe(events.OverridesChanged, "test", func(events.Event) { published++ })
	ctx := context.Background()

	if _, err := svc.Rank(ctx, student, baseTime); err == nil {
		t.Fatal("expected save error")
	}
	all, _ := repo.All(ctx, student.ID)
	if len(all) != 0 || published != 0 {
		t.Errorf("failed save must leave no overrides or events (overrides=%d events=%d)", len(all), published)
	}
}

func TestService_RankFailureChangesNothing(t *testing.T) {
	fr := &fakeRanker{err: &ai.RankError{Op: "status", Status: 503}}
	svc, bus := setupService(t, fr)
	published := 0
	bus.Subscribe("*", "test", func(events.Event) { published++ })
	ctx := context.Background()

	_, err := svc.Rank(ctx, student, baseTime)
	var re *ai.RankError
	if !errors.As(err, &re) || re.Status != 503 {
		t.Fatalf("expected RankError 503, got %v", err)
	}
	all, _ := svc.Overrides.All(ctx, student.ID)
	if len(all) != 0 || published != 0 {
		t.Errorf("failure must not persist or publish (overrides=%d events=%d)", len(all), published)
	}
}

func TestService_RankWithoutActiveTasksSkipsCall(t *testing.T) {
	fr := &fakeRanker{}
	svc, _ := setupService(t, fr)
	ctx := context.Background()
	for _, id := range []string{"A", "B"} {
		if _, err := svc.Assignments.SetStatus(ctx, id, priority.StatusSubmitted); err != nil {
			t.Fatal(err)
		}
	}
	out, err := svc.Rank(ctx, student, baseTime)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if fr.calls != 0 || out.Sent != 0 {
		t.Errorf("expected no call, got calls=%d sent=%d", fr.calls, out.Sent)
	}
}

func TestService_RankWithoutRanker(t *testing.T) {
	svc, _ := setupService(t, nil)
	if _, err := svc.Rank(context.Background(), student, baseTime); !errors.Is(err, ErrNoRanker) {
		t.Fatalf("expected ErrNoRanker, got %v", err)
	}
}

func TestService_SetStatusMaintainsLogAndStats(t *testing.T) {
	svc, bus := setupService(t, nil)
	var topics []string
	bus.Subscribe("*", "test", func(e events.Event) { topics = append(topics, e.Topic) })
	ctx := context.Background()
	doneAt := baseTime.Add(10 * time.Minute)

	id, err := svc.SetStatus(ctx, student, "A", priority.StatusSubmitted, doneAt)
	if err != nil || id != "A" {
		t.Fatalf("SetStatus = %q, %v", id, err)
	}
	if len(topics) != 2 || topics[0] != events.TasksChanged || topics[1] != events.CompletionsChanged {
		t.Errorf("topics = %v", topics)
	}

	st, err := svc.Stats(ctx, student, baseTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	// A (on time) and C (submitted, never logged) are done; only A counts.
	if st.DoneCount != 2 || st.ActiveCount != 1 || st.OnTimeRate != 50 || st.CurrentStreak != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}

	if _, err := svc.SetStatus(ctx, student, "A", priority.StatusReturned, doneAt.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	entries, _ := svc.Completions.All(ctx, student.ID)
	if len(entries) != 0 {
		t.Errorf("reopening should remove the completion, got %+v", entries)
	}
}

func TestService_SetStatusUnknownTask(t *testing.T) {
	svc, _ := setupService(t, nil)
	_, err := svc.SetStatus(context.Background(), student, "nope", priority.StatusSubmitted, baseTime)
	var nf *assignment.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestService_ImportStatusChangeUpdatesLog(t *testing.T) {
	svc, bus := setupService(t, nil)
	var topics []string
	bus.Subscribe("*", "test", func(e events.Event) { topics = append(topics, e.Topic) })
	ctx := context.Background()
	at := baseTime.Add(5 * time.Minute)

	list := []assignment.Assignment{
		{ID: "A", Title: "Essay", ClassCode: "C1", Deadline: baseTime.Add(30 * time.Minute).Format(time.RFC3339), Status: "submitted"},
		{ID: "B", Title: "Quiz prep", ClassCode: "C1"},
		{ID: "E", Title: "New reading", ClassCode: "C1", Status: "submitted"},
	}
	ids, err := svc.Import(ctx, student, list, at)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("ids = %v", ids)
	}

	entries, _ := svc.Completions.All(ctx, student.ID)
	if len(entries) != 1 || entries[0].TaskID != "A" || !entries[0].CompletedAt.Equal(at) {
		t.Fatalf("expected a completion for A only, got %+v", entries)
	}
	if len(topics) != 2 || topics[0] != events.TasksChanged || topics[1] != events.CompletionsChanged {
		t.Errorf("topics = %v", topics)
	}

	b, _ := svc.Assignments.Get(ctx, "B")
	if b.Status != string(priority.StatusNotStarted) {
		t.Errorf("status without a value in the file should be kept, got %q", b.Status)
	}

	// Reopening through a re-import drops the entry again.
	list[0].Status = "in_progress"
	if _, err := svc.Import(ctx, student, list[:1], at.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if entries, _ := svc.Completions.All(ctx, student.ID); len(entries) != 0 {
		t.Errorf("reopen should remove the completion, got %+v", entries)
	}
}
