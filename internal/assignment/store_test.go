package assignment

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/studydesk/prio/internal/priority"
	"github.com/studydesk/prio/internal/store"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := store.OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.Conn())
}

func TestStore_UpsertAndGet(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := Assignment{
		ID:          "hw-101",
		Title:       "Read chapter 4",
		Subject:     "History",
		Deadline:    "2026-03-12",
		GradeWeight: 15,
		IsGroup:     true,
		Formats:     []string{"pdf", "docx"},
		ClassCode:   "HIS-9B",
	}
	if err := s.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := s.Get(ctx, "hw-101")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != a.Title || got.Subject != "History" || !got.IsGroup || got.GradeWeight != 15 {
		t.Errorf("unexpected assignment: %+v", got)
	}
	if len(got.Formats) != 2 || got.Formats[1] != "docx" {
		t.Errorf("formats = %v", got.Formats)
	}
	if got.Status != string(priority.StatusNotStarted) {
		t.Errorf("status = %q, want not_started", got.Status)
	}
}

func TestStore_UpsertKeepsStatusOnReimport(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, Assignment{ID: "a", Title: "v1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetStatus(ctx, "a", priority.StatusSubmitted); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(ctx, Assignment{ID: "a", Title: "v2"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, "a")
	if got.Title != "v2" || got.Status != string(priority.StatusSubmitted) {
		t.Errorf("got %q/%q, want v2/submitted", got.Title, got.Status)
	}

	if err := s.Upsert(ctx, Assignment{ID: "a", Title: "v3", Status: "returned"}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, "a")
	if got.Status != string(priority.StatusReturned) {
		t.Errorf("explicit status should win, got %q", got.Status)
	}
}

func TestStore_UpsertValidation(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	if err := s.Upsert(ctx, Assignment{Title: "no id"}); err == nil {
		t.Error("expected error for missing id")
	}
	if err := s.Upsert(ctx, Assignment{ID: "x", Title: "  "}); err == nil {
		t.Error("expected error for blank title")
	}
	if err := s.Upsert(ctx, Assignment{ID: "x", Title: "t", Status: "lost"}); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestStore_SetStatusReturnsPrevious(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	if err := s.Upsert(ctx, Assignment{ID: "a", Title: "t", Status: "in_progress"}); err != nil {
		t.Fatal(err)
	}
	prev, err := s.SetStatus(ctx, "a", priority.StatusReadyToSubmit)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if prev != priority.StatusInProgress {
		t.Errorf("prev = %q, want in_progress", prev)
	}

	_, err = s.SetStatus(ctx, "missing", priority.StatusSubmitted)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestStore_ResolvePrefix(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	for _, id := range []string{"math-1", "math-2", "bio-1"} {
		if err := s.Upsert(ctx, Assignment{ID: id, Title: id}); err != nil {
			t.Fatal(err)
		}
	}

	a, err := s.Resolve(ctx, "bio")
	if err != nil || a.ID != "bio-1" {
		t.Fatalf("Resolve(bio) = %v, %v", a, err)
	}
	a, err = s.Resolve(ctx, "math-2")
	if err != nil || a.ID != "math-2" {
		t.Fatalf("Resolve(math-2) = %v, %v", a, err)
	}

	_, err = s.Resolve(ctx, "math")
	var amb *AmbiguousIDError
	if !errors.As(err, &amb) || len(amb.Matches) != 2 {
		t.Errorf("expected ambiguity over 2 ids, got %v", err)
	}

	_, err = s.Resolve(ctx, "chem")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	_, err = s.Resolve(ctx, "%")
	if !errors.As(err, &nf) {
		t.Errorf("wildcards must be matched literally, got %v", err)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	for _, id := range []string{"b", "a"} {
		if err := s.Upsert(ctx, Assignment{ID: id, Title: id}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a"); err == nil {
		t.Error("expected error deleting twice")
	}
}

func TestDecode_ListAndMapping(t *testing.T) {
	yamlDoc := `
assignments:
  - id: essay-1
    title: Persuasive essay
    subject: English
    deadline: 2026-03-15 17:00
    grade_weight: 25
    formats: [docx, pdf]
    class_code: ENG-7A
  - title: Poster
    channel: hand in at class
`
	list, err := Decode(strings.NewReader(yamlDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(list))
	}
	if list[0].ID != "essay-1" || list[0].GradeWeight != 25 || len(list[0].Formats) != 2 {
		t.Errorf("unexpected first assignment: %+v", list[0])
	}
	if _, err := uuid.Parse(list[1].ID); err != nil {
		t.Errorf("missing id should be a uuid, got %q", list[1].ID)
	}

	jsonDoc := `[{"id": "q1", "title": "Quiz", "effort_minutes": 20, "group": true}]`
	list, err = Decode(strings.NewReader(jsonDoc))
	if err != nil {
		t.Fatalf("Decode json: %v", err)
	}
	if len(list) != 1 || list[0].EffortMinutes != 20 || !list[0].IsGroup {
		t.Errorf("unexpected json assignment: %+v", list)
	}
}

func TestDecode_MissingIDIsStable(t *testing.T) {
	doc := "- title: Poster\n  subject: Art\n  class_code: ART-2\n  deadline: 2026-03-20\n"
	first, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	second, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if first[0].ID != second[0].ID {
		t.Errorf("same record got different ids: %s and %s", first[0].ID, second[0].ID)
	}
	if first[0].ID != StableID(first[0]) {
		t.Errorf("id = %s, want StableID", first[0].ID)
	}

	other := first[0]
	other.Deadline = "2026-03-21"
	if StableID(other) == first[0].ID {
		t.Error("a different deadline should give a different id")
	}
}

func TestDecode_Errors(t *testing.T) {
	if list, err := Decode(strings.NewReader("  \n")); err != nil || list != nil {
		t.Errorf("empty document should decode to nothing, got %v %v", list, err)
	}
	if _, err := Decode(strings.NewReader("just a string")); err == nil {
		t.Error("expected error for scalar document")
	}
	if _, err := Decode(strings.NewReader("- id: x\n")); err == nil {
		t.Error("expected error for missing title")
	}
	if _, err := Decode(strings.NewReader("[unclosed")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	in := []Assignment{{ID: "x", Title: "Map of Europe", Formats: []string{"jpg"}}}
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != 1 || out[0].ID != "x" || out[0].Formats[0] != "jpg" {
		t.Errorf("unexpected decode: %+v", out)
	}
}
