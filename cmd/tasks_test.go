package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/studydesk/prio/internal/config"
	"github.com/studydesk/prio/internal/priority"
	"github.com/studydesk/prio/internal/stats"
)

func assignmentsYAML(now time.Time) string {
	return fmt.Sprintf(`assignments:
  - id: a1-essay
    title: History essay
    subject: History
    class_code: C1
    deadline: "%s"
    importance: 3
    effort_minutes: 60
  - id: b2-quiz
    title: Quiz prep
    class_code: C1
    deadline: "%s"
    effort_minutes: 10
  - id: c3-other
    title: Another class
    class_code: C9
`, now.Add(30*time.Minute).Format(time.RFC3339), now.Add(50*time.Hour).Format(time.RFC3339))
}

func importFixture(t *testing.T) {
	t.Helper()
	path := writeFile(t, "assignments.yaml", assignmentsYAML(time.Now()))
	out := captureStdout(t, func() {
		if err := runImport(nil, []string{path}); err != nil {
			t.Fatalf("runImport: %v", err)
		}
	})
	if !strings.Contains(out, "Imported 3") {
		t.Fatalf("unexpected import output: %q", out)
	}
}

func listTasksJSON(t *testing.T, all bool) []priority.Task {
	t.Helper()
	setFlag(t, &tasksJSON, true)
	setFlag(t, &tasksAll, all)
	out := captureStdout(t, func() {
		if err := runTasks(nil, nil); err != nil {
			t.Fatalf("runTasks: %v", err)
		}
	})
	var tasks []priority.Task
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	return tasks
}

func TestTasks_LocalRanking(t *testing.T) {
	configTestEnv(t)
	writeTestConfig(t, nil)
	importFixture(t)

	tasks := listTasksJSON(t, false)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 visible tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "a1-essay" || tasks[0].PriorityScore != 100 || tasks[0].PriorityLevel != priority.LevelHigh {
		t.Errorf("first task = %+v", tasks[0])
	}
	if tasks[1].ID != "b2-quiz" || tasks[1].PriorityScore > 5 || tasks[1].Source != priority.SourceLocal {
		t.Errorf("second task = %+v", tasks[1])
	}
	if len(tasks[0].PriorityReason) != 1 || tasks[0].PriorityReason[0] != priority.LocalReason {
		t.Errorf("local reason missing: %v", tasks[0].PriorityReason)
	}
}

func TestTasks_EmptyJSONIsArray(t *testing.T) {
	configTestEnv(t)
	writeTestConfig(t, nil)

	setFlag(t, &tasksJSON, true)
	out := captureStdout(t, func() {
		if err := runTasks(nil, nil); err != nil {
			t.Fatalf("runTasks: %v", err)
		}
	})
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("expected empty array, got %q", out)
	}
}

func TestStatusAndStats(t *testing.T) {
	configTestEnv(t)
	writeTestConfig(t, nil)
	importFixture(t)

	out := captureStdout(t, func() {
		if err := runStatus(nil, []string{"a1", "submitted"}); err != nil {
			t.Fatalf("runStatus: %v", err)
		}
	})
	if !strings.Contains(out, "submitted") {
		t.Errorf("unexpected status output: %q", out)
	}

	active := listTasksJSON(t, false)
	if len(active) != 1 || active[0].ID != "b2-quiz" {
		t.Fatalf("submitted task should leave the active list: %+v", active)
	}
	if all := listTasksJSON(t, true); len(all) != 2 {
		t.Errorf("--all should include done tasks, got %d", len(all))
	}

	setFlag(t, &statsJSON, true)
	out = captureStdout(t, func() {
		if err := runStats(nil, nil); err != nil {
			t.Fatalf("runStats: %v", err)
		}
	})
	var st stats.Stats
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decoding stats %q: %v", out, err)
	}
	if st.Total != 2 || st.DoneCount != 1 || st.ActiveCount != 1 || st.OnTimeRate != 100 || st.CurrentStreak != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestStatus_Errors(t *testing.T) {
	configTestEnv(t)
	writeTestConfig(t, nil)
	importFixture(t)

	if err := runStatus(nil, []string{"a1", "finished"}); err == nil || !strings.Contains(err.Error(), "invalid status") {
		t.Errorf("expected invalid status error, got %v", err)
	}
	if err := runStatus(nil, []string{"zz", "submitted"}); err == nil {
		t.Error("expected not found error")
	}
}

func TestImport_RejectsMissingTitle(t *testing.T) {
	configTestEnv(t)
	path := writeFile(t, "bad.yaml", "- id: x\n  deadline: 2026-01-01\n")
	if err := runImport(nil, []string{path}); err == nil {
		t.Fatal("expected error for assignment without a title")
	}
}

func rankServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		data, _ := io.ReadAll(r.Body)
		var req struct {
			Tasks []struct {
				ID string `json:"id"`
			} `json:"tasks"`
		}
		if err := json.Unmarshal(data, &req); err != nil || len(req.Tasks) != 2 {
			t.Errorf("unexpected request %s (%v)", data, err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func rankConfig(url string) func(*config.Config) {
	return func(c *config.Config) {
		c.AI.Endpoint = url
		c.Rank.Debounce = "1ms"
	}
}

func TestRank_MergesResults(t *testing.T) {
	configTestEnv(t)
	t.Setenv("PRIO_AI_TOKEN", "tok")
	srv := rankServer(t, http.StatusOK,
		`{"results":[{"taskId":"b2-quiz","priorityScore":97,"reason":"counts for 20%","nextActions":["review notes"]},{"taskId":"ghost","priorityScore":10}]}`)
	writeTestConfig(t, rankConfig(srv.URL))
	importFixture(t)

	out := captureStdout(t, func() {
		if err := runRank(nil, nil); err != nil {
			t.Fatalf("runRank: %v", err)
		}
	})
	if !strings.Contains(out, "1 updated, 1 ignored") {
		t.Errorf("unexpected rank output: %q", out)
	}

	tasks := listTasksJSON(t, false)
	if tasks[0].ID != "a1-essay" || tasks[1].ID != "b2-quiz" {
		t.Fatalf("unexpected order: %+v", tasks)
	}
	quiz := tasks[1]
	if quiz.PriorityScore != 97 || quiz.Source != priority.SourceOverride || quiz.PriorityReason[0] != "counts for 20%" {
		t.Errorf("override not applied: %+v", quiz)
	}
	if len(quiz.NextActions) != 1 || quiz.NextActions[0] != "review notes" {
		t.Errorf("next actions = %v", quiz.NextActions)
	}
}

func TestRank_FailureLeavesScores(t *testing.T) {
	configTestEnv(t)
	t.Setenv("PRIO_AI_TOKEN", "tok")
	srv := rankServer(t, http.StatusServiceUnavailable, `{"error":"model overloaded"}`)
	writeTestConfig(t, rankConfig(srv.URL))
	importFixture(t)

	var err error
	captureStdout(t, func() { err = runRank(nil, nil) })
	if err == nil || !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected the raw failure reason, got %v", err)
	}

	for _, task := range listTasksJSON(t, false) {
		if task.Source != priority.SourceLocal {
			t.Errorf("task %s changed after a failed rank: %+v", task.ID, task)
		}
	}
}

func TestRank_NotConfigured(t *testing.T) {
	configTestEnv(t)
	writeTestConfig(t, nil)

	err := runRank(nil, nil)
	if err == nil || !strings.Contains(err.Error(), "ai.endpoint") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
