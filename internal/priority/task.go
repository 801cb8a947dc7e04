package priority

import (
	"slices"
	"sort"
	"time"
)

// Source records who produced a task's current score.
type Source string

const (
	SourceLocal    Source = "local"
	SourceOverride Source = "override"
	SourceAI       Source = "ai"
)

// Task is the scored, display-ready view of an assignment for one user.
type Task struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Subject          string    `json:"subject,omitempty"`
	Deadline         time.Time `json:"deadline,omitzero"`
	EffortMinutes    int       `json:"estimatedEffortMinutes"`
	ImportanceWeight float64   `json:"importanceWeight"`
	Status           Status    `json:"status"`
	IsGroup          bool      `json:"isGroup"`
	SubmissionType   string    `json:"submissionType,omitempty"`
	Channel          string    `json:"submissionChannel,omitempty"`

	PriorityScore  int      `json:"priorityScore"`
	PriorityLevel  Level    `json:"priorityLevel"`
	PriorityReason []string `json:"priorityReason"`
	NextActions    []string `json:"nextActions,omitempty"`
	Assumptions    []string `json:"assumptions,omitempty"`
	Source         Source   `json:"source"`
}

// HasDeadline reports whether the task carries a deadline.
func (t Task) HasDeadline() bool {
	return !t.Deadline.IsZero()
}

// Overdue reports whether the deadline is strictly before now.
func (t Task) Overdue(now time.Time) bool {
	return t.HasDeadline() && t.Deadline.Before(now)
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	t.PriorityReason = slices.Clone(t.PriorityReason)
	t.NextActions = slices.Clone(t.NextActions)
	t.Assumptions = slices.Clone(t.Assumptions)
	return t
}

// Active returns the tasks that still need work, preserving order.
func Active(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status.IsActive() {
			out = append(out, t)
		}
	}
	return out
}

// SortByScore sorts tasks in-place from highest to lowest priority score.
// Ties go to the nearer deadline (tasks without one last), then to id.
func SortByScore(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if a.HasDeadline() != b.HasDeadline() {
			return a.HasDeadline()
		}
		if !a.Deadline.Equal(b.Deadline) {
			return a.Deadline.Before(b.Deadline)
		}
		return a.ID < b.ID
	})
}

// Ranked returns the active tasks ordered for display. The input is not modified.
func Ranked(tasks []Task) []Task {
	out := Active(tasks)
	SortByScore(out)
	return out
}
