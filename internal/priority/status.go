package priority

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusNotStarted    Status = "not_started"
	StatusInProgress    Status = "in_progress"
	StatusReadyToSubmit Status = "ready_to_submit"
	StatusSubmitted     Status = "submitted"
	StatusPendingReview Status = "pending_review"
	StatusReturned      Status = "returned"
)

// AllStatuses lists every valid status in lifecycle order.
var AllStatuses = []Status{
	StatusNotStarted,
	StatusInProgress,
	StatusReadyToSubmit,
	StatusSubmitted,
	StatusPendingReview,
	StatusReturned,
}

// IsActive reports whether the task still needs work from the student.
// Submitted and pending-review tasks are done; everything else, including
// returned work, is active.
func (s Status) IsActive() bool {
	return s != StatusSubmitted && s != StatusPendingReview
}

// IsDone is the negation of IsActive.
func (s Status) IsDone() bool {
	return !s.IsActive()
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus accepts a status name with '-' or ' ' in place of '_' and any case.
// An empty string parses to StatusNotStarted.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return StatusNotStarted, nil
	}
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	st := Status(norm)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q (valid: %s)", s, statusNames())
	}
	return st, nil
}

func statusNames() string {
	names := make([]string, len(AllStatuses))
	for i, s := range AllStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Level is a coarse priority bucket shown next to the score.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// LevelFromScore buckets a 0-100 score.
func LevelFromScore(score int) Level {
	switch {
	case score >= 70:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	default:
		return LevelLow
	}
}
