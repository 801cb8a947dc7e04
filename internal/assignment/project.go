package assignment

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/studydesk/prio/internal/override"
	"github.com/studydesk/prio/internal/priority"
)

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseDeadline parses an assignment deadline in loc. An empty string means
// no deadline and yields the zero time. A bare date means the end of that day.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if d, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return d.Add(24*time.Hour - time.Second), nil
	}
	return time.Time{}, errors.New("expected RFC 3339, YYYY-MM-DD HH:MM, or YYYY-MM-DD")
}

// Project builds the scored task for a. The local score is computed fresh;
// fields present in ov then replace the score, level, and narrative.
func Project(a Assignment, ov *override.Override, now time.Time, w priority.ScoreWeights) (priority.Task, error) {
	deadline, err := ParseDeadline(a.Deadline, now.Location())
	if err != nil {
		return priority.Task{}, &InvalidFieldError{ID: a.ID, Field: "deadline", Value: a.Deadline, Err: err}
	}
	status, err := priority.ParseStatus(a.Status)
	if err != nil {
		return priority.Task{}, &InvalidFieldError{ID: a.ID, Field: "status", Value: a.Status, Err: err}
	}

	importance := a.Importance
	if importance <= 0 && a.GradeWeight > 0 {
		importance = priority.NormalizeGradeWeight(a.GradeWeight)
	}
	effort := a.EffortMinutes
	if effort <= 0 {
		effort = priority.DefaultEffortMinutes
	}

	subType, channel := InferSubmission(a)
	score := priority.LocalScore(priority.ScoreInput{
		Deadline:         deadline,
		ImportanceWeight: importance,
		EffortMinutes:    effort,
	}, now, w)

	t := priority.Task{
		ID:               a.ID,
		Title:            a.Title,
		Subject:          a.Subject,
		Deadline:         deadline,
		EffortMinutes:    effort,
		ImportanceWeight: importance,
		Status:           status,
		IsGroup:          a.IsGroup,
		SubmissionType:   string(subType),
		Channel:          string(channel),
		PriorityScore:    score.Value,
		PriorityLevel:    score.Level,
		PriorityReason:   score.Reason,
		Source:           priority.SourceLocal,
	}
	if ov != nil {
		applyOverride(&t, *ov)
	}
	return t, nil
}

func applyOverride(t *priority.Task, ov override.Override) {
	applied := false
	if ov.PriorityScore != nil {
		t.PriorityScore = max(0, min(100, *ov.PriorityScore))
		t.PriorityLevel = priority.LevelFromScore(t.PriorityScore)
		applied = true
	}
	if ov.PriorityLevel != "" {
		t.PriorityLevel = priority.Level(ov.PriorityLevel)
		applied = true
	}
	if len(ov.PriorityReason) > 0 {
		t.PriorityReason = slices.Clone(ov.PriorityReason)
		applied = true
	}
	if len(ov.NextActions) > 0 {
		t.NextActions = slices.Clone(ov.NextActions)
	}
	if len(ov.Assumptions) > 0 {
		t.Assumptions = slices.Clone(ov.Assumptions)
	}
	if applied {
		t.Source = priority.SourceOverride
	}
}

// ProjectAll filters list to what v can see and projects each assignment.
// Assignments that fail validation are skipped and reported in errs; the
// rest are still returned.
func ProjectAll(list []Assignment, v Viewer, overrides map[string]override.Override, now time.Time, w priority.ScoreWeights) (tasks []priority.Task, errs []error) {
	for _, a := range Filter(list, v) {
		var ov *override.Override
		if o, ok := overrides[a.ID]; ok {
			ov = &o
		}
		t, err := Project(a, ov, now, w)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, errs
}
