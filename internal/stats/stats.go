// Package stats derives completion and streak figures from tasks and the
// completion log.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/studydesk/prio/internal/completion"
	"github.com/studydesk/prio/internal/priority"
)

const dayLayout = "2006-01-02"

// Stats is the summary shown on the dashboard.
type Stats struct {
	Total         int `json:"total"`
	ActiveCount   int `json:"activeCount"`
	DoneCount     int `json:"doneCount"`
	BacklogCount  int `json:"backlogCount"`
	OnTimeRate    int `json:"onTimeRate"`
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

// Compute builds Stats for tasks using the completion log. Calendar days
// are taken in now's location.
//
// Only completions of tasks currently in a done status count, and only
// on-time ones feed the streak. A task without a deadline cannot be late.
func Compute(tasks []priority.Task, entries []completion.Entry, now time.Time) Stats {
	var s Stats
	s.Total = len(tasks)

	byID := make(map[string]priority.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		if t.Status.IsActive() {
			s.ActiveCount++
			if t.Overdue(now) {
				s.BacklogCount++
			}
		} else {
			s.DoneCount++
		}
	}

	var onTime []time.Time
	for _, e := range entries {
		t, ok := byID[e.TaskID]
		if !ok || t.Status.IsActive() {
			continue
		}
		if !t.HasDeadline() || !e.CompletedAt.After(t.Deadline) {
			onTime = append(onTime, e.CompletedAt)
		}
	}

	if s.DoneCount > 0 {
		rate := math.Round(float64(len(onTime)) / float64(s.DoneCount) * 100)
		s.OnTimeRate = int(math.Max(0, math.Min(100, rate)))
	}

	days := DayKeys(onTime, now.Location())
	s.CurrentStreak, s.LongestStreak = Streaks(days, now)
	return s
}

// DayKeys returns the distinct local calendar days ("YYYY-MM-DD") of times,
// sorted ascending.
func DayKeys(times []time.Time, loc *time.Location) []string {
	seen := make(map[string]bool, len(times))
	keys := make([]string, 0, len(times))
	for _, t := range times {
		k := t.In(loc).Format(dayLayout)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Streaks computes the current and longest runs of consecutive days in days
// (ascending "YYYY-MM-DD" keys). The current run must include today; a day
// without an on-time completion resets it to zero.
func Streaks(days []string, now time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	run := 0
	var prev time.Time
	for i, k := range days {
		d, err := time.Parse(dayLayout, k)
		if err != nil {
			continue
		}
		if i > 0 && !prev.IsZero() && prev.AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
		prev = d
	}

	present := make(map[string]bool, len(days))
	for _, k := range days {
		present[k] = true
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for present[day.Format(dayLayout)] {
		current++
		day = day.AddDate(0, 0, -1)
	}

	return current, max(longest, current)
}
