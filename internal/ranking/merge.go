// Package ranking combines local scores with AI ranking results and decides
// when a ranking call is made.
package ranking

import (
	"math"
	"slices"
	"time"

	"github.com/studydesk/prio/internal/ai"
	"github.com/studydesk/prio/internal/override"
	"github.com/studydesk/prio/internal/priority"
)

// MergeOutcome is the result of applying AI results to a task list.
type MergeOutcome struct {
	// Tasks has the same length and order as the input.
	Tasks []priority.Task
	// Overrides holds one entry per task that took an AI result.
	Overrides map[string]override.Override
	// Applied counts tasks that took a result.
	Applied int
	// Ignored counts results that matched no task or carried no score.
	Ignored int
}

// Merge overlays results onto tasks. When several results share a task id,
// the last usable one wins. Tasks without a result are returned unchanged,
// and results never create tasks. The input slice is not modified.
func Merge(tasks []priority.Task, results []ai.RankResult, at time.Time) MergeOutcome {
	byID := make(map[string]ai.RankResult, len(results))
	ignored := 0
	for _, r := range results {
		if r.TaskID == "" || r.PriorityScore == nil || math.IsNaN(*r.PriorityScore) {
			ignored++
			continue
		}
		byID[r.TaskID] = r
	}

	out := MergeOutcome{
		Tasks:     make([]priority.Task, len(tasks)),
		Overrides: make(map[string]override.Override),
	}
	matched := make(map[string]bool, len(byID))
	for i, t := range tasks {
		r, ok := byID[t.ID]
		if !ok {
			out.Tasks[i] = t
			continue
		}
		matched[t.ID] = true

		merged := t.Clone()
		merged.PriorityScore = clampScore(*r.PriorityScore)
		merged.PriorityLevel = priority.Level(r.PriorityLevel)
		if merged.PriorityLevel == "" {
			merged.PriorityLevel = priority.LevelFromScore(merged.PriorityScore)
		}
		if len(r.Reason) > 0 {
			merged.PriorityReason = slices.Clone([]string(r.Reason))
		}
		merged.NextActions = slices.Clone([]string(r.NextActions))
		merged.Assumptions = slices.Clone([]string(r.Assumptions))
		merged.Source = priority.SourceAI
		out.Tasks[i] = merged
		out.Applied++

		out.Overrides[t.ID] = override.Override{
			PriorityScore:  override.IntPtr(merged.PriorityScore),
			PriorityLevel:  string(merged.PriorityLevel),
			PriorityReason: slices.Clone(merged.PriorityReason),
			NextActions:    slices.Clone(merged.NextActions),
			Assumptions:    slices.Clone(merged.Assumptions),
			UpdatedAt:      at,
		}
	}

	for id := range byID {
		if !matched[id] {
			ignored++
		}
	}
	out.Ignored = ignored
	return out
}

func clampScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}
