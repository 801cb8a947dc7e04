// Package ai talks to the remote ranking service that re-scores a student's
// active tasks. One call carries the whole batch; there is no retry.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/studydesk/prio/internal/priority"
)

// Ranker returns AI ranking results for a batch of tasks.
type Ranker interface {
	Rank(ctx context.Context, req *RankRequest) ([]RankResult, error)
}

// RankContext carries request-wide facts.
type RankContext struct {
	Now string `json:"now"`
}

// RankTask is the outbound view of one task.
type RankTask struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Due           *string `json:"due"`
	EffortMinutes int     `json:"effortMinutes"`
	Importance    float64 `json:"importance"`
	Status        string  `json:"status"`
	Subject       string  `json:"subject"`
	IsGroup       bool    `json:"isGroup"`
}

// RankRequest is the body sent to the ranking service.
type RankRequest struct {
	Context RankContext `json:"context"`
	Tasks   []RankTask  `json:"tasks"`
}

// RankResult is one entry of the ranking response. PriorityScore is nil when
// the service omitted it; out-of-range values are passed through unchanged.
type RankResult struct {
	TaskID        string     `json:"taskId"`
	PriorityScore *float64   `json:"priorityScore"`
	PriorityLevel string     `json:"priorityLevel,omitempty"`
	Reason        stringList `json:"reason,omitempty"`
	NextActions   stringList `json:"nextActions,omitempty"`
	Assumptions   stringList `json:"assumptions,omitempty"`
}

type rankResponse struct {
	Results []RankResult `json:"results"`
}

// BuildRequest batches every active task into one request. Done tasks are
// never sent.
func BuildRequest(tasks []priority.Task, now time.Time) *RankRequest {
	req := &RankRequest{
		Context: RankContext{Now: now.Format(time.RFC3339)},
		Tasks:   []RankTask{},
	}
	for _, t := range tasks {
		if !t.Status.IsActive() {
			continue
		}
		rt := RankTask{
			ID:            t.ID,
			Title:         t.Title,
			EffortMinutes: t.EffortMinutes,
			Importance:    t.ImportanceWeight,
			Status:        string(t.Status),
			Subject:       t.Subject,
			IsGroup:       t.IsGroup,
		}
		if t.HasDeadline() {
			due := t.Deadline.Format(time.RFC3339)
			rt.Due = &due
		}
		req.Tasks = append(req.Tasks, rt)
	}
	return req
}

// decodeResults accepts {"results": [...]} or a bare array.
func decodeResults(data []byte) ([]RankResult, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty response")
	}
	if data[0] == '[' {
		var list []RankResult
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var resp rankResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, errors.New(`response has no "results" array`)
	}
	return resp.Results, nil
}

// stringList decodes either a JSON array of strings or a single string.
type stringList []string

func (s *stringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		if one == "" {
			*s = nil
		} else {
			*s = stringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*s = many
	return nil
}

// RankError is the single failure surfaced for a ranking call.
type RankError struct {
	Op     string // encode, send, status, decode
	Status int
	Err    error
}

func (e *RankError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("ai ranking %s failed (status %d): %v", e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("ai ranking %s failed (status %d)", e.Op, e.Status)
	default:
		return fmt.Sprintf("ai ranking %s failed: %v", e.Op, e.Err)
	}
}

func (e *RankError) Unwrap() error { return e.Err }
