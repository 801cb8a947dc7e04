package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

const rankSystemPrompt = `You prioritize a student's school tasks.
You receive JSON with "context.now" and a list of "tasks".
Reply with JSON only, no prose, shaped as:
{"results":[{"taskId":"...","priorityScore":0-100,"priorityLevel":"high|medium|low","reason":["..."],"nextActions":["..."],"assumptions":["..."]}]}
Return one result per task id you were given. Keep each reason short and concrete.`

// ProviderRanker satisfies Ranker through a general LLM Provider.
type ProviderRanker struct {
	provider Provider
	model    string
}

func NewProviderRanker(p Provider, model string) *ProviderRanker {
	return &ProviderRanker{provider: p, model: model}
}

func (r *ProviderRanker) Rank(ctx context.Context, req *RankRequest) ([]RankResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &RankError{Op: "encode", Err: err}
	}

	aiReq := NewRequest(string(payload))
	aiReq.System = rankSystemPrompt
	aiReq.Model = r.model
	aiReq.Temperature = 0.2

	resp, err := r.provider.Complete(ctx, aiReq)
	if err != nil {
		return nil, &RankError{Op: "send", Err: err}
	}

	body, err := extractJSON(resp.Content)
	if err != nil {
		return nil, &RankError{Op: "decode", Err: err}
	}
	results, err := decodeResults([]byte(body))
	if err != nil {
		return nil, &RankError{Op: "decode", Err: err}
	}
	return results, nil
}

// extractJSON pulls the JSON document out of a model reply, tolerating
// markdown code fences and leading chatter.
func extractJSON(s string) (string, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", errors.New("reply contains no JSON")
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return "", errors.New("reply contains unterminated JSON")
	}
	return s[start : end+1], nil
}
