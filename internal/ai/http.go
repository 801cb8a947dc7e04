package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// maxResponseBytes caps how much of a ranking response is read.
const maxResponseBytes = 4 << 20

// HTTPRanker posts the batch to a ranking endpoint and decodes the results.
type HTTPRanker struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPRanker creates a ranker for endpoint. token, when set, is sent as a
// bearer credential. timeout bounds the whole call.
func NewHTTPRanker(endpoint, token string, timeout time.Duration) *HTTPRanker {
	return &HTTPRanker{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRanker) Rank(ctx context.Context, req *RankRequest) ([]RankResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &RankError{Op: "encode", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &RankError{Op: "send", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if r.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, &RankError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &RankError{Op: "send", Status: resp.StatusCode, Err: err}
	}
	log.WithFields(log.Fields{
		"status":  resp.StatusCode,
		"tasks":   len(req.Tasks),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("ranking response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RankError{Op: "status", Status: resp.StatusCode, Err: errorDetail(data)}
	}

	results, err := decodeResults(data)
	if err != nil {
		return nil, &RankError{Op: "decode", Status: resp.StatusCode, Err: err}
	}
	return results, nil
}

// errorDetail extracts a message from an error body, if any.
func errorDetail(body []byte) error {
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch v := payload.Error.(type) {
		case string:
			if v != "" {
				return fmt.Errorf("%s", v)
			}
		case map[string]any:
			if m, ok := v["message"].(string); ok && m != "" {
				return fmt.Errorf("%s", m)
			}
		}
		if payload.Message != "" {
			return fmt.Errorf("%s", payload.Message)
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return fmt.Errorf("%s", text)
}
