package ai

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/studydesk/prio/internal/priority"
)

var baseTime = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

// sampleTasks holds two active tasks (t1, t3) and one done task (t2).
func sampleTasks() []priority.Task {
	return []priority.Task{
		{ID: "t1", Title: "Essay", Subject: "English", Deadline: baseTime.Add(5 * time.Hour),
			EffortMinutes: 90, ImportanceWeight: 3, Status: priority.StatusInProgress, IsGroup: true},
		{ID: "t2", Title: "Handed in", Status: priority.StatusSubmitted},
		{ID: "t3", Title: "Reading", Status: priority.StatusReturned, EffortMinutes: 30},
	}
}

// cannedServer answers every request with status and body and counts calls.
func cannedServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// hostRewriter sends requests for the fixed Anthropic API host to a test server.
type hostRewriter struct {
	target *url.URL
}

func (h hostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = h.target.Scheme
	req.URL.Host = h.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestClient(serverURL string) *http.Client {
	target, err := url.Parse(serverURL)
	if err != nil {
		panic(err)
	}
	return &http.Client{Transport: hostRewriter{target: target}}
}
