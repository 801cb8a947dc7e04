// Package completion keeps the per-user log of when tasks were finished.
// There is at most one entry per task: it is written the first time the task
// enters a done status and dropped when the task is reopened.
package completion

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/studydesk/prio/internal/priority"
)

// Entry records when a task was completed.
type Entry struct {
	TaskID      string    `json:"taskId"`
	CompletedAt time.Time `json:"completedAt"`
}

// Action is what a status change does to the log.
type Action int

const (
	NoChange Action = iota
	Record
	Remove
)

// Transition maps a status change onto a log action.
func Transition(prev, next priority.Status) Action {
	switch {
	case prev.IsActive() && next.IsDone():
		return Record
	case prev.IsDone() && next.IsActive():
		return Remove
	default:
		return NoChange
	}
}

// Log stores completion entries in SQLite.
type Log struct {
	db *sql.DB
}

func NewLog(db *sql.DB) *Log {
	return &Log{db: db}
}

// Record adds an entry for taskID unless one already exists. It reports
// whether a new entry was written.
func (l *Log) Record(ctx context.Context, userID, taskID string, at time.Time) (bool, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO completions (user_id, task_id, completed_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, task_id) DO NOTHING`,
		userID, taskID, at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("recording completion of %s: %w", taskID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Remove deletes the entry for taskID. Missing entries are not an error.
func (l *Log) Remove(ctx context.Context, userID, taskID string) error {
	if _, err := l.db.ExecContext(ctx,
		`DELETE FROM completions WHERE user_id = ? AND task_id = ?`, userID, taskID,
	); err != nil {
		return fmt.Errorf("removing completion of %s: %w", taskID, err)
	}
	return nil
}

// All returns every entry for userID, oldest first.
func (l *Log) All(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT task_id, completed_at FROM completions WHERE user_id = ? ORDER BY completed_at, task_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.TaskID, &at); err != nil {
			return nil, err
		}
		e.CompletedAt, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing completed_at %q: %w", at, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Apply updates the log for one status change and returns the action taken.
func (l *Log) Apply(ctx context.Context, userID, taskID string, prev, next priority.Status, at time.Time) (Action, error) {
	switch a := Transition(prev, next); a {
	case Record:
		if _, err := l.Record(ctx, userID, taskID, at); err != nil {
			return NoChange, err
		}
		return a, nil
	case Remove:
		if err := l.Remove(ctx, userID, taskID); err != nil {
			return NoChange, err
		}
		return a, nil
	default:
		return NoChange, nil
	}
}
