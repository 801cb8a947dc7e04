package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studydesk/prio/internal/priority"
)

// Store provides assignment persistence on top of SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new assignment Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectColumns = `id, title, subject, description, deadline, effort_minutes, importance,
	grade_weight, status, is_group, submission_type, channel, formats, class_code, grade_room,
	created_by, updated_at`

// Upsert inserts a or replaces the stored record with the same id. The
// stored status is kept when a.Status is empty so re-imports do not reset
// progress.
func (s *Store) Upsert(ctx context.Context, a Assignment) error {
	if a.ID == "" {
		return fmt.Errorf("assignment has no id")
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("assignment %s has no title", a.ID)
	}
	status := ""
	if a.Status != "" {
		st, err := priority.ParseStatus(a.Status)
		if err != nil {
			return fmt.Errorf("assignment %s: %w", a.ID, err)
		}
		status = string(st)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (id, title, subject, description, deadline, effort_minutes, importance,
			grade_weight, status, is_group, submission_type, channel, formats, class_code, grade_room,
			created_by, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, COALESCE(NULLIF(?, ''), 'not_started'), ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, subject = excluded.subject, description = excluded.description,
			deadline = excluded.deadline, effort_minutes = excluded.effort_minutes,
			importance = excluded.importance, grade_weight = excluded.grade_weight,
			status = CASE WHEN ? = '' THEN assignments.status ELSE excluded.status END,
			is_group = excluded.is_group, submission_type = excluded.submission_type,
			channel = excluded.channel, formats = excluded.formats, class_code = excluded.class_code,
			grade_room = excluded.grade_room, created_by = excluded.created_by,
			updated_at = CURRENT_TIMESTAMP`,
		a.ID, a.Title, a.Subject, a.Description, a.Deadline, a.EffortMinutes, a.Importance,
		a.GradeWeight, status, boolToInt(a.IsGroup), a.SubmissionType, a.Channel,
		strings.Join(a.Formats, ","), a.ClassCode, a.GradeRoom, a.CreatedBy,
		status,
	)
	if err != nil {
		return fmt.Errorf("saving assignment %s: %w", a.ID, err)
	}
	return nil
}

// Get returns the assignment with the exact id.
func (s *Store) Get(ctx context.Context, id string) (*Assignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns all assignments ordered by id.
func (s *Store) List(ctx context.Context) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM assignments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Resolve finds the assignment whose id equals or uniquely starts with prefix.
func (s *Store) Resolve(ctx context.Context, prefix string) (*Assignment, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, &NotFoundError{ID: prefix}
	}
	if a, err := s.Get(ctx, prefix); err == nil {
		return a, nil
	}

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM assignments WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT 6`, escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", prefix, err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(ids) {
	case 0:
		return nil, &NotFoundError{ID: prefix}
	case 1:
		return s.Get(ctx, ids[0])
	default:
		return nil, &AmbiguousIDError{Prefix: prefix, Matches: ids}
	}
}

// SetStatus updates the status of one assignment and returns the previous one.
func (s *Store) SetStatus(ctx context.Context, id string, status priority.Status) (priority.Status, error) {
	if !status.Valid() {
		return "", fmt.Errorf("invalid status %q", status)
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	prev, err := priority.ParseStatus(a.Status)
	if err != nil {
		prev = priority.StatusNotStarted
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE assignments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), id,
	); err != nil {
		return "", fmt.Errorf("updating status of %s: %w", id, err)
	}
	return prev, nil
}

// Delete removes an assignment.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting assignment %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row scanner) (*Assignment, error) {
	var (
		a        Assignment
		isGroup  int
		formats  sql.NullString
		subject  sql.NullString
		desc     sql.NullString
		deadline sql.NullString
		subType  sql.NullString
		channel  sql.NullString
		class    sql.NullString
		room     sql.NullString
		creator  sql.NullString
		updated  sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Title, &subject, &desc, &deadline, &a.EffortMinutes, &a.Importance,
		&a.GradeWeight, &a.Status, &isGroup, &subType, &channel, &formats, &class, &room,
		&creator, &updated); err != nil {
		return nil, err
	}
	a.Subject = subject.String
	a.Description = desc.String
	a.Deadline = deadline.String
	a.IsGroup = isGroup != 0
	a.SubmissionType = subType.String
	a.Channel = channel.String
	if formats.String != "" {
		a.Formats = strings.Split(formats.String, ",")
	}
	a.ClassCode = class.String
	a.GradeRoom = room.String
	a.CreatedBy = creator.String
	if updated.Valid {
		a.UpdatedAt = parseTimestamp(updated.String)
	}
	return &a, nil
}

// parseTimestamp accepts RFC 3339 and SQLite's native "YYYY-MM-DD HH:MM:SS".
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02 15:04:05", s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
