package override

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const upsertOverrideSQL = `INSERT INTO priority_overrides (user_id, task_id, payload, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(user_id, task_id) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`

// SQLiteRepository stores overrides in the priority_overrides table.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, userID, taskID string) (Override, bool, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM priority_overrides WHERE user_id = ? AND task_id = ?`,
		userID, taskID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Override{}, false, nil
	}
	if err != nil {
		return Override{}, false, fmt.Errorf("reading override %s/%s: %w", userID, taskID, err)
	}
	var ov Override
	if err := json.Unmarshal([]byte(payload), &ov); err != nil {
		return Override{}, false, fmt.Errorf("decoding override %s/%s: %w", userID, taskID, err)
	}
	return ov, true, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, userID, taskID string, ov Override) error {
	if err := validateKey(userID, taskID); err != nil {
		return err
	}
	payload, err := json.Marshal(ov)
	if err != nil {
		return fmt.Errorf("encoding override: %w", err)
	}
	_, err = r.db.ExecContext(ctx, upsertOverrideSQL, userID, taskID, string(payload))
	if err != nil {
		return fmt.Errorf("writing override %s/%s: %w", userID, taskID, err)
	}
	return nil
}

func (r *SQLiteRepository) SetAll(ctx context.Context, userID string, batch map[string]Override) error {
	if err := validateBatch(userID, batch); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting override batch: %w", err)
	}
	defer tx.Rollback()

	for taskID, ov := range batch {
		payload, err := json.Marshal(ov)
		if err != nil {
			return fmt.Errorf("encoding override: %w", err)
		}
		if _, err := tx.ExecContext(ctx, upsertOverrideSQL, userID, taskID, string(payload)); err != nil {
			return fmt.Errorf("writing override %s/%s: %w", userID, taskID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing override batch: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) All(ctx context.Context, userID string) (map[string]Override, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id, payload FROM priority_overrides WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Override)
	for rows.Next() {
		var taskID, payload string
		if err := rows.Scan(&taskID, &payload); err != nil {
			return nil, err
		}
		var ov Override
		if err := json.Unmarshal([]byte(payload), &ov); err != nil {
			return nil, fmt.Errorf("decoding override %s/%s: %w", userID, taskID, err)
		}
		out[taskID] = ov
	}
	return out, rows.Err()
}
