package storage

import (
	"context"
	"fmt"
	"time"
)

// Submission statuses.
const (
	SubmissionRunning = "running"
	SubmissionSuccess = "success"
	SubmissionError   = "error"
)

// SubmissionLog records one attempt to submit a workout to the backend.
type SubmissionLog struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	WorkoutID    *int      `json:"workout_id"`
	Status       string    `json:"status"`
	Exercises    int       `json:"exercises"`
	SetsInserted int64     `json:"sets_inserted"`
	DurationMs   *int      `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message"`
}

// InsertSubmissionLog creates a new submission log entry and returns its ID.
func (db *DB) InsertSubmissionLog(ctx context.Context, log SubmissionLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO submission_logs (user_id, workout_id, status, exercises, sets_inserted, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING id`,
		log.UserID, log.WorkoutID, log.Status, log.Exercises, log.SetsInserted,
		log.DurationMs, log.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting submission log: %w", err)
	}
	return id, nil
}

// UpdateSubmissionLog updates an existing entry, typically from "running" to "success" or "error".
func (db *DB) UpdateSubmissionLog(ctx context.Context, id int64, log SubmissionLog) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE submission_logs SET
		 workout_id = $2, status = $3, exercises = $4, sets_inserted = $5,
		 duration_ms = $6, error_message = $7
		 WHERE id = $1`,
		id, log.WorkoutID, log.Status, log.Exercises, log.SetsInserted,
		log.DurationMs, log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("updating submission log %d: %w", id, err)
	}
	return nil
}

// QuerySubmissionLogs returns the most recent submission logs for a user.
func (db *DB) QuerySubmissionLogs(ctx context.Context, userID string, limit int) ([]SubmissionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, created_at, workout_id, status, exercises, sets_inserted,
		 duration_ms, error_message
		 FROM submission_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying submission logs: %w", err)
	}
	defer rows.Close()

	var result []SubmissionLog
	for rows.Next() {
		var l SubmissionLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.WorkoutID, &l.Status,
			&l.Exercises, &l.SetsInserted, &l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning submission log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
