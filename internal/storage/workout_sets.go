package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/claude/fitbuddy/internal/models"
)

const setColumns = 12

// InsertWorkoutSets batch-inserts history rows. Rows already present are skipped.
// Returns count inserted.
func (db *DB) InsertWorkoutSets(ctx context.Context, rows []models.HistorySetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO workout_sets (user_id, workout_id, completed_at, exercise_number,
		exercise_id, exercise_name, set_index, set_label, is_warmup, set_number,
		weight, reps) VALUES `
	args := make([]any, 0, len(rows)*setColumns)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		valueStrings = append(valueStrings, placeholders(i*setColumns, setColumns))
		args = append(args, r.UserID, r.WorkoutID, r.CompletedAt, r.ExerciseNumber,
			r.ExerciseID, r.ExerciseName, r.SetIndex, r.SetLabel, r.IsWarmup, r.SetNumber,
			r.Weight, r.Reps)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workout sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// placeholders renders "($base+1,...,$base+n)".
func placeholders(base, n int) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "$%d", base+i)
	}
	b.WriteByte(')')
	return b.String()
}

// QueryWorkoutSets retrieves history rows completed in [start, end).
func (db *DB) QueryWorkoutSets(ctx context.Context, start, end time.Time, userID string) ([]models.HistorySetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, workout_id, completed_at, exercise_number, exercise_id,
		 exercise_name, set_index, set_label, is_warmup, set_number, weight, reps
		 FROM workout_sets
		 WHERE completed_at >= $1 AND completed_at < $2 AND user_id = $3
		 ORDER BY completed_at DESC, exercise_number ASC, set_index ASC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.HistorySetRow
	for rows.Next() {
		var r models.HistorySetRow
		if err := rows.Scan(&r.UserID, &r.WorkoutID, &r.CompletedAt, &r.ExerciseNumber,
			&r.ExerciseID, &r.ExerciseName, &r.SetIndex, &r.SetLabel, &r.IsWarmup,
			&r.SetNumber, &r.Weight, &r.Reps); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// WorkoutDays returns the distinct calendar days in loc on which a workout
// was completed within [start, end), ascending.
func (db *DB) WorkoutDays(ctx context.Context, start, end time.Time, userID string, loc *time.Location) ([]models.Date, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT workout_id, completed_at
		 FROM workout_sets
		 WHERE completed_at >= $1 AND completed_at < $2 AND user_id = $3`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout days: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var id int
		var t time.Time
		if err := rows.Scan(&id, &t); err != nil {
			return nil, fmt.Errorf("scanning workout day: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return BucketDays(times, loc), nil
}

// BucketDays maps timestamps to distinct calendar days in loc, ascending.
// A nil loc means time.Local.
func BucketDays(times []time.Time, loc *time.Location) []models.Date {
	if loc == nil {
		loc = time.Local
	}
	seen := make(map[models.Date]bool, len(times))
	days := make([]models.Date, 0, len(times))
	for _, t := range times {
		d := models.NewDate(t.In(loc))
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b models.Date) int { return a.Compare(b.Time) })
	return days
}

// DeleteWorkout removes every history row of one workout. Returns rows deleted.
func (db *DB) DeleteWorkout(ctx context.Context, workoutID int, userID string) (int64, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sets WHERE workout_id = $1 AND user_id = $2`,
		workoutID, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting workout %d: %w", workoutID, err)
	}
	return tag.RowsAffected(), nil
}
