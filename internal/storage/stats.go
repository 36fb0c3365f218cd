package storage

import (
	"context"
	"fmt"
	"time"
)

// HistoryStats holds aggregate statistics about a user's mirrored history.
type HistoryStats struct {
	TotalWorkouts int64          `json:"total_workouts"`
	TotalSets     int64          `json:"total_sets"`
	TotalVolume   float64        `json:"total_volume"`
	FirstWorkout  *time.Time     `json:"first_workout"`
	LastWorkout   *time.Time     `json:"last_workout"`
	TopExercises  []ExerciseStat `json:"top_exercises"`
}

// ExerciseStat holds lifetime stats for one exercise.
type ExerciseStat struct {
	Name       string  `json:"exercise_name"`
	Workouts   int64   `json:"workouts"`
	Sets       int64   `json:"sets"`
	BestWeight float64 `json:"best_weight"`
}

// GetHistoryStats returns lifetime totals and the most frequent exercises.
func (db *DB) GetHistoryStats(ctx context.Context, userID string, topN int) (*HistoryStats, error) {
	if topN <= 0 {
		topN = 10
	}
	stats := &HistoryStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT workout_id), COUNT(*),
		        COALESCE(SUM(weight * reps) FILTER (WHERE NOT is_warmup), 0),
		        MIN(completed_at), MAX(completed_at)
		 FROM workout_sets WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.TotalSets, &stats.TotalVolume, &stats.FirstWorkout, &stats.LastWorkout)
	if err != nil {
		return nil, fmt.Errorf("querying history totals: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_name, COUNT(DISTINCT workout_id), COUNT(*), COALESCE(MAX(weight), 0)
		 FROM workout_sets
		 WHERE user_id = $1 AND NOT is_warmup
		 GROUP BY exercise_name
		 ORDER BY COUNT(DISTINCT workout_id) DESC, exercise_name ASC
		 LIMIT $2`, userID, topN)
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Name, &s.Workouts, &s.Sets, &s.BestWeight); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
