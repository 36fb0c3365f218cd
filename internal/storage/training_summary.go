package storage

import (
	"context"
	"fmt"
	"time"
)

// ExerciseVolume holds aggregated working-set stats for one exercise within a period.
type ExerciseVolume struct {
	Name        string  `json:"exercise_name"`
	WorkingSets int     `json:"working_sets"`
	TotalReps   int     `json:"total_reps"`
	Volume      float64 `json:"volume"`
	TopWeight   float64 `json:"top_weight"`
}

// TrainingSummaryPeriod holds volume totals for one time period.
type TrainingSummaryPeriod struct {
	Period            string           `json:"period"`
	Workouts          int              `json:"workouts"`
	WorkingSets       int              `json:"working_sets"`
	TotalReps         int              `json:"total_reps"`
	Volume            float64          `json:"volume"`
	AvgSetsPerWorkout float64          `json:"avg_sets_per_workout"`
	Exercises         []ExerciseVolume `json:"exercises"`
}

// GetTrainingSummary returns working-set volume per period. Warm-up sets are excluded.
func (db *DB) GetTrainingSummary(ctx context.Context, start, end time.Time, bucket, userID string) ([]TrainingSummaryPeriod, error) {
	interval := truncInterval(bucket)

	// Period totals
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, completed_at)::date AS period,
		        COUNT(DISTINCT workout_id)::int,
		        COUNT(*) FILTER (WHERE NOT is_warmup)::int,
		        COALESCE(SUM(reps) FILTER (WHERE NOT is_warmup), 0)::int,
		        COALESCE(SUM(weight * reps) FILTER (WHERE NOT is_warmup), 0)
		 FROM workout_sets
		 WHERE completed_at >= $2 AND completed_at < $3 AND user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		interval, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying training summary: %w", err)
	}
	defer rows.Close()

	periodMap := make(map[string]*TrainingSummaryPeriod)
	var periodOrder []string

	for rows.Next() {
		var periodTime time.Time
		var p TrainingSummaryPeriod
		if err := rows.Scan(&periodTime, &p.Workouts, &p.WorkingSets, &p.TotalReps, &p.Volume); err != nil {
			return nil, fmt.Errorf("scanning training summary: %w", err)
		}
		if p.Workouts > 0 {
			p.AvgSetsPerWorkout = float64(p.WorkingSets) / float64(p.Workouts)
		}
		p.Period = periodTime.Format("2006-01-02")
		periodMap[p.Period] = &p
		periodOrder = append(periodOrder, p.Period)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Per-exercise breakdown
	exRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, completed_at)::date AS period,
		        exercise_name,
		        COUNT(*)::int,
		        COALESCE(SUM(reps), 0)::int,
		        COALESCE(SUM(weight * reps), 0),
		        COALESCE(MAX(weight), 0)
		 FROM workout_sets
		 WHERE completed_at >= $2 AND completed_at < $3 AND user_id = $4 AND NOT is_warmup
		 GROUP BY period, exercise_name
		 ORDER BY period DESC, SUM(weight * reps) DESC`,
		interval, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise volume: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var periodTime time.Time
		var ev ExerciseVolume
		if err := exRows.Scan(&periodTime, &ev.Name, &ev.WorkingSets, &ev.TotalReps, &ev.Volume, &ev.TopWeight); err != nil {
			return nil, fmt.Errorf("scanning exercise volume: %w", err)
		}
		if p, ok := periodMap[periodTime.Format("2006-01-02")]; ok {
			p.Exercises = append(p.Exercises, ev)
		}
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	result := make([]TrainingSummaryPeriod, 0, len(periodOrder))
	for _, key := range periodOrder {
		result = append(result, *periodMap[key])
	}
	return result, nil
}

// truncInterval converts bucket strings like "1 week" to the interval name
// that date_trunc expects. Unknown buckets fall back to "month".
func truncInterval(bucket string) string {
	switch bucket {
	case "1 day", "day", "daily":
		return "day"
	case "1 week", "week", "weekly":
		return "week"
	default:
		return "month"
	}
}
