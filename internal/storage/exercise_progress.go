package storage

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/claude/fitbuddy/internal/models"
)

// ExerciseProgression holds one workout's working sets for a single exercise.
type ExerciseProgression struct {
	WorkoutID   int       `json:"workout_id"`
	CompletedAt time.Time `json:"completed_at"`
	Sets        int       `json:"sets"`
	TotalReps   int       `json:"total_reps"`
	TopWeight   float64   `json:"top_weight"`
	Volume      float64   `json:"volume"`
	// EstimatedMax is the best Epley one-rep max estimate of the workout.
	EstimatedMax float64 `json:"estimated_max"`
}

// ExerciseProgress is the progression of one exercise over a time range.
type ExerciseProgress struct {
	Exercise     string                `json:"exercise"`
	Workouts     []ExerciseProgression `json:"workouts"`
	BestWeight   float64               `json:"best_weight"`
	BestEstimate float64               `json:"best_estimated_max"`
}

// EstimatedMax returns the Epley estimate weight * (1 + reps/30), rounded to
// 0.1. A single rep is the weight itself; zero reps estimate nothing.
func EstimatedMax(weight float64, reps int) float64 {
	switch {
	case reps <= 0 || weight <= 0:
		return 0
	case reps == 1:
		return weight
	}
	return math.Round(weight*(1+float64(reps)/30)*10) / 10
}

// GetExerciseProgress returns per-workout working-set stats for exercises
// whose name contains exercise, case-insensitively, in [start, end).
func (db *DB) GetExerciseProgress(ctx context.Context, start, end time.Time, userID, exercise string) (*ExerciseProgress, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, workout_id, completed_at, exercise_number, exercise_id,
		 exercise_name, set_index, set_label, is_warmup, set_number, weight, reps
		 FROM workout_sets
		 WHERE completed_at >= $1 AND completed_at < $2 AND user_id = $3
		   AND exercise_name ILIKE '%' || $4 || '%'
		   AND NOT is_warmup
		 ORDER BY completed_at ASC, set_index ASC`,
		start, end, userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying exercise progress: %w", err)
	}
	defer rows.Close()

	var sets []models.HistorySetRow
	for rows.Next() {
		var r models.HistorySetRow
		if err := rows.Scan(&r.UserID, &r.WorkoutID, &r.CompletedAt, &r.ExerciseNumber,
			&r.ExerciseID, &r.ExerciseName, &r.SetIndex, &r.SetLabel, &r.IsWarmup,
			&r.SetNumber, &r.Weight, &r.Reps); err != nil {
			return nil, fmt.Errorf("scanning exercise progress: %w", err)
		}
		sets = append(sets, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return Progress(exercise, sets), nil
}

// Progress groups history rows by workout, oldest first. Warm-up sets and
// rows whose exercise name does not contain exercise are skipped.
func Progress(exercise string, sets []models.HistorySetRow) *ExerciseProgress {
	p := &ExerciseProgress{Exercise: exercise, Workouts: []ExerciseProgression{}}
	needle := strings.ToLower(exercise)
	byWorkout := make(map[int]int)

	for _, s := range sets {
		if s.IsWarmup || !strings.Contains(strings.ToLower(s.ExerciseName), needle) {
			continue
		}
		i, ok := byWorkout[s.WorkoutID]
		if !ok {
			i = len(p.Workouts)
			byWorkout[s.WorkoutID] = i
			p.Workouts = append(p.Workouts, ExerciseProgression{
				WorkoutID:   s.WorkoutID,
				CompletedAt: s.CompletedAt,
			})
		}
		w := &p.Workouts[i]
		w.Sets++
		w.TotalReps += s.Reps
		w.Volume += s.Volume()
		w.TopWeight = max(w.TopWeight, s.Weight)
		w.EstimatedMax = max(w.EstimatedMax, EstimatedMax(s.Weight, s.Reps))

		p.BestWeight = max(p.BestWeight, s.Weight)
		p.BestEstimate = max(p.BestEstimate, w.EstimatedMax)
	}

	slices.SortStableFunc(p.Workouts, func(a, b ExerciseProgression) int {
		return a.CompletedAt.Compare(b.CompletedAt)
	})
	return p
}
