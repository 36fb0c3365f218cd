package models

import "time"

// WorkoutLog is a finished session as submitted to the backend.
type WorkoutLog struct {
	WorkoutID   int              `json:"workout_id"`
	CompletedAt time.Time        `json:"completed_date"`
	Exercises   []LoggedExercise `json:"exercises"`
}

// LoggedExercise is one exercise of a submitted workout.
type LoggedExercise struct {
	ExerciseID int         `json:"exercise_id"`
	Name       string      `json:"exercise_name"`
	Sets       []LoggedSet `json:"sets"`
}

// LoggedSet is a single set of a submitted exercise. SetNumber is 0 for warm-ups.
type LoggedSet struct {
	Label     string  `json:"set_label"`
	SetNumber int     `json:"exercise_set"`
	IsWarmup  bool    `json:"is_warmup"`
	Weight    float64 `json:"exercise_weight"`
	Reps      int     `json:"exercise_rep"`
}

// CreateWorkoutRequest asks the backend to open a workout history entry.
type CreateWorkoutRequest struct {
	UserID      string    `json:"user_id"`
	PlanDayID   int       `json:"plan_day_id"`
	CompletedAt time.Time `json:"completed_date"`
}
