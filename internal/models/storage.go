package models

import "time"

// HistorySetRow is a row for the workout_sets table.
type HistorySetRow struct {
	UserID         string    `json:"user_id"`
	WorkoutID      int       `json:"workout_id"`
	CompletedAt    time.Time `json:"completed_at"`
	ExerciseNumber int       `json:"exercise_number"`
	ExerciseID     int       `json:"exercise_id"`
	ExerciseName   string    `json:"exercise_name"`
	SetIndex       int       `json:"set_index"`
	SetLabel       string    `json:"set_label"`
	IsWarmup       bool      `json:"is_warmup"`
	SetNumber      int       `json:"set_number"`
	Weight         float64   `json:"weight"`
	Reps           int       `json:"reps"`
}

// Volume returns weight × reps for the set.
func (r HistorySetRow) Volume() float64 {
	return r.Weight * float64(r.Reps)
}

// HistoryRows flattens a submitted workout into history rows for userID.
func HistoryRows(userID string, log WorkoutLog) []HistorySetRow {
	var rows []HistorySetRow
	for i, ex := range log.Exercises {
		for j, set := range ex.Sets {
			rows = append(rows, HistorySetRow{
				UserID:         userID,
				WorkoutID:      log.WorkoutID,
				CompletedAt:    log.CompletedAt,
				ExerciseNumber: i + 1,
				ExerciseID:     ex.ExerciseID,
				ExerciseName:   ex.Name,
				SetIndex:       j,
				SetLabel:       set.Label,
				IsWarmup:       set.IsWarmup,
				SetNumber:      set.SetNumber,
				Weight:         set.Weight,
				Reps:           set.Reps,
			})
		}
	}
	return rows
}
