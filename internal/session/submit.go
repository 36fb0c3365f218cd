package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/claude/fitbuddy/internal/models"
)

// ExerciseLookup resolves a catalog exercise id from its display name.
type ExerciseLookup interface {
	ExerciseID(ctx context.Context, name string) (int, error)
}

// BuildLog converts the session into a workout submission. Catalog ids are
// resolved once per distinct exercise name.
func (s *Session) BuildLog(ctx context.Context, workoutID int, completedAt time.Time, lookup ExerciseLookup) (*models.WorkoutLog, error) {
	if len(s.exercises) == 0 {
		return nil, ErrEmpty
	}

	ids := make(map[string]int)
	log := &models.WorkoutLog{
		WorkoutID:   workoutID,
		CompletedAt: completedAt,
		Exercises:   make([]models.LoggedExercise, 0, len(s.exercises)),
	}
	for _, ex := range s.exercises {
		id, ok := ids[ex.Name]
		if !ok {
			var err error
			id, err = lookup.ExerciseID(ctx, ex.Name)
			if err != nil {
				return nil, fmt.Errorf("looking up exercise %q: %w", ex.Name, err)
			}
			ids[ex.Name] = id
		}

		logged := models.LoggedExercise{ExerciseID: id, Name: ex.Name, Sets: make([]models.LoggedSet, 0, len(ex.Sets))}
		for _, set := range ex.Sets {
			logged.Sets = append(logged.Sets, loggedSet(set))
		}
		log.Exercises = append(log.Exercises, logged)
	}
	return log, nil
}

func loggedSet(set Set) models.LoggedSet {
	ls := models.LoggedSet{
		Label:    set.Label,
		IsWarmup: set.Kind == WarmUp,
		Weight:   parseNumber(set.Weight),
	}
	if reps, err := strconv.Atoi(set.Reps); err == nil {
		ls.Reps = reps
	}
	if !ls.IsWarmup {
		ls.SetNumber, _ = strconv.Atoi(set.Label)
	}
	return ls
}
