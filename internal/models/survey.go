package models

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidSurvey is wrapped by every Survey.Validate failure.
var ErrInvalidSurvey = errors.New("invalid survey")

// Known survey options. Values match what the backend looks up by name.
var (
	SurveyGoals = []string{
		"lose-weight", "get-stronger", "better-endurance",
		"build-muscle", "better-flexibility", "not-sure",
	}
	SurveyBodyTypes = []string{"endomorph", "mesomorph", "ectomorph", "not-sure"}
	SurveyLevels    = []string{"beginner", "intermediate", "advanced"}
	SurveyEquipment = []string{
		"assisted", "band", "barbell", "body weight", "bosu ball", "cable",
		"dumbbell", "elliptical machine", "ez barbell", "hammer", "kettlebell",
		"leverage machine", "medicine ball", "olympic barbell", "resistance band",
		"roller", "rope", "skierg machine", "sled machine", "smith machine",
		"stability ball", "stationary bike", "stepmill machine", "tire", "trap bar",
		"upper body ergometer", "weighted", "wheel roller",
	}
)

// Survey is the onboarding questionnaire sent to the backend, which
// generates the fitness plan from it.
type Survey struct {
	UID       string   `json:"uid"`
	Goal      string   `json:"goal"`
	Type      string   `json:"type"`
	Level     string   `json:"level"`
	Equipment []string `json:"equipment"`
	StartDate *Date    `json:"start_date,omitempty"`
	EndDate   *Date    `json:"end_date,omitempty"`
}

// Validate checks every answer against the known option lists.
func (s *Survey) Validate() error {
	if !slices.Contains(SurveyGoals, s.Goal) {
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidSurvey, s.Goal)
	}
	if !slices.Contains(SurveyBodyTypes, s.Type) {
		return fmt.Errorf("%w: unknown body type %q", ErrInvalidSurvey, s.Type)
	}
	if !slices.Contains(SurveyLevels, s.Level) {
		return fmt.Errorf("%w: unknown fitness level %q", ErrInvalidSurvey, s.Level)
	}
	for _, e := range s.Equipment {
		if !slices.Contains(SurveyEquipment, e) {
			return fmt.Errorf("%w: unknown equipment %q", ErrInvalidSurvey, e)
		}
	}
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(s.StartDate.Time) {
		return fmt.Errorf("%w: end_date %s is before start_date %s", ErrInvalidSurvey, s.EndDate, s.StartDate)
	}
	return nil
}
