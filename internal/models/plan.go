package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// dateLayout is the backend's calendar-date format.
const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day semantics.
// The zero value is the zero time.Time.
type Date struct {
	time.Time
}

// NewDate returns the calendar date of t in t's own location.
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "2006-01-02" or an RFC 3339 timestamp and keeps only the date part.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "YYYY-MM-DD", an RFC 3339 timestamp, or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// FitnessPlan is the server-provided multi-day schedule. Days is a flat,
// chronological sequence covering the whole plan; index 0 is the first day.
type FitnessPlan struct {
	Name        string    `json:"fitness_plan_name"`
	Description string    `json:"fitness_plan_desc"`
	StartDate   Date      `json:"start_date"`
	EndDate     Date      `json:"end_date"`
	Days        []DayPlan `json:"days"`
}

// DayPlan is one day's prescribed exercises. DayOfWeek is descriptive only.
type DayPlan struct {
	DayOfWeek string            `json:"day_of_week"`
	Exercises []PlannedExercise `json:"exercises"`
}

// PlannedExercise is a single prescribed exercise within a DayPlan.
type PlannedExercise struct {
	Name     string  `json:"name"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	Duration float64 `json:"duration"`
}

// Avatar is the user's chosen profile picture.
type Avatar struct {
	Name      string `json:"avatar_name"`
	ImageLink string `json:"avatar_image_link"`
}

// SurveyAnswers is the stored onboarding survey as returned by the backend.
type SurveyAnswers struct {
	Goal      string `json:"goal"`
	Type      string `json:"type"`
	Level     string `json:"level"`
	Equipment string `json:"equipment"`
}

// UserDetails is the payload of the backend's user details endpoint.
type UserDetails struct {
	DisplayName string         `json:"display_name"`
	Avatar      *Avatar        `json:"avatar"`
	Survey      *SurveyAnswers `json:"survey"`
	FitnessPlan *FitnessPlan   `json:"fitness_plan"`
}
