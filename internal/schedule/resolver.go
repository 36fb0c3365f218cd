// Package schedule maps the current date onto a fitness plan: which day-plan
// is today's workout and which seven-day slice is this week's.
//
// The plan's Days are anchored to a Monday-start week. On the plan's first
// calendar day, today's workout is Days[WeekdayIndex(startDate)], not Days[0].
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/claude/fitbuddy/internal/models"
)

// ErrScheduleUnresolved is returned when the plan does not cover the requested
// day or week (plan ended, not yet started, or clock skew).
var ErrScheduleUnresolved = errors.New("no workout scheduled")

const daysPerWeek = 7

// Resolver evaluates plan dates as calendar days in Location.
// The zero value uses time.Local.
type Resolver struct {
	Location *time.Location
}

// New returns a Resolver for the given location. A nil loc means time.Local.
func New(loc *time.Location) *Resolver {
	return &Resolver{Location: loc}
}

// Zone returns the location calendar days are evaluated in.
func (r *Resolver) Zone() *time.Location {
	if r == nil || r.Location == nil {
		return time.Local
	}
	return r.Location
}

// Today returns now's calendar date in the resolver's location.
func (r *Resolver) Today(now time.Time) models.Date {
	return models.NewDate(now.In(r.Zone()))
}

// DayOffset returns the whole number of calendar days from start to today.
// It is negative when today precedes start.
func DayOffset(start, today models.Date) int {
	return int(today.Sub(start.Time).Hours() / 24)
}

// WeekdayIndex maps a date's weekday to Monday=0 .. Sunday=6.
func WeekdayIndex(d models.Date) int {
	if d.Weekday() == time.Sunday {
		return 6
	}
	return int(d.Weekday()) - 1
}

// Weeks partitions days into consecutive chunks of seven. The last chunk may be shorter.
func Weeks(days []models.DayPlan) [][]models.DayPlan {
	weeks := make([][]models.DayPlan, 0, (len(days)+daysPerWeek-1)/daysPerWeek)
	for i := 0; i < len(days); i += daysPerWeek {
		end := min(i+daysPerWeek, len(days))
		weeks = append(weeks, days[i:end])
	}
	return weeks
}

// DailyWorkout returns the day-plan scheduled for now.
func (r *Resolver) DailyWorkout(plan *models.FitnessPlan, now time.Time) (models.DayPlan, error) {
	if plan == nil {
		return models.DayPlan{}, fmt.Errorf("no plan loaded: %w", ErrScheduleUnresolved)
	}
	idx := DailyIndex(plan.StartDate, r.Today(now))
	if idx < 0 || idx >= len(plan.Days) {
		return models.DayPlan{}, fmt.Errorf("day index %d outside plan of %d days: %w", idx, len(plan.Days), ErrScheduleUnresolved)
	}
	return plan.Days[idx], nil
}

// WeeklyWorkout returns the seven-day slice of the plan for the current week.
func (r *Resolver) WeeklyWorkout(plan *models.FitnessPlan, now time.Time) ([]models.DayPlan, error) {
	if plan == nil {
		return nil, fmt.Errorf("no plan loaded: %w", ErrScheduleUnresolved)
	}
	weeks := Weeks(plan.Days)
	idx := WeeklyIndex(plan.StartDate, r.Today(now))
	if idx < 0 || idx >= len(weeks) {
		return nil, fmt.Errorf("week index %d outside plan of %d weeks: %w", idx, len(weeks), ErrScheduleUnresolved)
	}
	return weeks[idx], nil
}

// DailyIndex is the index into plan days for today.
func DailyIndex(start, today models.Date) int {
	return DayOffset(start, today) + WeekdayIndex(start)
}

// WeeklyIndex is the index into Weeks(plan days) for today.
//
// The branching is kept exactly as the product shipped it; the +1 in the
// last branch has no documented rationale. See DESIGN.md.
func WeeklyIndex(start, today models.Date) int {
	offset := DayOffset(start, today)
	startIdx := WeekdayIndex(start)
	currentIdx := WeekdayIndex(today)

	switch {
	case offset < daysPerWeek && currentIdx > startIdx:
		return 0
	case currentIdx > startIdx:
		return floorDiv(offset, daysPerWeek)
	default:
		return floorDiv(offset, daysPerWeek) + 1
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
