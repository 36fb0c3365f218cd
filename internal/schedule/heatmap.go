package schedule

import (
	"time"

	"github.com/claude/fitbuddy/internal/models"
)

// HeatCell is one day of the month heat-map. Day is 0 for padding cells.
type HeatCell struct {
	Day       int  `json:"day"`
	Completed bool `json:"completed"`
	Today     bool `json:"today"`
}

// Heatmap is a Monday-first month calendar marking completed workouts.
type Heatmap struct {
	Year      int          `json:"year"`
	Month     time.Month   `json:"month"`
	MonthName string       `json:"month_name"`
	Rows      [][]HeatCell `json:"rows"`
	Completed int          `json:"completed"`
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayIndex returns the Monday=0 weekday index of the month's first day.
func FirstWeekdayIndex(year int, month time.Month) int {
	return WeekdayIndex(models.NewDate(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)))
}

// MonthGrid lays out the month as rows of seven cells, padding before the
// first day and after the last. Workout days outside the month are ignored.
func (r *Resolver) MonthGrid(year int, month time.Month, workoutDays []models.Date, now time.Time) Heatmap {
	done := make(map[int]bool, len(workoutDays))
	for _, d := range workoutDays {
		if d.Year() == year && d.Month() == month {
			done[d.Day()] = true
		}
	}
	today := r.Today(now)

	hm := Heatmap{Year: year, Month: month, MonthName: month.String(), Completed: len(done)}
	row := make([]HeatCell, FirstWeekdayIndex(year, month), daysPerWeek)
	for day := 1; day <= DaysInMonth(year, month); day++ {
		row = append(row, HeatCell{
			Day:       day,
			Completed: done[day],
			Today:     today.Year() == year && today.Month() == month && today.Day() == day,
		})
		if len(row) == daysPerWeek {
			hm.Rows = append(hm.Rows, row)
			row = make([]HeatCell, 0, daysPerWeek)
		}
	}
	if len(row) > 0 {
		for len(row) < daysPerWeek {
			row = append(row, HeatCell{})
		}
		hm.Rows = append(hm.Rows, row)
	}
	return hm
}
