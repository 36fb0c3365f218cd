package mcp

import (
	"context"
	"time"

	"github.com/claude/fitbuddy/internal/models"
	"github.com/claude/fitbuddy/internal/schedule"
	"github.com/claude/fitbuddy/internal/server"
	"github.com/claude/fitbuddy/internal/session"
	"github.com/claude/fitbuddy/internal/storage"
)

// DataSource abstracts the app state for MCP tools. Both *server.Workspace
// (in-process) and HTTPClient (remote via REST API) satisfy this interface.
// DailyWorkout and WeeklyWorkout return schedule.ErrScheduleUnresolved when
// today falls outside the plan.
type DataSource interface {
	Plan(ctx context.Context) (*models.FitnessPlan, error)
	DailyWorkout(ctx context.Context) (models.DayPlan, error)
	WeeklyWorkout(ctx context.Context) ([]models.DayPlan, error)
	Exercises(ctx context.Context, page int) (*models.ExercisePage, error)
	SessionSummary(ctx context.Context) (session.Summary, error)
	Heatmap(ctx context.Context, year int, month time.Month) (schedule.Heatmap, error)
	QueryWorkoutSets(ctx context.Context, start, end time.Time) ([]models.HistorySetRow, error)
	TrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error)
	HistoryStats(ctx context.Context) (*storage.HistoryStats, error)
	ExerciseProgress(ctx context.Context, start, end time.Time, exercise string) (*storage.ExerciseProgress, error)
}

// Compile-time check: *server.Workspace satisfies DataSource.
var _ DataSource = (*server.Workspace)(nil)
