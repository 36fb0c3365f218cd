package mcp

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/claude/fitbuddy/internal/models"
	"github.com/claude/fitbuddy/internal/schedule"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange parses start/end. End defaults to now and start to days before end.
func defaultTimeRange(startStr, endStr string, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// unscheduled reports a day outside the plan as data rather than a failure.
func unscheduled(err error) map[string]any {
	return map[string]any{"scheduled": false, "reason": err.Error()}
}

// --- Tool definitions ---

var toolGetFitnessPlan = mcp.NewTool("get_fitness_plan",
	mcp.WithDescription("Retrieve the full fitness plan: name, description, start/end dates and every day's prescribed exercises with sets and reps."),
)

var toolGetDailyWorkout = mcp.NewTool("get_daily_workout",
	mcp.WithDescription("Get today's scheduled workout from the fitness plan. Returns scheduled=false with a reason when today is outside the plan."),
)

var toolGetWeeklyWorkout = mcp.NewTool("get_weekly_workout",
	mcp.WithDescription("Get the current plan week (up to seven day-plans). Returns scheduled=false with a reason when the week is outside the plan."),
)

var toolGetCurrentSession = mcp.NewTool("get_current_session",
	mcp.WithDescription("Get the workout currently being logged: exercises with their sets (label, weight, reps, done, kind), total volume of done sets and elapsed time."),
)

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Browse the exercise catalog one page at a time, optionally filtered by name."),
	mcp.WithString("page", mcp.Description("Page number starting at 1. Defaults to 1.")),
	mcp.WithString("query", mcp.Description("Case-insensitive name filter (e.g. 'squat')")),
)

var toolGetWorkoutHeatmap = mcp.NewTool("get_workout_heatmap",
	mcp.WithDescription("Month calendar (Monday-first rows of seven days) marking the days a workout was completed."),
	mcp.WithString("month", mcp.Description("Month as YYYY-MM. Defaults to the current month.")),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Query submitted sets with exercise name, set label, warm-up flag, weight and reps."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Per-period workout counts, working sets, reps and volume (weight x reps, warm-ups excluded), with a per-exercise breakdown."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to '1 week'."), mcp.Enum("1 day", "1 week", "1 month")),
)

var toolGetHistoryStats = mcp.NewTool("get_history_stats",
	mcp.WithDescription("Lifetime totals: workouts, sets, volume, first/last workout and the most frequent exercises with their best weight."),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Per-workout progression of one exercise: working sets, reps, volume, top weight and estimated one-rep max (Epley)."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match, e.g. 'squat')")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 180 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// --- Tool handlers ---

func (h *handlers) getFitnessPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := h.ds.Plan(ctx)
	if err != nil {
		h.log.Error("mcp get_fitness_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(plan)
}

func (h *handlers) getDailyWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := h.ds.DailyWorkout(ctx)
	if errors.Is(err, schedule.ErrScheduleUnresolved) {
		return jsonResult(unscheduled(err))
	}
	if err != nil {
		h.log.Error("mcp get_daily_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{"scheduled": true, "day": day})
}

func (h *handlers) getWeeklyWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days, err := h.ds.WeeklyWorkout(ctx)
	if errors.Is(err, schedule.ErrScheduleUnresolved) {
		return jsonResult(unscheduled(err))
	}
	if err != nil {
		h.log.Error("mcp get_weekly_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{"scheduled": true, "days": days})
}

func (h *handlers) getCurrentSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := h.ds.SessionSummary(ctx)
	if err != nil {
		h.log.Error("mcp get_current_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sum)
}

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := 1
	if p := req.GetString("page", ""); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return mcp.NewToolResultError("page must be a positive integer"), nil
		}
		page = n
	}

	result, err := h.ds.Exercises(ctx, page)
	if err != nil {
		h.log.Error("mcp search_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	exercises := result.Exercises
	if q := strings.ToLower(strings.TrimSpace(req.GetString("query", ""))); q != "" {
		exercises = make([]models.CatalogExercise, 0, len(result.Exercises))
		for _, ex := range result.Exercises {
			if strings.Contains(strings.ToLower(ex.Name), q) {
				exercises = append(exercises, ex)
			}
		}
	}
	return jsonResult(map[string]any{
		"page":        page,
		"total_pages": result.TotalPages,
		"exercises":   exercises,
	})
}

func (h *handlers) getWorkoutHeatmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := h.now()
	year, month := now.Year(), now.Month()
	if m := req.GetString("month", ""); m != "" {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			return mcp.NewToolResultError("month must be YYYY-MM"), nil
		}
		year, month = t.Year(), t.Month()
	}

	hm, err := h.ds.Heatmap(ctx, year, month)
	if err != nil {
		h.log.Error("mcp get_workout_heatmap", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(hm)
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	rows, err := h.ds.QueryWorkoutSets(ctx, start, end)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if q := strings.ToLower(req.GetString("exercise", "")); q != "" {
		filtered := make([]models.HistorySetRow, 0, len(rows))
		for _, r := range rows {
			if strings.Contains(strings.ToLower(r.ExerciseName), q) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}
	return jsonResult(rows)
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 90)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	bucket := req.GetString("bucket", "1 week")
	summary, err := h.ds.TrainingSummary(ctx, start, end, bucket)
	if err != nil {
		h.log.Error("mcp get_training_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(summary)
}

func (h *handlers) getHistoryStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.HistoryStats(ctx)
	if err != nil {
		h.log.Error("mcp get_history_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 180)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	progress, err := h.ds.ExerciseProgress(ctx, start, end, exercise)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(progress)
}
