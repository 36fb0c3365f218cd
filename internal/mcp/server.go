// Package mcp exposes the fitness plan, the in-progress session and the
// workout history to MCP clients as read-only tools and resources.
package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitBuddy", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitBuddy workout server. Read the signed-in user's fitness plan, today's scheduled workout, the workout being logged, and the history of submitted workouts."),
	)

	h := &handlers{ds: ds, log: log, now: time.Now}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetFitnessPlan, Handler: h.getFitnessPlan},
		server.ServerTool{Tool: toolGetDailyWorkout, Handler: h.getDailyWorkout},
		server.ServerTool{Tool: toolGetWeeklyWorkout, Handler: h.getWeeklyWorkout},
		server.ServerTool{Tool: toolGetCurrentSession, Handler: h.getCurrentSession},
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
		server.ServerTool{Tool: toolGetWorkoutHeatmap, Handler: h.getWorkoutHeatmap},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
		server.ServerTool{Tool: toolGetHistoryStats, Handler: h.getHistoryStats},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resPlan, Handler: h.planResource},
		server.ServerResource{Resource: resSession, Handler: h.sessionResource},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
	now func() time.Time
}

// --- Resource definitions ---

var resPlan = mcp.NewResource(
	"fitbuddy://plan",
	"Fitness Plan",
	mcp.WithResourceDescription("The signed-in user's full multi-day fitness plan"),
	mcp.WithMIMEType("application/json"),
)

var resSession = mcp.NewResource(
	"fitbuddy://session",
	"Current Session",
	mcp.WithResourceDescription("The workout currently being logged: exercises, sets, volume and elapsed time"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"fitbuddy://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Sets from workouts submitted in the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
