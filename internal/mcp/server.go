// Package mcp exposes the progression engine as MCP tools so an AI
// coach can query strength history, volume status, and recommendations,
// and request workout adaptations. The tools call the same service
// facades as the HTTP layer.
package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/service"
	"github.com/claude/repcoach/internal/split"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Coach abstracts the progression facade for MCP tools.
type Coach interface {
	ExerciseHistory(ctx context.Context, userID int, exerciseID string, limit int) ([]models.StrengthRecord, error)
	CurrentOneRM(ctx context.Context, userID int, exerciseID string) (float64, bool, error)
	WeeklyVolume(ctx context.Context, userID int, start, end time.Time) ([]models.MuscleGroupVolume, error)
	Recommendation(ctx context.Context, userID int, exerciseID, exerciseName string) (models.ProgressionRecommendation, error)
	CheckDeload(ctx context.Context, userID int) (bool, string, error)
	WeeklySplit(ctx context.Context, userID, availableDays int) ([]split.DayPlan, error)
}

// Compile-time check: the facade satisfies Coach.
var _ Coach = (*service.ProgressiveOverload)(nil)

// New creates an MCP server with all tools registered.
func New(coach Coach, adaptation *service.Adaptation, version string, log *slog.Logger) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("RepCoach", version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithInstructions("RepCoach training-progression server. Query strength history, weekly muscle-group volume, and progression recommendations; check deload necessity; plan weekly splits; and adapt planned workouts for missed muscles, fatigue, time pressure, or injuries. All data is scoped to the authenticated user."),
	)

	h := &handlers{coach: coach, adaptation: adaptation, log: log}

	s.AddTools(
		mcpserver.ServerTool{Tool: toolGetStrengthHistory, Handler: h.getStrengthHistory},
		mcpserver.ServerTool{Tool: toolGetCurrentOneRM, Handler: h.getCurrentOneRM},
		mcpserver.ServerTool{Tool: toolGetWeeklyVolume, Handler: h.getWeeklyVolume},
		mcpserver.ServerTool{Tool: toolGetRecommendation, Handler: h.getRecommendation},
		mcpserver.ServerTool{Tool: toolCheckDeload, Handler: h.checkDeload},
		mcpserver.ServerTool{Tool: toolOptimizeSplit, Handler: h.optimizeSplit},
		mcpserver.ServerTool{Tool: toolAdaptWorkout, Handler: h.adaptWorkout},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	coach      Coach
	adaptation *service.Adaptation
	log        *slog.Logger
}
