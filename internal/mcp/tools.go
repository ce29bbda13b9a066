package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/adapt"
	"github.com/claude/repcoach/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
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
		start = end.AddDate(0, 0, -7)
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

// splitList turns a comma-separated parameter into trimmed entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// --- Tool definitions ---

var toolGetStrengthHistory = mcp.NewTool("get_strength_history",
	mcp.WithDescription("Strength records for one exercise, most recent first. Each record carries weight, reps, RPE, estimated 1RM, and whether it was a personal record."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise identifier (e.g. 'bench-press')")),
	mcp.WithNumber("limit", mcp.Description("Maximum records to return. Defaults to 20.")),
)

var toolGetCurrentOneRM = mcp.NewTool("get_current_1rm",
	mcp.WithDescription("Best known estimated one-rep max for an exercise, or null when no qualifying record exists."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise identifier")),
)

var toolGetWeeklyVolume = mcp.NewTool("get_weekly_volume",
	mcp.WithDescription("Per-muscle-group weekly training volume with landmark classification (under_minimum / optimal / near_maximum / excessive). Muscle groups with zero volume are included."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetRecommendation = mcp.NewTool("get_recommendation",
	mcp.WithDescription("Load/rep recommendation for the next session of an exercise: increase_load, hold, decrease_load, or insufficient_data, with the rationale."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise identifier")),
	mcp.WithString("exercise_name", mcp.Description("Exercise display name (used for equipment lookup)")),
)

var toolCheckDeload = mcp.NewTool("check_deload",
	mcp.WithDescription("Whether the recent training window warrants a deload week, with a human-readable reason when it does. Advisory only."),
)

var toolOptimizeSplit = mcp.NewTool("optimize_split",
	mcp.WithDescription("Assign muscle-group focus to the coming week's training days, prioritizing under-trained groups."),
	mcp.WithNumber("days", mcp.Description("Available training days (1-7). Defaults to 3.")),
)

var toolAdaptWorkout = mcp.NewTool("adapt_workout",
	mcp.WithDescription("Transform a planned workout for one primary reason (missed_muscles, recovery, or time_constraint) and/or reported injuries. Injury substitution is always applied last. Returns the adapted exercise list, change descriptions, and estimated duration."),
	mcp.WithString("exercises", mcp.Required(), mcp.Description(`JSON array of planned exercises, e.g. [{"name":"Bench Press","sets":3,"reps":8,"rest_seconds":90}]`)),
	mcp.WithString("reason", mcp.Description("Primary adaptation reason"), mcp.Enum("missed_muscles", "recovery", "time_constraint")),
	mcp.WithString("missed_muscles", mcp.Description("Comma-separated muscle groups to compensate (reason=missed_muscles)")),
	mcp.WithNumber("fatigue_level", mcp.Description("Reported fatigue 1-10 (reason=recovery)")),
	mcp.WithNumber("available_time_min", mcp.Description("Session time budget in minutes (reason=time_constraint or missed_muscles cap)")),
	mcp.WithString("injuries", mcp.Description("Comma-separated injuries (e.g. 'knee, shoulder')")),
)

// --- Tool handlers ---

func (h *handlers) getStrengthHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	limit := req.GetInt("limit", 20)
	uid := UserIDFromContext(ctx)

	records, err := h.coach.ExerciseHistory(ctx, uid, exerciseID, limit)
	if err != nil {
		h.log.Error("mcp get_strength_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCurrentOneRM(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	uid := UserIDFromContext(ctx)

	best, ok, err := h.coach.CurrentOneRM(ctx, uid, exerciseID)
	if err != nil {
		h.log.Error("mcp get_current_1rm", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	payload := map[string]any{"exercise_id": exerciseID}
	if ok {
		payload["estimated_1rm"] = best
	} else {
		payload["estimated_1rm"] = nil
	}
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWeeklyVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	uid := UserIDFromContext(ctx)

	volumes, err := h.coach.WeeklyVolume(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_weekly_volume", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(volumes)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecommendation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	uid := UserIDFromContext(ctx)

	rec, err := h.coach.Recommendation(ctx, uid, exerciseID, req.GetString("exercise_name", ""))
	if err != nil {
		h.log.Error("mcp get_recommendation", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rec)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) checkDeload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	needed, reason, err := h.coach.CheckDeload(ctx, uid)
	if err != nil {
		h.log.Error("mcp check_deload", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	payload := map[string]any{"deload_recommended": needed}
	if reason != "" {
		payload["reason"] = reason
	}
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) optimizeSplit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 3)
	if days < 1 || days > 7 {
		return mcp.NewToolResultError("days must be between 1 and 7"), nil
	}
	uid := UserIDFromContext(ctx)

	plans, err := h.coach.WeeklySplit(ctx, uid, days)
	if err != nil {
		h.log.Error("mcp optimize_split", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plans)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) adaptWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercisesJSON, err := req.RequireString("exercises")
	if err != nil {
		return mcp.NewToolResultError("exercises parameter is required"), nil
	}

	var exercises []models.PlannedExercise
	if err := json.Unmarshal([]byte(exercisesJSON), &exercises); err != nil {
		return mcp.NewToolResultError("invalid exercises JSON: " + err.Error()), nil
	}

	adaptReq := adapt.Request{
		Exercises: exercises,
		Injuries:  splitList(req.GetString("injuries", "")),
	}
	switch reason := req.GetString("reason", ""); reason {
	case "missed_muscles":
		adaptReq.Reason = adapt.MissedMuscles{
			Muscles:          splitList(req.GetString("missed_muscles", "")),
			AvailableTimeMin: req.GetInt("available_time_min", 0),
		}
	case "recovery":
		adaptReq.Reason = adapt.Recovery{FatigueLevel: req.GetInt("fatigue_level", 0)}
	case "time_constraint":
		adaptReq.Reason = adapt.TimeConstraint{AvailableTimeMin: req.GetInt("available_time_min", 0)}
	case "":
		// Injuries-only request.
	default:
		return mcp.NewToolResultError("unknown reason: " + reason), nil
	}

	adapted, err := h.adaptation.Adapt(adaptReq)
	if err != nil {
		return mcp.NewToolResultError("adaptation failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(adapted)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
