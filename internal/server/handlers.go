package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/repcoach/internal/adapt"
	"github.com/claude/repcoach/internal/models"
)

func (s *Server) handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	var payload models.WorkoutPerformance
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if payload.UserID == 0 {
		payload.UserID = 1
	}

	logged, err := s.overload.LogWorkout(r.Context(), payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logged)
}

type recordStrengthRequest struct {
	UserID       int      `json:"user_id"`
	ExerciseID   string   `json:"exercise_id"`
	ExerciseName string   `json:"exercise_name"`
	WeightKg     float64  `json:"weight_kg"`
	Reps         int      `json:"reps"`
	RPE          *float64 `json:"rpe,omitempty"`
}

func (s *Server) handleRecordStrength(w http.ResponseWriter, r *http.Request) {
	var req recordStrengthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.UserID == 0 {
		req.UserID = 1
	}

	rec, err := s.overload.RecordStrength(r.Context(), req.UserID, req.ExerciseID, req.ExerciseName, req.WeightKg, req.Reps, req.RPE)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStrengthHistory(w http.ResponseWriter, r *http.Request) {
	exerciseID := r.URL.Query().Get("exercise_id")
	if exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id parameter required"})
		return
	}
	limit := queryInt(r, "limit", 20)

	records, err := s.overload.ExerciseHistory(r.Context(), queryInt(r, "user_id", 1), exerciseID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCurrentOneRM(w http.ResponseWriter, r *http.Request) {
	exerciseID := r.URL.Query().Get("exercise_id")
	if exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id parameter required"})
		return
	}

	best, ok, err := s.overload.CurrentOneRM(r.Context(), queryInt(r, "user_id", 1), exerciseID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"exercise_id": exerciseID, "estimated_1rm": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exercise_id": exerciseID, "estimated_1rm": best})
}

func (s *Server) handleWeeklyVolume(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	volumes, err := s.overload.WeeklyVolume(r.Context(), queryInt(r, "user_id", 1), start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, volumes)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	exerciseID := r.URL.Query().Get("exercise_id")
	if exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id parameter required"})
		return
	}

	rec, err := s.overload.Recommendation(r.Context(), queryInt(r, "user_id", 1), exerciseID, r.URL.Query().Get("exercise_name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeloadCheck(w http.ResponseWriter, r *http.Request) {
	needed, reason, err := s.overload.CheckDeload(r.Context(), queryInt(r, "user_id", 1))
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := map[string]any{"deload_recommended": needed}
	if reason != "" {
		resp["reason"] = reason
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWeeklySplit(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 3)
	if days < 1 || days > 7 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be between 1 and 7"})
		return
	}

	plans, err := s.overload.WeeklySplit(r.Context(), queryInt(r, "user_id", 1), days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// adaptRequest is the wire shape for POST /api/v1/adapt. The reason
// string selects which of the optional blocks applies.
type adaptRequest struct {
	Exercises        []models.PlannedExercise `json:"exercises"`
	Reason           string                   `json:"reason"`
	MissedMuscles    []string                 `json:"missed_muscles,omitempty"`
	FatigueLevel     int                      `json:"fatigue_level,omitempty"`
	AvailableTimeMin int                      `json:"available_time_min,omitempty"`
	Injuries         []string                 `json:"injuries,omitempty"`
}

func (s *Server) handleAdapt(w http.ResponseWriter, r *http.Request) {
	var payload adaptRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	req := adapt.Request{Exercises: payload.Exercises, Injuries: payload.Injuries}
	switch payload.Reason {
	case "missed_muscles":
		req.Reason = adapt.MissedMuscles{Muscles: payload.MissedMuscles, AvailableTimeMin: payload.AvailableTimeMin}
	case "recovery":
		req.Reason = adapt.Recovery{FatigueLevel: payload.FatigueLevel}
	case "time_constraint":
		req.Reason = adapt.TimeConstraint{AvailableTimeMin: payload.AvailableTimeMin}
	case "":
		// Injuries-only request.
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown reason: " + payload.Reason})
		return
	}

	adapted, err := s.adaptation.Adapt(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adapted)
}

// writeError maps validation failures to 400 and everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
		return
	}
	s.log.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
