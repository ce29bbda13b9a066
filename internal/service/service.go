// Package service composes the progression, volume, split, and
// adaptation components behind two facades. The facades route calls and
// load history from storage; they add no decision logic of their own.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/repcoach/internal/adapt"
	"github.com/claude/repcoach/internal/config"
	"github.com/claude/repcoach/internal/knowledge"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/progression"
	"github.com/claude/repcoach/internal/split"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/volume"
	"github.com/google/uuid"
)

// ProgressiveOverload is the facade over strength tracking, volume
// aggregation, progression advice, and split planning.
type ProgressiveOverload struct {
	db      *storage.DB
	tracker *progression.Tracker
	advisor *progression.Advisor
	volume  *volume.Tracker
	split   *split.Optimizer
	cfg     *config.Config
	log     *slog.Logger
}

// NewProgressiveOverload wires the components with shared config and
// knowledge base.
func NewProgressiveOverload(db *storage.DB, kb knowledge.Base, cfg *config.Config, log *slog.Logger) *ProgressiveOverload {
	return &ProgressiveOverload{
		db:      db,
		tracker: progression.NewTracker(cfg.Progression.RepCeiling),
		advisor: progression.NewAdvisor(kb, cfg.Progression),
		volume:  volume.NewTracker(kb, volume.Metric(cfg.Volume.Metric)),
		split:   split.NewOptimizer(),
		cfg:     cfg,
		log:     log,
	}
}

// RecordStrength computes a strength record against the user's stored
// history, persists it, and returns it with its PR flag.
func (s *ProgressiveOverload) RecordStrength(ctx context.Context, userID int, exerciseID, exerciseName string, weightKg float64, reps int, rpe *float64) (models.StrengthRecord, error) {
	history, err := s.db.QueryStrengthRecords(ctx, userID, exerciseID, 0)
	if err != nil {
		return models.StrengthRecord{}, fmt.Errorf("loading strength history: %w", err)
	}

	rec, err := s.tracker.Record(userID, exerciseID, exerciseName, weightKg, reps, rpe, history, time.Now())
	if err != nil {
		return models.StrengthRecord{}, err
	}

	if err := s.db.InsertStrengthRecord(ctx, rec); err != nil {
		return models.StrengthRecord{}, err
	}
	if rec.IsPR {
		s.log.Info("personal record", "user", userID, "exercise", exerciseName, "estimated_1rm", rec.Estimated1RM)
	}
	return rec, nil
}

// ExerciseHistory returns stored strength records, most recent first.
func (s *ProgressiveOverload) ExerciseHistory(ctx context.Context, userID int, exerciseID string, limit int) ([]models.StrengthRecord, error) {
	records, err := s.db.QueryStrengthRecords(ctx, userID, exerciseID, limit)
	if err != nil {
		return nil, err
	}
	return s.tracker.History(records, limit), nil
}

// CurrentOneRM returns the best known estimated 1RM for the exercise,
// ok=false when no qualifying record exists.
func (s *ProgressiveOverload) CurrentOneRM(ctx context.Context, userID int, exerciseID string) (float64, bool, error) {
	records, err := s.db.QueryStrengthRecords(ctx, userID, exerciseID, 0)
	if err != nil {
		return 0, false, err
	}
	best, ok := s.tracker.BestOneRM(records)
	return best, ok, nil
}

// LogWorkout persists a completed workout. A zero workout ID is
// assigned one.
func (s *ProgressiveOverload) LogWorkout(ctx context.Context, w models.WorkoutPerformance) (models.WorkoutPerformance, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Date.IsZero() {
		w.Date = time.Now()
	}
	for i := range w.Exercises {
		w.Exercises[i].UserID = w.UserID
		if w.Exercises[i].PerformedAt.IsZero() {
			w.Exercises[i].PerformedAt = w.Date
		}
		if err := models.ValidatePerformance(w.Exercises[i].ExerciseID, w.Exercises[i].WeightKg, w.Exercises[i].Reps); err != nil {
			return models.WorkoutPerformance{}, err
		}
	}

	inserted, err := s.db.InsertWorkout(ctx, w)
	if err != nil {
		return models.WorkoutPerformance{}, err
	}
	if !inserted {
		s.log.Info("workout already logged", "workout", w.ID)
	}
	return w, nil
}

// WeeklyVolume aggregates the user's workouts within [start, end) into
// per-muscle-group volume.
func (s *ProgressiveOverload) WeeklyVolume(ctx context.Context, userID int, start, end time.Time) ([]models.MuscleGroupVolume, error) {
	workouts, err := s.db.QueryWorkouts(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading workouts: %w", err)
	}
	return s.volume.WeeklyVolume(workouts), nil
}

// Recommendation loads the exercise's recent performances and runs the
// advisor.
func (s *ProgressiveOverload) Recommendation(ctx context.Context, userID int, exerciseID, exerciseName string) (models.ProgressionRecommendation, error) {
	history, err := s.db.QueryPerformances(ctx, userID, exerciseID, 10)
	if err != nil {
		return models.ProgressionRecommendation{}, fmt.Errorf("loading performance history: %w", err)
	}
	var last *models.ExercisePerformance
	if len(history) > 0 {
		last = &history[0]
		if exerciseName == "" {
			exerciseName = last.ExerciseName
		}
	}
	return s.advisor.Recommend(exerciseID, exerciseName, last, history), nil
}

// CheckDeload evaluates the configured trailing window of workouts.
func (s *ProgressiveOverload) CheckDeload(ctx context.Context, userID int) (bool, string, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -s.cfg.Progression.DeloadWindowDays)
	workouts, err := s.db.QueryWorkouts(ctx, userID, start, end)
	if err != nil {
		return false, "", fmt.Errorf("loading workouts: %w", err)
	}
	needed, reason := s.advisor.ShouldDeload(workouts)
	return needed, reason, nil
}

// WeeklySplit plans the coming week from the trailing week's volume.
func (s *ProgressiveOverload) WeeklySplit(ctx context.Context, userID, availableDays int) ([]split.DayPlan, error) {
	end := time.Now()
	volumes, err := s.WeeklyVolume(ctx, userID, end.AddDate(0, 0, -7), end)
	if err != nil {
		return nil, err
	}
	return s.split.OptimizeWeeklySplit(userID, volumes, availableDays), nil
}

// Adaptation is the facade over the workout adaptation engine.
type Adaptation struct {
	engine *adapt.Engine
	log    *slog.Logger
}

func NewAdaptation(kb knowledge.Base, cfg *config.Config, log *slog.Logger) *Adaptation {
	return &Adaptation{engine: adapt.NewEngine(kb, cfg.Adaptation), log: log}
}

// Adapt passes the request through to the engine.
func (a *Adaptation) Adapt(req adapt.Request) (models.AdaptedWorkout, error) {
	return a.engine.Apply(req)
}
