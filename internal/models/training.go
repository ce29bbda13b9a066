package models

import (
	"time"

	"github.com/google/uuid"
)

// ExercisePerformance is one exercise's logged result within a workout:
// the working weight, reps per set, and how many sets were completed at
// that prescription. RPE is optional (nil when the lifter didn't track it).
// Performances are immutable once recorded.
type ExercisePerformance struct {
	ExerciseID   string    `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	UserID       int       `json:"user_id"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	Sets         int       `json:"sets"`
	RPE          *float64  `json:"rpe,omitempty"`
	PerformedAt  time.Time `json:"performed_at"`
}

// WorkoutPerformance is a completed workout: its exercises, date, and
// duration. Used as input to volume aggregation and deload evaluation.
type WorkoutPerformance struct {
	ID          uuid.UUID             `json:"id"`
	UserID      int                   `json:"user_id"`
	Date        time.Time             `json:"date"`
	DurationMin int                   `json:"duration_min"`
	Exercises   []ExercisePerformance `json:"exercises"`
}

// StrengthRecord is a derived fact about one exercise for one user,
// produced each time a performance is recorded. Records are appended to
// history and never mutated; a later record with a higher estimated 1RM
// supersedes it for PR purposes.
type StrengthRecord struct {
	ID           uuid.UUID `json:"id"`
	UserID       int       `json:"user_id"`
	ExerciseID   string    `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	RPE          *float64  `json:"rpe,omitempty"`
	Estimated1RM float64   `json:"estimated_1rm"`
	IsPR         bool      `json:"is_pr"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// VolumeStatus classifies a muscle group's weekly volume against its
// recovery landmarks.
type VolumeStatus string

const (
	VolumeUnderMinimum VolumeStatus = "under_minimum"
	VolumeOptimal      VolumeStatus = "optimal"
	VolumeNearMaximum  VolumeStatus = "near_maximum"
	VolumeExcessive    VolumeStatus = "excessive"
)

// MuscleGroupVolume is one muscle group's aggregated weekly volume.
// Sets is always the weekly working-set count; Volume is the configured
// reporting metric (sets, reps, or tonnage). Classification is computed
// from Sets against the group's landmarks.
type MuscleGroupVolume struct {
	MuscleGroup string       `json:"muscle_group"`
	Sets        int          `json:"sets"`
	Volume      float64      `json:"volume"`
	Unit        string       `json:"unit"`
	Status      VolumeStatus `json:"status"`
}

// ProgressionAction is the advisory outcome for the next session.
type ProgressionAction string

const (
	ActionIncreaseLoad     ProgressionAction = "increase_load"
	ActionHold             ProgressionAction = "hold"
	ActionDecreaseLoad     ProgressionAction = "decrease_load"
	ActionDeload           ProgressionAction = "deload"
	ActionInsufficientData ProgressionAction = "insufficient_data"
)

// ProgressionRecommendation is the advisor's output for one exercise.
// WeightDeltaKg is zero for hold/insufficient_data; TargetReps is the
// suggested rep goal for the next session (zero when not applicable).
type ProgressionRecommendation struct {
	ExerciseID    string            `json:"exercise_id"`
	ExerciseName  string            `json:"exercise_name"`
	Action        ProgressionAction `json:"action"`
	WeightDeltaKg float64           `json:"weight_delta_kg"`
	TargetReps    int               `json:"target_reps,omitempty"`
	Reason        string            `json:"reason"`
}

// PlannedExercise is one entry of a planned (not yet performed) workout,
// as consumed and produced by the adaptation engine.
type PlannedExercise struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	RestSeconds int    `json:"rest_seconds"`
	// Added marks exercises appended by missed-muscle compensation.
	Added bool `json:"added,omitempty"`
	// Substituted marks injury substitutions; ReplacedName is the
	// exercise the substitute stands in for.
	Substituted  bool   `json:"substituted,omitempty"`
	ReplacedName string `json:"replaced_name,omitempty"`
}

// AdaptedWorkout is the adaptation engine's result: the transformed
// exercise list, human-readable change descriptions, a one-line
// reasoning summary, and the estimated session duration.
type AdaptedWorkout struct {
	Exercises            []PlannedExercise `json:"exercises"`
	Changes              []string          `json:"changes"`
	Reasoning            string            `json:"reasoning"`
	EstimatedDurationMin float64           `json:"estimated_duration_min"`
}
