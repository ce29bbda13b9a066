package progression

import (
	"fmt"

	"github.com/claude/repcoach/internal/config"
	"github.com/claude/repcoach/internal/knowledge"
	"github.com/claude/repcoach/internal/models"
)

// Advisor turns an exercise's recent history into a load/rep
// recommendation for the next session. It is a deterministic state
// machine over (rep-range position, RPE, consecutive shortfalls); all
// thresholds come from config, with per-exercise rep ranges from the
// knowledge base taking precedence.
type Advisor struct {
	kb  knowledge.Base
	cfg config.ProgressionConfig
}

// NewAdvisor returns an Advisor using the given knowledge base and
// tuning. Zero-valued tuning fields fall back to package defaults.
func NewAdvisor(kb knowledge.Base, cfg config.ProgressionConfig) *Advisor {
	def := config.Defaults().Progression
	if cfg.TargetRepLow == 0 {
		cfg.TargetRepLow = def.TargetRepLow
	}
	if cfg.TargetRepHigh == 0 {
		cfg.TargetRepHigh = def.TargetRepHigh
	}
	if cfg.HighEffortRPE == 0 {
		cfg.HighEffortRPE = def.HighEffortRPE
	}
	if cfg.RepCeiling == 0 {
		cfg.RepCeiling = def.RepCeiling
	}
	if cfg.DeloadRPEThreshold == 0 {
		cfg.DeloadRPEThreshold = def.DeloadRPEThreshold
	}
	return &Advisor{kb: kb, cfg: cfg}
}

// Recommend evaluates the decision rules in order; the first match
// wins. last is the most recent session (nil when none exists) and
// history is the exercise's sessions most recent first, including last.
func (a *Advisor) Recommend(exerciseID, exerciseName string, last *models.ExercisePerformance, history []models.ExercisePerformance) models.ProgressionRecommendation {
	rec := models.ProgressionRecommendation{
		ExerciseID:   exerciseID,
		ExerciseName: exerciseName,
	}

	// Rule 1: not enough data for a confident call.
	if last == nil || len(history) < 2 {
		rec.Action = models.ActionInsufficientData
		rec.Reason = "need at least two logged sessions before recommending a change"
		return rec
	}

	low, high := a.repRange(exerciseName)
	increment := a.kb.Increment(a.kb.Equipment(exerciseName))

	// Rule 2: maximal effort at the bottom of the range; repeating the
	// load avoids overreaching.
	if last.RPE != nil && *last.RPE >= a.cfg.HighEffortRPE && last.Reps <= low {
		rec.Action = models.ActionHold
		rec.TargetReps = last.Reps
		rec.Reason = fmt.Sprintf("RPE %.1f at %d reps is maximal effort; repeat the load", *last.RPE, last.Reps)
		return rec
	}

	// Rule 3: topped the rep range with effort to spare.
	if last.Reps >= high && (last.RPE == nil || *last.RPE < a.cfg.HighEffortRPE) {
		rec.Action = models.ActionIncreaseLoad
		rec.WeightDeltaKg = increment
		rec.TargetReps = low
		rec.Reason = fmt.Sprintf("hit %d reps; add %.1f kg and restart at %d reps", last.Reps, increment, low)
		return rec
	}

	// Rule 4: fell short of the range. A second consecutive shortfall
	// means the load is too heavy.
	if last.Reps < low {
		if len(history) >= 2 && history[1].Reps < low {
			rec.Action = models.ActionDecreaseLoad
			rec.WeightDeltaKg = -increment
			rec.TargetReps = low
			rec.Reason = fmt.Sprintf("second consecutive session under %d reps; reduce %.1f kg", low, increment)
			return rec
		}
		rec.Action = models.ActionHold
		rec.TargetReps = low
		rec.Reason = fmt.Sprintf("fell short of %d reps; retry the load before reducing", low)
		return rec
	}

	// Rule 5: mid-range; keep the load and chase another rep.
	rec.Action = models.ActionHold
	rec.TargetReps = last.Reps + 1
	if rec.TargetReps > high {
		rec.TargetReps = high
	}
	rec.Reason = fmt.Sprintf("within the %d-%d range; hold the load and aim for %d reps", low, high, rec.TargetReps)
	return rec
}

func (a *Advisor) repRange(exerciseName string) (int, int) {
	if low, high, ok := a.kb.RepRange(exerciseName); ok {
		return low, high
	}
	return a.cfg.TargetRepLow, a.cfg.TargetRepHigh
}
