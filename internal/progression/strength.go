// Package progression implements strength tracking, personal-record
// detection, and next-session load recommendations. Everything here is
// a pure computation over caller-supplied history; persistence of the
// returned records belongs to the caller.
package progression

import (
	"sort"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// Tracker computes estimated one-rep maxes and detects personal records.
type Tracker struct {
	// repCeiling is the highest rep count whose Epley estimate is
	// trusted for PR comparison. Above it, PR status falls back to a
	// raw weight comparison so high-rep sets can't register as false
	// strength PRs.
	repCeiling int
}

// NewTracker returns a Tracker with the given confidence ceiling.
// A ceiling <= 0 uses the default of 12.
func NewTracker(repCeiling int) *Tracker {
	if repCeiling <= 0 {
		repCeiling = 12
	}
	return &Tracker{repCeiling: repCeiling}
}

// EstimateOneRM computes the Epley estimate weight * (1 + reps/30).
// It is non-decreasing in weight for fixed reps and in reps for fixed
// weight.
func EstimateOneRM(weightKg float64, reps int) float64 {
	if reps <= 1 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30)
}

// Record builds a StrengthRecord for one observation and determines PR
// status against the supplied prior history. Ties are not PRs; only a
// strictly better value counts. The caller owns persisting the record.
func (t *Tracker) Record(userID int, exerciseID, exerciseName string, weightKg float64, reps int, rpe *float64, history []models.StrengthRecord, at time.Time) (models.StrengthRecord, error) {
	if err := models.ValidatePerformance(exerciseID, weightKg, reps); err != nil {
		return models.StrengthRecord{}, err
	}
	if at.IsZero() {
		at = time.Now()
	}

	rec := models.StrengthRecord{
		ID:           uuid.New(),
		UserID:       userID,
		ExerciseID:   exerciseID,
		ExerciseName: exerciseName,
		WeightKg:     weightKg,
		Reps:         reps,
		RPE:          rpe,
		Estimated1RM: EstimateOneRM(weightKg, reps),
		RecordedAt:   at,
	}

	if reps > t.repCeiling {
		// Low-confidence estimate: compare raw weight against the
		// heaviest prior set instead.
		best := 0.0
		for _, h := range history {
			if h.WeightKg > best {
				best = h.WeightKg
			}
		}
		rec.IsPR = weightKg > best
		return rec, nil
	}

	best, ok := t.BestOneRM(history)
	rec.IsPR = !ok || rec.Estimated1RM > best
	return rec, nil
}

// History returns the records most recent first, bounded by limit.
// A limit <= 0 returns everything. The input is not modified.
func (t *Tracker) History(records []models.StrengthRecord, limit int) []models.StrengthRecord {
	out := make([]models.StrengthRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BestOneRM returns the highest estimated 1RM across qualifying history
// entries. Records above the rep ceiling are excluded; of the rest, the
// maximum is taken regardless of rep count (fixed policy). ok is false
// when no qualifying record exists.
func (t *Tracker) BestOneRM(records []models.StrengthRecord) (float64, bool) {
	best, found := 0.0, false
	for _, r := range records {
		if r.Reps > t.repCeiling {
			continue
		}
		if !found || r.Estimated1RM > best {
			best = r.Estimated1RM
			found = true
		}
	}
	return best, found
}
