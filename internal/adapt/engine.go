// Package adapt transforms an already-planned workout in response to
// missed muscle coverage, fatigue, time pressure, or reported injuries.
// All transformations are pure functions over the exercise list plus
// the immutable exercise knowledge base.
package adapt

import (
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/config"
	"github.com/claude/repcoach/internal/knowledge"
	"github.com/claude/repcoach/internal/models"
)

// warmupMinutes is the fixed baseline added to every session estimate.
const warmupMinutes = 5

// Defaults for exercises appended by missed-muscle compensation.
const (
	addedSets    = 3
	addedReps    = 12
	addedRestSec = 90
)

// Engine applies rule-based workout transformations.
type Engine struct {
	kb  knowledge.Base
	cfg config.AdaptationConfig
}

// NewEngine returns an Engine with the given knowledge base and
// tuning. Zero-valued tuning fields fall back to package defaults.
func NewEngine(kb knowledge.Base, cfg config.AdaptationConfig) *Engine {
	def := config.Defaults().Adaptation
	if cfg.HighFatigueFactor == 0 {
		cfg.HighFatigueFactor = def.HighFatigueFactor
	}
	if cfg.ModerateFatigueFactor == 0 {
		cfg.ModerateFatigueFactor = def.ModerateFatigueFactor
	}
	if cfg.MinSets == 0 {
		cfg.MinSets = def.MinSets
	}
	if cfg.MinExercises == 0 {
		cfg.MinExercises = def.MinExercises
	}
	return &Engine{kb: kb, cfg: cfg}
}

// EstimateDurationMin estimates a session's length: a fixed warm-up
// baseline plus, per exercise, one working minute and the rest interval
// for each set.
func EstimateDurationMin(exercises []models.PlannedExercise) float64 {
	total := float64(warmupMinutes)
	for _, ex := range exercises {
		total += float64(ex.Sets) * (1 + float64(ex.RestSeconds)/60)
	}
	return total
}

// Apply dispatches on the request's reason variant, then applies injury
// substitution last and unconditionally whenever injuries are present,
// regardless of which primary reason fired.
func (e *Engine) Apply(req Request) (models.AdaptedWorkout, error) {
	if req.Reason == nil && len(req.Injuries) == 0 {
		return models.AdaptedWorkout{}, &models.ValidationError{Field: "reason", Msg: "request carries no reason and no injuries"}
	}

	exercises := cloneExercises(req.Exercises)
	var changes []string
	var why []string

	switch r := req.Reason.(type) {
	case MissedMuscles:
		var c []string
		exercises, c = e.ForMissedMuscles(exercises, r.Muscles, r.AvailableTimeMin)
		changes = append(changes, c...)
		why = append(why, fmt.Sprintf("compensated for missed muscle groups (%s)", strings.Join(r.Muscles, ", ")))
	case Recovery:
		var c []string
		exercises, c = e.ForRecovery(exercises, r.FatigueLevel)
		changes = append(changes, c...)
		why = append(why, fmt.Sprintf("reduced volume for fatigue level %d", r.FatigueLevel))
	case TimeConstraint:
		var c []string
		exercises, c = e.ForTime(exercises, r.AvailableTimeMin)
		changes = append(changes, c...)
		why = append(why, fmt.Sprintf("trimmed session to fit %d minutes", r.AvailableTimeMin))
	case nil:
		// Injuries only.
	}

	if len(req.Injuries) > 0 {
		var c []string
		exercises, c = e.ForInjuries(exercises, req.Injuries)
		changes = append(changes, c...)
		why = append(why, fmt.Sprintf("applied injury precautions (%s)", strings.Join(req.Injuries, ", ")))
	}

	if len(changes) == 0 {
		changes = append(changes, "no changes required")
	}

	return models.AdaptedWorkout{
		Exercises:            exercises,
		Changes:              changes,
		Reasoning:            strings.Join(why, "; "),
		EstimatedDurationMin: EstimateDurationMin(exercises),
	}, nil
}

// ForMissedMuscles appends, per missed muscle group, the first known
// candidate not already in the workout (case-insensitive name match),
// with a default 3x12 / 90s prescription. At most one exercise is added
// per muscle group. Muscle groups with no known candidates are skipped
// rather than failing the adaptation. When availableTimeMin > 0,
// additions stop once the session estimate reaches the budget.
func (e *Engine) ForMissedMuscles(exercises []models.PlannedExercise, missedMuscles []string, availableTimeMin int) ([]models.PlannedExercise, []string) {
	out := cloneExercises(exercises)
	var changes []string

	for _, muscle := range missedMuscles {
		if availableTimeMin > 0 && EstimateDurationMin(out) >= float64(availableTimeMin) {
			break
		}
		for _, candidate := range e.kb.ExercisesForMuscle(muscle) {
			if containsName(out, candidate) {
				continue
			}
			out = append(out, models.PlannedExercise{
				Name:        candidate,
				Sets:        addedSets,
				Reps:        addedReps,
				RestSeconds: addedRestSec,
				Added:       true,
			})
			changes = append(changes, fmt.Sprintf("added %s to cover %s", candidate, muscle))
			break
		}
	}
	return out, changes
}

// ForRecovery scales set counts down by the configured fatigue factor:
// 0.6 at fatigue >= 8, 0.8 at fatigue >= 6, no change below 6. Set
// counts never drop below the floor.
func (e *Engine) ForRecovery(exercises []models.PlannedExercise, fatigueLevel int) ([]models.PlannedExercise, []string) {
	var factor float64
	switch {
	case fatigueLevel >= 8:
		factor = e.cfg.HighFatigueFactor
	case fatigueLevel >= 6:
		factor = e.cfg.ModerateFatigueFactor
	default:
		return cloneExercises(exercises), nil
	}

	out := cloneExercises(exercises)
	var changes []string
	for i := range out {
		reduced := int(float64(out[i].Sets) * factor)
		if reduced < e.cfg.MinSets {
			reduced = e.cfg.MinSets
		}
		if reduced >= out[i].Sets {
			continue
		}
		changes = append(changes, fmt.Sprintf("reduced %s from %d to %d sets for recovery", out[i].Name, out[i].Sets, reduced))
		out[i].Sets = reduced
	}
	return out, changes
}

// ForTime removes the lowest-priority exercise one at a time while the
// session estimate exceeds the budget and more than the floor of
// exercises remain; priority ties remove the later list entry first.
// If still over budget once removal is exhausted, every remaining
// exercise loses one set down to the set floor.
func (e *Engine) ForTime(exercises []models.PlannedExercise, availableTimeMin int) ([]models.PlannedExercise, []string) {
	out := cloneExercises(exercises)
	var changes []string
	budget := float64(availableTimeMin)

	for EstimateDurationMin(out) > budget && len(out) > e.cfg.MinExercises {
		drop := 0
		for i := 1; i < len(out); i++ {
			// <= keeps the later entry as the victim on ties.
			if e.kb.Priority(out[i].Name) <= e.kb.Priority(out[drop].Name) {
				drop = i
			}
		}
		changes = append(changes, fmt.Sprintf("removed %s to fit the %d minute budget", out[drop].Name, availableTimeMin))
		out = append(out[:drop], out[drop+1:]...)
	}

	if EstimateDurationMin(out) > budget {
		trimmed := false
		for i := range out {
			if out[i].Sets > e.cfg.MinSets {
				out[i].Sets--
				trimmed = true
			}
		}
		if trimmed {
			changes = append(changes, "reduced one set from each remaining exercise to fit the time budget")
		}
	}
	return out, changes
}

// ForInjuries processes injuries sequentially over the current list:
// a contraindicated exercise is replaced in place by a safe substitute
// (keeping the prescription and recording the original name), or
// dropped when none exists. Substitutes are vetted against the same
// injury, following the catalog's substitute chain, so the output never
// contains an exercise contraindicated for a reported injury. An
// exercise substituted for one injury is still checked against
// subsequent injuries.
func (e *Engine) ForInjuries(exercises []models.PlannedExercise, injuries []string) ([]models.PlannedExercise, []string) {
	out := cloneExercises(exercises)
	var changes []string

	for _, injury := range injuries {
		kept := out[:0]
		for _, ex := range out {
			if !e.kb.IsContraindicated(ex.Name, injury) {
				kept = append(kept, ex)
				continue
			}
			if sub, ok := e.resolveSubstitute(ex.Name, injury); ok {
				replaced := ex
				replaced.Name = sub
				replaced.Substituted = true
				replaced.ReplacedName = ex.Name
				kept = append(kept, replaced)
				changes = append(changes, fmt.Sprintf("replaced %s with %s due to %s injury", ex.Name, sub, injury))
				continue
			}
			changes = append(changes, fmt.Sprintf("removed %s due to %s injury (no safe substitute)", ex.Name, injury))
		}
		out = kept
	}
	return out, changes
}

// resolveSubstitute follows the catalog's substitute chain for the
// injury until it reaches an exercise safe for that injury. ok is false
// when the chain dead-ends or cycles, meaning the exercise has to be
// dropped.
func (e *Engine) resolveSubstitute(name, injury string) (string, bool) {
	seen := map[string]bool{strings.ToLower(name): true}
	for {
		sub, ok := e.kb.Substitute(name, injury)
		if !ok {
			return "", false
		}
		if !e.kb.IsContraindicated(sub, injury) {
			return sub, true
		}
		key := strings.ToLower(sub)
		if seen[key] {
			return "", false
		}
		seen[key] = true
		name = sub
	}
}

func cloneExercises(exercises []models.PlannedExercise) []models.PlannedExercise {
	out := make([]models.PlannedExercise, len(exercises))
	copy(out, exercises)
	return out
}

func containsName(exercises []models.PlannedExercise, name string) bool {
	for _, ex := range exercises {
		if strings.EqualFold(ex.Name, name) {
			return true
		}
	}
	return false
}
