package progression

import (
	"fmt"
	"sort"
	"strings"

	"github.com/claude/repcoach/internal/models"
)

// ShouldDeload evaluates a trailing window of workouts and reports
// whether a deload week is warranted. It fires on either a stalled
// estimated-1RM trend on at least two exercises, or sustained high RPE
// without a corresponding load increase. Advisory only; the caller
// decides whether to apply it.
func (a *Advisor) ShouldDeload(recent []models.WorkoutPerformance) (bool, string) {
	if len(recent) < 2 {
		return false, ""
	}

	workouts := make([]models.WorkoutPerformance, len(recent))
	copy(workouts, recent)
	sort.SliceStable(workouts, func(i, j int) bool {
		return workouts[i].Date.Before(workouts[j].Date)
	})

	if stalled := a.stalledExercises(workouts); len(stalled) >= 2 {
		return true, fmt.Sprintf("strength has stalled or declined on %s across recent sessions; a deload week is recommended",
			strings.Join(stalled, ", "))
	}

	if ok, avg := a.sustainedHighEffort(workouts); ok {
		return true, fmt.Sprintf("average RPE %.1f across the window without load progression; a deload week is recommended", avg)
	}

	return false, ""
}

// stalledExercises returns exercises whose best session 1RM estimate
// failed to increase across at least two consecutive session
// transitions (three or more appearances, chronological order).
func (a *Advisor) stalledExercises(workouts []models.WorkoutPerformance) []string {
	series := make(map[string][]float64)
	order := make([]string, 0)

	for _, w := range workouts {
		bestInSession := make(map[string]float64)
		for _, p := range w.Exercises {
			if p.Reps > a.cfg.RepCeiling {
				continue
			}
			e1rm := EstimateOneRM(p.WeightKg, p.Reps)
			if e1rm > bestInSession[p.ExerciseName] {
				bestInSession[p.ExerciseName] = e1rm
			}
		}
		for name, e1rm := range bestInSession {
			if _, seen := series[name]; !seen {
				order = append(order, name)
			}
			series[name] = append(series[name], e1rm)
		}
	}
	sort.Strings(order)

	var stalled []string
	for _, name := range order {
		s := series[name]
		if len(s) < 3 {
			continue
		}
		// Non-increasing across the last two transitions.
		n := len(s)
		if s[n-2] <= s[n-3] && s[n-1] <= s[n-2] {
			stalled = append(stalled, name)
		}
	}
	return stalled
}

// sustainedHighEffort reports whether the average tracked RPE meets the
// deload threshold while total tonnage has not increased from the first
// to the last workout of the window.
func (a *Advisor) sustainedHighEffort(workouts []models.WorkoutPerformance) (bool, float64) {
	var sum float64
	var n int
	for _, w := range workouts {
		for _, p := range w.Exercises {
			if p.RPE != nil {
				sum += *p.RPE
				n++
			}
		}
	}
	if n == 0 {
		return false, 0
	}
	avg := sum / float64(n)
	if avg < a.cfg.DeloadRPEThreshold {
		return false, avg
	}

	first := tonnage(workouts[0])
	last := tonnage(workouts[len(workouts)-1])
	if last > first {
		// Load is still moving up; high effort alone is expected.
		return false, avg
	}
	return true, avg
}

func tonnage(w models.WorkoutPerformance) float64 {
	var total float64
	for _, p := range w.Exercises {
		sets := p.Sets
		if sets < 1 {
			sets = 1
		}
		total += float64(sets) * float64(p.Reps) * p.WeightKg
	}
	return total
}
