// Package volume aggregates completed workouts into per-muscle-group
// weekly volume and classifies each group against its recovery
// landmarks.
package volume

import (
	"sort"

	"github.com/claude/repcoach/internal/knowledge"
	"github.com/claude/repcoach/internal/models"
)

// Metric selects the reported volume unit. Classification always runs
// on weekly set counts, since landmarks are expressed in sets.
type Metric string

const (
	MetricSets    Metric = "sets"
	MetricReps    Metric = "reps"
	MetricTonnage Metric = "tonnage"
)

// Tracker aggregates weekly volume. Stateless; safe for concurrent use.
type Tracker struct {
	kb     knowledge.Base
	metric Metric
}

// NewTracker returns a Tracker reporting the given metric. An empty or
// unknown metric falls back to sets.
func NewTracker(kb knowledge.Base, metric Metric) *Tracker {
	switch metric {
	case MetricSets, MetricReps, MetricTonnage:
	default:
		metric = MetricSets
	}
	return &Tracker{kb: kb, metric: metric}
}

// WeeklyVolume sums the supplied workouts per muscle group and
// classifies each total. Two contracts matter downstream:
//
//   - An exercise targeting multiple muscle groups contributes its full
//     volume to every targeted group, not a split share.
//   - Every muscle group known to the knowledge base appears in the
//     output, so zero-volume groups classify as under_minimum instead
//     of silently vanishing.
//
// The result is independent of workout ordering.
func (t *Tracker) WeeklyVolume(workouts []models.WorkoutPerformance) []models.MuscleGroupVolume {
	type totals struct {
		sets    int
		reps    int
		tonnage float64
	}
	byGroup := make(map[string]*totals)
	for _, g := range t.kb.MuscleGroups() {
		byGroup[g] = &totals{}
	}

	for _, w := range workouts {
		for _, p := range w.Exercises {
			sets := p.Sets
			if sets < 1 {
				sets = 1
			}
			for _, muscle := range t.kb.MusclesForExercise(p.ExerciseName) {
				agg, ok := byGroup[muscle]
				if !ok {
					// Muscle outside the configured group list; keep
					// it rather than losing logged work.
					agg = &totals{}
					byGroup[muscle] = agg
				}
				agg.sets += sets
				agg.reps += sets * p.Reps
				agg.tonnage += float64(sets) * float64(p.Reps) * p.WeightKg
			}
		}
	}

	groups := t.kb.MuscleGroups()
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		seen[g] = true
	}
	var extras []string
	for g := range byGroup {
		if !seen[g] {
			extras = append(extras, g)
		}
	}
	sort.Strings(extras)
	groups = append(groups, extras...)

	out := make([]models.MuscleGroupVolume, 0, len(groups))
	for _, g := range groups {
		agg := byGroup[g]
		v := models.MuscleGroupVolume{
			MuscleGroup: g,
			Sets:        agg.sets,
			Unit:        string(t.metric),
			Status:      t.classify(g, agg.sets),
		}
		switch t.metric {
		case MetricReps:
			v.Volume = float64(agg.reps)
		case MetricTonnage:
			v.Volume = agg.tonnage
		default:
			v.Volume = float64(agg.sets)
		}
		out = append(out, v)
	}
	return out
}

// classify is a pure function of the weekly set total and the group's
// landmark bands.
func (t *Tracker) classify(muscle string, weeklySets int) models.VolumeStatus {
	lm := t.kb.GroupLandmarks(muscle)
	switch {
	case weeklySets < lm.MinWeeklySets:
		return models.VolumeUnderMinimum
	case weeklySets <= lm.OptimalWeeklySets:
		return models.VolumeOptimal
	case weeklySets <= lm.MaxWeeklySets:
		return models.VolumeNearMaximum
	default:
		return models.VolumeExcessive
	}
}
