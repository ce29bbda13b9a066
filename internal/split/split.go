// Package split assigns muscle-group focus to the coming week's
// training days, prioritizing groups that are short on volume.
package split

import (
	"sort"

	"github.com/claude/repcoach/internal/models"
)

// DayPlan is one training day's assigned focus. Day is 1-based in the
// order the user trains.
type DayPlan struct {
	Day   int      `json:"day"`
	Focus []string `json:"focus"`
}

// Optimizer builds weekly splits. Stateless.
type Optimizer struct{}

func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// OptimizeWeeklySplit greedily assigns muscle groups to days. Groups
// needing the most additional volume go to the earliest days; groups at
// or above their optimal band are deprioritized but still scheduled as
// maintenance when days remain. Guarantees:
//
//   - the output has exactly availableDays entries;
//   - every day receives at least one focus (groups repeat if needed);
//   - every under-minimum group is assigned when day count permits,
//     with groups sharing days rather than being dropped.
func (o *Optimizer) OptimizeWeeklySplit(userID int, volumes []models.MuscleGroupVolume, availableDays int) []DayPlan {
	if availableDays <= 0 {
		return nil
	}

	ordered := make([]models.MuscleGroupVolume, len(volumes))
	copy(ordered, volumes)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := statusRank(ordered[i].Status), statusRank(ordered[j].Status)
		if ri != rj {
			return ri < rj
		}
		if ordered[i].Sets != ordered[j].Sets {
			return ordered[i].Sets < ordered[j].Sets
		}
		return ordered[i].MuscleGroup < ordered[j].MuscleGroup
	})

	// Excessive groups need rest, not more work; schedule them only if
	// there is nothing else to fill a day with.
	var assignable, resting []string
	for _, v := range ordered {
		if v.Status == models.VolumeExcessive {
			resting = append(resting, v.MuscleGroup)
		} else {
			assignable = append(assignable, v.MuscleGroup)
		}
	}

	plans := make([]DayPlan, availableDays)
	for d := range plans {
		plans[d].Day = d + 1
	}

	for i, g := range assignable {
		d := i % availableDays
		plans[d].Focus = append(plans[d].Focus, g)
	}

	// Fill any day left empty by cycling the neediest groups again, or
	// the resting groups when nothing else exists.
	pool := assignable
	if len(pool) == 0 {
		pool = resting
	}
	if len(pool) > 0 {
		for d := range plans {
			if len(plans[d].Focus) == 0 {
				plans[d].Focus = append(plans[d].Focus, pool[d%len(pool)])
			}
		}
	}

	return plans
}

func statusRank(s models.VolumeStatus) int {
	switch s {
	case models.VolumeUnderMinimum:
		return 0
	case models.VolumeOptimal:
		return 1
	case models.VolumeNearMaximum:
		return 2
	default:
		return 3
	}
}
