package importer

import (
	"strings"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// ToWorkout converts a parsed session into a workout payload. Sets of
// an exercise sharing the same weight and reps collapse into one
// performance with a set count; the highest tracked RPE of the group is
// kept, since the hardest set is what drives progression decisions.
func ToWorkout(s Session, userID int) models.WorkoutPerformance {
	w := models.WorkoutPerformance{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        s.Date,
		DurationMin: s.DurationMin,
	}

	for _, ex := range s.Exercises {
		type key struct {
			weight float64
			reps   int
		}
		grouped := make(map[key]*models.ExercisePerformance)
		var order []key
		for _, set := range ex.Sets {
			k := key{set.WeightKg, set.Reps}
			p, ok := grouped[k]
			if !ok {
				p = &models.ExercisePerformance{
					ExerciseID:   Slug(ex.Name),
					ExerciseName: ex.Name,
					UserID:       userID,
					WeightKg:     set.WeightKg,
					Reps:         set.Reps,
					PerformedAt:  s.Date,
				}
				grouped[k] = p
				order = append(order, k)
			}
			p.Sets++
			if set.RPE != nil && (p.RPE == nil || *set.RPE > *p.RPE) {
				rpe := *set.RPE
				p.RPE = &rpe
			}
		}
		for _, k := range order {
			w.Exercises = append(w.Exercises, *grouped[k])
		}
	}
	return w
}

// Slug derives a stable exercise identifier from its display name.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	return s
}
