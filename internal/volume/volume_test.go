package volume

import (
	"testing"
	"time"

	"github.com/claude/repcoach/internal/knowledge"
	"github.com/claude/repcoach/internal/models"
)

func testKB() knowledge.Base {
	return knowledge.New(
		map[string]knowledge.Landmarks{
			"chest":     {MinWeeklySets: 10, OptimalWeeklySets: 16, MaxWeeklySets: 22},
			"back":      {MinWeeklySets: 10, OptimalWeeklySets: 18, MaxWeeklySets: 25},
			"shoulders": {MinWeeklySets: 8, OptimalWeeklySets: 16, MaxWeeklySets: 22},
		},
		[]knowledge.Exercise{
			{Name: "Bench Press", Equipment: "barbell", Muscles: []string{"chest", "shoulders"}, Priority: 10},
			{Name: "Barbell Row", Equipment: "barbell", Muscles: []string{"back"}, Priority: 8},
		},
		map[string]float64{"barbell": 2.5},
	)
}

func workoutOn(date time.Time, exercises ...models.ExercisePerformance) models.WorkoutPerformance {
	return models.WorkoutPerformance{UserID: 1, Date: date, DurationMin: 60, Exercises: exercises}
}

func findGroup(t *testing.T, volumes []models.MuscleGroupVolume, group string) models.MuscleGroupVolume {
	t.Helper()
	for _, v := range volumes {
		if v.MuscleGroup == group {
			return v
		}
	}
	t.Fatalf("group %q missing from output", group)
	return models.MuscleGroupVolume{}
}

// TestWeeklyVolumeEmptyWeek verifies every known group still appears,
// classified under_minimum, when no workouts were logged.
func TestWeeklyVolumeEmptyWeek(t *testing.T) {
	tr := NewTracker(testKB(), MetricSets)

	volumes := tr.WeeklyVolume(nil)
	if len(volumes) != 3 {
		t.Fatalf("len = %d, want 3 (all known groups)", len(volumes))
	}
	for _, v := range volumes {
		if v.Sets != 0 {
			t.Errorf("%s: sets = %d, want 0", v.MuscleGroup, v.Sets)
		}
		if v.Status != models.VolumeUnderMinimum {
			t.Errorf("%s: status = %s, want under_minimum", v.MuscleGroup, v.Status)
		}
	}
}

// TestWeeklyVolumeMultiMuscleCredit verifies a compound exercise gives
// full set credit to every muscle it targets.
func TestWeeklyVolumeMultiMuscleCredit(t *testing.T) {
	tr := NewTracker(testKB(), MetricSets)
	day := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	volumes := tr.WeeklyVolume([]models.WorkoutPerformance{
		workoutOn(day, models.ExercisePerformance{
			ExerciseID: "bench-press", ExerciseName: "Bench Press",
			WeightKg: 100, Reps: 8, Sets: 3,
		}),
	})

	chest := findGroup(t, volumes, "chest")
	shoulders := findGroup(t, volumes, "shoulders")
	if chest.Sets != 3 || shoulders.Sets != 3 {
		t.Errorf("sets = chest %d, shoulders %d; want 3 for both (full credit)", chest.Sets, shoulders.Sets)
	}
	if back := findGroup(t, volumes, "back"); back.Sets != 0 {
		t.Errorf("back: sets = %d, want 0", back.Sets)
	}
}

func TestWeeklyVolumeClassification(t *testing.T) {
	tests := []struct {
		name string
		sets int
		want models.VolumeStatus
	}{
		{"below minimum", 9, models.VolumeUnderMinimum},
		{"at minimum", 10, models.VolumeOptimal},
		{"at optimal", 18, models.VolumeOptimal},
		{"above optimal", 19, models.VolumeNearMaximum},
		{"at maximum", 25, models.VolumeNearMaximum},
		{"above maximum", 26, models.VolumeExcessive},
	}

	day := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(testKB(), MetricSets)
			volumes := tr.WeeklyVolume([]models.WorkoutPerformance{
				workoutOn(day, models.ExercisePerformance{
					ExerciseID: "barbell-row", ExerciseName: "Barbell Row",
					WeightKg: 80, Reps: 10, Sets: tt.sets,
				}),
			})
			if got := findGroup(t, volumes, "back").Status; got != tt.want {
				t.Errorf("%d sets: status = %s, want %s", tt.sets, got, tt.want)
			}
		})
	}
}

// TestWeeklyVolumeTonnageMetric verifies the reported metric changes
// but classification stays set-based.
func TestWeeklyVolumeTonnageMetric(t *testing.T) {
	tr := NewTracker(testKB(), MetricTonnage)
	day := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	volumes := tr.WeeklyVolume([]models.WorkoutPerformance{
		workoutOn(day, models.ExercisePerformance{
			ExerciseID: "barbell-row", ExerciseName: "Barbell Row",
			WeightKg: 80, Reps: 10, Sets: 12,
		}),
	})

	back := findGroup(t, volumes, "back")
	if back.Unit != "tonnage" {
		t.Errorf("unit = %s, want tonnage", back.Unit)
	}
	if back.Volume != 12*10*80 {
		t.Errorf("volume = %.0f, want %d", back.Volume, 12*10*80)
	}
	// 12 sets sits in back's optimal band regardless of tonnage.
	if back.Status != models.VolumeOptimal {
		t.Errorf("status = %s, want optimal", back.Status)
	}
}

func TestWeeklyVolumeOrderIndependent(t *testing.T) {
	tr := NewTracker(testKB(), MetricSets)
	day := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	a := workoutOn(day, models.ExercisePerformance{ExerciseID: "barbell-row", ExerciseName: "Barbell Row", WeightKg: 80, Reps: 10, Sets: 5})
	b := workoutOn(day.AddDate(0, 0, 2), models.ExercisePerformance{ExerciseID: "barbell-row", ExerciseName: "Barbell Row", WeightKg: 82.5, Reps: 8, Sets: 6})

	v1 := findGroup(t, tr.WeeklyVolume([]models.WorkoutPerformance{a, b}), "back")
	v2 := findGroup(t, tr.WeeklyVolume([]models.WorkoutPerformance{b, a}), "back")
	if v1.Sets != 11 || v2.Sets != 11 {
		t.Errorf("sets = %d and %d, want 11 for both orderings", v1.Sets, v2.Sets)
	}
	if v1.Status != v2.Status {
		t.Errorf("status differs by ordering: %s vs %s", v1.Status, v2.Status)
	}
}

// TestWeeklyVolumeUnknownMuscleKept verifies work logged against a
// muscle outside the configured groups is reported rather than dropped.
func TestWeeklyVolumeUnknownMuscleKept(t *testing.T) {
	kb := knowledge.New(
		map[string]knowledge.Landmarks{
			"chest": {MinWeeklySets: 10, OptimalWeeklySets: 16, MaxWeeklySets: 22},
		},
		[]knowledge.Exercise{
			{Name: "Neck Curl", Equipment: "machine", Muscles: []string{"neck"}, Priority: 1},
			{Name: "Wrist Curl", Equipment: "dumbbell", Muscles: []string{"forearms"}, Priority: 1},
		},
		nil,
	)
	tr := NewTracker(kb, MetricSets)
	day := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	volumes := tr.WeeklyVolume([]models.WorkoutPerformance{
		workoutOn(day, models.ExercisePerformance{
			ExerciseID: "neck-curl", ExerciseName: "Neck Curl",
			WeightKg: 10, Reps: 15, Sets: 3,
		}, models.ExercisePerformance{
			ExerciseID: "wrist-curl", ExerciseName: "Wrist Curl",
			WeightKg: 12, Reps: 15, Sets: 2,
		}),
	})

	neck := findGroup(t, volumes, "neck")
	if neck.Sets != 3 {
		t.Errorf("neck: sets = %d, want 3", neck.Sets)
	}

	// Known groups first, then the extras in sorted order, every run.
	var order []string
	for _, v := range volumes {
		order = append(order, v.MuscleGroup)
	}
	want := []string{"chest", "forearms", "neck"}
	if len(order) != len(want) {
		t.Fatalf("groups = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("groups = %v, want %v (deterministic ordering)", order, want)
		}
	}
}
