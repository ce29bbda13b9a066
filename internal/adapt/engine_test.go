package adapt

import (
	"errors"
	"strings"
	"testing"

	"github.com/claude/repcoach/internal/config"
	"github.com/claude/repcoach/internal/knowledge"
	"github.com/claude/repcoach/internal/models"
)

func testKB() knowledge.Base {
	return knowledge.New(
		map[string]knowledge.Landmarks{
			"chest": {MinWeeklySets: 10, OptimalWeeklySets: 16, MaxWeeklySets: 22},
			"back":  {MinWeeklySets: 10, OptimalWeeklySets: 18, MaxWeeklySets: 25},
		},
		[]knowledge.Exercise{
			{Name: "Bench Press", Equipment: "barbell", Muscles: []string{"chest"}, Priority: 10,
				Contraindications: map[string]string{"shoulder": "Floor Press"}},
			{Name: "Barbell Squat", Equipment: "barbell", Muscles: []string{"quads"}, Priority: 10,
				Contraindications: map[string]string{"knee": "Leg Press", "hip": "Leg Press"}},
			{Name: "Deadlift", Equipment: "barbell", Muscles: []string{"back"}, Priority: 10,
				Contraindications: map[string]string{"lower_back": ""}},
			{Name: "Barbell Row", Equipment: "barbell", Muscles: []string{"back"}, Priority: 8},
			{Name: "Floor Press", Equipment: "barbell", Muscles: []string{"chest"}, Priority: 6,
				Contraindications: map[string]string{"wrist": ""}},
			{Name: "Leg Press", Equipment: "machine", Muscles: []string{"quads"}, Priority: 7,
				Contraindications: map[string]string{"knee": "", "hip": "Leg Curl"}},
			{Name: "Leg Curl", Equipment: "machine", Muscles: []string{"hamstrings"}, Priority: 5},
			{Name: "Dumbbell Curl", Equipment: "dumbbell", Muscles: []string{"biceps"}, Priority: 3},
		},
		map[string]float64{"barbell": 2.5, "dumbbell": 2.0, "machine": 5.0},
	)
}

func testEngine() *Engine {
	return NewEngine(testKB(), config.AdaptationConfig{})
}

func planned(name string, sets, reps, restSec int) models.PlannedExercise {
	return models.PlannedExercise{Name: name, Sets: sets, Reps: reps, RestSeconds: restSec}
}

func TestEstimateDurationMin(t *testing.T) {
	exercises := []models.PlannedExercise{
		planned("Bench Press", 3, 8, 90),
		planned("Barbell Squat", 4, 8, 120),
		planned("Barbell Row", 3, 10, 90),
	}
	// 5 warmup + 3*2.5 + 4*3 + 3*2.5 = 32.
	if got := EstimateDurationMin(exercises); got != 32 {
		t.Fatalf("estimate = %.1f, want 32.0", got)
	}
	if got := EstimateDurationMin(nil); got != 5 {
		t.Fatalf("empty session estimate = %.1f, want the 5 minute warmup baseline", got)
	}
}

func TestApplyRequiresReasonOrInjuries(t *testing.T) {
	e := testEngine()
	_, err := e.Apply(Request{Exercises: []models.PlannedExercise{planned("Bench Press", 3, 8, 90)}})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestForMissedMuscles(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{planned("Bench Press", 3, 8, 90)}

	out, changes := e.ForMissedMuscles(base, []string{"biceps"}, 0)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	added := out[1]
	if added.Name != "Dumbbell Curl" || !added.Added {
		t.Errorf("added = %+v, want Dumbbell Curl with Added=true", added)
	}
	if added.Sets != 3 || added.Reps != 12 || added.RestSeconds != 90 {
		t.Errorf("prescription = %dx%d/%ds, want 3x12/90s", added.Sets, added.Reps, added.RestSeconds)
	}
	if len(changes) != 1 || !strings.Contains(changes[0], "biceps") {
		t.Errorf("changes = %v, want one entry naming biceps", changes)
	}
}

// TestForMissedMusclesSkipsDuplicates verifies the highest-priority
// candidate already in the plan is not re-added; the next candidate is.
func TestForMissedMusclesSkipsDuplicates(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{planned("deadlift", 3, 5, 180)} // lowercase on purpose

	out, _ := e.ForMissedMuscles(base, []string{"back"}, 0)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[1].Name != "Barbell Row" {
		t.Errorf("added %s, want Barbell Row (Deadlift already planned)", out[1].Name)
	}
}

func TestForMissedMusclesUnknownGroup(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{planned("Bench Press", 3, 8, 90)}

	out, changes := e.ForMissedMuscles(base, []string{"forearms"}, 0)
	if len(out) != 1 || len(changes) != 0 {
		t.Errorf("unknown muscle group must be skipped, got %d exercises and changes %v", len(out), changes)
	}
}

// TestForMissedMusclesTimeBudget verifies additions stop once the
// session estimate reaches the available time.
func TestForMissedMusclesTimeBudget(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{planned("Bench Press", 3, 8, 90)} // 12.5 min

	out, _ := e.ForMissedMuscles(base, []string{"biceps", "back"}, 15)
	// One addition brings the estimate to 20, past the 15 minute budget;
	// the second muscle group must not be compensated.
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2 (budget reached after one addition)", len(out))
	}
}

func TestForRecovery(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{
		planned("Bench Press", 4, 8, 90),
		planned("Barbell Row", 3, 10, 90),
	}

	tests := []struct {
		name     string
		fatigue  int
		wantSets []int
	}{
		{"high fatigue scales by 0.6", 8, []int{2, 2}},
		{"moderate fatigue scales by 0.8", 6, []int{3, 2}},
		{"low fatigue leaves the plan alone", 5, []int{4, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := e.ForRecovery(base, tt.fatigue)
			for i, want := range tt.wantSets {
				if out[i].Sets != want {
					t.Errorf("%s: sets = %d, want %d", out[i].Name, out[i].Sets, want)
				}
			}
		})
	}
}

func TestForRecoveryNeverIncreases(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{planned("Dumbbell Curl", 1, 12, 60)}

	out, changes := e.ForRecovery(base, 9)
	if out[0].Sets != 1 {
		t.Errorf("sets = %d, want 1 (floor must not raise a count)", out[0].Sets)
	}
	if len(changes) != 0 {
		t.Errorf("changes = %v, want none", changes)
	}
}

// TestForTime replays the crunch scenario: a 32 minute plan against a
// 20 minute budget drops the lowest-priority exercise, then takes one
// set off each survivor.
func TestForTime(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{
		planned("Bench Press", 3, 8, 90),
		planned("Barbell Squat", 4, 8, 120),
		planned("Barbell Row", 3, 10, 90),
	}

	out, changes := e.ForTime(base, 20)

	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	for _, ex := range out {
		if ex.Name == "Barbell Row" {
			t.Fatalf("Barbell Row should have been removed (lowest priority)")
		}
	}
	if out[0].Sets != 2 || out[1].Sets != 3 {
		t.Errorf("sets = [%d, %d], want [2, 3] after the set trim", out[0].Sets, out[1].Sets)
	}
	if got := EstimateDurationMin(out); got > 20 {
		t.Errorf("estimate = %.1f, want <= 20", got)
	}

	var removedRow bool
	for _, c := range changes {
		if strings.Contains(c, "Barbell Row") {
			removedRow = true
		}
	}
	if !removedRow {
		t.Errorf("changes = %v, want an entry naming Barbell Row", changes)
	}
}

func TestForTimeKeepsExerciseFloor(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{
		planned("Bench Press", 2, 8, 90),
		planned("Barbell Squat", 2, 8, 120),
	}

	// 5 + 2*2.5 + 2*3 = 16 against an impossible budget. At the
	// exercise floor and the set floor nothing more can come off.
	out, _ := e.ForTime(base, 5)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2 (exercise floor)", len(out))
	}
	if out[0].Sets != 2 || out[1].Sets != 2 {
		t.Errorf("sets = [%d, %d], want [2, 2] (set floor)", out[0].Sets, out[1].Sets)
	}
}

func TestForTimeDurationNeverIncreases(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{
		planned("Bench Press", 3, 8, 90),
		planned("Barbell Squat", 4, 8, 120),
		planned("Barbell Row", 3, 10, 90),
	}
	before := EstimateDurationMin(base)

	for _, budget := range []int{5, 15, 20, 25, 30, 45} {
		out, _ := e.ForTime(base, budget)
		if after := EstimateDurationMin(out); after > before {
			t.Errorf("budget %d: estimate grew from %.1f to %.1f", budget, before, after)
		}
	}
}

func TestForInjuries(t *testing.T) {
	e := testEngine()

	t.Run("substitute in place", func(t *testing.T) {
		base := []models.PlannedExercise{
			planned("Bench Press", 3, 8, 90),
			planned("Barbell Row", 3, 10, 90),
		}
		out, changes := e.ForInjuries(base, []string{"shoulder"})
		if len(out) != 2 {
			t.Fatalf("len = %d, want 2", len(out))
		}
		sub := out[0]
		if sub.Name != "Floor Press" || !sub.Substituted || sub.ReplacedName != "Bench Press" {
			t.Errorf("substitution = %+v, want Floor Press replacing Bench Press", sub)
		}
		if sub.Sets != 3 || sub.Reps != 8 || sub.RestSeconds != 90 {
			t.Errorf("prescription changed: %dx%d/%ds, want the original 3x8/90s", sub.Sets, sub.Reps, sub.RestSeconds)
		}
		if len(changes) != 1 {
			t.Errorf("changes = %v, want exactly one", changes)
		}
	})

	t.Run("drop without substitute", func(t *testing.T) {
		base := []models.PlannedExercise{
			planned("Deadlift", 3, 5, 180),
			planned("Barbell Row", 3, 10, 90),
		}
		out, changes := e.ForInjuries(base, []string{"lower_back"})
		if len(out) != 1 || out[0].Name != "Barbell Row" {
			t.Fatalf("out = %+v, want Deadlift dropped", out)
		}
		if len(changes) != 1 || !strings.Contains(changes[0], "Deadlift") {
			t.Errorf("changes = %v, want an entry naming Deadlift", changes)
		}
	})

	t.Run("substitutes face later injuries", func(t *testing.T) {
		base := []models.PlannedExercise{planned("Bench Press", 3, 8, 90)}
		// shoulder swaps in Floor Press; wrist then removes it.
		out, changes := e.ForInjuries(base, []string{"shoulder", "wrist"})
		if len(out) != 0 {
			t.Fatalf("out = %+v, want empty", out)
		}
		if len(changes) != 2 {
			t.Errorf("changes = %v, want two entries", changes)
		}
	})

	t.Run("unaffected plan untouched", func(t *testing.T) {
		base := []models.PlannedExercise{planned("Barbell Row", 3, 10, 90)}
		out, changes := e.ForInjuries(base, []string{"shoulder"})
		if len(out) != 1 || len(changes) != 0 {
			t.Errorf("out = %+v changes = %v, want no modifications", out, changes)
		}
	})
}

// TestForInjuriesSubstituteSafety verifies a substitute that is itself
// contraindicated for the same injury is never emitted: the chain is
// followed to a safe exercise, or the entry is dropped.
func TestForInjuriesSubstituteSafety(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{planned("Barbell Squat", 4, 8, 120)}

	t.Run("chain dead-ends, exercise dropped", func(t *testing.T) {
		// knee: Squat's substitute is Leg Press, which is also
		// knee-contraindicated with no substitute of its own.
		out, changes := e.ForInjuries(base, []string{"knee"})
		if len(out) != 0 {
			t.Fatalf("out = %+v, want empty (unsafe substitute must not survive)", out)
		}
		if len(changes) != 1 || !strings.Contains(changes[0], "Barbell Squat") {
			t.Errorf("changes = %v, want one entry naming Barbell Squat", changes)
		}
	})

	t.Run("chain resolves to a safe exercise", func(t *testing.T) {
		// hip: Squat -> Leg Press (also hip-contraindicated) -> Leg Curl.
		out, _ := e.ForInjuries(base, []string{"hip"})
		if len(out) != 1 {
			t.Fatalf("len = %d, want 1", len(out))
		}
		sub := out[0]
		if sub.Name != "Leg Curl" || !sub.Substituted || sub.ReplacedName != "Barbell Squat" {
			t.Errorf("substitution = %+v, want Leg Curl replacing Barbell Squat", sub)
		}
	})
}

// TestForInjuriesEmbeddedCatalog runs a knee injury over the shipped
// catalog and asserts nothing contraindicated for it survives.
func TestForInjuriesEmbeddedCatalog(t *testing.T) {
	kb, err := knowledge.Default()
	if err != nil {
		t.Fatalf("loading embedded catalog: %v", err)
	}
	e := NewEngine(kb, config.AdaptationConfig{})
	base := []models.PlannedExercise{
		planned("Barbell Squat", 4, 8, 120),
		planned("Leg Press", 3, 12, 90),
		planned("Dumbbell Lunge", 3, 10, 90),
	}

	out, _ := e.ForInjuries(base, []string{"knee"})
	if len(out) == 0 {
		t.Fatalf("everything dropped; the catalog should offer knee-safe substitutes")
	}
	for _, ex := range out {
		if kb.IsContraindicated(ex.Name, "knee") {
			t.Errorf("%s is contraindicated for knee but survived", ex.Name)
		}
	}
}

// TestApplyInjuriesAfterPrimaryReason verifies injury substitution runs
// over the already-adapted list, not the original plan.
func TestApplyInjuriesAfterPrimaryReason(t *testing.T) {
	e := testEngine()
	req := Request{
		Exercises: []models.PlannedExercise{planned("Barbell Row", 3, 10, 90)},
		Reason:    MissedMuscles{Muscles: []string{"chest"}},
		Injuries:  []string{"shoulder"},
	}

	got, err := e.Apply(req)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	// Missed-muscle compensation adds Bench Press; the shoulder injury
	// must then swap it for Floor Press.
	var names []string
	for _, ex := range got.Exercises {
		names = append(names, ex.Name)
	}
	if len(got.Exercises) != 2 || got.Exercises[1].Name != "Floor Press" {
		t.Fatalf("exercises = %v, want [Barbell Row, Floor Press]", names)
	}
	if !strings.Contains(got.Reasoning, "injury") {
		t.Errorf("reasoning %q should mention the injury precaution", got.Reasoning)
	}
	if got.EstimatedDurationMin != EstimateDurationMin(got.Exercises) {
		t.Errorf("estimate = %.1f, want %.1f", got.EstimatedDurationMin, EstimateDurationMin(got.Exercises))
	}
}

func TestApplyNoChangesRequired(t *testing.T) {
	e := testEngine()
	got, err := e.Apply(Request{
		Exercises: []models.PlannedExercise{planned("Barbell Row", 3, 10, 90)},
		Reason:    Recovery{FatigueLevel: 3},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(got.Changes) != 1 || got.Changes[0] != "no changes required" {
		t.Errorf("changes = %v, want the no-op marker", got.Changes)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	e := testEngine()
	base := []models.PlannedExercise{planned("Bench Press", 4, 8, 90)}

	if _, err := e.Apply(Request{Exercises: base, Reason: Recovery{FatigueLevel: 9}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if base[0].Sets != 4 {
		t.Errorf("input mutated: sets = %d, want 4", base[0].Sets)
	}
}
