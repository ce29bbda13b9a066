package progression

import (
	"errors"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
)

func fptr(v float64) *float64 { return &v }

// TestEstimateOneRMMonotonic verifies the Epley estimate never decreases
// as weight increases (reps fixed) or as reps increase (weight fixed).
func TestEstimateOneRMMonotonic(t *testing.T) {
	prev := 0.0
	for w := 20.0; w <= 200; w += 2.5 {
		e := EstimateOneRM(w, 5)
		if e < prev {
			t.Fatalf("estimate decreased at weight %.1f: %.2f < %.2f", w, e, prev)
		}
		prev = e
	}

	prev = 0.0
	for reps := 1; reps <= 12; reps++ {
		e := EstimateOneRM(100, reps)
		if e < prev {
			t.Fatalf("estimate decreased at %d reps: %.2f < %.2f", reps, e, prev)
		}
		prev = e
	}
}

func TestRecordValidation(t *testing.T) {
	tr := NewTracker(12)
	tests := []struct {
		name       string
		exerciseID string
		weight     float64
		reps       int
	}{
		{"empty exercise id", "", 100, 5},
		{"zero weight", "bench-press", 0, 5},
		{"negative weight", "bench-press", -10, 5},
		{"zero reps", "bench-press", 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Record(1, tt.exerciseID, "Bench Press", tt.weight, tt.reps, nil, nil, time.Now())
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

// TestRecordPRProgression replays the bench press scenario: 100x5 is a
// PR, 102.5x5 beats it, and a repeat of 102.5x5 ties and must not be a
// PR.
func TestRecordPRProgression(t *testing.T) {
	tr := NewTracker(12)
	var history []models.StrengthRecord

	first, err := tr.Record(1, "bench-press", "Bench Press", 100, 5, nil, history, time.Now())
	if err != nil {
		t.Fatalf("record 1: %v", err)
	}
	if !first.IsPR {
		t.Errorf("first record: is_pr = false, want true")
	}
	history = append(history, first)

	second, err := tr.Record(1, "bench-press", "Bench Press", 102.5, 5, nil, history, time.Now())
	if err != nil {
		t.Fatalf("record 2: %v", err)
	}
	if !second.IsPR {
		t.Errorf("heavier record: is_pr = false, want true")
	}
	history = append(history, second)

	third, err := tr.Record(1, "bench-press", "Bench Press", 102.5, 5, nil, history, time.Now())
	if err != nil {
		t.Fatalf("record 3: %v", err)
	}
	if third.IsPR {
		t.Errorf("tied record: is_pr = true, want false (ties are not PRs)")
	}
}

// TestRecordHighRepFallback verifies that sets above the rep ceiling
// compare raw weight instead of the inflated Epley estimate.
func TestRecordHighRepFallback(t *testing.T) {
	tr := NewTracker(12)
	history := []models.StrengthRecord{{
		WeightKg: 100, Reps: 5, Estimated1RM: EstimateOneRM(100, 5), RecordedAt: time.Now(),
	}}

	// 90kg x 15 estimates 135kg, above the prior best of ~116.7, but
	// must not count: the weight is lighter than the prior 100kg.
	rec, err := tr.Record(1, "bench-press", "Bench Press", 90, 15, nil, history, time.Now())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.IsPR {
		t.Errorf("high-rep lighter set: is_pr = true, want false")
	}

	// A heavier high-rep set does qualify on raw weight.
	rec, err = tr.Record(1, "bench-press", "Bench Press", 105, 15, nil, history, time.Now())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !rec.IsPR {
		t.Errorf("high-rep heavier set: is_pr = false, want true")
	}
}

func TestBestOneRM(t *testing.T) {
	tr := NewTracker(12)

	if _, ok := tr.BestOneRM(nil); ok {
		t.Fatalf("empty history: ok = true, want false")
	}

	history := []models.StrengthRecord{
		{Reps: 5, Estimated1RM: 116.7},
		{Reps: 3, Estimated1RM: 121.0},
		{Reps: 15, Estimated1RM: 135.0}, // above ceiling, excluded
	}
	best, ok := tr.BestOneRM(history)
	if !ok {
		t.Fatalf("ok = false, want true")
	}
	if best != 121.0 {
		t.Errorf("best = %.1f, want 121.0 (high-rep estimate must be excluded)", best)
	}
}

func TestHistoryOrderAndLimit(t *testing.T) {
	tr := NewTracker(12)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []models.StrengthRecord{
		{WeightKg: 100, RecordedAt: base},
		{WeightKg: 110, RecordedAt: base.AddDate(0, 0, 14)},
		{WeightKg: 105, RecordedAt: base.AddDate(0, 0, 7)},
	}

	got := tr.History(records, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].WeightKg != 110 || got[1].WeightKg != 105 {
		t.Errorf("order = [%.0f, %.0f], want [110, 105] (most recent first)", got[0].WeightKg, got[1].WeightKg)
	}
	if len(records) != 3 {
		t.Errorf("input was modified")
	}
}
