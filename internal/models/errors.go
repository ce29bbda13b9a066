package models

import "fmt"

// ValidationError reports a rejected input value. The core raises these
// synchronously and never coerces bad values.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// Validate checks a performance observation before it is recorded.
func ValidatePerformance(exerciseID string, weightKg float64, reps int) error {
	if exerciseID == "" {
		return &ValidationError{Field: "exercise_id", Msg: "must not be empty"}
	}
	if weightKg <= 0 {
		return &ValidationError{Field: "weight_kg", Msg: "must be positive"}
	}
	if reps < 1 {
		return &ValidationError{Field: "reps", Msg: "must be at least 1"}
	}
	return nil
}
