package adapt

import "github.com/claude/repcoach/internal/models"

// Reason is the sealed set of primary adaptation triggers. Exactly one
// variant applies per request; each carries only the fields relevant to
// it, so contradictory optional fields can't be expressed. Injury
// substitution is not a Reason: it rides on Request.Injuries and is
// always applied last.
type Reason interface {
	reason() string
}

// MissedMuscles compensates for muscle groups the week's training
// skipped. AvailableTimeMin > 0 caps additions once the session
// estimate reaches the budget.
type MissedMuscles struct {
	Muscles          []string
	AvailableTimeMin int
}

// Recovery reduces volume when the lifter reports fatigue (1-10).
type Recovery struct {
	FatigueLevel int
}

// TimeConstraint trims the session to fit the available minutes.
type TimeConstraint struct {
	AvailableTimeMin int
}

func (MissedMuscles) reason() string  { return "missed_muscles" }
func (Recovery) reason() string       { return "recovery" }
func (TimeConstraint) reason() string { return "time_constraint" }

// Request is one adaptation call: the workout to transform, an optional
// primary reason, and any reported injuries. At least one of Reason or
// Injuries must be present.
type Request struct {
	Exercises []models.PlannedExercise
	Reason    Reason
	Injuries  []string
}
