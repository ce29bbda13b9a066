package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// InsertWorkout inserts a completed workout and its performances in one
// transaction. Returns true if inserted, false when the workout ID
// already exists.
func (db *DB) InsertWorkout(ctx context.Context, w models.WorkoutPerformance) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO workouts (id, user_id, workout_date, duration_min)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT DO NOTHING`,
		w.ID, w.UserID, w.Date, w.DurationMin)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for _, p := range w.Exercises {
		sets := p.Sets
		if sets < 1 {
			sets = 1
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO exercise_performances
			 (workout_id, user_id, exercise_id, exercise_name, weight_kg, reps, sets, rpe, performed_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			w.ID, w.UserID, p.ExerciseID, p.ExerciseName, p.WeightKg, p.Reps, sets, p.RPE, p.PerformedAt)
		if err != nil {
			return false, fmt.Errorf("inserting performance for %s: %w", p.ExerciseName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing workout: %w", err)
	}
	return true, nil
}

// QueryWorkouts returns a user's workouts within [start, end), oldest
// first, each with its performances loaded.
func (db *DB) QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutPerformance, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, workout_date, duration_min
		 FROM workouts
		 WHERE user_id = $1 AND workout_date >= $2 AND workout_date < $3
		 ORDER BY workout_date ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var workouts []models.WorkoutPerformance
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var w models.WorkoutPerformance
		if err := rows.Scan(&w.ID, &w.UserID, &w.Date, &w.DurationMin); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		index[w.ID] = len(workouts)
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, nil
	}

	perfRows, err := db.Pool.Query(ctx,
		`SELECT workout_id, user_id, exercise_id, exercise_name, weight_kg, reps, sets, rpe, performed_at
		 FROM exercise_performances
		 WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3
		 ORDER BY performed_at ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying performances: %w", err)
	}
	defer perfRows.Close()

	for perfRows.Next() {
		var workoutID uuid.UUID
		var p models.ExercisePerformance
		if err := perfRows.Scan(&workoutID, &p.UserID, &p.ExerciseID, &p.ExerciseName,
			&p.WeightKg, &p.Reps, &p.Sets, &p.RPE, &p.PerformedAt); err != nil {
			return nil, fmt.Errorf("scanning performance: %w", err)
		}
		if i, ok := index[workoutID]; ok {
			workouts[i].Exercises = append(workouts[i].Exercises, p)
		}
	}
	if err := perfRows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}

// QueryPerformances returns a user's logged performances for one
// exercise, most recent first. A limit <= 0 returns everything.
func (db *DB) QueryPerformances(ctx context.Context, userID int, exerciseID string, limit int) ([]models.ExercisePerformance, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, exercise_id, exercise_name, weight_kg, reps, sets, rpe, performed_at
		 FROM exercise_performances
		 WHERE user_id = $1 AND exercise_id = $2
		 ORDER BY performed_at DESC`+limitClause(limit),
		userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying performances: %w", err)
	}
	defer rows.Close()

	var out []models.ExercisePerformance
	for rows.Next() {
		var p models.ExercisePerformance
		if err := rows.Scan(&p.UserID, &p.ExerciseID, &p.ExerciseName,
			&p.WeightKg, &p.Reps, &p.Sets, &p.RPE, &p.PerformedAt); err != nil {
			return nil, fmt.Errorf("scanning performance: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
