package storage

import (
	"context"
	"fmt"

	"github.com/claude/repcoach/internal/models"
)

// InsertStrengthRecord appends a derived strength record to the user's
// history. Records are never updated after insertion.
func (db *DB) InsertStrengthRecord(ctx context.Context, rec models.StrengthRecord) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO strength_records
		 (id, user_id, exercise_id, exercise_name, weight_kg, reps, rpe, estimated_1rm, is_pr, recorded_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT DO NOTHING`,
		rec.ID, rec.UserID, rec.ExerciseID, rec.ExerciseName,
		rec.WeightKg, rec.Reps, rec.RPE, rec.Estimated1RM, rec.IsPR, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("inserting strength record: %w", err)
	}
	return nil
}

// QueryStrengthRecords returns a user's strength history for one
// exercise, most recent first. A limit <= 0 returns the full history;
// PR detection depends on seeing every prior record, so this path must
// never be silently capped.
func (db *DB) QueryStrengthRecords(ctx context.Context, userID int, exerciseID string, limit int) ([]models.StrengthRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, exercise_id, exercise_name, weight_kg, reps, rpe, estimated_1rm, is_pr, recorded_at
		 FROM strength_records
		 WHERE user_id = $1 AND exercise_id = $2
		 ORDER BY recorded_at DESC`+limitClause(limit),
		userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying strength records: %w", err)
	}
	defer rows.Close()

	var out []models.StrengthRecord
	for rows.Next() {
		var r models.StrengthRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.ExerciseID, &r.ExerciseName,
			&r.WeightKg, &r.Reps, &r.RPE, &r.Estimated1RM, &r.IsPR, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning strength record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
