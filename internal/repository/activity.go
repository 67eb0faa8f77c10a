package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/google/uuid"
)

const activityColumns = `id, user_id, type, value, workout_type, duration, notes, date`

const insertActivity = `
	INSERT INTO fitgrow.activities (` + activityColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// CreateActivity appends one activity. ID is assigned when empty.
func (r *Repository) CreateActivity(ctx context.Context, a *models.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, insertActivity, activityArgs(a)...)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// CreateActivities appends a batch of activities in one transaction
func (r *Repository) CreateActivities(ctx context.Context, activities []models.Activity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertActivity)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range activities {
		a := &activities[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, activityArgs(a)...); err != nil {
			return fmt.Errorf("failed to create activity: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activities: %w", err)
	}
	return nil
}

// ListActivities returns a user's activities newest first
func (r *Repository) ListActivities(ctx context.Context, userID string, f models.ActivityFilter) ([]models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM fitgrow.activities WHERE user_id = $1`
	args := []interface{}{userID}
	if f.Start != nil && f.End != nil {
		args = append(args, *f.Start, *f.End)
		query += fmt.Sprintf(" AND date >= $%d AND date <= $%d", len(args)-1, len(args))
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	query += " ORDER BY date DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return r.queryActivities(ctx, query, args...)
}

// ActivitiesBetween returns a user's activities with from <= date <= to
func (r *Repository) ActivitiesBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM fitgrow.activities
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC`
	return r.queryActivities(ctx, query, userID, from, to)
}

func (r *Repository) queryActivities(ctx context.Context, query string, args ...interface{}) ([]models.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var (
			a           models.Activity
			workoutType sql.NullString
			duration    sql.NullFloat64
			notes       sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Value, &workoutType, &duration, &notes, &a.Date); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.WorkoutType = workoutType.String
		a.Notes = notes.String
		if duration.Valid {
			d := duration.Float64
			a.Duration = &d
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	return activities, nil
}

func activityArgs(a *models.Activity) []interface{} {
	return []interface{}{
		a.ID, a.UserID, string(a.Type), a.Value,
		nullString(a.WorkoutType), nullFloat(a.Duration), nullString(a.Notes), a.Date,
	}
}
