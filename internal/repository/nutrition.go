package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/google/uuid"
)

const nutritionColumns = `id, user_id, food_name, serving_size,
	calories, protein, carbs, fat, fiber, sugar, sodium, meal_type, date`

// CreateNutritionEntry appends one nutrition entry. ID is assigned when empty.
func (r *Repository) CreateNutritionEntry(ctx context.Context, e *models.NutritionEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query := `
		INSERT INTO fitgrow.nutrition_entries (` + nutritionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.FoodName, nullString(e.ServingSize),
		e.Calories, e.Protein, e.Carbs, e.Fat, e.Fiber, e.Sugar, e.Sodium,
		string(e.MealType), e.Date)
	if err != nil {
		return fmt.Errorf("failed to create nutrition entry: %w", err)
	}
	return nil
}

// ListNutritionEntries returns a user's entries newest first
func (r *Repository) ListNutritionEntries(ctx context.Context, userID string, f models.NutritionFilter) ([]models.NutritionEntry, error) {
	query := `SELECT ` + nutritionColumns + ` FROM fitgrow.nutrition_entries WHERE user_id = $1`
	args := []interface{}{userID}
	if f.Start != nil && f.End != nil {
		args = append(args, *f.Start, *f.End)
		query += fmt.Sprintf(" AND date >= $%d AND date <= $%d", len(args)-1, len(args))
	}
	query += " ORDER BY date DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return r.queryNutrition(ctx, query, args...)
}

// NutritionEntriesBetween returns a user's entries with from <= date <= to
func (r *Repository) NutritionEntriesBetween(ctx context.Context, userID string, from, to time.Time) ([]models.NutritionEntry, error) {
	query := `SELECT ` + nutritionColumns + ` FROM fitgrow.nutrition_entries
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC`
	return r.queryNutrition(ctx, query, userID, from, to)
}

func (r *Repository) queryNutrition(ctx context.Context, query string, args ...interface{}) ([]models.NutritionEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nutrition entries: %w", err)
	}
	defer rows.Close()

	entries := []models.NutritionEntry{}
	for rows.Next() {
		var (
			e           models.NutritionEntry
			servingSize sql.NullString
		)
		err := rows.Scan(&e.ID, &e.UserID, &e.FoodName, &servingSize,
			&e.Calories, &e.Protein, &e.Carbs, &e.Fat, &e.Fiber, &e.Sugar, &e.Sodium,
			&e.MealType, &e.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nutrition entry: %w", err)
		}
		e.ServingSize = servingSize.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query nutrition entries: %w", err)
	}
	return entries, nil
}
