package repository

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS fitgrow`,
	`CREATE TABLE IF NOT EXISTS fitgrow.users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		goal_calories DOUBLE PRECISION NOT NULL DEFAULT 3000,
		goal_steps DOUBLE PRECISION NOT NULL DEFAULT 10000,
		goal_water DOUBLE PRECISION NOT NULL DEFAULT 2.5,
		goal_sleep DOUBLE PRECISION NOT NULL DEFAULT 8,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS fitgrow.activities (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES fitgrow.users(id),
		type TEXT NOT NULL CHECK (type IN ('calories', 'steps', 'water', 'sleep', 'workout')),
		value DOUBLE PRECISION NOT NULL,
		workout_type TEXT,
		duration DOUBLE PRECISION,
		notes TEXT,
		date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS activities_user_date_idx ON fitgrow.activities (user_id, date DESC)`,
	`CREATE TABLE IF NOT EXISTS fitgrow.nutrition_entries (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES fitgrow.users(id),
		food_name TEXT NOT NULL,
		serving_size TEXT,
		calories DOUBLE PRECISION NOT NULL,
		protein DOUBLE PRECISION NOT NULL DEFAULT 0,
		carbs DOUBLE PRECISION NOT NULL DEFAULT 0,
		fat DOUBLE PRECISION NOT NULL DEFAULT 0,
		fiber DOUBLE PRECISION NOT NULL DEFAULT 0,
		sugar DOUBLE PRECISION NOT NULL DEFAULT 0,
		sodium DOUBLE PRECISION NOT NULL DEFAULT 0,
		meal_type TEXT NOT NULL DEFAULT 'snack' CHECK (meal_type IN ('breakfast', 'lunch', 'dinner', 'snack')),
		date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS nutrition_user_date_idx ON fitgrow.nutrition_entries (user_id, date DESC)`,
}

// Migrate creates the fitgrow schema and tables if they don't exist
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
