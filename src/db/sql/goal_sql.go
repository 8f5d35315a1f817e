package db

import (
	"context"
	"fmt"
	"time"

	"finsight-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateGoal(ctx context.Context, pool *pgxpool.Pool, goal *models.Goal) (*models.Goal, error) {
	query := `
		INSERT INTO goals (user_id, name, description, target_amount, current_amount, target_date, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, name, description, target_amount, current_amount, target_date, priority, active, created_at, updated_at
	`
	var g models.Goal
	err := pool.QueryRow(ctx, query, goal.UserID, goal.Name, goal.Description, goal.TargetAmount, goal.CurrentAmount, goal.TargetDate, goal.Priority).
		Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.Priority, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func GetGoalByID(ctx context.Context, pool *pgxpool.Pool, userID, goalID int64) (*models.Goal, error) {
	query := `
		SELECT id, user_id, name, description, target_amount, current_amount, target_date, priority, active, created_at, updated_at
		FROM goals WHERE id = $1 AND user_id = $2
	`
	var g models.Goal
	err := pool.QueryRow(ctx, query, goalID, userID).
		Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.Priority, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func GetAllGoalsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Goal, error) {
	query := `
		SELECT id, user_id, name, description, target_amount, current_amount, target_date, priority, active, created_at, updated_at
		FROM goals WHERE user_id = $1 AND active = TRUE
		ORDER BY created_at DESC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.Priority, &g.Active, &g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func GetActiveGoalsByIDs(ctx context.Context, pool *pgxpool.Pool, userID int64, goalIDs []int64) ([]models.Goal, error) {
	query := `
		SELECT id, user_id, name, description, target_amount, current_amount, target_date, priority, active, created_at, updated_at
		FROM goals WHERE user_id = $1 AND active = TRUE AND id = ANY($2)
	`
	rows, err := pool.Query(ctx, query, userID, goalIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.Priority, &g.Active, &g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func UpdateGoal(ctx context.Context, pool *pgxpool.Pool, goal *models.Goal) (*models.Goal, error) {
	query := `
		UPDATE goals
		SET name = $1, description = $2, target_amount = $3, target_date = $4, priority = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING id, user_id, name, description, target_amount, current_amount, target_date, priority, active, created_at, updated_at
	`
	var g models.Goal
	err := pool.QueryRow(ctx, query, goal.Name, goal.Description, goal.TargetAmount, goal.TargetDate, goal.Priority, goal.ID, goal.UserID).
		Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.Priority, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func UpdateGoalTarget(ctx context.Context, pool *pgxpool.Pool, userID, goalID int64, targetAmount float64, targetDate time.Time) error {
	query := `
		UPDATE goals
		SET target_amount = $1, target_date = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
	`
	cmd, err := pool.Exec(ctx, query, targetAmount, targetDate, goalID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("goal not found")
	}
	return nil
}

// DeactivateGoal soft-deletes: allocation history keeps referencing the row.
func DeactivateGoal(ctx context.Context, pool *pgxpool.Pool, userID, goalID int64) error {
	query := `UPDATE goals SET active = FALSE, updated_at = NOW() WHERE id = $1 AND user_id = $2`
	cmd, err := pool.Exec(ctx, query, goalID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("goal not found")
	}
	return nil
}
