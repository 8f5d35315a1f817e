package db

import (
	"context"

	"finsight-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UpsertBudgetCategory writes one monthly budget line keyed by
// (user, category). Re-running with the same amount is a no-op apart from
// updated_at.
func UpsertBudgetCategory(ctx context.Context, pool *pgxpool.Pool, userID int64, category string, amount float64) (*models.BudgetCategory, error) {
	query := `
		INSERT INTO budget_categories (user_id, category, monthly_amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, category) DO UPDATE
		SET monthly_amount = EXCLUDED.monthly_amount, updated_at = NOW()
		RETURNING id, user_id, category, monthly_amount, created_at, updated_at
	`
	var b models.BudgetCategory
	err := pool.QueryRow(ctx, query, userID, category, amount).
		Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyAmount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func GetAllBudgetCategoriesForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.BudgetCategory, error) {
	query := `
		SELECT id, user_id, category, monthly_amount, created_at, updated_at
		FROM budget_categories WHERE user_id = $1
		ORDER BY category
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.BudgetCategory
	for rows.Next() {
		var b models.BudgetCategory
		err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyAmount, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, b)
	}
	return categories, rows.Err()
}
