package db

import (
	"context"
	"fmt"

	"finsight-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplyAllocation writes one allocation record and advances the goal's
// progress in a single transaction: no record without the matching
// increment, and vice versa.
func ApplyAllocation(ctx context.Context, pool *pgxpool.Pool, record *models.AllocationRecord) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := applyAllocationTx(ctx, tx, record); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ApplyAllocationBatch writes every record/update pair inside one
// transaction; any failure rolls the whole batch back.
func ApplyAllocationBatch(ctx context.Context, pool *pgxpool.Pool, records []*models.AllocationRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, record := range records {
		if err := applyAllocationTx(ctx, tx, record); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func applyAllocationTx(ctx context.Context, tx pgx.Tx, record *models.AllocationRecord) error {
	insert := `
		INSERT INTO allocation_records (id, user_id, goal_id, amount, calculation_method, account_snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Exec(ctx, insert,
		record.ID, record.UserID, record.GoalID, record.Amount,
		record.CalculationMethod, record.AccountSnapshot, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert allocation record for goal %d: %w", record.GoalID, err)
	}

	update := `
		UPDATE goals
		SET current_amount = current_amount + $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`
	cmd, err := tx.Exec(ctx, update, record.Amount, record.GoalID, record.UserID)
	if err != nil {
		return fmt.Errorf("advance goal %d progress: %w", record.GoalID, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("goal %d not found", record.GoalID)
	}
	return nil
}

func GetAllocationsForGoal(ctx context.Context, pool *pgxpool.Pool, userID, goalID int64) ([]models.AllocationRecord, error) {
	query := `
		SELECT id, user_id, goal_id, amount, calculation_method, account_snapshot, created_at
		FROM allocation_records
		WHERE user_id = $1 AND goal_id = $2
		ORDER BY created_at DESC
	`
	rows, err := pool.Query(ctx, query, userID, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AllocationRecord
	for rows.Next() {
		var r models.AllocationRecord
		err := rows.Scan(&r.ID, &r.UserID, &r.GoalID, &r.Amount, &r.CalculationMethod, &r.AccountSnapshot, &r.CreatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
