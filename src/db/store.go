package db

import (
	"context"
	"time"

	sql "finsight-server/src/db/sql"
	"finsight-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store adapts the pool-backed query functions to the narrow interfaces the
// engine packages depend on, so the engine can be exercised against
// in-memory fakes in tests.
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) ActiveAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	return sql.GetActiveAccounts(ctx, s.Pool, userID)
}

func (s *Store) TransactionsInRange(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error) {
	return sql.GetTransactionsInRange(ctx, s.Pool, userID, from, to)
}

func (s *Store) ActiveGoalsByIDs(ctx context.Context, userID int64, goalIDs []int64) ([]models.Goal, error) {
	return sql.GetActiveGoalsByIDs(ctx, s.Pool, userID, goalIDs)
}

func (s *Store) ApplyAllocation(ctx context.Context, record *models.AllocationRecord) error {
	return sql.ApplyAllocation(ctx, s.Pool, record)
}

func (s *Store) ApplyAllocationBatch(ctx context.Context, records []*models.AllocationRecord) error {
	return sql.ApplyAllocationBatch(ctx, s.Pool, records)
}

func (s *Store) UpsertBudgetCategory(ctx context.Context, userID int64, category string, amount float64) (*models.BudgetCategory, error) {
	return sql.UpsertBudgetCategory(ctx, s.Pool, userID, category, amount)
}
