package engine

import (
	"context"
	"time"

	"finsight-server/src/models"
)

// ProfileReader supplies the persisted account/transaction snapshot that
// profile detection runs over. The engine never writes through it.
type ProfileReader interface {
	ActiveAccounts(ctx context.Context, userID int64) ([]models.Account, error)
	TransactionsInRange(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error)
}

// GoalStore resolves eligible goals and applies allocation decisions.
// ApplyAllocation must insert the record and increment the goal's
// current_amount together: both succeed or neither does.
// ApplyAllocationBatch does the same for all records in one transaction.
type GoalStore interface {
	ActiveGoalsByIDs(ctx context.Context, userID int64, goalIDs []int64) ([]models.Goal, error)
	ApplyAllocation(ctx context.Context, record *models.AllocationRecord) error
	ApplyAllocationBatch(ctx context.Context, records []*models.AllocationRecord) error
}

// BudgetWriter persists suggested budget lines, upserted by (user, category).
type BudgetWriter interface {
	UpsertBudgetCategory(ctx context.Context, userID int64, category string, amount float64) (*models.BudgetCategory, error)
}
