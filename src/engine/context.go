package engine

import (
	"context"
	"fmt"
	"time"

	"finsight-server/src/models"

	"golang.org/x/sync/errgroup"
)

// Detector assembles a FinancialContext from the persisted account and
// transaction snapshot. It is read-only and tolerant of stale or partially
// synced data: detection gaps degrade to nil/empty fields, never to errors.
type Detector struct {
	store ProfileReader
}

func NewDetector(store ProfileReader) *Detector {
	return &Detector{store: store}
}

// DetectProfile recomputes the whole profile bundle for one user as of now.
// The account and transaction reads run concurrently; the derived fields
// are then computed from that single consistent snapshot, so repeated runs
// over identical data produce identical output.
func (d *Detector) DetectProfile(ctx context.Context, userID int64, now time.Time) (*models.FinancialContext, error) {
	var (
		accounts     []models.Account
		transactions []models.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = d.store.ActiveAccounts(gctx, userID)
		if err != nil {
			return fmt.Errorf("load accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		from := now.AddDate(0, 0, -IncomeLookbackDays)
		transactions, err = d.store.TransactionsInRange(gctx, userID, from, now)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	balances := AggregateAccounts(accounts)
	income := DetectMonthlyIncome(transactions, now)
	expenses := CategorizeExpenses(transactions, now)

	return &models.FinancialContext{
		UserID:           userID,
		NetWorth:         balances.NetWorth,
		TotalAssets:      balances.TotalAssets,
		TotalLiabilities: balances.TotalLiabilities,
		MonthlyIncome:    income,
		MonthlyExpenses:  expenses,
		SuggestedBudget:  SuggestBudget(income, expenses),
		AccountBreakdown: balances.Breakdown,
		ComputedAt:       now,
	}, nil
}
