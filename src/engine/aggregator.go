package engine

import (
	"math"

	"finsight-server/src/models"
)

// BalanceSummary is the account-level half of a financial profile.
type BalanceSummary struct {
	NetWorth         float64
	TotalAssets      float64
	TotalLiabilities float64
	// Breakdown holds summed balances per account type, liabilities as
	// magnitude owed.
	Breakdown map[string]float64
}

// AggregateAccounts partitions active accounts into asset and liability
// buckets and computes net worth. Pure; zero accounts yield zero totals.
//
// Depository and investment accounts contribute to assets, credit and loan
// accounts (mortgages included) to liabilities as absolute magnitude. An
// unrecognized account type falls to the asset bucket when its balance is
// non-negative, otherwise to liabilities.
func AggregateAccounts(accounts []models.Account) BalanceSummary {
	summary := BalanceSummary{Breakdown: make(map[string]float64)}

	for _, account := range accounts {
		if !account.Active {
			continue
		}
		if isLiabilityAccount(account) {
			owed := math.Abs(account.CurrentBalance)
			summary.TotalLiabilities += owed
			summary.Breakdown[account.Type] += owed
		} else {
			summary.TotalAssets += account.CurrentBalance
			summary.Breakdown[account.Type] += account.CurrentBalance
		}
	}

	summary.NetWorth = summary.TotalAssets - summary.TotalLiabilities
	return summary
}

func isLiabilityAccount(account models.Account) bool {
	switch account.Type {
	case models.AccountTypeCredit, models.AccountTypeLoan:
		return true
	case models.AccountTypeDepository, models.AccountTypeInvestment:
		return false
	}
	if account.Subtype == "mortgage" {
		return true
	}
	return account.CurrentBalance < 0
}
