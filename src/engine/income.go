package engine

import (
	"math"
	"sort"
	"strings"
	"time"

	"finsight-server/src/models"
)

// Income detection tunables. Kept as named tables so the heuristics are
// independently testable (see income_test.go).
const (
	// IncomeLookbackDays is the rolling window income detection reads.
	IncomeLookbackDays = 60

	// minIncomeDeposit is the smallest deposit magnitude treated as a
	// potential paycheck.
	minIncomeDeposit = 500.0

	// fallbackDepositFloor gates the largest-deposits fallback path.
	fallbackDepositFloor = 1000.0

	// biweeklyFactor converts one bi-weekly paycheck to a monthly figure
	// (26 pay periods / 12 months).
	biweeklyFactor = 2.17

	// clusterBucketSize groups deposits by amount rounded to the nearest
	// bucket so recurring paychecks with small variations cluster together.
	clusterBucketSize = 100.0
)

// incomeVocabulary is matched case-insensitively against a transaction's
// category label and name to spot payroll-like deposits.
var incomeVocabulary = []string{
	"payroll",
	"direct deposit",
	"direct dep",
	"salary",
	"paycheck",
	"wages",
	"employer",
	"deposit",
	"transfer",
}

// DetectMonthlyIncome estimates recurring monthly income from the user's
// transactions, or returns nil when no confident signal exists. The estimate
// is deterministic: identical transaction sets and the same reference time
// always produce the same result.
//
// Three methods run in fixed precedence: semantic vocabulary matching wins
// over amount clustering, except that a single semantic match defers to the
// clustering result when one exists; the largest-deposits fallback only
// applies when both come up empty.
func DetectMonthlyIncome(transactions []models.Transaction, now time.Time) *float64 {
	deposits := incomeDeposits(transactions, now)
	if len(deposits) == 0 {
		return nil
	}

	cluster := clusterEstimate(deposits)
	semantic := semanticMatches(deposits)

	var estimate float64
	switch {
	case len(semantic) >= 4:
		sum := 0.0
		for _, d := range semantic[:4] {
			sum += d
		}
		estimate = sum / 4 * biweeklyFactor
	case len(semantic) >= 2:
		estimate = semantic[0] + semantic[1]
	case len(semantic) == 1:
		if cluster != nil {
			estimate = *cluster
		} else {
			estimate = semantic[0]
		}
	case cluster != nil:
		estimate = *cluster
	default:
		fallback := fallbackEstimate(deposits)
		if fallback == nil {
			return nil
		}
		estimate = *fallback
	}

	rounded := math.Round(estimate)
	return &rounded
}

// incomeDeposits returns deposit magnitudes above the paycheck threshold
// within the lookback window, most recent first. Equal dates order by larger
// magnitude so the result does not depend on input order.
func incomeDeposits(transactions []models.Transaction, now time.Time) []models.Transaction {
	cutoff := now.AddDate(0, 0, -IncomeLookbackDays)

	var deposits []models.Transaction
	for _, txn := range transactions {
		if txn.Amount >= 0 {
			continue
		}
		if -txn.Amount <= minIncomeDeposit {
			continue
		}
		if txn.Date.Before(cutoff) || txn.Date.After(now) {
			continue
		}
		deposits = append(deposits, txn)
	}

	sort.SliceStable(deposits, func(i, j int) bool {
		if !deposits[i].Date.Equal(deposits[j].Date) {
			return deposits[i].Date.After(deposits[j].Date)
		}
		return -deposits[i].Amount > -deposits[j].Amount
	})
	return deposits
}

// clusterEstimate rounds each deposit to the nearest bucket and picks the
// most populated bucket. A pattern needs repetition: a modal bucket with a
// single member is no recurring signal and yields nothing, which is what
// keeps the single-match and fallback paths reachable. The estimate is the
// mean of the bucket's raw amounts.
func clusterEstimate(deposits []models.Transaction) *float64 {
	buckets := make(map[float64][]float64)
	for _, txn := range deposits {
		magnitude := -txn.Amount
		key := math.Round(magnitude/clusterBucketSize) * clusterBucketSize
		buckets[key] = append(buckets[key], magnitude)
	}

	var bestKey float64
	bestCount := 0
	for key, members := range buckets {
		if len(members) > bestCount || (len(members) == bestCount && key > bestKey) {
			bestKey = key
			bestCount = len(members)
		}
	}
	if bestCount < 2 {
		return nil
	}

	members := buckets[bestKey]
	sum := 0.0
	for _, m := range members {
		sum += m
	}
	mean := sum / float64(len(members))
	return &mean
}

// semanticMatches returns the magnitudes of deposits whose category or name
// contains payroll vocabulary, preserving the deposits' recency order.
func semanticMatches(deposits []models.Transaction) []float64 {
	var matches []float64
	for _, txn := range deposits {
		text := strings.ToLower(txn.Name)
		if txn.Category != nil {
			text += " " + strings.ToLower(*txn.Category)
		}
		for _, word := range incomeVocabulary {
			if strings.Contains(text, word) {
				matches = append(matches, -txn.Amount)
				break
			}
		}
	}
	return matches
}

// fallbackEstimate pairs the largest deposits above the fallback floor (up
// to four) and assumes bi-weekly halves.
func fallbackEstimate(deposits []models.Transaction) *float64 {
	var magnitudes []float64
	for _, txn := range deposits {
		if -txn.Amount > fallbackDepositFloor {
			magnitudes = append(magnitudes, -txn.Amount)
		}
	}
	if len(magnitudes) == 0 {
		return nil
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(magnitudes)))
	if len(magnitudes) > 4 {
		magnitudes = magnitudes[:4]
	}
	sum := 0.0
	for _, m := range magnitudes {
		sum += m
	}
	estimate := sum / 2
	return &estimate
}
