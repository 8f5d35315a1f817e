package engine

import (
	"math"
	"sort"

	"finsight-server/src/models"
)

// Known goal types. Unknown types fall through to the general savings
// formula with low confidence.
const (
	GoalTypeEmergencyFund    = "emergency_fund"
	GoalTypeDebtPayoff       = "debt_payoff"
	GoalTypeHouseDownPayment = "house_down_payment"
	GoalTypeRetirement       = "retirement"
	GoalTypeVacation         = "vacation"
	GoalTypeCar              = "car"
	GoalTypeSavings          = "savings"
)

// goalTypes lists the types offered as recommendations.
var goalTypes = []string{
	GoalTypeEmergencyFund,
	GoalTypeDebtPayoff,
	GoalTypeHouseDownPayment,
	GoalTypeRetirement,
	GoalTypeVacation,
	GoalTypeCar,
	GoalTypeSavings,
}

// Formula parameters.
const (
	emergencyFundMonths     = 6
	retirementIncomeYears   = 25
	retirementHorizonMonths = 360
	houseDownPaymentShare   = 0.20
	housePriceIncomeYears   = 4
	defaultSavingsRate      = 0.10
)

// GoalTarget is one calculated target: how much, over how many months, and
// how confident the calculation is given the available context.
type GoalTarget struct {
	GoalType        string  `json:"goal_type"`
	TargetAmount    float64 `json:"target_amount"`
	TimeframeMonths int     `json:"timeframe_months"`
	Confidence      float64 `json:"confidence"`
}

// CalculateGoalTarget computes a realistic target amount and timeframe for
// a goal type against a financial context. Pure: the same context and type
// always produce the same target. Target amounts are non-negative whole
// units, timeframes are at least one month and confidence is in [0, 1].
func CalculateGoalTarget(goalType string, fc *models.FinancialContext) GoalTarget {
	income := 0.0
	if fc.MonthlyIncome != nil {
		income = *fc.MonthlyIncome
	}
	expenses := 0.0
	for _, total := range fc.MonthlyExpenses {
		expenses += total
	}

	var target, confidence float64
	var months int

	switch goalType {
	case GoalTypeEmergencyFund:
		switch {
		case expenses > 0:
			target = expenses * emergencyFundMonths
			confidence = 0.9
		case income > 0:
			target = income * 3
			confidence = 0.5
		default:
			target = 15000
			confidence = 0.3
		}
		months = monthsToSave(target, income)

	case GoalTypeDebtPayoff:
		if fc.TotalLiabilities > 0 {
			target = fc.TotalLiabilities
			confidence = 0.85
		} else {
			target = 5000
			confidence = 0.2
		}
		months = clampMonths(monthsAt(target, income*0.15), 6, 60)

	case GoalTypeHouseDownPayment:
		if income > 0 {
			target = income * 12 * housePriceIncomeYears * houseDownPaymentShare
			confidence = 0.6
		} else {
			target = 40000
			confidence = 0.25
		}
		months = clampMonths(monthsAt(target, income*0.15), 12, 120)

	case GoalTypeRetirement:
		if income > 0 {
			target = income * 12 * retirementIncomeYears
			confidence = 0.7
		} else {
			target = 500000
			confidence = 0.2
		}
		months = retirementHorizonMonths

	case GoalTypeVacation:
		if income > 0 {
			target = math.Max(income*0.05*12, 2000)
			confidence = 0.55
		} else {
			target = 2000
			confidence = 0.4
		}
		months = 12

	case GoalTypeCar:
		if income > 0 {
			target = income * 4
			confidence = 0.5
		} else {
			target = 5000
			confidence = 0.3
		}
		months = clampMonths(monthsAt(target, income*defaultSavingsRate), 6, 48)

	default:
		if income > 0 {
			target = income * 3
			confidence = 0.4
		} else {
			target = 10000
			confidence = 0.25
		}
		months = 12
	}

	return GoalTarget{
		GoalType:        goalType,
		TargetAmount:    math.Round(math.Max(target, 0)),
		TimeframeMonths: months,
		Confidence:      math.Min(math.Max(confidence, 0), 1),
	}
}

// RecommendGoalTargets calculates targets for every known goal type, ranked
// by confidence descending. Ties keep the fixed goal type order.
func RecommendGoalTargets(fc *models.FinancialContext) []GoalTarget {
	targets := make([]GoalTarget, 0, len(goalTypes))
	for _, goalType := range goalTypes {
		targets = append(targets, CalculateGoalTarget(goalType, fc))
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Confidence > targets[j].Confidence
	})
	return targets
}

// monthsToSave assumes the default savings rate out of income.
func monthsToSave(target, income float64) int {
	return clampMonths(monthsAt(target, income*defaultSavingsRate), 3, 36)
}

func monthsAt(target, monthlyContribution float64) int {
	if monthlyContribution <= 0 {
		return 0
	}
	return int(math.Ceil(target / monthlyContribution))
}

func clampMonths(months, lo, hi int) int {
	if months < lo {
		return lo
	}
	if months > hi {
		return hi
	}
	return months
}
