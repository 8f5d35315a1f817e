package engine

import (
	"testing"

	"finsight-server/src/models"
)

func richContext() *models.FinancialContext {
	income := 5000.0
	return &models.FinancialContext{
		UserID:           7,
		TotalLiabilities: 12000,
		MonthlyIncome:    &income,
		MonthlyExpenses:  map[string]float64{"housing": 2000, "food": 1000},
	}
}

func TestCalculateGoalTarget(t *testing.T) {
	fc := richContext()

	tests := []struct {
		goalType       string
		wantAmount     float64
		wantMonths     int
		wantConfidence float64
	}{
		{GoalTypeEmergencyFund, 18000, 36, 0.9},
		{GoalTypeDebtPayoff, 12000, 16, 0.85},
		{GoalTypeHouseDownPayment, 48000, 64, 0.6},
		{GoalTypeRetirement, 1500000, 360, 0.7},
		{GoalTypeVacation, 3000, 12, 0.55},
		{GoalTypeCar, 20000, 40, 0.5},
		{GoalTypeSavings, 15000, 12, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.goalType, func(t *testing.T) {
			got := CalculateGoalTarget(tt.goalType, fc)
			if got.TargetAmount != tt.wantAmount {
				t.Errorf("TargetAmount = %v, want %v", got.TargetAmount, tt.wantAmount)
			}
			if got.TimeframeMonths != tt.wantMonths {
				t.Errorf("TimeframeMonths = %v, want %v", got.TimeframeMonths, tt.wantMonths)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestCalculateGoalTargetEmptyContext(t *testing.T) {
	fc := &models.FinancialContext{UserID: 7}

	tests := []struct {
		goalType       string
		wantAmount     float64
		wantMonths     int
		wantConfidence float64
	}{
		{GoalTypeEmergencyFund, 15000, 3, 0.3},
		{GoalTypeDebtPayoff, 5000, 6, 0.2},
		{GoalTypeVacation, 2000, 12, 0.4},
		{"boat", 10000, 12, 0.25}, // unknown type falls through to savings defaults
	}

	for _, tt := range tests {
		t.Run(tt.goalType, func(t *testing.T) {
			got := CalculateGoalTarget(tt.goalType, fc)
			if got.TargetAmount != tt.wantAmount {
				t.Errorf("TargetAmount = %v, want %v", got.TargetAmount, tt.wantAmount)
			}
			if got.TimeframeMonths != tt.wantMonths {
				t.Errorf("TimeframeMonths = %v, want %v", got.TimeframeMonths, tt.wantMonths)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestCalculateGoalTargetBounds(t *testing.T) {
	contexts := []*models.FinancialContext{richContext(), {UserID: 7}}
	for _, fc := range contexts {
		for _, goalType := range goalTypes {
			got := CalculateGoalTarget(goalType, fc)
			if got.TargetAmount < 0 {
				t.Errorf("%s: negative target %v", goalType, got.TargetAmount)
			}
			if got.TimeframeMonths < 1 {
				t.Errorf("%s: timeframe %d below one month", goalType, got.TimeframeMonths)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("%s: confidence %v outside [0,1]", goalType, got.Confidence)
			}
		}
	}
}

func TestRecommendGoalTargets(t *testing.T) {
	got := RecommendGoalTargets(richContext())
	if len(got) != len(goalTypes) {
		t.Fatalf("got %d recommendations, want %d", len(got), len(goalTypes))
	}

	wantOrder := []string{
		GoalTypeEmergencyFund,
		GoalTypeDebtPayoff,
		GoalTypeRetirement,
		GoalTypeHouseDownPayment,
		GoalTypeVacation,
		GoalTypeCar,
		GoalTypeSavings,
	}
	for i, goalType := range wantOrder {
		if got[i].GoalType != goalType {
			t.Errorf("rank %d = %s, want %s", i, got[i].GoalType, goalType)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Confidence > got[i-1].Confidence {
			t.Errorf("confidence not descending at rank %d: %v > %v", i, got[i].Confidence, got[i-1].Confidence)
		}
	}
}

func TestRecommendGoalTargetsTieOrder(t *testing.T) {
	// With no context data, emergency_fund and car tie at 0.3; the fixed
	// goal type order must break the tie.
	got := RecommendGoalTargets(&models.FinancialContext{UserID: 7})

	rank := make(map[string]int, len(got))
	for i, target := range got {
		rank[target.GoalType] = i
	}
	if rank[GoalTypeEmergencyFund] > rank[GoalTypeCar] {
		t.Errorf("emergency_fund ranked %d after car at %d on equal confidence",
			rank[GoalTypeEmergencyFund], rank[GoalTypeCar])
	}
}
