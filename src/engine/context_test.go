package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"finsight-server/src/models"
)

type fakeProfileReader struct {
	accounts     []models.Account
	transactions []models.Transaction
	accountsErr  error
	txnErr       error

	gotFrom, gotTo time.Time
}

func (f *fakeProfileReader) ActiveAccounts(_ context.Context, _ int64) ([]models.Account, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeProfileReader) TransactionsInRange(_ context.Context, _ int64, from, to time.Time) ([]models.Transaction, error) {
	f.gotFrom, f.gotTo = from, to
	return f.transactions, f.txnErr
}

func TestDetectProfile(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	reader := &fakeProfileReader{
		accounts: []models.Account{
			{Type: models.AccountTypeDepository, CurrentBalance: 5000, Active: true},
			{Type: models.AccountTypeCredit, CurrentBalance: -1200, Active: true},
		},
		transactions: []models.Transaction{
			{Amount: -2500, Date: now.AddDate(0, 0, -15), Name: "Direct Deposit"},
			{Amount: -2500, Date: now.AddDate(0, 0, -1), Name: "Direct Deposit"},
			{Amount: 1600, Date: now.AddDate(0, 0, -2), Name: "Oakwood Rent Payment"},
			{Amount: 200, Date: now.AddDate(0, 0, -5), Name: "Grocery Store"},
		},
	}

	fc, err := NewDetector(reader).DetectProfile(context.Background(), 7, now)
	if err != nil {
		t.Fatalf("DetectProfile: %v", err)
	}

	if fc.UserID != 7 {
		t.Errorf("UserID = %d, want 7", fc.UserID)
	}
	if fc.NetWorth != 3800 || fc.TotalAssets != 5000 || fc.TotalLiabilities != 1200 {
		t.Errorf("balances = %v/%v/%v, want 3800/5000/1200",
			fc.NetWorth, fc.TotalAssets, fc.TotalLiabilities)
	}
	if fc.MonthlyIncome == nil || *fc.MonthlyIncome != 5000 {
		t.Errorf("MonthlyIncome = %v, want 5000", fc.MonthlyIncome)
	}
	if fc.MonthlyExpenses["housing"] != 1600 || fc.MonthlyExpenses["food"] != 200 {
		t.Errorf("MonthlyExpenses = %v", fc.MonthlyExpenses)
	}
	if fc.SuggestedBudget["housing"] != 1600 {
		t.Errorf("SuggestedBudget housing = %v, want 1600", fc.SuggestedBudget["housing"])
	}
	if !fc.ComputedAt.Equal(now) {
		t.Errorf("ComputedAt = %v, want %v", fc.ComputedAt, now)
	}

	wantFrom := now.AddDate(0, 0, -IncomeLookbackDays)
	if !reader.gotFrom.Equal(wantFrom) || !reader.gotTo.Equal(now) {
		t.Errorf("transaction range = [%v, %v], want [%v, %v]",
			reader.gotFrom, reader.gotTo, wantFrom, now)
	}
}

func TestDetectProfileEmptyData(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	fc, err := NewDetector(&fakeProfileReader{}).DetectProfile(context.Background(), 7, now)
	if err != nil {
		t.Fatalf("DetectProfile: %v", err)
	}
	if fc.NetWorth != 0 || fc.MonthlyIncome != nil {
		t.Errorf("empty data produced net worth %v, income %v", fc.NetWorth, fc.MonthlyIncome)
	}
	if fc.SuggestedBudget != nil {
		t.Errorf("no income must yield no budget, got %v", fc.SuggestedBudget)
	}
}

func TestDetectProfileStoreErrors(t *testing.T) {
	now := time.Now().UTC()
	wantErr := errors.New("pool closed")

	for _, reader := range []*fakeProfileReader{
		{accountsErr: wantErr},
		{txnErr: wantErr},
	} {
		if _, err := NewDetector(reader).DetectProfile(context.Background(), 7, now); !errors.Is(err, wantErr) {
			t.Errorf("err = %v, want %v", err, wantErr)
		}
	}
}

func TestDetectProfileDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	reader := &fakeProfileReader{
		accounts: []models.Account{
			{Type: models.AccountTypeDepository, CurrentBalance: 5000, Active: true},
		},
		transactions: []models.Transaction{
			{Amount: -2500, Date: now.AddDate(0, 0, -15), Name: "Direct Deposit"},
			{Amount: -2500, Date: now.AddDate(0, 0, -1), Name: "Direct Deposit"},
			{Amount: 90, Date: now.AddDate(0, 0, -3), Name: "Grocery Store"},
		},
	}

	detector := NewDetector(reader)
	first, err := detector.DetectProfile(context.Background(), 7, now)
	if err != nil {
		t.Fatalf("DetectProfile: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := detector.DetectProfile(context.Background(), 7, now)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed:\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}
