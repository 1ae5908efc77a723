package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/grocerymarts/backend/internal/database"
)

func TestAddAndDeductCredits(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accountID := createTestAccount(t, db, "Ledger", "ledger@example.com", "")

	balance, err := AddCredits(ctx, db, accountID, decimal.NewFromInt(100), "test grant")
	if err != nil {
		t.Fatalf("Add credits: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected balance 100, got %s", balance)
	}

	balance, err = DeductCredits(ctx, db, accountID, decimal.NewFromInt(40), "test spend")
	if err != nil {
		t.Fatalf("Deduct credits: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected balance 60, got %s", balance)
	}
}

func TestDeductCreditsInsufficient(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accountID := createTestAccount(t, db, "Short", "short@example.com", "")

	if _, err := AddCredits(ctx, db, accountID, decimal.NewFromInt(30), "test grant"); err != nil {
		t.Fatalf("Add credits: %v", err)
	}

	_, err := DeductCredits(ctx, db, accountID, decimal.NewFromInt(50), "test overdraw")
	if !errors.Is(err, database.ErrInsufficientCredits) {
		t.Errorf("Expected insufficient credits error, got: %v", err)
	}

	account, err := GetAccount(ctx, db, accountID)
	if err != nil {
		t.Fatalf("Get account: %v", err)
	}
	if !account.CreditBalance.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Balance should remain 30, got %s", account.CreditBalance)
	}
}

func TestCreditsRejectNonPositiveAmounts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accountID := createTestAccount(t, db, "Zero", "zero@example.com", "")

	if _, err := AddCredits(ctx, db, accountID, decimal.Zero, "zero grant"); !errors.Is(err, database.ErrInvalidAmount) {
		t.Errorf("Expected invalid amount for zero add, got: %v", err)
	}
	if _, err := DeductCredits(ctx, db, accountID, decimal.NewFromInt(-5), "negative spend"); !errors.Is(err, database.ErrInvalidAmount) {
		t.Errorf("Expected invalid amount for negative deduct, got: %v", err)
	}
}

func TestConcurrentDeductionsNeverGoNegative(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accountID := createTestAccount(t, db, "Race", "race@example.com", "")

	if _, err := AddCredits(ctx, db, accountID, decimal.NewFromInt(100), "test grant"); err != nil {
		t.Fatalf("Add credits: %v", err)
	}

	concurrency := 10
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := DeductCredits(ctx, db, accountID, decimal.NewFromInt(30), "race spend")
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else if !errors.Is(err, database.ErrInsufficientCredits) {
			t.Logf("Unexpected error: %v", err)
		}
	}

	if successCount != 3 {
		t.Errorf("Expected exactly 3 successful deductions of 30 from 100, got %d", successCount)
	}

	account, err := GetAccount(ctx, db, accountID)
	if err != nil {
		t.Fatalf("Get account: %v", err)
	}
	if account.CreditBalance.IsNegative() {
		t.Errorf("Balance must never be negative, got %s", account.CreditBalance)
	}
	if !account.CreditBalance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected final balance 10, got %s", account.CreditBalance)
	}
}
