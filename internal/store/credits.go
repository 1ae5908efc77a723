package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/grocerymarts/backend/internal/database"
)

// AddCredits atomically increases an account's credit balance and returns the
// new balance. Amounts that are not strictly positive are a caller error.
func AddCredits(ctx context.Context, q database.Querier, accountID int64, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, database.ErrInvalidAmount
	}

	var balance decimal.Decimal
	err := q.QueryRowContext(ctx,
		`UPDATE accounts
		 SET credit_balance = credit_balance + $1,
		     updated_at = NOW(),
		     version = version + 1
		 WHERE id = $2
		 RETURNING credit_balance`,
		amount, accountID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, database.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("add credits: %w", err)
	}

	log.WithFields(log.Fields{
		"account_id": accountID,
		"amount":     amount.String(),
		"balance":    balance.String(),
		"reason":     reason,
	}).Info("credits added")

	return balance, nil
}

// DeductCredits atomically decreases an account's credit balance. The balance
// check and the write are a single conditional update, so a concurrent
// deduction can never drive the balance negative.
func DeductCredits(ctx context.Context, q database.Querier, accountID int64, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, database.ErrInvalidAmount
	}

	var balance decimal.Decimal
	err := q.QueryRowContext(ctx,
		`UPDATE accounts
		 SET credit_balance = credit_balance - $1,
		     updated_at = NOW(),
		     version = version + 1
		 WHERE id = $2
		   AND credit_balance >= $1
		 RETURNING credit_balance`,
		amount, accountID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists bool
			if checkErr := q.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); checkErr != nil {
				return decimal.Zero, fmt.Errorf("check account: %w", checkErr)
			}
			if !exists {
				return decimal.Zero, database.ErrAccountNotFound
			}
			return decimal.Zero, database.ErrInsufficientCredits
		}
		return decimal.Zero, fmt.Errorf("deduct credits: %w", err)
	}

	log.WithFields(log.Fields{
		"account_id": accountID,
		"amount":     amount.String(),
		"balance":    balance.String(),
		"reason":     reason,
	}).Info("credits deducted")

	return balance, nil
}
