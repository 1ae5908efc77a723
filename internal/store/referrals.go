package store

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/grocerymarts/backend/internal/database"
	"github.com/grocerymarts/backend/internal/models"
	"github.com/grocerymarts/backend/internal/rewards"
)

// ChainLink is one ancestor in a resolved referral chain. Level 1 is the
// direct parent; levels grow with distance from the new account.
type ChainLink struct {
	Account models.Account
	Level   int
}

// ResolveChain walks parent references upward from the given account. The
// walk is iterative with a hard hop bound so corrupted parent links can never
// recurse or loop forever, and it stops early at the first missing parent.
// The resolved chain is consumed by reward distribution and never persisted.
func ResolveChain(ctx context.Context, q database.Querier, accountID int64, maxDepth int) ([]ChainLink, error) {
	current, err := GetAccount(ctx, q, accountID)
	if err != nil {
		return nil, err
	}

	var chain []ChainLink
	for level := 1; current.ParentID != nil && level <= maxDepth; level++ {
		parent, err := GetAccount(ctx, q, *current.ParentID)
		if err != nil {
			if err == database.ErrAccountNotFound {
				break
			}
			return nil, err
		}
		chain = append(chain, ChainLink{Account: *parent, Level: level})
		current = parent
	}

	return chain, nil
}

// DistributeReferralRewards pays the referral program's bonuses for a freshly
// registered account. It is invoked synchronously after the account has been
// committed, so failures here are logged and swallowed rather than failing a
// registration that already succeeded.
func DistributeReferralRewards(ctx context.Context, db *sql.DB, policy rewards.Policy, newAccount *models.Account) {
	if newAccount.ParentID == nil {
		return
	}

	chain, err := ResolveChain(ctx, db, newAccount.ID, policy.MaxDepth)
	if err != nil {
		log.WithError(err).WithField("account_id", newAccount.ID).
			Error("failed to resolve referral chain")
		return
	}
	if len(chain) == 0 {
		return
	}

	ancestors := make([]rewards.Ancestor, len(chain))
	for i, link := range chain {
		ancestors[i] = rewards.Ancestor{AccountID: link.Account.ID, Level: link.Level}
	}

	for _, payout := range rewards.PayoutsFor(policy, ancestors, newAccount.Name) {
		err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
			if _, err := AddCredits(ctx, tx, payout.AccountID, payout.Amount, payout.Reason); err != nil {
				return err
			}
			if payout.CountsReferral {
				if err := incrementReferralCount(ctx, tx, payout.AccountID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"account_id": payout.AccountID,
				"level":      payout.Level,
				"amount":     payout.Amount.String(),
			}).Error("failed to pay referral bonus")
			continue
		}

		log.WithFields(log.Fields{
			"account_id":  payout.AccountID,
			"level":       payout.Level,
			"amount":      payout.Amount.String(),
			"new_account": newAccount.ID,
		}).Info("referral bonus paid")
	}
}

func incrementReferralCount(ctx context.Context, q database.Querier, accountID int64) error {
	result, err := q.ExecContext(ctx,
		`UPDATE accounts SET total_referrals = total_referrals + 1, updated_at = NOW() WHERE id = $1`,
		accountID)
	if err != nil {
		return fmt.Errorf("increment referral count: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return database.ErrAccountNotFound
	}
	return nil
}

// BackfillReferralCodes assigns codes to accounts created before codes were
// generated at registration. It runs at a controlled time (startup), keeping
// profile reads side-effect-free.
func BackfillReferralCodes(ctx context.Context, db *sql.DB, policy rewards.Policy) (int, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM accounts WHERE referral_code IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("list accounts without referral code: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("rows error: %w", err)
	}

	backfilled := 0
	for _, id := range ids {
		err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
			return assignReferralCode(ctx, tx, policy, id)
		})
		if err != nil {
			return backfilled, fmt.Errorf("backfill referral code for account %d: %w", id, err)
		}
		backfilled++
	}

	return backfilled, nil
}
