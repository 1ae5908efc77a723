package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/grocerymarts/backend/internal/database"
	"github.com/grocerymarts/backend/internal/models"
	"github.com/grocerymarts/backend/internal/rewards"
)

const accountColumns = `id, name, email, contact, password_hash, role, credit_balance,
	parent_id, referral_level, referral_code, total_referrals, next_purchase_date,
	created_at, updated_at, version`

const referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type CreateAccountRequest struct {
	Name         string
	Email        string
	Contact      string
	PasswordHash string
	// ReferralCode is the code of the referrer, not the new account's own code.
	ReferralCode string
}

// CreateAccount registers a new account. A supplied referral code must resolve
// to an existing account or registration fails with ErrInvalidReferralCode;
// a resolved referrer already at the maximum depth fails with
// ErrReferralChainLimit. The new account's own referral code is assigned here,
// at creation, so reads never mutate state.
func CreateAccount(ctx context.Context, db *sql.DB, policy rewards.Policy, req CreateAccountRequest) (*models.Account, error) {
	var parentID *int64
	referralLevel := 0

	if req.ReferralCode != "" {
		referrer, err := GetAccountByReferralCode(ctx, db, req.ReferralCode)
		if err != nil {
			if err == database.ErrAccountNotFound {
				return nil, database.ErrInvalidReferralCode
			}
			return nil, err
		}
		referralLevel = referrer.ReferralLevel + 1
		if referralLevel > policy.MaxDepth {
			return nil, database.ErrReferralChainLimit
		}
		parentID = &referrer.ID
	}

	var account *models.Account
	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO accounts (name, email, contact, password_hash, parent_id, referral_level, created_at, updated_at, version)
			 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), 1)
			 RETURNING id`,
			req.Name, req.Email, req.Contact, req.PasswordHash, parentID, referralLevel).Scan(&id)
		if err != nil {
			if database.IsUniqueViolation(err, "accounts_email_key") {
				return database.ErrDuplicateEmail
			}
			return fmt.Errorf("create account: %w", err)
		}

		if err := assignReferralCode(ctx, tx, policy, id); err != nil {
			return err
		}

		account, err = scanAccount(tx.QueryRowContext(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
		if err != nil {
			return fmt.Errorf("fetch created account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// assignReferralCode tries a bounded number of random codes and falls back to
// a deterministic derivation from the account id when randomness keeps
// colliding under concurrency.
func assignReferralCode(ctx context.Context, tx *sql.Tx, policy rewards.Policy, accountID int64) error {
	for attempt := 0; attempt < policy.CodeAttempts; attempt++ {
		code := randomReferralCode(policy.CodeLength)

		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM accounts WHERE referral_code = $1)`, code).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check referral code: %w", err)
		}
		if exists {
			continue
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE accounts SET referral_code = $1, updated_at = NOW() WHERE id = $2`, code, accountID)
		if err != nil {
			if database.IsUniqueViolation(err, "accounts_referral_code_key") {
				continue
			}
			return fmt.Errorf("assign referral code: %w", err)
		}
		return nil
	}

	code := deriveReferralCode(accountID, policy.CodeLength)
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET referral_code = $1, updated_at = NOW() WHERE id = $2`, code, accountID)
	if err != nil {
		return fmt.Errorf("%w: %v", database.ErrReferralCodeExhausted, err)
	}
	return nil
}

func randomReferralCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = referralCodeAlphabet[rand.Intn(len(referralCodeAlphabet))]
	}
	return string(b)
}

func deriveReferralCode(accountID int64, length int) string {
	code := strings.ToUpper(strconv.FormatInt(accountID, 36))
	for len(code) < length {
		code = "0" + code
	}
	return code[len(code)-length:]
}

func GetAccount(ctx context.Context, q database.Querier, id int64) (*models.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func GetAccountByEmail(ctx context.Context, q database.Querier, email string) (*models.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return account, nil
}

func GetAccountByReferralCode(ctx context.Context, q database.Querier, code string) (*models.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE referral_code = $1`, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by referral code: %w", err)
	}
	return account, nil
}

func UpdateAccountRole(ctx context.Context, db *sql.DB, id int64, role models.Role) (*models.Account, error) {
	account, err := scanAccount(db.QueryRowContext(ctx,
		`UPDATE accounts SET role = $1, updated_at = NOW(), version = version + 1
		 WHERE id = $2
		 RETURNING `+accountColumns, role, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update account role: %w", err)
	}
	return account, nil
}

// SetNextPurchaseDate arms the monthly purchase gate after a checkout.
func SetNextPurchaseDate(ctx context.Context, q database.Querier, accountID int64, next time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE accounts SET next_purchase_date = $1, updated_at = NOW() WHERE id = $2`,
		next, accountID)
	if err != nil {
		return fmt.Errorf("set next purchase date: %w", err)
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

func ListAccounts(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(accounts, total, page, pageSize), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(s rowScanner) (*models.Account, error) {
	account := &models.Account{}
	var contact, referralCode sql.NullString
	var parentID sql.NullInt64
	var nextPurchase sql.NullTime

	err := s.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&contact,
		&account.PasswordHash,
		&account.Role,
		&account.CreditBalance,
		&parentID,
		&account.ReferralLevel,
		&referralCode,
		&account.TotalReferrals,
		&nextPurchase,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.Version,
	)
	if err != nil {
		return nil, err
	}

	account.Contact = contact.String
	account.ReferralCode = referralCode.String
	if parentID.Valid {
		account.ParentID = &parentID.Int64
	}
	if nextPurchase.Valid {
		account.NextPurchaseDate = &nextPurchase.Time
	}
	return account, nil
}
