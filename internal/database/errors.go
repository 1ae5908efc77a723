package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally narrowed to a single constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrReturnNotFound        = errors.New("return request not found")
	ErrProductInactive       = errors.New("product is not active")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrInsufficientCredits   = errors.New("insufficient credits")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidReferralCode   = errors.New("invalid referral code")
	ErrReferralChainLimit    = errors.New("referral chain limit exceeded")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrDuplicateProduct      = errors.New("product name already exists")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrOrderNotCancellable   = errors.New("order cannot be cancelled")
	ErrReturnNotCancellable  = errors.New("return cannot be cancelled in current status")
	ErrForbidden             = errors.New("access denied")
	ErrQuantityExceedsOrder  = errors.New("return quantity exceeds ordered quantity")
	ErrProductNotInOrder     = errors.New("product not found in this order")
	ErrReferralCodeExhausted = errors.New("could not generate unique referral code")
)
