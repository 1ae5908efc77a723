// Package rewards holds the referral payout policy and the pure logic that
// selects which ancestors of a freshly registered account get paid.
package rewards

import (
	"github.com/shopspring/decimal"

	"github.com/grocerymarts/backend/internal/models"
)

// Policy names every constant of the referral program so none of them live
// as magic literals inside distribution code.
type Policy struct {
	// DirectBonus is credited to the direct (level-1) referrer.
	DirectBonus decimal.Decimal
	// RootBonus is credited to the oldest ancestor the chain walk reached.
	RootBonus decimal.Decimal
	// MaxDepth bounds chain traversal and the referral_level of new accounts.
	MaxDepth int
	// CodeLength is the length of generated referral codes.
	CodeLength int
	// CodeAttempts bounds random code generation before falling back to a
	// deterministic derivation from the account id.
	CodeAttempts int
}

func DefaultPolicy() Policy {
	return Policy{
		DirectBonus:  decimal.NewFromInt(50),
		RootBonus:    decimal.NewFromInt(100),
		MaxDepth:     models.MaxReferralDepth,
		CodeLength:   8,
		CodeAttempts: 10,
	}
}
