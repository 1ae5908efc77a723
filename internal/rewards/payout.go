package rewards

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Payout is one credit grant owed to an ancestor in a resolved referral chain.
type Payout struct {
	AccountID int64
	Level     int
	Amount    decimal.Decimal
	Reason    string
	// CountsReferral marks the direct-referrer grant that also bumps the
	// ancestor's total_referrals counter.
	CountsReferral bool
}

// Ancestor is one (account, level) pair from a resolved chain; level 1 is the
// direct parent and levels increase with distance.
type Ancestor struct {
	AccountID int64
	Level     int
}

// PayoutsFor applies the referral program to a resolved chain for a new
// account. The policy is deliberately asymmetric: the direct referrer gets
// the direct bonus and a referral count, the last ancestor reached gets the
// root bonus, and everyone in between gets nothing. When the chain has a
// single hop the same account is both "level 1" and "last" and receives both
// grants, matching the program's observed behavior.
func PayoutsFor(p Policy, chain []Ancestor, newAccountName string) []Payout {
	var payouts []Payout
	for _, a := range chain {
		if a.Level == 1 {
			payouts = append(payouts, Payout{
				AccountID:      a.AccountID,
				Level:          a.Level,
				Amount:         p.DirectBonus,
				Reason:         fmt.Sprintf("Referral bonus for %s", newAccountName),
				CountsReferral: true,
			})
		}
		if a.Level == len(chain) {
			payouts = append(payouts, Payout{
				AccountID: a.AccountID,
				Level:     a.Level,
				Amount:    p.RootBonus,
				Reason:    fmt.Sprintf("Main parent bonus for %s", newAccountName),
			})
		}
	}
	return payouts
}
