package rewards

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayoutsForThreeLevelChain(t *testing.T) {
	p := DefaultPolicy()
	chain := []Ancestor{
		{AccountID: 2, Level: 1}, // B, direct referrer
		{AccountID: 1, Level: 2}, // A, root of the chain
	}

	payouts := PayoutsFor(p, chain, "C")
	require.Len(t, payouts, 2)

	assert.Equal(t, int64(2), payouts[0].AccountID)
	assert.True(t, payouts[0].Amount.Equal(p.DirectBonus))
	assert.Equal(t, "Referral bonus for C", payouts[0].Reason)
	assert.True(t, payouts[0].CountsReferral)

	assert.Equal(t, int64(1), payouts[1].AccountID)
	assert.True(t, payouts[1].Amount.Equal(p.RootBonus))
	assert.Equal(t, "Main parent bonus for C", payouts[1].Reason)
	assert.False(t, payouts[1].CountsReferral)
}

func TestPayoutsForIntermediatesGetNothing(t *testing.T) {
	p := DefaultPolicy()
	chain := []Ancestor{
		{AccountID: 4, Level: 1},
		{AccountID: 3, Level: 2},
		{AccountID: 2, Level: 3},
		{AccountID: 1, Level: 4},
	}

	payouts := PayoutsFor(p, chain, "E")
	require.Len(t, payouts, 2)
	assert.Equal(t, int64(4), payouts[0].AccountID)
	assert.Equal(t, int64(1), payouts[1].AccountID)
}

func TestPayoutsForSingleHopPaysBothBonuses(t *testing.T) {
	p := DefaultPolicy()
	chain := []Ancestor{{AccountID: 7, Level: 1}}

	payouts := PayoutsFor(p, chain, "Child")
	require.Len(t, payouts, 2, "the sole ancestor is both direct referrer and chain root")

	total := decimal.Zero
	for _, payout := range payouts {
		assert.Equal(t, int64(7), payout.AccountID)
		total = total.Add(payout.Amount)
	}
	assert.True(t, total.Equal(p.DirectBonus.Add(p.RootBonus)))
}

func TestPayoutsForEmptyChain(t *testing.T) {
	payouts := PayoutsFor(DefaultPolicy(), nil, "Root")
	assert.Empty(t, payouts)
}
