package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(price int64, qty int) OrderItem {
	return OrderItem{UnitPrice: decimal.NewFromInt(price), Quantity: qty}
}

func TestComputeSettlement(t *testing.T) {
	settlement, priced, err := ComputeSettlement(
		[]OrderItem{item(200, 2), item(50, 1)},
		decimal.NewFromInt(50))
	require.NoError(t, err)

	assert.True(t, settlement.Subtotal.Equal(decimal.NewFromInt(450)), "subtotal %s", settlement.Subtotal)
	assert.True(t, settlement.CreditsUsed.Equal(decimal.NewFromInt(50)))
	assert.True(t, settlement.CashDue.Equal(decimal.NewFromInt(400)), "cash due %s", settlement.CashDue)
	assert.True(t, settlement.Total.Equal(decimal.NewFromInt(450)), "credits pay, they do not discount")

	require.Len(t, priced, 2)
	assert.True(t, priced[0].TotalPrice.Equal(decimal.NewFromInt(400)))
	assert.True(t, priced[1].TotalPrice.Equal(decimal.NewFromInt(50)))
}

func TestComputeSettlementRecomputesLineTotals(t *testing.T) {
	// A tampered client total must be overwritten.
	tampered := item(100, 3)
	tampered.TotalPrice = decimal.NewFromInt(1)

	settlement, priced, err := ComputeSettlement([]OrderItem{tampered}, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, priced[0].TotalPrice.Equal(decimal.NewFromInt(300)))
	assert.True(t, settlement.Subtotal.Equal(decimal.NewFromInt(300)))
}

func TestComputeSettlementNoItems(t *testing.T) {
	_, _, err := ComputeSettlement(nil, decimal.Zero)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestComputeSettlementNegativeCredits(t *testing.T) {
	_, _, err := ComputeSettlement([]OrderItem{item(100, 1)}, decimal.NewFromInt(-10))
	assert.ErrorIs(t, err, ErrNegativeCredits)
}

func TestComputeSettlementCreditsExceedSubtotal(t *testing.T) {
	_, _, err := ComputeSettlement([]OrderItem{item(100, 1)}, decimal.NewFromInt(101))
	assert.ErrorIs(t, err, ErrCreditsExceed)
}

func TestComputeSettlementFullCredits(t *testing.T) {
	settlement, _, err := ComputeSettlement([]OrderItem{item(100, 1)}, decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.True(t, settlement.CashDue.IsZero())
	assert.True(t, settlement.Total.Equal(decimal.NewFromInt(100)))
}
