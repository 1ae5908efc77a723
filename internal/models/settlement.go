package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNoItems              = errors.New("order must contain at least one item")
	ErrNegativeCredits      = errors.New("credits to use cannot be negative")
	ErrCreditsExceed        = errors.New("credits to use cannot exceed subtotal")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrNotesTooLong         = errors.New("notes cannot be more than 500 characters")
	ErrInvalidReturnReason  = errors.New("invalid return reason")
)

// Settlement is the price breakdown of an order before payment is taken.
// Credits are a payment instrument, not a discount: Total stays at the
// subtotal while CashDue reflects the residual after credits are applied.
type Settlement struct {
	Subtotal    decimal.Decimal
	CreditsUsed decimal.Decimal
	CashDue     decimal.Decimal
	Total       decimal.Decimal
}

// ComputeSettlement recomputes every line total as quantity x unit price
// and derives the aggregate breakdown. Client-supplied totals are never
// trusted; callers pass priced items and get back consistent amounts.
func ComputeSettlement(items []OrderItem, creditsToUse decimal.Decimal) (Settlement, []OrderItem, error) {
	if len(items) == 0 {
		return Settlement{}, nil, ErrNoItems
	}
	if creditsToUse.IsNegative() {
		return Settlement{}, nil, ErrNegativeCredits
	}

	priced := make([]OrderItem, len(items))
	subtotal := decimal.Zero
	for i, item := range items {
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		priced[i] = item
		subtotal = subtotal.Add(item.TotalPrice)
	}

	if creditsToUse.GreaterThan(subtotal) {
		return Settlement{}, nil, ErrCreditsExceed
	}

	cashDue := subtotal.Sub(creditsToUse)
	if cashDue.IsNegative() {
		cashDue = decimal.Zero
	}

	return Settlement{
		Subtotal:    subtotal,
		CreditsUsed: creditsToUse,
		CashDue:     cashDue,
		Total:       subtotal,
	}, priced, nil
}
