package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// MaxReferralDepth bounds both an account's referral_level and the number of
// hops a chain walk may take. Guards against cycles in corrupted parent links.
const MaxReferralDepth = 12

type Account struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Contact          string          `json:"contact,omitempty"`
	PasswordHash     string          `json:"-"`
	Role             Role            `json:"role"`
	CreditBalance    decimal.Decimal `json:"credit_balance"`
	ParentID         *int64          `json:"parent_id,omitempty"`
	ReferralLevel    int             `json:"referral_level"`
	ReferralCode     string          `json:"referral_code,omitempty"`
	TotalReferrals   int             `json:"total_referrals"`
	NextPurchaseDate *time.Time      `json:"next_purchase_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// CanMakePurchase reports whether the monthly purchase gate is open.
func (a *Account) CanMakePurchase(now time.Time) bool {
	return a.NextPurchaseDate == nil || !now.Before(*a.NextPurchaseDate)
}

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

type PaymentMethod string

const (
	PaymentCreditsOnly    PaymentMethod = "credits_only"
	PaymentCashOnly       PaymentMethod = "cash_only"
	PaymentCreditsAndCash PaymentMethod = "credits_and_cash"
)

func (pm PaymentMethod) IsValid() bool {
	switch pm {
	case PaymentCreditsOnly, PaymentCashOnly, PaymentCreditsAndCash:
		return true
	}
	return false
}

type DeliveryAddress struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type Order struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"account_id"`
	OrderNumber     string          `json:"order_number"`
	Status          OrderStatus     `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	CreditsUsed     decimal.Decimal `json:"credits_used"`
	CashAmount      decimal.Decimal `json:"cash_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	DeliveryAddress DeliveryAddress `json:"delivery_address"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
	Items           []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ReturnReason string

const (
	ReasonDamaged        ReturnReason = "damaged"
	ReasonDefective      ReturnReason = "defective"
	ReasonNotAsDescribed ReturnReason = "not_as_described"
	ReasonWrongItem      ReturnReason = "wrong_item"
	ReasonChangedMind    ReturnReason = "changed_mind"
	ReasonExpired        ReturnReason = "expired"
	ReasonPoorQuality    ReturnReason = "poor_quality"
	ReasonOther          ReturnReason = "other"
)

func (r ReturnReason) IsValid() bool {
	switch r {
	case ReasonDamaged, ReasonDefective, ReasonNotAsDescribed, ReasonWrongItem,
		ReasonChangedMind, ReasonExpired, ReasonPoorQuality, ReasonOther:
		return true
	}
	return false
}

type ReturnRequest struct {
	ID             int64           `json:"id"`
	OrderID        int64           `json:"order_id"`
	AccountID      int64           `json:"account_id"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	Reason         ReturnReason    `json:"reason"`
	Description    string          `json:"description,omitempty"`
	ReturnAmount   decimal.Decimal `json:"return_amount"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
	Status         ReturnStatus    `json:"status"`
	AdminNotes     string          `json:"admin_notes,omitempty"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	RequestedAt    time.Time       `json:"requested_at"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	RejectedAt     *time.Time      `json:"rejected_at,omitempty"`
	ShippedAt      *time.Time      `json:"shipped_at,omitempty"`
	ReceivedAt     *time.Time      `json:"received_at,omitempty"`
	RefundedAt     *time.Time      `json:"refunded_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
