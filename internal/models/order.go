package models

import (
	"strings"
	"time"
)

// Fulfilment methods
const (
	MethodPickup   = "pickup"
	MethodDelivery = "delivery"
)

// Payment types
const (
	PaymentCard = "card"
	PaymentCash = "cash"
)

// Payment statuses
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// Order is created once from a cart and is immutable afterwards except for
// its payment status, payment intent link and last decline.
type Order struct {
	ID                    string      `gorm:"primaryKey;size:36" json:"id"`
	UserID                *uint       `gorm:"index" json:"user_id"`
	FirstName             string      `gorm:"not null" json:"first_name"`
	LastName              string      `gorm:"not null" json:"last_name"`
	Email                 string      `gorm:"not null" json:"email"`
	Phone                 string      `json:"phone"`
	Method                string      `gorm:"not null" json:"method"`
	AddressLine1          *string     `json:"address_line1"`
	AddressLine2          *string     `json:"address_line2"`
	Suburb                *string     `json:"suburb"`
	State                 *string     `json:"state"`
	Postcode              *string     `json:"postcode"`
	SubtotalCents         int64       `gorm:"not null" json:"subtotal_cents"`
	DeliveryCents         int64       `gorm:"not null" json:"delivery_cents"`
	DiscountCents         int64       `gorm:"not null" json:"discount_cents"`
	TotalCents            int64       `gorm:"not null" json:"total_cents"`
	PaymentType           string      `gorm:"not null" json:"payment_type"`
	PaymentStatus         string      `gorm:"not null;default:'unpaid';index" json:"payment_status"`
	StripePaymentIntentID *string     `gorm:"index" json:"stripe_payment_intent_id,omitempty"`
	// PaymentFailedAt is the last declined attempt. The order stays unpaid.
	PaymentFailedAt       *time.Time  `json:"payment_failed_at,omitempty"`
	Notes                 string      `json:"notes"`
	Lines                 []OrderLine `gorm:"foreignKey:OrderID" json:"-"`
	CreatedAt             time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Code is the short, human friendly reference shown to staff.
func (o Order) Code() string {
	code, _, _ := strings.Cut(o.ID, "-")
	return strings.ToUpper(code)
}

// OrderLine is a frozen copy of a cart line.
type OrderLine struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID string `gorm:"not null;index;size:36" json:"order_id"`
	PricedLine
	CreatedAt time.Time `json:"created_at"`
}

func (OrderLine) TableName() string {
	return "order_lines"
}

// PayableAt reports whether the order can still be paid at now: it must be
// unpaid and created within window.
func (o Order) PayableAt(now time.Time, window time.Duration) bool {
	return o.PaymentStatus == PaymentUnpaid && !o.CreatedAt.Before(now.Add(-window))
}
