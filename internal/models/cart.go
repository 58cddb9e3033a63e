package models

import "time"

// Cart statuses
const (
	CartActive    = "active"
	CartConverted = "converted"
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 99

// PricedLine holds the pricing-relevant fields shared by cart and order lines.
// A nil PizzaID means a fully custom build.
type PricedLine struct {
	PizzaID           *int  `gorm:"index" json:"pizza_id"`
	BaseID            int   `gorm:"not null" json:"base_id"`
	SauceID           int   `gorm:"not null" json:"sauce_id"`
	AddedToppingIDs   []int `gorm:"serializer:json;type:text" json:"added_topping_ids"`
	RemovedToppingIDs []int `gorm:"serializer:json;type:text" json:"removed_topping_ids"`
	Quantity          int   `gorm:"not null;default:1" json:"quantity"`
	UnitPriceCents    int64 `gorm:"not null;default:0" json:"unit_price_cents"`
}

// LineTotalCents is the unit price times the quantity.
func (l PricedLine) LineTotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// IsCustom reports whether the line has no preset pizza.
func (l PricedLine) IsCustom() bool {
	return l.PizzaID == nil
}

// Cart is identified by an opaque token (its id) handed to the client.
type Cart struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Status    string     `gorm:"not null;default:'active';index" json:"status"`
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

// IsActive reports whether the cart still accepts mutations.
func (c Cart) IsActive() bool {
	return c.Status == CartActive
}

// CartLine is mutable by id while its cart is active.
type CartLine struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	CartID string `gorm:"not null;index;size:36" json:"cart_id"`
	PricedLine
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartLine) TableName() string {
	return "cart_lines"
}
