package models

import "time"

// Component is the shared shape of bases, sauces and toppings. Each kind
// lives in its own table.
type Component struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"uniqueIndex;not null" json:"name"`
	PriceCents int64  `gorm:"not null;default:0" json:"price_cents"`
}

// ComponentKind names one of the component tables.
type ComponentKind string

const (
	KindBase    ComponentKind = "bases"
	KindSauce   ComponentKind = "sauces"
	KindTopping ComponentKind = "toppings"
)

// Table returns the table backing the kind.
func (k ComponentKind) Table() string {
	return string(k)
}

// Label is the singular, human readable form used in messages.
func (k ComponentKind) Label() string {
	switch k {
	case KindBase:
		return "Base"
	case KindSauce:
		return "Sauce"
	case KindTopping:
		return "Topping"
	default:
		return "Component"
	}
}

type Base struct {
	Component
}

func (Base) TableName() string {
	return KindBase.Table()
}

type Sauce struct {
	Component
}

func (Sauce) TableName() string {
	return KindSauce.Table()
}

type Topping struct {
	Component
}

func (Topping) TableName() string {
	return KindTopping.Table()
}

// Pizza is a preset menu item. PriceCents is the admin-set menu price and is
// not derived from the components.
type Pizza struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description *string   `json:"description"`
	BaseID      int       `gorm:"not null;index" json:"base_id"`
	SauceID     int       `gorm:"not null;index" json:"sauce_id"`
	ToppingIDs  []int     `gorm:"serializer:json;type:text" json:"topping_ids"`
	PriceCents  int64     `gorm:"not null;default:0" json:"price_cents"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Pizza) TableName() string {
	return "pizzas"
}
