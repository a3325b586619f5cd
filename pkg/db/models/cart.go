package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the single active cart for a user. MerchantID is nil exactly when
// the cart has no items; every item's merchant equals MerchantID otherwise.
type Cart struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	MerchantID *uuid.UUID `gorm:"column:merchant_id;type:uuid"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalAmount sums the line totals; the server never stores a cart total.
func (c *Cart) TotalAmount() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.LineTotal
	}
	return total
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
