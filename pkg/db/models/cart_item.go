package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem snapshots a food at add time. Quantity stays within [1,99];
// a quantity below 1 is expressed as removal, never stored.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null"`
	FoodID    uuid.UUID `gorm:"column:food_id;type:uuid;not null"`
	FoodName  string    `gorm:"column:food_name;not null"`
	UnitPrice int       `gorm:"column:unit_price;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	LineTotal int       `gorm:"column:line_total;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
