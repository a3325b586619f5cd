package models

import (
	"time"

	"github.com/google/uuid"
)

// ExpenditureItem is a frozen cart line carried into the expenditure.
type ExpenditureItem struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExpenditureID uuid.UUID `gorm:"column:expenditure_id;type:uuid;not null"`
	FoodID        uuid.UUID `gorm:"column:food_id;type:uuid;not null"`
	FoodName      string    `gorm:"column:food_name;not null"`
	UnitPrice     int       `gorm:"column:unit_price;not null"`
	Quantity      int       `gorm:"column:quantity;not null"`
	LineTotal     int       `gorm:"column:line_total;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
