package models

import (
	"time"

	"github.com/google/uuid"
)

// Food is a single menu entry priced in whole won.
type Food struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID uuid.UUID `gorm:"column:merchant_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	Price      int       `gorm:"column:price;not null"`
	Available  bool      `gorm:"column:available;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
