package models

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is the catalog owner all of a cart's items belong to.
type Merchant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Category  string    `gorm:"column:category"`
	Address   string    `gorm:"column:address"`
	Foods     []Food    `gorm:"foreignKey:MerchantID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
