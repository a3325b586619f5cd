package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/pkg/enums"
)

// Expenditure is the immutable record of a completed checkout. It debits
// exactly one daily snapshot meal bucket and the owning month's aggregate.
type Expenditure struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	MerchantID     uuid.UUID         `gorm:"column:merchant_id;type:uuid;not null"`
	MerchantName   string            `gorm:"column:merchant_name;not null"`
	MealType       enums.MealType    `gorm:"column:meal_type;not null"`
	OccurredDate   time.Time         `gorm:"column:occurred_date;type:date;not null;index"`
	OccurredTime   string            `gorm:"column:occurred_time;not null"`
	TotalAmount    int               `gorm:"column:total_amount;not null"`
	DiscountAmount int               `gorm:"column:discount_amount;not null;default:0"`
	FinalAmount    int               `gorm:"column:final_amount;not null"`
	Items          []ExpenditureItem `gorm:"foreignKey:ExpenditureID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
}
