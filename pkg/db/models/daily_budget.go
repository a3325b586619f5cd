package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/pkg/enums"
	"github.com/foodger/foodger-backend/pkg/types"
)

// DailyBudget is a date-scoped allocation-and-consumption snapshot. Absence
// of a row for a date means "no budget set", which callers treat as normal.
type DailyBudget struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_daily_budget_user_date,priority:1"`
	Date        time.Time         `gorm:"column:date;type:date;not null;uniqueIndex:idx_daily_budget_user_date,priority:2"`
	DailyTotal  int               `gorm:"column:daily_total;not null"`
	TotalSpent  int               `gorm:"column:total_spent;not null;default:0"`
	MealBudgets types.MealBudgets `gorm:"column:meal_budgets;type:jsonb;serializer:json"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// RemainingBudget is the day allowance left; negative once overspent.
func (d *DailyBudget) RemainingBudget() int {
	if d == nil {
		return 0
	}
	return d.DailyTotal - d.TotalSpent
}

// MealBudget returns the bucket for the meal type, zero-valued when unset.
func (d *DailyBudget) MealBudget(meal enums.MealType) types.MealBudget {
	if d == nil || d.MealBudgets == nil {
		return types.MealBudget{}
	}
	return d.MealBudgets[meal]
}
