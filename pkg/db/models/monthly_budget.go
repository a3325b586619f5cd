package models

import (
	"time"

	"github.com/google/uuid"
)

// MonthlyBudget is the month-level allocation. DailyTotal defaults to
// floor(MonthlyTotal/30) but is independently overridable.
type MonthlyBudget struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_monthly_budget_user_month,priority:1"`
	Year         int       `gorm:"column:year;not null;uniqueIndex:idx_monthly_budget_user_month,priority:2"`
	Month        int       `gorm:"column:month;not null;uniqueIndex:idx_monthly_budget_user_month,priority:3"`
	MonthlyTotal int       `gorm:"column:monthly_total;not null"`
	DailyTotal   int       `gorm:"column:daily_total;not null"`
	SpentTotal   int       `gorm:"column:spent_total;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Remaining is the month allowance left after committed expenditures.
func (m *MonthlyBudget) Remaining() int {
	if m == nil {
		return 0
	}
	return m.MonthlyTotal - m.SpentTotal
}
