package budget

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodger/foodger-backend/pkg/db/models"
)

// Repository persists monthly budgets and daily snapshots.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a budget repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindMonthly loads the month-level budget row.
func (r *Repository) FindMonthly(ctx context.Context, userID uuid.UUID, year, month int) (*models.MonthlyBudget, error) {
	var row models.MonthlyBudget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SaveMonthly inserts or updates the month-level budget row.
func (r *Repository) SaveMonthly(ctx context.Context, row *models.MonthlyBudget) (*models.MonthlyBudget, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindDaily loads the snapshot for one calendar date.
func (r *Repository) FindDaily(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyBudget, error) {
	var row models.DailyBudget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListDailyRange loads snapshots for an inclusive date range in order.
func (r *Repository) ListDailyRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.DailyBudget, error) {
	var rows []models.DailyBudget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveDaily inserts or updates one snapshot row.
func (r *Repository) SaveDaily(ctx context.Context, row *models.DailyBudget) (*models.DailyBudget, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// SumSpentForMonth totals committed expenditures inside the month, used to
// rebuild the month aggregate when a monthly row is created late.
func (r *Repository) SumSpentForMonth(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).
		Model(&models.Expenditure{}).
		Select("SUM(final_amount)").
		Where("user_id = ? AND occurred_date >= ? AND occurred_date <= ?", userID, start, end).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
