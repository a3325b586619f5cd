package expenditures

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodger/foodger-backend/pkg/db/models"
	"github.com/foodger/foodger-backend/pkg/enums"
)

// ListFilter narrows the expenditure history query.
type ListFilter struct {
	Start    *time.Time
	End      *time.Time
	MealType *enums.MealType
}

// Repository persists committed expenditures. Rows are append-only.
type Repository struct {
	db *gorm.DB
}

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

// Create writes the expenditure and its line items in one insert chain.
func (r *Repository) Create(ctx context.Context, record *models.Expenditure) (*models.Expenditure, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	for i := range record.Items {
		if record.Items[i].ID == uuid.Nil {
			record.Items[i].ID = uuid.New()
		}
		record.Items[i].ExpenditureID = record.ID
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// List returns the user's history, newest first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Expenditure, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID)

	if filter.Start != nil {
		query = query.Where("occurred_date >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("occurred_date <= ?", *filter.End)
	}
	if filter.MealType != nil {
		query = query.Where("meal_type = ?", *filter.MealType)
	}

	var rows []models.Expenditure
	err := query.
		Order("occurred_date DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one expenditure scoped to its owner.
func (r *Repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Expenditure, error) {
	var row models.Expenditure
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
