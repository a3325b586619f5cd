package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodger/foodger-backend/pkg/db/models"
)

// Repository exposes read access to merchants and their menus.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListMerchants returns merchants ordered by name.
func (r *Repository) ListMerchants(ctx context.Context) ([]models.Merchant, error) {
	var rows []models.Merchant
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindMerchantByID loads a single merchant.
func (r *Repository) FindMerchantByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	var row models.Merchant
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListMenu returns the foods offered by a merchant.
func (r *Repository) ListMenu(ctx context.Context, merchantID uuid.UUID) ([]models.Food, error) {
	var rows []models.Food
	if err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindFoodByID loads a single food entry.
func (r *Repository) FindFoodByID(ctx context.Context, id uuid.UUID) (*models.Food, error) {
	var row models.Food
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
