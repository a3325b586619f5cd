package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodger/foodger-backend/pkg/db/models"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
)

// Service exposes the merchant/menu catalog the cart consumes.
type Service interface {
	ListMerchants(ctx context.Context) ([]models.Merchant, error)
	GetMerchant(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
	ListMenu(ctx context.Context, merchantID uuid.UUID) ([]models.Food, error)
	GetFood(ctx context.Context, id uuid.UUID) (*models.Food, error)
}

type service struct {
	repo *Repository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListMerchants(ctx context.Context) ([]models.Merchant, error) {
	return s.repo.ListMerchants(ctx)
}

func (s *service) GetMerchant(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	row, err := s.repo.FindMerchantByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return nil, err
	}
	return row, nil
}

func (s *service) ListMenu(ctx context.Context, merchantID uuid.UUID) ([]models.Food, error) {
	if _, err := s.GetMerchant(ctx, merchantID); err != nil {
		return nil, err
	}
	return s.repo.ListMenu(ctx, merchantID)
}

func (s *service) GetFood(ctx context.Context, id uuid.UUID) (*models.Food, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food id is required")
	}
	row, err := s.repo.FindFoodByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "food not found")
		}
		return nil, err
	}
	return row, nil
}
