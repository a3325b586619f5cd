package expenditures

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodger/foodger-backend/pkg/db/models"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
)

// Service is the read side of the expenditure history. Writes happen only
// through checkout.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Expenditure, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Expenditure, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expenditure repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Expenditure, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date")
	}
	if filter.MealType != nil && !filter.MealType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown meal type")
	}
	return s.repo.List(ctx, userID, filter)
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*models.Expenditure, error) {
	row, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expenditure not found")
		}
		return nil, err
	}
	return row, nil
}
