package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodger/foodger-backend/pkg/db/models"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
)

const (
	// MinQuantity and MaxQuantity bound every stored cart line.
	MinQuantity = 1
	MaxQuantity = 99
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type merchantLoader interface {
	GetMerchant(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
}

type foodLoader interface {
	GetFood(ctx context.Context, id uuid.UUID) (*models.Food, error)
}

// Service owns every cart mutation. Handlers always receive the full
// reloaded cart back so clients can treat the response as the sole source
// of truth.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID, cartItemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

// AddItemInput captures one add-to-cart request.
type AddItemInput struct {
	MerchantID  uuid.UUID
	FoodID      uuid.UUID
	Quantity    int
	ReplaceCart bool
}

type service struct {
	repo     CartRepository
	tx       txRunner
	merchant merchantLoader
	food     foodLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, merchant merchantLoader, food foodLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if merchant == nil {
		return nil, fmt.Errorf("merchant loader required")
	}
	if food == nil {
		return nil, fmt.Errorf("food loader required")
	}
	return &service{repo: repo, tx: tx, merchant: merchant, food: food}, nil
}

// GetCart returns the user's cart; a user without one gets an empty view.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Cart{UserID: userID}, nil
		}
		return nil, err
	}
	return record, nil
}

// AddItem adopts the merchant when the cart is empty, sums quantities for a
// repeated food, and refuses a cross-merchant add unless ReplaceCart is set,
// in which case clear+add happen in one transaction.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Quantity < MinQuantity || input.Quantity > MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 1 and 99").
			WithDetails(map[string]any{"quantity": input.Quantity})
	}

	food, err := s.food.GetFood(ctx, input.FoodID)
	if err != nil {
		return nil, err
	}
	if food.MerchantID != input.MerchantID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food does not belong to the requested merchant")
	}
	if !food.Available {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food is not available")
	}

	requested, err := s.merchant.GetMerchant(ctx, input.MerchantID)
	if err != nil {
		return nil, err
	}

	var saved *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := s.loadOrCreate(ctx, txRepo, userID)
		if err != nil {
			return err
		}

		if !record.IsEmpty() && record.MerchantID != nil && *record.MerchantID != input.MerchantID {
			if !input.ReplaceCart {
				current, err := s.merchant.GetMerchant(ctx, *record.MerchantID)
				if err != nil {
					return err
				}
				return pkgerrors.New(pkgerrors.CodeConflict, "cart holds items from another merchant").
					WithDetails(map[string]any{
						"currentMerchantName":   current.Name,
						"requestedMerchantName": requested.Name,
					})
			}
			if err := txRepo.DeleteItems(ctx, record.ID); err != nil {
				return err
			}
			record.Items = nil
			record.MerchantID = nil
		}

		if record.IsEmpty() {
			merchantID := input.MerchantID
			if err := txRepo.SetMerchant(ctx, record.ID, &merchantID); err != nil {
				return err
			}
		}

		if existing := findLineByFood(record.Items, input.FoodID); existing != nil {
			combined := existing.Quantity + input.Quantity
			if combined > MaxQuantity {
				return pkgerrors.New(pkgerrors.CodeValidation, "combined quantity exceeds 99").
					WithDetails(map[string]any{"quantity": combined})
			}
			existing.Quantity = combined
			existing.LineTotal = existing.UnitPrice * combined
			if err := txRepo.UpdateItem(ctx, existing); err != nil {
				return err
			}
		} else {
			item := &models.CartItem{
				CartID:    record.ID,
				FoodID:    food.ID,
				FoodName:  food.Name,
				UnitPrice: food.Price,
				Quantity:  input.Quantity,
				LineTotal: food.Price * input.Quantity,
			}
			if err := txRepo.CreateItem(ctx, item); err != nil {
				return err
			}
		}

		saved, err = txRepo.FindByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UpdateQuantity treats a quantity below 1 as removal.
func (s *service) UpdateQuantity(ctx context.Context, userID, cartItemID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < MinQuantity {
		return s.RemoveItem(ctx, userID, cartItemID)
	}
	if quantity > MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 1 and 99").
			WithDetails(map[string]any{"quantity": quantity})
	}

	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := txRepo.FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return err
		}

		item, err := txRepo.FindItem(ctx, record.ID, cartItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return err
		}

		item.Quantity = quantity
		item.LineTotal = item.UnitPrice * quantity
		if err := txRepo.UpdateItem(ctx, item); err != nil {
			return err
		}

		saved, err = txRepo.FindByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// RemoveItem drops one line and releases the merchant binding when the cart
// goes empty.
func (s *service) RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) (*models.Cart, error) {
	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := txRepo.FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return err
		}

		if _, err := txRepo.FindItem(ctx, record.ID, cartItemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return err
		}

		if err := txRepo.DeleteItem(ctx, record.ID, cartItemID); err != nil {
			return err
		}

		saved, err = txRepo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if saved.IsEmpty() && saved.MerchantID != nil {
			if err := txRepo.SetMerchant(ctx, saved.ID, nil); err != nil {
				return err
			}
			saved.MerchantID = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Clear empties the cart; clearing an already-empty cart is a no-op.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := txRepo.FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				saved = &models.Cart{UserID: userID}
				return nil
			}
			return err
		}
		if record.IsEmpty() {
			saved = record
			return nil
		}

		if err := txRepo.DeleteItems(ctx, record.ID); err != nil {
			return err
		}
		if err := txRepo.SetMerchant(ctx, record.ID, nil); err != nil {
			return err
		}

		saved, err = txRepo.FindByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *service) loadOrCreate(ctx context.Context, repo CartRepository, userID uuid.UUID) (*models.Cart, error) {
	record, err := repo.FindByUser(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return repo.Create(ctx, &models.Cart{UserID: userID})
}

func findLineByFood(items []models.CartItem, foodID uuid.UUID) *models.CartItem {
	for i := range items {
		if items[i].FoodID == foodID {
			return &items[i]
		}
	}
	return nil
}
