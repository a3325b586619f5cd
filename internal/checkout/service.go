package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodger/foodger-backend/internal/budget"
	"github.com/foodger/foodger-backend/internal/cart"
	"github.com/foodger/foodger-backend/internal/expenditures"
	"github.com/foodger/foodger-backend/pkg/db/models"
	"github.com/foodger/foodger-backend/pkg/enums"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type merchantLoader interface {
	GetMerchant(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
}

type ledger interface {
	GetDailyBudget(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyBudget, error)
	Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time, meal enums.MealType, amount int) (*models.DailyBudget, error)
}

// Input is one checkout submission. OccuredTime defaults to the server
// clock when empty.
type Input struct {
	MealType       enums.MealType
	Date           time.Time
	Time           string
	DiscountAmount int
}

// BudgetAfter reports the ledger position for the affected buckets right
// after the debit committed.
type BudgetAfter struct {
	DailyTotal     int `json:"dailyTotal"`
	DailySpent     int `json:"dailySpent"`
	DailyRemaining int `json:"dailyRemaining"`
	MealBudget     int `json:"mealBudget"`
	MealSpent      int `json:"mealSpent"`
	MealRemaining  int `json:"mealRemaining"`
}

// Result is the committed expenditure plus the ledger position it produced.
type Result struct {
	Expenditure *models.Expenditure `json:"expenditure"`
	Budget      BudgetAfter         `json:"budget"`
}

// Service converts the cart into an expenditure atomically: the record, the
// ledger debit, and the cart wipe commit together or not at all.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input Input) (*Result, error)
	Quote(ctx context.Context, userID uuid.UUID, date time.Time, meal enums.MealType) (*budget.Projection, error)
}

type service struct {
	carts        cart.CartRepository
	expenditures *expenditures.Repository
	ledger       ledger
	merchants    merchantLoader
	tx           txRunner
	now          func() time.Time
}

// NewService builds the checkout coordinator.
func NewService(carts cart.CartRepository, expenditures *expenditures.Repository, ledger ledger, merchants merchantLoader, tx txRunner) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if expenditures == nil {
		return nil, fmt.Errorf("expenditure writer required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("budget ledger required")
	}
	if merchants == nil {
		return nil, fmt.Errorf("merchant loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		carts:        carts,
		expenditures: expenditures,
		ledger:       ledger,
		merchants:    merchants,
		tx:           tx,
		now:          time.Now,
	}, nil
}

// Quote projects "remaining after purchase" for the current cart without
// touching the ledger. An over-budget quote never blocks checkout.
func (s *service) Quote(ctx context.Context, userID uuid.UUID, date time.Time, meal enums.MealType) (*budget.Projection, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !meal.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown meal type")
	}

	record, err := s.carts.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	snapshot, err := s.ledger.GetDailyBudget(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	projection := budget.Project(record.TotalAmount(), snapshot, meal)
	return &projection, nil
}

func (s *service) Execute(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.MealType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown meal type")
	}
	if input.DiscountAmount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be non-negative")
	}

	date := types.TruncateToDate(input.Date)
	today := types.TruncateToDate(s.now())
	if date.After(today) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expenditure date cannot be in the future")
	}

	if input.Time == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "time is required")
	}
	if _, err := time.Parse(types.TimeLayout, input.Time); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "time must be formatted HH:MM")
	}
	occurredTime := input.Time

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCarts := s.carts.WithTx(tx)

		record, err := txCarts.FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot check out an empty cart")
			}
			return err
		}
		if record.IsEmpty() || record.MerchantID == nil {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot check out an empty cart")
		}

		total := record.TotalAmount()
		if input.DiscountAmount > total {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds cart total").
				WithDetails(map[string]any{"cartTotal": total, "discountAmount": input.DiscountAmount})
		}
		final := total - input.DiscountAmount

		merchant, err := s.merchants.GetMerchant(ctx, *record.MerchantID)
		if err != nil {
			return err
		}

		expenditure := &models.Expenditure{
			UserID:         userID,
			MerchantID:     merchant.ID,
			MerchantName:   merchant.Name,
			MealType:       input.MealType,
			OccurredDate:   date,
			OccurredTime:   occurredTime,
			TotalAmount:    total,
			DiscountAmount: input.DiscountAmount,
			FinalAmount:    final,
			Items:          freezeItems(record.Items),
		}
		expenditure, err = s.expenditures.WithTx(tx).Create(ctx, expenditure)
		if err != nil {
			return err
		}

		snapshot, err := s.ledger.Debit(ctx, tx, userID, date, input.MealType, final)
		if err != nil {
			return err
		}

		if err := txCarts.DeleteItems(ctx, record.ID); err != nil {
			return err
		}
		if err := txCarts.SetMerchant(ctx, record.ID, nil); err != nil {
			return err
		}

		bucket := snapshot.MealBudget(input.MealType)
		result = &Result{
			Expenditure: expenditure,
			Budget: BudgetAfter{
				DailyTotal:     snapshot.DailyTotal,
				DailySpent:     snapshot.TotalSpent,
				DailyRemaining: snapshot.RemainingBudget(),
				MealBudget:     bucket.Budget,
				MealSpent:      bucket.Spent,
				MealRemaining:  bucket.Remaining(),
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// freezeItems copies cart lines into immutable expenditure lines.
func freezeItems(items []models.CartItem) []models.ExpenditureItem {
	out := make([]models.ExpenditureItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.ExpenditureItem{
			FoodID:    item.FoodID,
			FoodName:  item.FoodName,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return out
}
