package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/foodger/foodger-backend/pkg/db/models"
	"github.com/foodger/foodger-backend/pkg/enums"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/types"
)

// DerivationDays is the fixed divisor for the default daily allowance.
const DerivationDays = 30

// maxBulkRangeDays bounds one bulk upsert so a bad request cannot write an
// unbounded number of rows.
const maxBulkRangeDays = 366

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns budget definitions and their consumption totals. Absence of a
// snapshot for a date is a valid state and is returned as nil, not an error.
type Service interface {
	GetMonthlyBudget(ctx context.Context, userID uuid.UUID, year, month int) (*models.MonthlyBudget, error)
	UpsertMonthlyBudget(ctx context.Context, userID uuid.UUID, input UpsertMonthlyInput) (*models.MonthlyBudget, error)
	GetDailyBudget(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyBudget, error)
	UpsertDailyBudget(ctx context.Context, userID uuid.UUID, date time.Time, input DailyBudgetInput) (*models.DailyBudget, error)
	BulkSetDailyBudget(ctx context.Context, userID uuid.UUID, start, end time.Time, input DailyBudgetInput) ([]models.DailyBudget, error)
	ListDailyBudgets(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.DailyBudget, error)
	MonthlySummary(ctx context.Context, userID uuid.UUID, year, month int) (*Summary, error)

	// Debit runs inside the caller's transaction and applies one committed
	// expenditure to the date's meal bucket and the month aggregate.
	Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time, meal enums.MealType, amount int) (*models.DailyBudget, error)
}

// UpsertMonthlyInput carries the month allocation. DailyTotal, when nil,
// derives as floor(MonthlyTotal / 30).
type UpsertMonthlyInput struct {
	Year         int
	Month        int
	MonthlyTotal int
	DailyTotal   *int
}

// DailyBudgetInput carries a snapshot allocation.
type DailyBudgetInput struct {
	DailyTotal  int
	MealBudgets types.MealBudgets
}

// Summary is the month roll-up with a spend utilization ratio.
type Summary struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	MonthlyTotal int             `json:"monthlyTotal"`
	DailyTotal   int             `json:"dailyTotal"`
	SpentTotal   int             `json:"spentTotal"`
	Remaining    int             `json:"remaining"`
	Utilization  decimal.Decimal `json:"utilization"`
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds the budget ledger service.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("budget repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) GetMonthlyBudget(ctx context.Context, userID uuid.UUID, year, month int) (*models.MonthlyBudget, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	row, err := s.repo.FindMonthly(ctx, userID, year, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

// UpsertMonthlyBudget recomputes the derived daily allowance unless the
// caller overrides it; meal sub-budgets are never touched here.
func (s *service) UpsertMonthlyBudget(ctx context.Context, userID uuid.UUID, input UpsertMonthlyInput) (*models.MonthlyBudget, error) {
	if err := validateMonth(input.Year, input.Month); err != nil {
		return nil, err
	}
	if input.MonthlyTotal < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "monthly total must be non-negative")
	}
	if input.DailyTotal != nil && *input.DailyTotal < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "daily total must be non-negative")
	}

	var saved *models.MonthlyBudget
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row, err := txRepo.FindMonthly(ctx, userID, input.Year, input.Month)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if row == nil {
			row = &models.MonthlyBudget{
				UserID: userID,
				Year:   input.Year,
				Month:  input.Month,
			}
			start, end := monthBounds(input.Year, input.Month)
			spent, err := txRepo.SumSpentForMonth(ctx, userID, start, end)
			if err != nil {
				return err
			}
			row.SpentTotal = spent
		}

		row.MonthlyTotal = input.MonthlyTotal
		if input.DailyTotal != nil {
			row.DailyTotal = *input.DailyTotal
		} else {
			row.DailyTotal = input.MonthlyTotal / DerivationDays
		}

		saved, err = txRepo.SaveMonthly(ctx, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *service) GetDailyBudget(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyBudget, error) {
	row, err := s.repo.FindDaily(ctx, userID, types.TruncateToDate(date))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

// UpsertDailyBudget is the single idempotent write for one date: overwrite
// when present, create when absent. It is behaviorally identical to a bulk
// set with start == end.
func (s *service) UpsertDailyBudget(ctx context.Context, userID uuid.UUID, date time.Time, input DailyBudgetInput) (*models.DailyBudget, error) {
	rows, err := s.BulkSetDailyBudget(ctx, userID, date, date, input)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// BulkSetDailyBudget applies upsert semantics to each date in the inclusive
// range; spent totals on existing snapshots are preserved.
func (s *service) BulkSetDailyBudget(ctx context.Context, userID uuid.UUID, start, end time.Time, input DailyBudgetInput) ([]models.DailyBudget, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.DailyTotal < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "daily total must be non-negative")
	}
	for meal, bucket := range input.MealBudgets {
		if !meal.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown meal type").
				WithDetails(map[string]any{"mealType": meal})
		}
		if bucket.Budget < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "meal budget must be non-negative")
		}
	}

	start = types.TruncateToDate(start)
	end = types.TruncateToDate(end)
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date")
	}
	if int(end.Sub(start).Hours()/24) >= maxBulkRangeDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range too large")
	}

	allocations := input.MealBudgets.Normalized()

	var saved []models.DailyBudget
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
			row, err := txRepo.FindDaily(ctx, userID, date)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if row == nil {
				row = &models.DailyBudget{
					UserID: userID,
					Date:   date,
				}
			}

			row.DailyTotal = input.DailyTotal
			row.MealBudgets = mergeSpent(allocations, row.MealBudgets)

			updated, err := txRepo.SaveDaily(ctx, row)
			if err != nil {
				return err
			}
			saved = append(saved, *updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *service) ListDailyBudgets(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.DailyBudget, error) {
	start = types.TruncateToDate(start)
	end = types.TruncateToDate(end)
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date")
	}
	return s.repo.ListDailyRange(ctx, userID, start, end)
}

func (s *service) MonthlySummary(ctx context.Context, userID uuid.UUID, year, month int) (*Summary, error) {
	row, err := s.GetMonthlyBudget(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no budget set for month")
	}

	utilization := decimal.Zero
	if row.MonthlyTotal > 0 {
		utilization = decimal.NewFromInt(int64(row.SpentTotal)).
			Div(decimal.NewFromInt(int64(row.MonthlyTotal))).
			Round(4)
	}

	return &Summary{
		Year:         row.Year,
		Month:        row.Month,
		MonthlyTotal: row.MonthlyTotal,
		DailyTotal:   row.DailyTotal,
		SpentTotal:   row.SpentTotal,
		Remaining:    row.Remaining(),
		Utilization:  utilization,
	}, nil
}

// Debit applies one expenditure inside the caller's transaction. The daily
// snapshot is created lazily when absent, seeded from the month's daily
// allowance; a month without a budget row simply skips the aggregate update.
func (s *service) Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time, meal enums.MealType, amount int) (*models.DailyBudget, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be non-negative")
	}
	if !meal.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown meal type")
	}

	txRepo := s.repo.WithTx(tx)
	date = types.TruncateToDate(date)

	row, err := txRepo.FindDaily(ctx, userID, date)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if row == nil {
		row = &models.DailyBudget{
			UserID:      userID,
			Date:        date,
			MealBudgets: types.MealBudgets{}.Normalized(),
		}
		if monthly, err := txRepo.FindMonthly(ctx, userID, date.Year(), int(date.Month())); err == nil {
			row.DailyTotal = monthly.DailyTotal
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if row.MealBudgets == nil {
		row.MealBudgets = types.MealBudgets{}.Normalized()
	}

	bucket := row.MealBudgets[meal]
	bucket.Spent += amount
	row.MealBudgets[meal] = bucket
	row.TotalSpent += amount

	saved, err := txRepo.SaveDaily(ctx, row)
	if err != nil {
		return nil, err
	}

	monthly, err := txRepo.FindMonthly(ctx, userID, date.Year(), int(date.Month()))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return saved, nil
		}
		return nil, err
	}
	monthly.SpentTotal += amount
	if _, err := txRepo.SaveMonthly(ctx, monthly); err != nil {
		return nil, err
	}
	return saved, nil
}

func validateMonth(year, month int) error {
	if year < 2000 || year > 2200 {
		return pkgerrors.New(pkgerrors.CodeValidation, "year out of range")
	}
	if month < 1 || month > 12 {
		return pkgerrors.New(pkgerrors.CodeValidation, "month out of range")
	}
	return nil
}

func monthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// mergeSpent keeps accumulated consumption while replacing allocations.
func mergeSpent(allocations, previous types.MealBudgets) types.MealBudgets {
	out := make(types.MealBudgets, len(types.AllMealBuckets))
	for _, meal := range types.AllMealBuckets {
		out[meal] = types.MealBudget{
			Budget: allocations[meal].Budget,
			Spent:  previous[meal].Spent,
		}
	}
	return out
}
