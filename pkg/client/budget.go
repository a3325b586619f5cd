package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/foodger/foodger-backend/pkg/enums"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/types"
)

// monthFetchConcurrency bounds how many daily snapshot requests run at once
// when loading a full calendar month.
const monthFetchConcurrency = 4

type monthlyBudgetPayload struct {
	Year         int  `json:"year"`
	Month        int  `json:"month"`
	MonthlyTotal int  `json:"monthlyTotal"`
	DailyTotal   *int `json:"dailyTotal,omitempty"`
}

// MonthlyBudget is the client-side month allocation view.
type MonthlyBudget struct {
	Year         int `json:"year"`
	Month        int `json:"month"`
	MonthlyTotal int `json:"monthlyTotal"`
	DailyTotal   int `json:"dailyTotal"`
	SpentTotal   int `json:"spentTotal"`
	Remaining    int `json:"remaining"`
}

type mealAllocation struct {
	Budget int `json:"budget"`
}

type dailyBudgetPayload struct {
	DailyTotal  int                               `json:"dailyTotal"`
	MealBudgets map[enums.MealType]mealAllocation `json:"mealBudgets,omitempty"`
}

type bulkDailyBudgetPayload struct {
	StartDate   string                            `json:"startDate"`
	EndDate     string                            `json:"endDate"`
	DailyTotal  int                               `json:"dailyTotal"`
	MealBudgets map[enums.MealType]mealAllocation `json:"mealBudgets,omitempty"`
}

// BudgetBook reads and writes the budget ledger. Daily writes are serialized
// so an overlapping single-date upsert and bulk range write cannot interleave
// on the server.
type BudgetBook struct {
	api     *Client
	writeMu sync.Mutex
}

func NewBudgetBook(api *Client) (*BudgetBook, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "api client required")
	}
	return &BudgetBook{api: api}, nil
}

// Monthly fetches the month allocation; nil when none is set.
func (b *BudgetBook) Monthly(ctx context.Context, year, month int) (*MonthlyBudget, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))

	var row *MonthlyBudget
	if err := b.api.get(ctx, "/api/v1/budgets/monthly", query, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// SetMonthly upserts the month allocation. DailyTotal nil lets the server
// derive the per-day allowance from the monthly total.
func (b *BudgetBook) SetMonthly(ctx context.Context, year, month, monthlyTotal int, dailyTotal *int) (*MonthlyBudget, error) {
	var row MonthlyBudget
	err := b.api.do(ctx, request{
		method: http.MethodPut,
		path:   "/api/v1/budgets/monthly",
		body: monthlyBudgetPayload{
			Year:         year,
			Month:        month,
			MonthlyTotal: monthlyTotal,
			DailyTotal:   dailyTotal,
		},
	}, &row)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SetDaily creates or replaces one date's snapshot.
func (b *BudgetBook) SetDaily(ctx context.Context, date string, dailyTotal int, meals map[enums.MealType]int) (*DailyBudget, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	var row DailyBudget
	err := b.api.do(ctx, request{
		method: http.MethodPut,
		path:   "/api/v1/budgets/daily/" + url.PathEscape(date),
		body: dailyBudgetPayload{
			DailyTotal:  dailyTotal,
			MealBudgets: toMealAllocations(meals),
		},
	}, &row)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// BulkSetDaily applies the same allocation to every date between start and
// end inclusive. The route is idempotency-guarded, so each call carries a
// fresh key.
func (b *BudgetBook) BulkSetDaily(ctx context.Context, start, end string, dailyTotal int, meals map[enums.MealType]int) ([]DailyBudget, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	var rows []DailyBudget
	err := b.api.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/v1/budgets/daily/bulk",
		body: bulkDailyBudgetPayload{
			StartDate:   start,
			EndDate:     end,
			DailyTotal:  dailyTotal,
			MealBudgets: toMealAllocations(meals),
		},
		headers: map[string]string{"Idempotency-Key": uuid.NewString()},
	}, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func toMealAllocations(meals map[enums.MealType]int) map[enums.MealType]mealAllocation {
	if len(meals) == 0 {
		return nil
	}
	out := make(map[enums.MealType]mealAllocation, len(meals))
	for meal, budget := range meals {
		out[meal] = mealAllocation{Budget: budget}
	}
	return out
}

// Daily fetches one date's snapshot; nil when none exists.
func (b *BudgetBook) Daily(ctx context.Context, date string) (*DailyBudget, error) {
	query := url.Values{}
	query.Set("date", date)

	var row *DailyBudget
	if err := b.api.get(ctx, "/api/v1/budgets/daily", query, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Month loads every daily snapshot of a calendar month, keyed by date.
// Dates without a snapshot map to nil. Fetches run concurrently with a
// bounded worker count; failures for individual dates are combined so one
// bad day does not hide another.
func (b *BudgetBook) Month(ctx context.Context, year, month int) (map[string]*DailyBudget, error) {
	if month < 1 || month > 12 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	out := make(map[string]*DailyBudget, days)
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs error
		sem  = make(chan struct{}, monthFetchConcurrency)
	)

	for day := 1; day <= days; day++ {
		date := types.FormatDate(first.AddDate(0, 0, day-1))

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			row, err := b.Daily(ctx, date)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, err)
				return
			}
			out[date] = row
		}()
	}
	wg.Wait()

	if errs != nil {
		return nil, errs
	}
	return out, nil
}
