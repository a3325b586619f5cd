package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foodger/foodger-backend/api/middleware"
	"github.com/foodger/foodger-backend/api/responses"
	"github.com/foodger/foodger-backend/api/validators"
	budgetsvc "github.com/foodger/foodger-backend/internal/budget"
	"github.com/foodger/foodger-backend/pkg/db/models"
	"github.com/foodger/foodger-backend/pkg/enums"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/logger"
	"github.com/foodger/foodger-backend/pkg/types"
)

// MonthlyBudgetGet returns the month allocation; data is null when none is set.
func MonthlyBudgetGet(svc budgetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		year, month, err := parseYearMonth(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.GetMonthlyBudget(r.Context(), userID, year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if row == nil {
			responses.WriteSuccess(w, nil)
			return
		}

		responses.WriteSuccess(w, newMonthlyBudgetResponse(row))
	}
}

// MonthlyBudgetUpsert creates or replaces the month allocation.
func MonthlyBudgetUpsert(svc budgetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var payload upsertMonthlyBudgetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.UpsertMonthlyBudget(r.Context(), userID, budgetsvc.UpsertMonthlyInput{
			Year:         payload.Year,
			Month:        payload.Month,
			MonthlyTotal: payload.MonthlyTotal,
			DailyTotal:   payload.DailyTotal,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMonthlyBudgetResponse(row))
	}
}

// MonthlySummaryGet returns the month roll-up with utilization.
func MonthlySummaryGet(svc budgetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		year, month, err := parseYearMonth(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.MonthlySummary(r.Context(), userID, year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// DailyBudgetGet returns one date's snapshot, or a range when start/end are
// given; an absent single-date snapshot returns null data.
func DailyBudgetGet(svc budgetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		start, err := validators.ParseQueryDateOptional(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDateOptional(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if start != nil || end != nil {
			if start == nil || end == nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "start and end must be provided together"))
				return
			}
			rows, err := svc.ListDailyBudgets(r.Context(), userID, *start, *end)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			out := make([]dailyBudgetResponse, 0, len(rows))
			for i := range rows {
				out = append(out, newDailyBudgetResponse(&rows[i]))
			}
			responses.WriteSuccess(w, out)
			return
		}

		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.GetDailyBudget(r.Context(), userID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if row == nil {
			responses.WriteSuccess(w, nil)
			return
		}

		responses.WriteSuccess(w, newDailyBudgetResponse(row))
	}
}

// DailyBudgetUpsert creates or replaces one date's snapshot.
func DailyBudgetUpsert(svc budgetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		date, err := types.ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted YYYY-MM-DD"))
			return
		}

		var payload upsertDailyBudgetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.UpsertDailyBudget(r.Context(), userID, date, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDailyBudgetResponse(row))
	}
}

// DailyBudgetBulkSet applies the same snapshot to every date in a range.
func DailyBudgetBulkSet(svc budgetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var payload bulkDailyBudgetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, err := types.ParseDate(payload.StartDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "startDate must be formatted YYYY-MM-DD"))
			return
		}
		end, err := types.ParseDate(payload.EndDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "endDate must be formatted YYYY-MM-DD"))
			return
		}

		rows, err := svc.BulkSetDailyBudget(r.Context(), userID, start, end, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]dailyBudgetResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newDailyBudgetResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func parseYearMonth(r *http.Request) (int, int, error) {
	year, err := validators.ParseQueryInt(r, "year", 0, 2000, 2200)
	if err != nil {
		return 0, 0, err
	}
	if year == 0 {
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "year is required")
	}
	month, err := validators.ParseQueryInt(r, "month", 0, 1, 12)
	if err != nil {
		return 0, 0, err
	}
	if month == 0 {
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "month is required")
	}
	return year, month, nil
}

type upsertMonthlyBudgetRequest struct {
	Year         int  `json:"year" validate:"required,min=2000,max=2200"`
	Month        int  `json:"month" validate:"required,min=1,max=12"`
	MonthlyTotal int  `json:"monthlyTotal" validate:"min=0"`
	DailyTotal   *int `json:"dailyTotal,omitempty"`
}

type mealBudgetPayload struct {
	Budget int `json:"budget" validate:"min=0"`
}

type upsertDailyBudgetRequest struct {
	DailyTotal  int                                  `json:"dailyTotal" validate:"min=0"`
	MealBudgets map[enums.MealType]mealBudgetPayload `json:"mealBudgets,omitempty" validate:"dive"`
}

type bulkDailyBudgetRequest struct {
	StartDate   string                               `json:"startDate" validate:"required"`
	EndDate     string                               `json:"endDate" validate:"required"`
	DailyTotal  int                                  `json:"dailyTotal" validate:"min=0"`
	MealBudgets map[enums.MealType]mealBudgetPayload `json:"mealBudgets,omitempty" validate:"dive"`
}

func (r upsertDailyBudgetRequest) toInput() budgetsvc.DailyBudgetInput {
	return budgetsvc.DailyBudgetInput{
		DailyTotal:  r.DailyTotal,
		MealBudgets: toMealBudgets(r.MealBudgets),
	}
}

func (r bulkDailyBudgetRequest) toInput() budgetsvc.DailyBudgetInput {
	return budgetsvc.DailyBudgetInput{
		DailyTotal:  r.DailyTotal,
		MealBudgets: toMealBudgets(r.MealBudgets),
	}
}

func toMealBudgets(payload map[enums.MealType]mealBudgetPayload) types.MealBudgets {
	out := types.MealBudgets{}
	for meal, bucket := range payload {
		out[meal] = types.MealBudget{Budget: bucket.Budget}
	}
	return out
}

type monthlyBudgetResponse struct {
	Year         int `json:"year"`
	Month        int `json:"month"`
	MonthlyTotal int `json:"monthlyTotal"`
	DailyTotal   int `json:"dailyTotal"`
	SpentTotal   int `json:"spentTotal"`
	Remaining    int `json:"remaining"`
}

func newMonthlyBudgetResponse(row *models.MonthlyBudget) monthlyBudgetResponse {
	return monthlyBudgetResponse{
		Year:         row.Year,
		Month:        row.Month,
		MonthlyTotal: row.MonthlyTotal,
		DailyTotal:   row.DailyTotal,
		SpentTotal:   row.SpentTotal,
		Remaining:    row.Remaining(),
	}
}

type dailyBudgetResponse struct {
	Date        string            `json:"date"`
	DailyTotal  int               `json:"dailyTotal"`
	TotalSpent  int               `json:"totalSpent"`
	Remaining   int               `json:"remaining"`
	MealBudgets types.MealBudgets `json:"mealBudgets"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func newDailyBudgetResponse(row *models.DailyBudget) dailyBudgetResponse {
	return dailyBudgetResponse{
		Date:        types.FormatDate(row.Date),
		DailyTotal:  row.DailyTotal,
		TotalSpent:  row.TotalSpent,
		Remaining:   row.RemainingBudget(),
		MealBudgets: row.MealBudgets.Normalized(),
		UpdatedAt:   row.UpdatedAt,
	}
}
