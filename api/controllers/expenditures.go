package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/api/middleware"
	"github.com/foodger/foodger-backend/api/responses"
	"github.com/foodger/foodger-backend/api/validators"
	expsvc "github.com/foodger/foodger-backend/internal/expenditures"
	"github.com/foodger/foodger-backend/pkg/db/models"
	"github.com/foodger/foodger-backend/pkg/logger"
	"github.com/foodger/foodger-backend/pkg/types"
)

// ExpendituresList returns the caller's purchase history, newest first.
func ExpendituresList(svc expsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		meal, err := validators.ParseQueryMealType(r, "mealType")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), userID, expsvc.ListFilter{
			Start:    start,
			End:      end,
			MealType: meal,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]expenditureResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newExpenditureResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// ExpenditureGet returns one expenditure owned by the caller.
func ExpenditureGet(svc expsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		id, err := validators.ParsePathUUID(chi.URLParam(r, "expenditureID"), "expenditureID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Get(r.Context(), userID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newExpenditureResponse(row))
	}
}

type expenditureResponse struct {
	ID             uuid.UUID                 `json:"id"`
	MerchantID     uuid.UUID                 `json:"merchantId"`
	MerchantName   string                    `json:"merchantName"`
	MealType       string                    `json:"mealType"`
	Date           string                    `json:"date"`
	Time           string                    `json:"time"`
	TotalAmount    int                       `json:"totalAmount"`
	DiscountAmount int                       `json:"discountAmount"`
	FinalAmount    int                       `json:"finalAmount"`
	Items          []expenditureItemResponse `json:"items"`
	CreatedAt      time.Time                 `json:"createdAt"`
}

type expenditureItemResponse struct {
	FoodID    uuid.UUID `json:"foodId"`
	FoodName  string    `json:"foodName"`
	UnitPrice int       `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	LineTotal int       `json:"lineTotal"`
}

func newExpenditureResponse(row *models.Expenditure) expenditureResponse {
	items := make([]expenditureItemResponse, 0, len(row.Items))
	for _, item := range row.Items {
		items = append(items, expenditureItemResponse{
			FoodID:    item.FoodID,
			FoodName:  item.FoodName,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return expenditureResponse{
		ID:             row.ID,
		MerchantID:     row.MerchantID,
		MerchantName:   row.MerchantName,
		MealType:       string(row.MealType),
		Date:           types.FormatDate(row.OccurredDate),
		Time:           row.OccurredTime,
		TotalAmount:    row.TotalAmount,
		DiscountAmount: row.DiscountAmount,
		FinalAmount:    row.FinalAmount,
		Items:          items,
		CreatedAt:      row.CreatedAt,
	}
}
