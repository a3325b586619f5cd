package controllers

import (
	"net/http"

	"github.com/foodger/foodger-backend/api/middleware"
	"github.com/foodger/foodger-backend/api/responses"
	"github.com/foodger/foodger-backend/api/validators"
	checkoutsvc "github.com/foodger/foodger-backend/internal/checkout"
	"github.com/foodger/foodger-backend/pkg/enums"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/logger"
	"github.com/foodger/foodger-backend/pkg/metrics"
	"github.com/foodger/foodger-backend/pkg/types"
)

// Checkout converts the cart into an expenditure and debits the ledger.
func Checkout(svc checkoutsvc.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := types.ParseDate(payload.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted YYYY-MM-DD"))
			return
		}

		result, err := svc.Execute(r.Context(), userID, checkoutsvc.Input{
			MealType:       enums.MealType(payload.MealType),
			Date:           date,
			Time:           payload.Time,
			DiscountAmount: payload.DiscountAmount,
		})
		if m != nil {
			m.IncCheckout(err)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

type checkoutRequest struct {
	MealType       string `json:"mealType" validate:"required,oneof=BREAKFAST LUNCH DINNER OTHER"`
	Date           string `json:"date" validate:"required"`
	Time           string `json:"time" validate:"required"`
	DiscountAmount int    `json:"discountAmount" validate:"min=0"`
}

type checkoutResponse struct {
	Expenditure expenditureResponse     `json:"expenditure"`
	Budget      checkoutsvc.BudgetAfter `json:"budget"`
}

func newCheckoutResponse(result *checkoutsvc.Result) checkoutResponse {
	return checkoutResponse{
		Expenditure: newExpenditureResponse(result.Expenditure),
		Budget:      result.Budget,
	}
}
