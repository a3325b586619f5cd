package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/api/middleware"
	"github.com/foodger/foodger-backend/api/responses"
	"github.com/foodger/foodger-backend/api/validators"
	cartsvc "github.com/foodger/foodger-backend/internal/cart"
	checkoutsvc "github.com/foodger/foodger-backend/internal/checkout"
	"github.com/foodger/foodger-backend/pkg/db/models"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/logger"
	"github.com/foodger/foodger-backend/pkg/metrics"
)

// CartGet returns the caller's cart; users without one get an empty view.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		record, err := svc.GetCart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartAddItem adds one food line; replaceCart resolves a merchant conflict
// by swapping the whole cart in the same request.
func CartAddItem(svc cartsvc.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AddItem(r.Context(), userID, cartsvc.AddItemInput{
			MerchantID:  payload.MerchantID,
			FoodID:      payload.FoodID,
			Quantity:    payload.Quantity,
			ReplaceCart: payload.ReplaceCart,
		})
		if m != nil {
			m.IncCartMutation("add_item", err)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartUpdateItem sets a line quantity; zero removes the line.
func CartUpdateItem(svc cartsvc.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateQuantity(r.Context(), userID, itemID, payload.Quantity)
		if m != nil {
			m.IncCartMutation("update_quantity", err)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartRemoveItem deletes one line.
func CartRemoveItem(svc cartsvc.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RemoveItem(r.Context(), userID, itemID)
		if m != nil {
			m.IncCartMutation("remove_item", err)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartClear empties the cart; clearing an empty cart succeeds.
func CartClear(svc cartsvc.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		record, err := svc.Clear(r.Context(), userID)
		if m != nil {
			m.IncCartMutation("clear", err)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartProjection previews the remaining budget after the current cart.
func CartProjection(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		meal, err := validators.ParseQueryMealType(r, "mealType")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if meal == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "mealType is required"))
			return
		}

		projection, err := svc.Quote(r.Context(), userID, date, *meal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, projection)
	}
}

type addCartItemRequest struct {
	MerchantID  uuid.UUID `json:"merchantId" validate:"required"`
	FoodID      uuid.UUID `json:"foodId" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,min=1,max=99"`
	ReplaceCart bool      `json:"replaceCart"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0,max=99"`
}

type cartResponse struct {
	ID          uuid.UUID          `json:"id"`
	MerchantID  *uuid.UUID         `json:"merchantId,omitempty"`
	Items       []cartItemResponse `json:"items"`
	TotalAmount int                `json:"totalAmount"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type cartItemResponse struct {
	ID        uuid.UUID `json:"id"`
	FoodID    uuid.UUID `json:"foodId"`
	FoodName  string    `json:"foodName"`
	UnitPrice int       `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	LineTotal int       `json:"lineTotal"`
}

func newCartResponse(record *models.Cart) cartResponse {
	if record == nil {
		return cartResponse{Items: []cartItemResponse{}}
	}
	items := make([]cartItemResponse, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, cartItemResponse{
			ID:        item.ID,
			FoodID:    item.FoodID,
			FoodName:  item.FoodName,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return cartResponse{
		ID:          record.ID,
		MerchantID:  record.MerchantID,
		Items:       items,
		TotalAmount: record.TotalAmount(),
		UpdatedAt:   record.UpdatedAt,
	}
}
