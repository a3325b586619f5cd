package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/api/responses"
	"github.com/foodger/foodger-backend/api/validators"
	catalogsvc "github.com/foodger/foodger-backend/internal/catalog"
	"github.com/foodger/foodger-backend/pkg/db/models"
	"github.com/foodger/foodger-backend/pkg/logger"
)

// MerchantsList returns every merchant in the catalog.
func MerchantsList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListMerchants(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]merchantResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newMerchantResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// MerchantGet returns one merchant.
func MerchantGet(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, err := validators.ParsePathUUID(chi.URLParam(r, "merchantID"), "merchantID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.GetMerchant(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMerchantResponse(row))
	}
}

// MerchantMenu returns the merchant's foods.
func MerchantMenu(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, err := validators.ParsePathUUID(chi.URLParam(r, "merchantID"), "merchantID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListMenu(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]foodResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newFoodResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type merchantResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Address  string    `json:"address,omitempty"`
}

func newMerchantResponse(row *models.Merchant) merchantResponse {
	return merchantResponse{
		ID:       row.ID,
		Name:     row.Name,
		Category: row.Category,
		Address:  row.Address,
	}
}

type foodResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	Available bool      `json:"available"`
}

func newFoodResponse(row *models.Food) foodResponse {
	return foodResponse{
		ID:        row.ID,
		Name:      row.Name,
		Price:     row.Price,
		Available: row.Available,
	}
}
