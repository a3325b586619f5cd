package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/pkg/db/models"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
)

type stubCatalogService struct {
	merchants []models.Merchant
	merchant  *models.Merchant
	foods     []models.Food
	err       error
}

func (s stubCatalogService) ListMerchants(ctx context.Context) ([]models.Merchant, error) {
	return s.merchants, s.err
}

func (s stubCatalogService) GetMerchant(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	return s.merchant, s.err
}

func (s stubCatalogService) ListMenu(ctx context.Context, merchantID uuid.UUID) ([]models.Food, error) {
	return s.foods, s.err
}

func (s stubCatalogService) GetFood(ctx context.Context, id uuid.UUID) (*models.Food, error) {
	return nil, s.err
}

func TestMerchantGetReturnsMerchant(t *testing.T) {
	merchant := &models.Merchant{ID: uuid.New(), Name: "Kimbap Heaven"}
	handler := MerchantGet(stubCatalogService{merchant: merchant}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/merchants/"+merchant.ID.String(), "")
	req = withURLParam(req, "merchantID", merchant.ID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data merchantResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Name != "Kimbap Heaven" {
		t.Fatalf("unexpected merchant: %+v", envelope.Data)
	}
}

func TestMerchantGetUnknownIs404(t *testing.T) {
	handler := MerchantGet(stubCatalogService{err: pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")}, nil)

	id := uuid.NewString()
	req := authedRequest(http.MethodGet, "/api/v1/merchants/"+id, "")
	req = withURLParam(req, "merchantID", id)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestMerchantMenuListsFoods(t *testing.T) {
	merchantID := uuid.New()
	handler := MerchantMenu(stubCatalogService{foods: []models.Food{
		{ID: uuid.New(), MerchantID: merchantID, Name: "Tuna Kimbap", Price: 4500},
		{ID: uuid.New(), MerchantID: merchantID, Name: "Beef Kimbap", Price: 5500},
	}}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/merchants/"+merchantID.String()+"/menu", "")
	req = withURLParam(req, "merchantID", merchantID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []foodResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("unexpected food count: %d", len(envelope.Data))
	}
}
