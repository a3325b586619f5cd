package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/api/middleware"
	cartsvc "github.com/foodger/foodger-backend/internal/cart"
	"github.com/foodger/foodger-backend/pkg/db/models"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
)

type stubCartService struct {
	record *models.Cart
	err    error
}

func (s stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.record, s.err
}

func (s stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*models.Cart, error) {
	return s.record, s.err
}

func (s stubCartService) UpdateQuantity(ctx context.Context, userID, cartItemID uuid.UUID, quantity int) (*models.Cart, error) {
	return s.record, s.err
}

func (s stubCartService) RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) (*models.Cart, error) {
	return s.record, s.err
}

func (s stubCartService) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.record, s.err
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.New()))
}

func TestCartGetReturnsCartView(t *testing.T) {
	merchantID := uuid.New()
	record := &models.Cart{
		ID:         uuid.New(),
		MerchantID: &merchantID,
		Items: []models.CartItem{
			{ID: uuid.New(), FoodName: "Pork Cutlet", UnitPrice: 9500, Quantity: 2, LineTotal: 19000},
		},
	}
	handler := CartGet(stubCartService{record: record}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalAmount != 19000 {
		t.Fatalf("unexpected total: %d", envelope.Data.TotalAmount)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("unexpected item count: %d", len(envelope.Data.Items))
	}
}

func TestCartAddItemConflictExposesMerchantNames(t *testing.T) {
	conflict := pkgerrors.New(pkgerrors.CodeConflict, "cart already holds items from another merchant").
		WithDetails(map[string]string{
			"currentMerchantName":   "Kimbap Heaven",
			"requestedMerchantName": "Burger Lab",
		})
	handler := CartAddItem(stubCartService{err: conflict}, nil, nil)

	body := `{"merchantId":"` + uuid.NewString() + `","foodId":"` + uuid.NewString() + `","quantity":1}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeConflict) {
		t.Fatalf("unexpected code: %s", envelope.Error.Code)
	}
	if envelope.Error.Details["currentMerchantName"] != "Kimbap Heaven" {
		t.Fatalf("missing current merchant name: %+v", envelope.Error.Details)
	}
	if envelope.Error.Details["requestedMerchantName"] != "Burger Lab" {
		t.Fatalf("missing requested merchant name: %+v", envelope.Error.Details)
	}
}

func TestCartAddItemRejectsOutOfRangeQuantity(t *testing.T) {
	handler := CartAddItem(stubCartService{}, nil, nil)

	body := `{"merchantId":"` + uuid.NewString() + `","foodId":"` + uuid.NewString() + `","quantity":100}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartUpdateItemRejectsMalformedID(t *testing.T) {
	handler := CartUpdateItem(stubCartService{}, nil, nil)

	req := authedRequest(http.MethodPatch, "/api/v1/cart/items/not-a-uuid", `{"quantity":2}`)
	req = withURLParam(req, "itemID", "not-a-uuid")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartClearEmptyCartReturnsEmptyView(t *testing.T) {
	handler := CartClear(stubCartService{record: &models.Cart{ID: uuid.New()}}, nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalAmount != 0 || len(envelope.Data.Items) != 0 {
		t.Fatalf("expected empty cart view, got %+v", envelope.Data)
	}
}
