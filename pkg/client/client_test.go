package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/types"
)

type stubTokens struct {
	mu        sync.Mutex
	token     string
	refreshes int
}

func (s *stubTokens) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *stubTokens) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	s.token = "refreshed"
	return s.token, nil
}

func writeSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Result: types.ResultSuccess, Data: data})
}

func writeError(w http.ResponseWriter, status int, code pkgerrors.Code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{
		Result: types.ResultError,
		Error:  types.APIError{Code: string(code), Message: message, Details: details},
	})
}

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *stubTokens, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := &stubTokens{token: "initial"}
	api, err := New(server.URL, tokens, opts...)
	require.NoError(t, err)
	return api, tokens, server
}

func TestGetDecodesSuccessEnvelope(t *testing.T) {
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer initial", r.Header.Get("Authorization"))
		writeSuccess(w, map[string]any{"cartTotal": 6500, "isOverBudget": true})
	}))

	var projection Projection
	err := api.get(context.Background(), "/api/v1/cart/projection", nil, &projection)

	require.NoError(t, err)
	assert.Equal(t, 6500, projection.CartTotal)
	assert.True(t, projection.OverBudget)
}

func TestErrorEnvelopeMapsCodeAndDetails(t *testing.T) {
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusConflict, pkgerrors.CodeConflict, "cart already holds items from another merchant", map[string]any{
			"currentMerchantName":   "Kimbap Heaven",
			"requestedMerchantName": "Burger Lab",
		})
	}))

	err := api.do(context.Background(), request{method: http.MethodPost, path: "/api/v1/cart/items", body: map[string]int{}}, nil)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "cart already holds items from another merchant", typed.Message())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Kimbap Heaven", details["currentMerchantName"])
}

func TestAuthExpiredRefreshesOnceAndReplays(t *testing.T) {
	api, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer refreshed" {
			writeError(w, http.StatusUnauthorized, pkgerrors.CodeAuthExpired, "token expired", nil)
			return
		}
		writeSuccess(w, map[string]any{"totalAmount": 3000})
	}))

	var cart Cart
	err := api.get(context.Background(), "/api/v1/cart", nil, &cart)

	require.NoError(t, err)
	assert.Equal(t, 3000, cart.TotalAmount)
	assert.Equal(t, 1, tokens.refreshes)
}

func TestAuthExpiredAfterReplayIsTerminal(t *testing.T) {
	hits := 0
	api, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		writeError(w, http.StatusUnauthorized, pkgerrors.CodeAuthExpired, "token expired", nil)
	}))

	err := api.do(context.Background(), request{method: http.MethodPost, path: "/api/v1/checkout", body: map[string]int{}}, nil)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeAuthExpired, typed.Code())
	assert.Equal(t, 1, tokens.refreshes)
	assert.Equal(t, 2, hits)
}

func TestGetRetriesTransientFailures(t *testing.T) {
	hits := 0
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			writeError(w, http.StatusServiceUnavailable, pkgerrors.CodeTransient, "upstream unavailable", nil)
			return
		}
		writeSuccess(w, map[string]any{"totalAmount": 500})
	}), WithGetRetries(1))

	var cart Cart
	err := api.get(context.Background(), "/api/v1/cart", nil, &cart)

	require.NoError(t, err)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 500, cart.TotalAmount)
}

func TestWritesAreNeverRetried(t *testing.T) {
	hits := 0
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		writeError(w, http.StatusServiceUnavailable, pkgerrors.CodeTransient, "upstream unavailable", nil)
	}), WithGetRetries(3))

	err := api.do(context.Background(), request{method: http.MethodPost, path: "/api/v1/checkout", body: map[string]int{}}, nil)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeTransient, typed.Code())
	assert.Equal(t, 1, hits)
}

func TestMalformed5xxBodyIsTransient(t *testing.T) {
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}), WithGetRetries(0))

	err := api.get(context.Background(), "/api/v1/cart", nil, nil)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeTransient, typed.Code())
}

func TestNullDataLeavesPointerNil(t *testing.T) {
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, nil)
	}))

	var row *DailyBudget
	err := api.get(context.Background(), "/api/v1/budgets/daily", nil, &row)

	require.NoError(t, err)
	assert.Nil(t, row)
}
