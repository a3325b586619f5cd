package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodger/foodger-backend/pkg/enums"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
)

func newTestCoordinator(t *testing.T, handler http.Handler) (*CheckoutCoordinator, *CartManager) {
	t.Helper()

	api, _, _ := newTestClient(t, handler, WithGetRetries(0))
	manager, err := NewCartManager(api)
	require.NoError(t, err)
	coordinator, err := NewCheckoutCoordinator(api, manager)
	require.NoError(t, err)
	coordinator.now = func() time.Time {
		return time.Date(2026, time.March, 15, 12, 30, 0, 0, time.UTC)
	}
	return coordinator, manager
}

func populateMirror(t *testing.T, manager *CartManager) {
	t.Helper()
	manager.replaceMirror(&Cart{
		ID:          uuid.New(),
		Items:       []CartItem{{ID: uuid.New(), FoodName: "Ramen", UnitPrice: 9000, Quantity: 2, LineTotal: 18000}},
		TotalAmount: 18000,
	})
}

func validInput() CheckoutInput {
	return CheckoutInput{MealType: enums.MealTypeLunch, Date: "2026-03-15", Time: "12:30"}
}

func TestSubmitClearsMirrorOnSuccess(t *testing.T) {
	var idempotencyKey string
	coordinator, manager := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/checkout", r.URL.Path)
		idempotencyKey = r.Header.Get("Idempotency-Key")
		writeSuccess(w, map[string]any{
			"expenditure": map[string]any{"id": uuid.New(), "finalAmount": 18000},
			"budget":      map[string]any{"mealSpent": 18000, "mealRemaining": 2000},
		})
	}))
	populateMirror(t, manager)

	result, err := coordinator.Submit(context.Background(), validInput())

	require.NoError(t, err)
	require.NotEmpty(t, idempotencyKey)
	_, parseErr := uuid.Parse(idempotencyKey)
	assert.NoError(t, parseErr)
	assert.Equal(t, 18000, result.Expenditure.FinalAmount)
	assert.Equal(t, 18000, result.Budget.MealSpent)

	mirror, state := manager.Snapshot()
	assert.True(t, mirror.IsEmpty())
	assert.Equal(t, StateEmpty, state)
}

func TestSubmitEmptyCartFailsLocally(t *testing.T) {
	coordinator, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty cart")
	}))

	_, err := coordinator.Submit(context.Background(), validInput())

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeEmptyCart, typed.Code())
}

func TestSubmitRejectsFutureDate(t *testing.T) {
	coordinator, manager := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid date")
	}))
	populateMirror(t, manager)

	input := validInput()
	input.Date = "2026-03-16"
	_, err := coordinator.Submit(context.Background(), input)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSubmitFailureLeavesMirrorUntouched(t *testing.T) {
	coordinator, manager := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusServiceUnavailable, pkgerrors.CodeTransient, "database unavailable", nil)
	}))
	populateMirror(t, manager)
	before, _ := manager.Snapshot()

	_, err := coordinator.Submit(context.Background(), validInput())

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeTransient, typed.Code())

	mirror, state := manager.Snapshot()
	assert.Equal(t, before, mirror)
	assert.Equal(t, StatePopulated, state)
}

func TestSubmitUsesFreshIdempotencyKeyPerAttempt(t *testing.T) {
	var keys []string
	calls := 0
	coordinator, manager := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		if calls == 1 {
			writeError(w, http.StatusServiceUnavailable, pkgerrors.CodeTransient, "database unavailable", nil)
			return
		}
		writeSuccess(w, map[string]any{
			"expenditure": map[string]any{"id": uuid.New(), "finalAmount": 18000},
			"budget":      map[string]any{},
		})
	}))
	populateMirror(t, manager)

	_, err := coordinator.Submit(context.Background(), validInput())
	require.Error(t, err)
	_, err = coordinator.Submit(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestSubmitRequiresTime(t *testing.T) {
	coordinator, manager := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected when time is missing")
	}))
	populateMirror(t, manager)

	input := validInput()
	input.Time = ""
	_, err := coordinator.Submit(context.Background(), input)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, state := manager.Snapshot()
	assert.Equal(t, StatePopulated, state)
}

func TestSubmitRejectsMalformedTime(t *testing.T) {
	coordinator, manager := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid time")
	}))
	populateMirror(t, manager)

	input := validInput()
	input.Time = "12:30pm"
	_, err := coordinator.Submit(context.Background(), input)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
