package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/foodger/foodger-backend/pkg/enums"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
)

func newTestBudgetBook(t *testing.T, handler http.Handler) *BudgetBook {
	t.Helper()

	api, _, _ := newTestClient(t, handler, WithGetRetries(0))
	book, err := NewBudgetBook(api)
	require.NoError(t, err)
	return book
}

func TestMonthlyAbsentIsNil(t *testing.T) {
	book := newTestBudgetBook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026", r.URL.Query().Get("year"))
		assert.Equal(t, "3", r.URL.Query().Get("month"))
		writeSuccess(w, nil)
	}))

	row, err := book.Monthly(context.Background(), 2026, 3)

	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestSetMonthlySendsOptionalDailyTotal(t *testing.T) {
	book := newTestBudgetBook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		writeSuccess(w, map[string]any{
			"year": 2026, "month": 3, "monthlyTotal": 300000, "dailyTotal": 10000, "remaining": 300000,
		})
	}))

	row, err := book.SetMonthly(context.Background(), 2026, 3, 300000, nil)

	require.NoError(t, err)
	assert.Equal(t, 10000, row.DailyTotal)
	assert.Equal(t, 300000, row.Remaining)
}

func TestMonthMapsAbsentDatesToNil(t *testing.T) {
	book := newTestBudgetBook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date != "2026-02-14" {
			writeSuccess(w, nil)
			return
		}
		writeSuccess(w, map[string]any{"date": date, "dailyTotal": 41500, "totalSpent": 5000})
	}))

	month, err := book.Month(context.Background(), 2026, 2)

	require.NoError(t, err)
	require.Len(t, month, 28)

	require.NotNil(t, month["2026-02-14"])
	assert.Equal(t, 41500, month["2026-02-14"].DailyTotal)
	assert.Nil(t, month["2026-02-01"])
}

func TestMonthCombinesPerDateErrors(t *testing.T) {
	book := newTestBudgetBook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "2026-02-03" || date == "2026-02-20" {
			writeError(w, http.StatusServiceUnavailable, pkgerrors.CodeTransient, "upstream unavailable", nil)
			return
		}
		writeSuccess(w, nil)
	}))

	month, err := book.Month(context.Background(), 2026, 2)

	require.Error(t, err)
	assert.Nil(t, month)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestMonthRejectsInvalidMonth(t *testing.T) {
	book := newTestBudgetBook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := book.Month(context.Background(), 2026, 13)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSetDailyPutsDateInPath(t *testing.T) {
	var payload dailyBudgetPayload
	book := newTestBudgetBook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/v1/budgets/daily/2026-03-15", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		writeSuccess(w, map[string]any{"date": "2026-03-15", "dailyTotal": 40000})
	}))

	row, err := book.SetDaily(context.Background(), "2026-03-15", 40000, map[enums.MealType]int{
		enums.MealTypeDinner: 15000,
	})

	require.NoError(t, err)
	assert.Equal(t, 40000, row.DailyTotal)
	assert.Equal(t, 40000, payload.DailyTotal)
	assert.Equal(t, 15000, payload.MealBudgets[enums.MealTypeDinner].Budget)
}

func TestBulkSetDailySendsFreshIdempotencyKey(t *testing.T) {
	keys := map[string]bool{}
	book := newTestBudgetBook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/budgets/daily/bulk", r.URL.Path)
		key := r.Header.Get("Idempotency-Key")
		_, err := uuid.Parse(key)
		require.NoError(t, err)
		keys[key] = true

		var payload bulkDailyBudgetPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "2026-03-01", payload.StartDate)
		require.Equal(t, "2026-03-07", payload.EndDate)
		writeSuccess(w, []map[string]any{
			{"date": "2026-03-01", "dailyTotal": 10000},
			{"date": "2026-03-02", "dailyTotal": 10000},
		})
	}))

	for i := 0; i < 2; i++ {
		rows, err := book.BulkSetDaily(context.Background(), "2026-03-01", "2026-03-07", 10000, nil)
		require.NoError(t, err)
		require.Len(t, rows, 2)
	}
	assert.Len(t, keys, 2)
}

func TestDailyWritesAreSerialized(t *testing.T) {
	inFlight := 0
	var mu sync.Mutex
	book := newTestBudgetBook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		require.Equal(t, 1, inFlight)
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		writeSuccess(w, map[string]any{"date": "2026-03-15", "dailyTotal": 10000})
	}))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := book.SetDaily(context.Background(), "2026-03-15", 10000, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
