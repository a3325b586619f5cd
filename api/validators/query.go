package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodger/foodger-backend/pkg/enums"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/types"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryDate parses a required ISO calendar date query parameter.
func ParseQueryDate(r *http.Request, key string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	date, err := types.ParseDate(raw)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a date formatted YYYY-MM-DD").WithDetails(map[string]any{"field": key})
	}
	return date, nil
}

// ParseQueryDateOptional parses an optional ISO calendar date query parameter.
func ParseQueryDateOptional(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	date, err := types.ParseDate(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a date formatted YYYY-MM-DD").WithDetails(map[string]any{"field": key})
	}
	return &date, nil
}

// ParseQueryMealType parses an optional meal type query parameter.
func ParseQueryMealType(r *http.Request, key string) (*enums.MealType, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	meal := enums.MealType(strings.ToUpper(raw))
	if !meal.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown meal type").WithDetails(map[string]any{"field": key})
	}
	return &meal, nil
}

// ParsePathUUID parses a UUID path segment already extracted by the router.
func ParsePathUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "identifier must be a valid uuid").WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
