package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/foodger/foodger-backend/pkg/auth"
	"github.com/foodger/foodger-backend/pkg/config"
)

func testDeps() Deps {
	return Deps{
		Config: &config.Config{
			JWT: config.JWTConfig{
				Secret:            "unit-test-secret",
				Issuer:            "foodger-test",
				ExpirationMinutes: 30,
			},
		},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	}
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := NewRouter(testDeps())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	router := NewRouter(testDeps())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAPIRoutesRequireCredentials(t *testing.T) {
	router := NewRouter(testDeps())

	for _, target := range []string{
		"/api/v1/cart",
		"/api/v1/merchants",
		"/api/v1/budgets/monthly?year=2026&month=3",
		"/api/v1/expenditures",
	} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, resp.Code, target)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	deps := testDeps()
	router := NewRouter(deps)

	token, err := pkgAuth.MintAccessToken(deps.Config.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nonexistent", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
