package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/foodger/foodger-backend/pkg/auth"
	"github.com/foodger/foodger-backend/pkg/config"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "foodger-test",
		ExpirationMinutes: 30,
	}
}

func authChain(cfg config.JWTConfig, seen *uuid.UUID) http.Handler {
	return Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Error.Code
}

func TestAuthSeedsUserContext(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID})
	require.NoError(t, err)

	var seen uuid.UUID
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	authChain(cfg, &seen).ServeHTTP(resp, req)

	require.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, userID, seen)
}

func TestAuthMissingCredentialsMapToAuthExpired(t *testing.T) {
	var seen uuid.UUID
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)

	resp := httptest.NewRecorder()
	authChain(testJWTConfig(), &seen).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeAuthExpired), decodeErrorCode(t, resp))
	assert.Equal(t, uuid.Nil, seen)
}

func TestAuthExpiredTokenMapsToAuthExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{UserID: uuid.New()})
	require.NoError(t, err)

	var seen uuid.UUID
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	authChain(cfg, &seen).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeAuthExpired), decodeErrorCode(t, resp))
}

func TestAuthRejectsForeignSignature(t *testing.T) {
	other := testJWTConfig()
	other.Secret = "someone-elses-secret"
	token, err := pkgAuth.MintAccessToken(other, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New()})
	require.NoError(t, err)

	var seen uuid.UUID
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	authChain(testJWTConfig(), &seen).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
