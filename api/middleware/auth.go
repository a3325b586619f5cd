package middleware

import (
	"net/http"
	"strings"

	"github.com/foodger/foodger-backend/api/responses"
	pkgAuth "github.com/foodger/foodger-backend/pkg/auth"
	"github.com/foodger/foodger-backend/pkg/config"
	pkgerrors "github.com/foodger/foodger-backend/pkg/errors"
	"github.com/foodger/foodger-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the user.
// Missing and expired credentials surface the same code so clients run their
// refresh-and-replay path in both cases.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeAuthExpired, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeAuthExpired, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeAuthExpired, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
