package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// withURLParam injects a chi route parameter the way the router would.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
