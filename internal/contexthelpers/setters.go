package contexthelpers

import (
	"context"
	"net/http"
)

func SetSessionScope(r *http.Request, scope string) *http.Request {
	ctx := context.WithValue(r.Context(), sessionScopeContextKey, scope)
	return r.WithContext(ctx)
}

func SetCSRFToken(r *http.Request, token string) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenContextKey, token)
	return r.WithContext(ctx)
}
