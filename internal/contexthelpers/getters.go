package contexthelpers

import (
	"context"
)

// SessionScope is the history scope bound to the browser session. It is empty
// when the request did not pass through the session scope middleware.
func SessionScope(ctx context.Context) string {
	scope, ok := ctx.Value(sessionScopeContextKey).(string)
	if !ok {
		return ""
	}

	return scope
}

func CSRFToken(ctx context.Context) string {
	csrfToken, ok := ctx.Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}

	return csrfToken
}
