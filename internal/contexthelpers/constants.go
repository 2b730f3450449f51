package contexthelpers

type contextKey string

const sessionScopeContextKey = contextKey("sessionScope")
const csrfTokenContextKey = contextKey("csrfToken")
