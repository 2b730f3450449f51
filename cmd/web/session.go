package main

import (
	"net/http"
	"sync"

	"github.com/myrjola/cropdoc/internal/contexthelpers"
	"github.com/myrjola/cropdoc/internal/session"
)

// activeSession bundles the per-browser-session orchestrator with its chat
// panel. Both are scoped to the same history scope.
type activeSession struct {
	orchestrator *session.Orchestrator
	chat         *session.ChatPanel
}

// sessionRegistry maps history scopes to their in-process sessions. Sessions
// are created lazily on first use and live for the process lifetime, the
// persisted history survives restarts through the repository.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*activeSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*activeSession)}
}

// activeSession resolves the session for the request's scope, creating it and
// loading its persisted history on first sight.
func (app *application) activeSession(r *http.Request) *activeSession {
	scope := contexthelpers.SessionScope(r.Context())

	app.sessions.mu.Lock()
	defer app.sessions.mu.Unlock()

	active, ok := app.sessions.sessions[scope]
	if !ok {
		active = &activeSession{
			orchestrator: session.New(r.Context(), app.diagnostic, app.history, app.logger, scope),
			chat:         session.NewChatPanel(app.assistant),
		}
		app.sessions.sessions[scope] = active
	}

	return active
}
