package main

import (
	"net/http"

	"github.com/myrjola/cropdoc/internal/contexthelpers"
)

type sessionResponse struct {
	stateView
	CSRFToken string `json:"csrfToken"`
}

// sessionState returns the full session snapshot along with the CSRF token the
// client must echo in the X-CSRF-Token header on mutating requests.
func (app *application) sessionState(w http.ResponseWriter, r *http.Request) {
	active := app.activeSession(r)
	app.renderJSON(w, r, http.StatusOK, sessionResponse{
		stateView: newStateView(active.orchestrator.State()),
		CSRFToken: contexthelpers.CSRFToken(r.Context()),
	})
}

// reset abandons the current analysis and returns the session to idle. History
// is left untouched.
func (app *application) reset(w http.ResponseWriter, r *http.Request) {
	active := app.activeSession(r)
	app.renderJSON(w, r, http.StatusOK, newStateView(active.orchestrator.Reset()))
}
