package main

import (
	"net/http"

	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/myrjola/cropdoc/internal/session"
)

func (app *application) listHistory(w http.ResponseWriter, r *http.Request) {
	active := app.activeSession(r)
	app.renderJSON(w, r, http.StatusOK, newStateView(active.orchestrator.State()).History)
}

// selectHistory reloads a past diagnosis into the session without re-running
// the analysis.
func (app *application) selectHistory(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ID string `json:"id"`
	}
	if !app.decodeJSON(w, r, &request) {
		return
	}
	if request.ID == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	active := app.activeSession(r)
	state, err := active.orchestrator.SelectHistory(request.ID)
	if err != nil {
		if errors.Is(err, session.ErrNotReady) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.renderJSON(w, r, http.StatusOK, newStateView(state))
}

func (app *application) clearHistory(w http.ResponseWriter, r *http.Request) {
	active := app.activeSession(r)
	app.renderJSON(w, r, http.StatusOK, newStateView(active.orchestrator.ClearHistory(r.Context())))
}
