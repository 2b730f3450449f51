package main

import (
	"net/http"

	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/myrjola/cropdoc/internal/session"
)

// startDeepDive fetches the grounded treatment detail for one recommendation
// of the current diagnosis.
func (app *application) startDeepDive(w http.ResponseWriter, r *http.Request) {
	var request struct {
		RecommendationIndex int `json:"recommendationIndex"`
	}
	if !app.decodeJSON(w, r, &request) {
		return
	}

	active := app.activeSession(r)
	state, err := active.orchestrator.StartDeepDive(r.Context(), request.RecommendationIndex)
	if err != nil {
		if errors.Is(err, session.ErrNotReady) {
			app.clientError(w, r, http.StatusConflict)
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.renderJSON(w, r, http.StatusOK, newStateView(state))
}

// resetDeepDive discards the detail view and returns to the recommendation
// list.
func (app *application) resetDeepDive(w http.ResponseWriter, r *http.Request) {
	active := app.activeSession(r)
	app.renderJSON(w, r, http.StatusOK, newStateView(active.orchestrator.ResetDeepDive()))
}
