package main

import (
	"net/http"
	"strings"
)

// openAssistant resets the side panel with a greeting tied to the current
// diagnosis, or the generic one when the session has no result.
func (app *application) openAssistant(w http.ResponseWriter, r *http.Request) {
	active := app.activeSession(r)
	log := active.chat.Open(active.orchestrator.State().Result)
	app.renderJSON(w, r, http.StatusOK, newChatLogView(log))
}

// messageAssistant appends a user turn and resolves the assistant reply. The
// reply always lands in the log, a failed upstream call resolves to a
// displayable fallback instead of an error.
func (app *application) messageAssistant(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Message string `json:"message"`
	}
	if !app.decodeJSON(w, r, &request) {
		return
	}
	if strings.TrimSpace(request.Message) == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	active := app.activeSession(r)
	log := active.chat.Send(r.Context(), request.Message, active.orchestrator.State().Result)
	app.renderJSON(w, r, http.StatusOK, newChatLogView(log))
}
