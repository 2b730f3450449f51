package main

import (
	"io"
	"net/http"
	"strings"

	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/myrjola/cropdoc/internal/models"
	"github.com/myrjola/cropdoc/internal/session"
)

// maxImageBytes caps uploads well above typical phone camera output.
const maxImageBytes = 10 << 20

// analyze accepts a multipart image upload under the "image" field and runs it
// through the diagnostic pipeline. The response is the resulting session
// snapshot, success or error alike.
func (app *application) analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "read image upload"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		app.clientError(w, r, http.StatusUnsupportedMediaType)
		return
	}

	active := app.activeSession(r)
	state := active.orchestrator.Submit(r.Context(), models.Image{MIMEType: mimeType, Data: data})
	app.renderJSON(w, r, http.StatusOK, newStateView(state))
}

// retry re-submits the failed image. Outside the error state it is a no-op
// returning the current snapshot.
func (app *application) retry(w http.ResponseWriter, r *http.Request) {
	active := app.activeSession(r)
	app.renderJSON(w, r, http.StatusOK, newStateView(active.orchestrator.Retry(r.Context())))
}

// demo loads the canned diagnosis without touching the diagnostic capability
// or history. Only an idle session may enter demo mode.
func (app *application) demo(w http.ResponseWriter, r *http.Request) {
	active := app.activeSession(r)
	state, err := active.orchestrator.RunDemo()
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
