package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.sessionManager.LoadAndSave, app.sessionScope)

	mux.Handle("GET /api/healthy", http.HandlerFunc(app.healthy))

	mux.Handle("GET /api/session", session.ThenFunc(app.sessionState))
	mux.Handle("POST /api/analyze", session.ThenFunc(app.analyze))
	mux.Handle("POST /api/retry", session.ThenFunc(app.retry))
	mux.Handle("POST /api/reset", session.ThenFunc(app.reset))
	mux.Handle("POST /api/demo", session.ThenFunc(app.demo))

	mux.Handle("GET /api/history", session.ThenFunc(app.listHistory))
	mux.Handle("POST /api/history/select", session.ThenFunc(app.selectHistory))
	mux.Handle("POST /api/history/clear", session.ThenFunc(app.clearHistory))

	mux.Handle("POST /api/deep-dive", session.ThenFunc(app.startDeepDive))
	mux.Handle("POST /api/deep-dive/reset", session.ThenFunc(app.resetDeepDive))

	mux.Handle("POST /api/assistant/open", session.ThenFunc(app.openAssistant))
	mux.Handle("POST /api/assistant/message", session.ThenFunc(app.messageAssistant))

	return app.recoverPanic(app.logRequest(secureHeaders(noSurf(commonContext(mux)))))
}
