package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// handlerTimeout leaves time for writing the response before the server's write timeout.
const handlerTimeout = defaultTimeout - 200*time.Millisecond

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		shared = func(timeout time.Duration) func(http.Handler) http.Handler {
			return func(next http.Handler) http.Handler {
				return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(app.timeout(timeout)(next))))
			}
		}
		noSession = func(next http.Handler) http.Handler {
			return app.recoverPanic(shared(handlerTimeout)(next))
		}
		sessionWithTimeout = func(timeout time.Duration) func(http.Handler) http.Handler {
			return func(next http.Handler) http.Handler {
				return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(app.identify(shared(timeout)(next)))))
			}
		}
		session = sessionWithTimeout(handlerTimeout)
		// Plan generation waits for the model.
		slowSession = sessionWithTimeout(max(app.planTimeout+time.Second, handlerTimeout))
	)

	mux.Handle("GET /api/healthy", noSession(http.HandlerFunc(app.healthy)))
	mux.Handle("GET /api/test/timeout", noSession(http.HandlerFunc(app.testTimeout)))
	mux.Handle("POST /api/reports", noSession(http.HandlerFunc(app.reportingAPI)))
	mux.Handle("POST /api/reports/csp", noSession(http.HandlerFunc(app.cspViolation)))

	mux.Handle("GET /api/profile", session(http.HandlerFunc(app.profileGET)))
	mux.Handle("PUT /api/profile", session(http.HandlerFunc(app.profilePUT)))
	mux.Handle("GET /api/menu", session(http.HandlerFunc(app.menuGET)))
	mux.Handle("POST /api/menu/swap", session(http.HandlerFunc(app.menuSwapPOST)))
	mux.Handle("GET /api/today", session(http.HandlerFunc(app.todayGET)))
	mux.Handle("POST /api/today/swap", session(http.HandlerFunc(app.todaySwapPOST)))

	mux.Handle("GET /api/weeks/{date}", session(http.HandlerFunc(app.weekGET)))
	mux.Handle("POST /api/weeks/{date}/days/{weekday}/toggle", session(http.HandlerFunc(app.weekToggleDayPOST)))
	mux.Handle("PUT /api/weeks/{date}/sessions", session(http.HandlerFunc(app.weekSessionsPUT)))

	mux.Handle("GET /api/logs", session(http.HandlerFunc(app.logsGET)))
	mux.Handle("GET /api/logs/{date}", session(http.HandlerFunc(app.logGET)))
	mux.Handle("PUT /api/logs/{date}", session(http.HandlerFunc(app.logPUT)))
	mux.Handle("GET /api/rewards", session(http.HandlerFunc(app.rewardsGET)))
	mux.Handle("GET /api/roadmap", session(http.HandlerFunc(app.roadmapGET)))
	mux.Handle("GET /api/export", session(http.HandlerFunc(app.exportGET)))

	mux.Handle("POST /api/plan", slowSession(http.HandlerFunc(app.planPOST)))

	mux.Handle("GET /exercises", noSession(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("GET /exercises/{key}", noSession(http.HandlerFunc(app.exerciseInfoGET)))

	mux.Handle("GET /metrics", app.recoverPanic(promhttp.HandlerFor(app.gatherer,
		promhttp.HandlerOpts{}))) //nolint:exhaustruct // defaults.

	mux.Handle("/", noSession(http.HandlerFunc(app.notFound)))

	return mux
}
