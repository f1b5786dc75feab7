package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return secureHeaders(app.crossOriginProtection(commonContext(app.timeout(next))))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.authenticator.AuthenticateMiddleware(shared(app.timezone(next))))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
		handle = func(pattern string, chain func(http.Handler) http.Handler, h http.HandlerFunc) {
			mux.Handle(pattern, app.logAndTraceRequest(pattern, chain(h)))
		}
	)

	handle("POST /api/users", session, app.usersPOST)
	handle("DELETE /api/users/me", mustSession, app.usersMeDELETE)
	handle("POST /api/logout", session, app.logoutPOST)
	handle("GET /api/healthy", session, app.healthy)

	handle("GET /api/plans", mustSession, app.plansGET)
	handle("GET /api/plans/{planID}", mustSession, app.planGET)
	handle("GET /api/preferences", mustSession, app.preferencesGET)
	handle("PUT /api/preferences", mustSession, app.preferencesPUT)

	handle("GET /api/schedule/{date}", mustSession, app.scheduleDayGET)
	handle("GET /api/schedule/{date}/week", mustSession, app.scheduleWeekGET)
	handle("POST /api/schedule/{date}/rest", mustSession, app.scheduleRestPOST)

	handle("POST /api/sessions", mustSession, app.sessionsPOST)
	handle("GET /api/sessions/{sessionID}", mustSession, app.sessionGET)
	handle("GET /api/sessions/{sessionID}/stats", mustSession, app.sessionStatsGET)
	handle("POST /api/sessions/{sessionID}/complete", mustSession, app.sessionCompletePOST)
	handle("POST /api/sessions/{sessionID}/exercises/{exercise}/swap", mustSession, app.exerciseSwapPOST)
	handle("POST /api/sessions/{sessionID}/exercises/{exercise}/sets", mustSession, app.setPOST)
	handle("PATCH /api/sessions/{sessionID}/exercises/{exercise}/sets/{set}", mustSession, app.setPATCH)
	handle("DELETE /api/sessions/{sessionID}/exercises/{exercise}/sets/{set}", mustSession, app.setDELETE)
	handle("POST /api/sessions/{sessionID}/exercises/{exercise}/sets/{set}/save", mustSession, app.setSavePOST)
	handle("POST /api/sessions/{sessionID}/exercises/{exercise}/sets/{set}/edit", mustSession, app.setEditPOST)

	handle("GET /api/program", mustSession, app.programGET)
	handle("GET /api/dashboard", mustSession, app.dashboardGET)

	handle("GET /api/bodyweight", mustSession, app.bodyweightGET)
	handle("POST /api/bodyweight", mustSession, app.bodyweightPOST)
	handle("GET /api/cardio", mustSession, app.cardioGET)
	handle("POST /api/cardio", mustSession, app.cardioPOST)

	handle("GET /api/export", mustSession, app.exportGET)

	mux.Handle("GET /metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})) //nolint:exhaustruct // defaults.

	mux.Handle("/", app.logAndTraceRequest("/", shared(http.HandlerFunc(app.notFound))))

	return mux
}
