package main

import (
	"net/http"
)

// programGET returns the week pointer of the active plan.
func (app *application) programGET(w http.ResponseWriter, r *http.Request) {
	plan, err := app.workoutService.ActivePlan(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	progress, err := app.workoutService.GetProgramWeek(r.Context(), plan.ID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newProgressResponse(progress))
}

func (app *application) dashboardGET(w http.ResponseWriter, r *http.Request) {
	d, err := app.workoutService.Dashboard(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newDashboardResponse(d))
}
