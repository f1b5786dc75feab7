package main

import (
	"net/http"
)

func (app *application) scheduleDayGET(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	day, err := app.workoutService.ResolveDay(r.Context(), date)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newDayResponse(day))
}

// scheduleWeekGET returns Monday to Sunday of the week containing the date.
func (app *application) scheduleWeekGET(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	days, err := app.workoutService.ResolveWeek(r.Context(), date)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	resp := make([]dayResponse, len(days))
	for i, day := range days {
		resp[i] = newDayResponse(day)
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

func (app *application) scheduleRestPOST(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	result, err := app.workoutService.RescheduleRestDay(r.Context(), date)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newRescheduleResponse(result))
}
