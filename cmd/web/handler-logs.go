package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/myrjola/liftplan/internal/workout"
)

const defaultBodyweightRangeDays = 90

type bodyweightRequest struct {
	// Date defaults to today.
	Date     string  `json:"date"`
	WeightKg float64 `json:"weightKg"`
}

func (app *application) bodyweightPOST(w http.ResponseWriter, r *http.Request) {
	var req bodyweightRequest
	if err := readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	date, err := app.dateOrToday(r, req.Date)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if err = app.workoutService.LogBodyweight(r.Context(), date, req.WeightKg); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, bodyweightResponse{Date: workout.DateKey(date), WeightKg: req.WeightKg})
}

// bodyweightGET lists the entries of the last ?days= days, sampled for charting.
func (app *application) bodyweightGET(w http.ResponseWriter, r *http.Request) {
	rangeDays := defaultBodyweightRangeDays
	if value := r.URL.Query().Get("days"); value != "" {
		var err error
		if rangeDays, err = strconv.Atoi(value); err != nil {
			app.handleError(w, r, fmt.Errorf("%w: days %q", workout.ErrInvalidInput, value))
			return
		}
	}
	entries, err := app.workoutService.ListBodyweight(r.Context(), rangeDays)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	resp := make([]bodyweightResponse, len(entries))
	for i, e := range entries {
		resp[i] = newBodyweightResponse(e)
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

type cardioRequest struct {
	// Date defaults to today.
	Date       string   `json:"date"`
	Kind       string   `json:"kind"`
	Minutes    int      `json:"minutes"`
	DistanceKm *float64 `json:"distanceKm"`
}

func (app *application) cardioPOST(w http.ResponseWriter, r *http.Request) {
	var req cardioRequest
	if err := readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	date, err := app.dateOrToday(r, req.Date)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	created, err := app.workoutService.LogCardio(r.Context(), workout.CardioSession{
		ID:         0,
		Date:       date,
		Kind:       req.Kind,
		Minutes:    req.Minutes,
		DistanceKm: req.DistanceKm,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, newCardioResponse(created))
}

func (app *application) cardioGET(w http.ResponseWriter, r *http.Request) {
	sessions, err := app.workoutService.ListCardio(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	resp := make([]cardioResponse, len(sessions))
	for i, c := range sessions {
		resp[i] = newCardioResponse(c)
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

func (app *application) dateOrToday(r *http.Request, value string) (time.Time, error) {
	if value == "" {
		return app.workoutService.Today(r.Context()), nil
	}
	return parseDate(value)
}
