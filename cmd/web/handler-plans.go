package main

import (
	"fmt"
	"net/http"

	"github.com/myrjola/liftplan/internal/workout"
)

func (app *application) plansGET(w http.ResponseWriter, r *http.Request) {
	plans := app.workoutService.Catalog().Plans()
	resp := make([]planResponse, len(plans))
	for i, plan := range plans {
		var err error
		if resp[i], err = newPlanResponse(plan); err != nil {
			app.serverError(w, r, fmt.Errorf("render plan %s: %w", plan.ID, err))
			return
		}
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("planID")
	plan, ok := app.workoutService.Catalog().Plan(planID)
	if !ok {
		app.handleError(w, r, fmt.Errorf("plan %s: %w", planID, workout.ErrNotFound))
		return
	}
	resp, err := newPlanResponse(plan)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("render plan %s: %w", plan.ID, err))
		return
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

type preferencesBody struct {
	PlanID string `json:"planId"`
}

func (app *application) preferencesGET(w http.ResponseWriter, r *http.Request) {
	prefs, err := app.workoutService.GetPreferences(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, preferencesBody{PlanID: prefs.PlanID})
}

func (app *application) preferencesPUT(w http.ResponseWriter, r *http.Request) {
	var req preferencesBody
	if err := readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	if err := app.workoutService.SavePreferences(r.Context(), workout.Preferences{PlanID: req.PlanID}); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, req)
}
