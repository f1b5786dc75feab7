package main

import (
	"context"
	"net/http"

	"github.com/myrjola/liftplan/internal/workout"
)

type sessionRouteRequest struct {
	Mode       workout.RouteMode `json:"mode"`
	SessionID  string            `json:"sessionId"`
	TemplateID string            `json:"templateId"`
	// Date defaults to today.
	Date string `json:"date"`
}

// sessionsPOST opens a session the way the workout screen is routed: start, resume or edit.
func (app *application) sessionsPOST(w http.ResponseWriter, r *http.Request) {
	var req sessionRouteRequest
	if err := readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	if req.Mode == "" {
		req.Mode = workout.RouteModeStart
	}
	date := app.workoutService.Today(r.Context())
	if req.Date != "" {
		var err error
		if date, err = parseDate(req.Date); err != nil {
			app.handleError(w, r, err)
			return
		}
	}
	sess, err := app.workoutService.GetSessionForRoute(r.Context(), req.Mode, req.SessionID, req.TemplateID, date)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newSessionResponse(sess))
}

func (app *application) sessionGET(w http.ResponseWriter, r *http.Request) {
	sess, err := app.workoutService.GetSession(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newSessionResponse(sess))
}

func (app *application) sessionStatsGET(w http.ResponseWriter, r *http.Request) {
	view, err := app.workoutService.SessionStats(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, sessionStatsResponse{
		Session: newSessionResponse(view.Session),
		Stats:   newStatsResponse(view.Stats),
	})
}

func (app *application) sessionCompletePOST(w http.ResponseWriter, r *http.Request) {
	completion, err := app.workoutService.MarkSessionCompleted(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newCompletionResponse(completion))
}

type swapRequest struct {
	Name string `json:"name"`
	// Reset clears the typed weights of unsaved sets.
	Reset bool `json:"reset"`
}

func (app *application) exerciseSwapPOST(w http.ResponseWriter, r *http.Request) {
	exIdx, err := parseIndexParam(r, "exercise")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	var req swapRequest
	if err = readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.respondSession(w, r)(app.workoutService.SwapExercise(r.Context(), r.PathValue("sessionID"), exIdx,
		req.Name, req.Reset))
}

func (app *application) setPOST(w http.ResponseWriter, r *http.Request) {
	exIdx, err := parseIndexParam(r, "exercise")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.respondSession(w, r)(app.workoutService.AddSet(r.Context(), r.PathValue("sessionID"), exIdx))
}

type setFieldRequest struct {
	Field workout.SetField `json:"field"`
	Value string           `json:"value"`
}

func (app *application) setPATCH(w http.ResponseWriter, r *http.Request) {
	exIdx, setIndex, err := parseSetParams(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	var req setFieldRequest
	if err = readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.respondSession(w, r)(app.workoutService.UpdateSetField(r.Context(), r.PathValue("sessionID"), exIdx, setIndex,
		req.Field, req.Value))
}

func (app *application) setDELETE(w http.ResponseWriter, r *http.Request) {
	app.setAction(w, r, app.workoutService.RemoveSet)
}

func (app *application) setSavePOST(w http.ResponseWriter, r *http.Request) {
	app.setAction(w, r, app.workoutService.SaveSet)
}

func (app *application) setEditPOST(w http.ResponseWriter, r *http.Request) {
	app.setAction(w, r, app.workoutService.EditSet)
}

type setActionFunc func(ctx context.Context, id string, exIdx, setIndex int) (workout.Session, error)

// setAction runs a mutation addressed by session, exercise and set path parameters.
func (app *application) setAction(w http.ResponseWriter, r *http.Request, action setActionFunc) {
	exIdx, setIndex, err := parseSetParams(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.respondSession(w, r)(action(r.Context(), r.PathValue("sessionID"), exIdx, setIndex))
}

// respondSession returns a function that writes the outcome of a session mutation.
func (app *application) respondSession(w http.ResponseWriter, r *http.Request) func(workout.Session, error) {
	return func(sess workout.Session, err error) {
		if err != nil {
			app.handleError(w, r, err)
			return
		}
		app.writeJSON(w, r, http.StatusOK, newSessionResponse(sess))
	}
}

// parseSetParams returns the 0-based exercise index and the 1-based set index of the request path.
func parseSetParams(r *http.Request) (int, int, error) {
	exIdx, err := parseIndexParam(r, "exercise")
	if err != nil {
		return 0, 0, err
	}
	setIndex, err := parseIndexParam(r, "set")
	if err != nil {
		return 0, 0, err
	}
	return exIdx, setIndex, nil
}
