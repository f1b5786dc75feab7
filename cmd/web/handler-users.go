package main

import (
	"net/http"

	"github.com/myrjola/liftplan/internal/contexthelpers"
)

type registerRequest struct {
	DisplayName string `json:"displayName"`
}

type userResponse struct {
	ID int `json:"id"`
}

// usersPOST registers a user and logs the session in.
func (app *application) usersPOST(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	userID, err := app.authenticator.Register(r.Context(), req.DisplayName)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, userResponse{ID: userID})
}

func (app *application) logoutPOST(w http.ResponseWriter, r *http.Request) {
	if err := app.authenticator.Logout(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// usersMeDELETE deletes the user together with all their data.
func (app *application) usersMeDELETE(w http.ResponseWriter, r *http.Request) {
	if err := app.authenticator.DeleteUser(r.Context(), contexthelpers.AuthenticatedUserID(r.Context())); err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
