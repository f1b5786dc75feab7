package main

import (
	"net/http"

	"github.com/myrjola/liftplan/internal/contexthelpers"
)

func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "no such resource: "+contexthelpers.CurrentPath(r.Context()))
}
