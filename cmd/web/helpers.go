package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/myrjola/liftplan/internal/auth"
	"github.com/myrjola/liftplan/internal/errors"
	"github.com/myrjola/liftplan/internal/workout"
)

// maxRequestBodyBytes bounds JSON request bodies.
const maxRequestBodyBytes = 64 * 1024

type errorBody struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("marshal response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(body); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "write response", slog.Any("error", err))
	}
}

// readJSON decodes the request body into dst. Unknown fields and trailing data are rejected.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode body: %w", workout.ErrInvalidInput, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON value", workout.ErrInvalidInput)
	}
	return nil
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, errorBody{Error: message})
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.errorResponse(w, r, http.StatusInternalServerError, "something went wrong, please retry")
}

// errorStatus maps domain errors to HTTP status codes. Unknown errors are server errors.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, workout.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workout.ErrAlreadyRestDay):
		return http.StatusConflict
	case errors.Is(err, workout.ErrInvalidInput),
		errors.Is(err, workout.ErrInvalidTemplate),
		errors.Is(err, workout.ErrSetLocked),
		errors.Is(err, auth.ErrInvalidDisplayName):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// handleError responds with the status of err. Client errors are not logged as failures.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		app.serverError(w, r, err)
		return
	}
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "request rejected", slog.Any("error", err))
	app.errorResponse(w, r, status, err.Error())
}

// parseDateParam parses the "date" path parameter from the request URL.
func parseDateParam(r *http.Request) (time.Time, error) {
	return parseDate(r.PathValue("date"))
}

func parseDate(value string) (time.Time, error) {
	date, err := workout.ParseDateKey(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", workout.ErrInvalidInput, value)
	}
	return date, nil
}

// parseIndexParam parses a non-negative integer path parameter such as an exercise index.
func parseIndexParam(r *http.Request, name string) (int, error) {
	value := r.PathValue(name)
	i, err := strconv.Atoi(value)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: %s %q", workout.ErrInvalidInput, name, value)
	}
	return i, nil
}
