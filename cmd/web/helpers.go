package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/myrjola/fitroadmap/internal/coach"
	"github.com/myrjola/fitroadmap/internal/errors"
	"github.com/myrjola/fitroadmap/internal/workout"
)

const maxBodyBytes = 64 * 1024

type errorResponse struct {
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
	_, _ = w.Write(body)
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	app.writeJSON(w, r, status, errorResponse{Error: msg})
}

// serviceError maps workout service errors to responses.
func (app *application) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workout.ErrInvalidInput), errors.Is(err, coach.ErrMalformedInput):
		app.clientError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, workout.ErrNotFound):
		app.clientError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, workout.ErrNoAlternative):
		app.clientError(w, r, http.StatusNotFound, "no alternative exercise")
	case errors.Is(err, workout.ErrCorruptState):
		app.metrics.CounterCorruptStates.Inc()
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "corrupt state", errors.SlogError(err))
		app.clientError(w, r, http.StatusConflict, "corrupt state")
	default:
		app.serverError(w, r, err)
	}
}

// readBody reads a size limited request body. It responds and returns false on failure.
func (app *application) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			app.clientError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		app.clientError(w, r, http.StatusBadRequest, "unreadable request body")
		return nil, false
	}
	return body, true
}

// readJSON decodes the request body into dst. It responds and returns false on failure.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, ok := app.readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "malformed JSON: "+err.Error())
		return false
	}
	return true
}

// parseDateParam parses the "date" path value. It responds with 400 and returns false on failure.
func (app *application) parseDateParam(w http.ResponseWriter, r *http.Request) (coach.Date, bool) {
	date, err := coach.ParseDate(r.PathValue("date"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return coach.Date{}, false
	}
	return date, true
}

// dateQuery parses the optional "date" query parameter and defaults to today.
func (app *application) dateQuery(w http.ResponseWriter, r *http.Request) (coach.Date, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return coach.DateOf(app.now()), true
	}
	date, err := coach.ParseDate(raw)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return coach.Date{}, false
	}
	return date, true
}
