package main

import (
	"net/http"

	"github.com/myrjola/fitroadmap/internal/coach"
)

func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	p, err := app.workoutService.Profile(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}

// profilePUT accepts a canonical profile, an onboarding form or a legacy form and stores it normalized.
func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	body, ok := app.readBody(w, r)
	if !ok {
		return
	}
	in, err := coach.ParseInput(body)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	p, err := app.workoutService.SaveProfile(r.Context(), in)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}

func (app *application) menuGET(w http.ResponseWriter, r *http.Request) {
	items, err := app.workoutService.Menu(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, items)
}

type swapRequest struct {
	Key     string   `json:"key"`
	Exclude []string `json:"exclude"`
}

func (app *application) menuSwapPOST(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	item, err := app.workoutService.SwapMenuItem(r.Context(), req.Key, req.Exclude)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, item)
}
