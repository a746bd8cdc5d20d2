package main

import (
	"net/http"

	"github.com/myrjola/fitroadmap/internal/errors"
	"github.com/myrjola/fitroadmap/internal/planai"
)

type planRequest struct {
	GoalText string `json:"goalText"`
}

// planPOST generates a one-day plan for a free text goal. Model failures still answer 200 with the fallback
// plan and the failure details.
func (app *application) planPOST(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	result, err := app.planClient.Plan(r.Context(), req.GoalText)
	if errors.Is(err, planai.ErrEmptyGoal) {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}
