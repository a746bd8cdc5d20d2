package main

import (
	"net/http"

	"github.com/myrjola/fitroadmap/internal/coach"
)

func (app *application) todayGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.dateQuery(w, r)
	if !ok {
		return
	}
	session, err := app.workoutService.Today(r.Context(), date)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, session)
}

type todaySwapRequest struct {
	Index   int      `json:"index"`
	Exclude []string `json:"exclude"`
}

func (app *application) todaySwapPOST(w http.ResponseWriter, r *http.Request) {
	date, ok := app.dateQuery(w, r)
	if !ok {
		return
	}
	var req todaySwapRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	exercise, err := app.workoutService.SwapTodayExercise(r.Context(), date, req.Index, req.Exclude)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, exercise)
}

func (app *application) weekGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	wp, err := app.workoutService.WeekPlan(r.Context(), date)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, wp)
}

func (app *application) weekToggleDayPOST(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	day, ok := coach.ParseWeekday(r.PathValue("weekday"))
	if !ok {
		app.clientError(w, r, http.StatusBadRequest, "unknown weekday")
		return
	}
	wp, err := app.workoutService.ToggleDay(r.Context(), date, day)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, wp)
}

type sessionsRequest struct {
	SessionsPerWeek int `json:"sessionsPerWeek"`
}

func (app *application) weekSessionsPUT(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	var req sessionsRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	wp, err := app.workoutService.SetSessionsPerWeek(r.Context(), date, req.SessionsPerWeek)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, wp)
}
