package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/fitroadmap/internal/coach"
)

func (app *application) logsGET(w http.ResponseWriter, r *http.Request) {
	logs, err := app.workoutService.Logs(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	if logs == nil {
		logs = []coach.DailyLog{}
	}
	app.writeJSON(w, r, http.StatusOK, logs)
}

func (app *application) logGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	l, err := app.workoutService.Log(r.Context(), date)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, l)
}

// logPUT replaces the log of the path date. A date in the body must match it.
func (app *application) logPUT(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	var l coach.DailyLog
	if !app.readJSON(w, r, &l) {
		return
	}
	if !l.Date.IsZero() && !l.Date.Equal(date) {
		app.clientError(w, r, http.StatusBadRequest, "body date does not match path date")
		return
	}
	l.Date = date

	outcome, err := app.workoutService.SaveLog(r.Context(), l)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.metrics.CounterLogsSaved.Inc()
	for _, badge := range outcome.NewBadges {
		app.metrics.CounterBadgesEarned.WithLabelValues(badge).Inc()
	}
	app.logger.LogAttrs(r.Context(), slog.LevelInfo, "saved daily log",
		slog.String("date", date.String()), slog.Int("xp_gained", outcome.XPGained))
	app.writeJSON(w, r, http.StatusOK, outcome)
}

func (app *application) rewardsGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.dateQuery(w, r)
	if !ok {
		return
	}
	rewards, err := app.workoutService.Rewards(r.Context(), date)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, rewards)
}

func (app *application) roadmapGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.dateQuery(w, r)
	if !ok {
		return
	}
	roadmap, err := app.workoutService.Roadmap(r.Context(), date)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, roadmap)
}
