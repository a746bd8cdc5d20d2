package main

import (
	"net/http"

	"github.com/myrjola/fitroadmap/internal/coach"
)

type exerciseInfoTemplateData struct {
	Exercise coach.ExerciseInfo
}

type exercisesTemplateData struct {
	Exercises []coach.ExerciseInfo
}

// exerciseInfoGET renders the how-to of a menu exercise.
func (app *application) exerciseInfoGET(w http.ResponseWriter, r *http.Request) {
	info, ok := coach.Exercise(r.PathValue("key"))
	if !ok {
		app.notFound(w, r)
		return
	}
	app.render(w, r, http.StatusOK, "exercise", exerciseInfoTemplateData{Exercise: info})
}

// exercisesGET lists every exercise that has a how-to.
func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	keys := coach.ExerciseKeys()
	data := exercisesTemplateData{Exercises: make([]coach.ExerciseInfo, 0, len(keys))}
	for _, key := range keys {
		if info, ok := coach.Exercise(key); ok {
			data.Exercises = append(data.Exercises, info)
		}
	}
	app.render(w, r, http.StatusOK, "exercises", data)
}
