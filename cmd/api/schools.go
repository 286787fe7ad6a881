package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fratmap/internal/params"
)

func (app *application) listSchoolsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	schools := app.store.Schools.Search(query)
	app.jsonResponse(w, http.StatusOK, schools)
}

func (app *application) getSchoolHandler(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.ParseInt(chi.URLParam(r, "schoolID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid school ID"))
		return
	}

	school, err := app.store.Schools.GetByID(schoolID)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, school)
}

func (app *application) listSchoolVenuesHandler(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.ParseInt(chi.URLParam(r, "schoolID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid school ID"))
		return
	}
	if _, err := app.store.Schools.GetByID(schoolID); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	p := params.ParsePagination(r.URL.Query())
	venues, total := app.store.Venues.ListBySchool(schoolID, p.Page, p.Limit)
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"venues":     venues,
		"pagination": p,
	})
}
