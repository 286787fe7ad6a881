package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fratmap/internal/store"
)

func (app *application) createFratRatingHandler(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.ParseInt(chi.URLParam(r, "schoolID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid school ID"))
		return
	}
	fratName := chi.URLParam(r, "fratName")

	var payload createRatingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.store.Schools.GetByID(schoolID); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	id := getIdentityFromContext(r)
	rating, err := app.store.FratRatings.Create(r.Context(), id.ID, id.Name, schoolID, fratName, payload.Score, payload.Review)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	// A first rating for a chapter changes the school's chapter count.
	app.store.Schools.UpdateSingleFratCount(schoolID, app.store.FratRatings.ChapterCount(schoolID))

	app.jsonResponse(w, http.StatusCreated, rating)
}

// getSchoolFratStatsHandler returns every chapter's aggregate for one
// school in a single response; chapter pages always show all of them.
func (app *application) getSchoolFratStatsHandler(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.ParseInt(chi.URLParam(r, "schoolID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid school ID"))
		return
	}
	if _, err := app.store.Schools.GetByID(schoolID); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, app.store.FratRatings.GetSchoolStats(schoolID))
}

func (app *application) listSchoolFratRatingsHandler(w http.ResponseWriter, r *http.Request) {
	schoolID, err := strconv.ParseInt(chi.URLParam(r, "schoolID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid school ID"))
		return
	}
	if _, err := app.store.Schools.GetByID(schoolID); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, app.store.FratRatings.ListBySchool(schoolID))
}

func (app *application) voteFratRatingHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := strconv.ParseInt(chi.URLParam(r, "ratingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid rating ID"))
		return
	}

	var payload votePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	id := getIdentityFromContext(r)
	up, down, err := app.store.FratRatings.Vote(r.Context(), id.ID, ratingID, store.VoteDirection(payload.Direction))
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, voteResponse{Upvotes: up, Downvotes: down})
}
