package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fratmap/internal/store"
)

type createRatingPayload struct {
	Score  float64 `json:"score" validate:"required,min=1,max=5"`
	Review string  `json:"review" validate:"max=1000"`
}

type votePayload struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type voteResponse struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

func (app *application) createVenueRatingHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	var payload createRatingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	venue, err := app.store.Venues.GetByID(venueID)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}
	if !venue.Approved {
		app.notFoundResponse(w, r, store.ErrNotFound)
		return
	}

	id := getIdentityFromContext(r)
	rating, err := app.store.Ratings.Create(r.Context(), id.ID, id.Name, venueID, payload.Score, payload.Review)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	// The single propagation trigger: one venue, then its school.
	app.propagator.RatingWritten(r.Context(), venueID)

	app.jsonResponse(w, http.StatusCreated, rating)
}

func (app *application) getVenueRatingsHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	ratings := app.store.Ratings.ListByVenue(venueID)
	avg, count := app.store.Ratings.Aggregate(venueID)
	up, down := app.store.Ratings.Thumbs(venueID)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"ratings":      ratings,
		"avg_rating":   avg,
		"rating_count": count,
		"thumbs_up":    up,
		"thumbs_down":  down,
	})
}

func (app *application) listRecentRatingsHandler(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			app.badRequestResponse(w, r, errors.New("n must be between 1 and 100"))
			return
		}
		n = parsed
	}

	app.jsonResponse(w, http.StatusOK, app.store.Ratings.ListRecent(n))
}

func (app *application) voteRatingHandler(w http.ResponseWriter, r *http.Request) {
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
	up, down, err := app.store.Ratings.Vote(r.Context(), id.ID, ratingID, store.VoteDirection(payload.Direction))
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, voteResponse{Upvotes: up, Downvotes: down})
}
