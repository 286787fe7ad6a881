package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fratmap/internal/store"
)

type createVenuePayload struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Category    string  `json:"category" validate:"required,venuecategory"`
	Description string  `json:"description" validate:"max=1000"`
	Address     string  `json:"address" validate:"max=300"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
	SchoolID    int64   `json:"school_id" validate:"required"`
}

func (app *application) createVenueHandler(w http.ResponseWriter, r *http.Request) {
	var payload createVenuePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.store.Schools.GetByID(payload.SchoolID); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	id := getIdentityFromContext(r)
	venue := &store.Venue{
		Name:        payload.Name,
		Category:    store.Category(payload.Category),
		Description: payload.Description,
		Address:     payload.Address,
		Latitude:    payload.Latitude,
		Longitude:   payload.Longitude,
		SchoolID:    payload.SchoolID,
	}

	if err := app.store.Venues.Create(r.Context(), id.ID, id.Role, venue); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	// Admin submissions are live immediately, so the school's venue
	// count moves now instead of at approval.
	if venue.Approved {
		_, total := app.store.Venues.ListBySchool(venue.SchoolID, 1, 1)
		app.store.Schools.UpdateSingleVenueCount(venue.SchoolID, total)
	}

	app.jsonResponse(w, http.StatusCreated, venue)
}

func (app *application) getVenueHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	venue, err := app.store.Venues.GetByID(venueID)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, venue)
}

func (app *application) approveVenueHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	if err := app.store.Venues.ApproveVenue(r.Context(), venueID); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	venue, err := app.store.Venues.GetByID(venueID)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}
	_, total := app.store.Venues.ListBySchool(venue.SchoolID, 1, 1)
	app.store.Schools.UpdateSingleVenueCount(venue.SchoolID, total)

	app.jsonResponse(w, http.StatusOK, venue)
}

func (app *application) rejectVenueHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	if err := app.store.Venues.RejectVenue(r.Context(), venueID); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) listPendingVenuesHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, app.store.Venues.ListPending())
}
