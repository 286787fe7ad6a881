package main

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"fratmap/internal/auth"
)

// Token minting sits behind basic auth: user accounts live in the
// campus identity service, this endpoint only exists for operators and
// integration tests.
type createTokenPayload struct {
	UserID string `json:"user_id" validate:"required"`
	Name   string `json:"name" validate:"required,max=100"`
	Role   string `json:"role" validate:"omitempty,oneof=user admin"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload createTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.Role == "" {
		payload.Role = "user"
	}

	access, refresh, err := app.authenticator.GenerateTokens(auth.Identity{
		ID:   payload.UserID,
		Name: payload.Name,
		Role: payload.Role,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, tokenResponse{AccessToken: access, RefreshToken: refresh})
}

type refreshTokenPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload refreshTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("malformed token claims"))
		return
	}
	id := identityFromClaims(claims)
	if id.ID == "" {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("token is missing a subject"))
		return
	}

	access, refresh, err := app.authenticator.GenerateTokens(id)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh})
}
