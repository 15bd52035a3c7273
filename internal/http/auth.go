package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/plshark/userauth/internal/domain"
	"github.com/plshark/userauth/internal/service"
	"github.com/plshark/userauth/pkg/httpx"
	"github.com/plshark/userauth/pkg/slogx"
)

// maxAuthBodyBytes caps login and token bodies. Tokens and credentials are
// small; anything bigger is garbage.
const maxAuthBodyBytes = 64 * 1024

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleLogin godoc
//
//	@Summary		Authenticate
//	@Description	Verifies a username and password and issues an access token, plus a refresh token when enabled for the user.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		domain.AccountCredentials	true	"Account credentials"
//	@Success		200			{object}	domain.AuthToken			"access_token, token_type, expires_in, refresh_token, scope"
//	@Failure		400			{object}	map[string]string			"error"
//	@Failure		401			{object}	map[string]string			"error"
//	@Failure		429			{object}	map[string]string			"error"
//	@Header			200			{string}	Cache-Control				"no-store"
//	@Router			/auth [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var creds domain.AccountCredentials
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAuthBodyBytes)).Decode(&creds); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	token, err := h.AuthService.Authenticate(ctx, creds)
	if err != nil {
		if !errors.Is(err, service.ErrBadCredentials) {
			log.Error("authentication failed", "err", err)
		}
		httpx.WriteUnauthorized(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, token)
}

// HandleRefresh godoc
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a refresh token, sent as the plain text request body, for a fresh token pair.
//	@Tags			Auth
//	@Accept			plain
//	@Produce		json
//	@Param			refresh_token	body		string				true	"Refresh token"
//	@Success		200				{object}	domain.AuthToken	"access_token, token_type, expires_in, refresh_token, scope"
//	@Failure		401				{object}	map[string]string	"error"
//	@Failure		429				{object}	map[string]string	"error"
//	@Header			200				{string}	Cache-Control		"no-store"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	refreshToken, ok := readTokenBody(r)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	token, err := h.AuthService.Refresh(ctx, refreshToken)
	if err != nil {
		if !errors.Is(err, service.ErrBadCredentials) {
			log.Error("token refresh failed", "err", err)
		}
		httpx.WriteUnauthorized(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, token)
}

// HandleValidate godoc
//
//	@Summary		Validate an access token
//	@Description	Verifies an access token, sent as the plain text request body, and returns the identity it carries.
//	@Tags			Auth
//	@Accept			plain
//	@Produce		json
//	@Param			access_token	body		string						true	"Access token"
//	@Success		200				{object}	domain.AuthenticatedUser	"username, authorities"
//	@Failure		401				{object}	map[string]string			"error"
//	@Router			/auth/validate [post].
func (h *AuthHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := readTokenBody(r)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	user, err := h.AuthService.ValidateToken(accessToken)
	if err != nil {
		httpx.WriteUnauthorized(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user)
}

// readTokenBody reads a token sent as the raw request body.
func readTokenBody(r *http.Request) (string, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBodyBytes))
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(body))
	return token, token != ""
}

// jsonBodyUsernameExtractor pulls the claimed username out of a JSON login
// body for throttling, then restores the body for the handler.
func jsonBodyUsernameExtractor(r *http.Request) string {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBodyBytes))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))

	var creds domain.AccountCredentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return ""
	}
	return creds.Username
}
