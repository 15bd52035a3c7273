package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/plshark/userauth/internal/domain"
	"github.com/plshark/userauth/internal/service"
	"github.com/plshark/userauth/pkg/httpx"
	"github.com/plshark/userauth/pkg/slogx"
)

// UsersHandler serves the user management endpoints. All routes require the
// users-admin authority.
type UsersHandler struct {
	UserService     *service.UserService
	SettingsService *service.UserAuthSettingsService
}

// UserResponse is the external view of an account. The password hash never
// appears here.
type UserResponse struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

// CreateUserRequest is the body for POST /v1/users.
type CreateUserRequest struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Authorities []string `json:"authorities"`
}

// AuthSettingsRequest is the body for PUT /v1/users/{username}/settings.
// TTLs are milliseconds; null means the service default.
type AuthSettingsRequest struct {
	RefreshTokenEnabled bool   `json:"refresh_token_enabled"`
	AccessTokenTTLMs    *int64 `json:"access_token_ttl_ms"`
	RefreshTokenTTLMs   *int64 `json:"refresh_token_ttl_ms"`
}

// HandleList godoc
//
//	@Summary	List usernames
//	@Tags		Users
//	@Produce	json
//	@Success	200	{array}	string
//	@Security	BearerAuth
//	@Router		/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	usernames, err := h.UserService.ListUsernames(r.Context())
	if err != nil {
		writeServerError(w, r, "list users failed", err)
		return
	}
	if usernames == nil {
		usernames = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, usernames)
}

// HandleCreate godoc
//
//	@Summary	Create a user
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		user	body		CreateUserRequest	true	"New account"
//	@Success	201		{object}	UserResponse
//	@Failure	400		{object}	map[string]string	"error"
//	@Failure	409		{object}	map[string]string	"error"
//	@Security	BearerAuth
//	@Router		/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil || req.Username == "" || req.Password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), req.Username, req.Password, req.Authorities)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			httpx.WriteJSON(w, http.StatusConflict, map[string]string{"error": "username_taken"})
			return
		}
		writeServerError(w, r, "create user failed", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleGet godoc
//
//	@Summary	Get a user
//	@Tags		Users
//	@Produce	json
//	@Param		username	path		string	true	"Username"
//	@Success	200			{object}	UserResponse
//	@Failure	404			{object}	map[string]string	"error"
//	@Security	BearerAuth
//	@Router		/v1/users/{username} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), r.PathValue("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeNotFound(w)
			return
		}
		writeServerError(w, r, "get user failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDelete godoc
//
//	@Summary	Delete a user
//	@Tags		Users
//	@Param		username	path	string	true	"Username"
//	@Success	204
//	@Failure	404	{object}	map[string]string	"error"
//	@Security	BearerAuth
//	@Router		/v1/users/{username} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.UserService.DeleteUser(r.Context(), r.PathValue("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeNotFound(w)
			return
		}
		writeServerError(w, r, "delete user failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChangePassword godoc
//
//	@Summary	Change a user's password
//	@Tags		Users
//	@Accept		json
//	@Param		username	path	string					true	"Username"
//	@Param		change		body	domain.PasswordChange	true	"Current and new password"
//	@Success	204
//	@Failure	400	{object}	map[string]string	"error"
//	@Failure	404	{object}	map[string]string	"error"
//	@Security	BearerAuth
//	@Router		/v1/users/{username}/password [put].
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var change domain.PasswordChange
	if err := decodeJSON(r, &change); err != nil || change.NewPassword == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	err := h.UserService.ChangePassword(r.Context(), r.PathValue("username"), change)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeNotFound(w)
		case errors.Is(err, service.ErrWrongPassword):
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "wrong_password"})
		default:
			writeServerError(w, r, "change password failed", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateSettings godoc
//
//	@Summary	Update a user's token policy
//	@Tags		Users
//	@Accept		json
//	@Param		username	path	string				true	"Username"
//	@Param		settings	body	AuthSettingsRequest	true	"Token policy"
//	@Success	204
//	@Failure	400	{object}	map[string]string	"error"
//	@Failure	404	{object}	map[string]string	"error"
//	@Security	BearerAuth
//	@Router		/v1/users/{username}/settings [put].
func (h *UsersHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req AuthSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	username := r.PathValue("username")
	if _, err := h.UserService.GetUser(r.Context(), username); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeNotFound(w)
			return
		}
		writeServerError(w, r, "get user failed", err)
		return
	}

	settings := domain.UserAuthSettings{
		RefreshTokenEnabled: req.RefreshTokenEnabled,
		AccessTokenTTL:      millisToDuration(req.AccessTokenTTLMs),
		RefreshTokenTTL:     millisToDuration(req.RefreshTokenTTLMs),
	}
	if err := h.SettingsService.UpdateForUser(r.Context(), username, settings); err != nil {
		writeServerError(w, r, "update settings failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toUserResponse(user domain.User) UserResponse {
	authorities := user.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	return UserResponse{Username: user.Username, Authorities: authorities}
}

func millisToDuration(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxAuthBodyBytes)).Decode(v)
}

func writeNotFound(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
}

func writeServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slogx.FromContext(r.Context()).Error(msg, "err", err)
	httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
}
