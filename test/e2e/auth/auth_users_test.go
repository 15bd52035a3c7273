package auth_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserManagement(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t, nil)
	defer cleanup()

	adminToken := mustLogin(t, baseURL, adminUsername, adminPassword).AccessToken

	t.Run("management API requires a token", func(t *testing.T) {
		status, body := doRequest(t, http.MethodGet, baseURL+"/v1/users", "", "", "")
		require.Equal(t, http.StatusUnauthorized, status)
		assertErrorBody(t, body, "invalid_credentials")
	})

	t.Run("admin can provision and list users", func(t *testing.T) {
		createUser(t, baseURL, adminToken, "alice", "AlicePass1!", []string{"reports"})

		status, body := doRequest(t, http.MethodGet, baseURL+"/v1/users", "", "", adminToken)
		require.Equal(t, http.StatusOK, status)

		var usernames []string
		require.NoError(t, json.Unmarshal(body, &usernames))
		require.Contains(t, usernames, "alice")
	})

	t.Run("provisioned user can log in but not manage users", func(t *testing.T) {
		aliceToken := mustLogin(t, baseURL, "alice", "AlicePass1!").AccessToken

		status, _ := doRequest(t, http.MethodGet, baseURL+"/v1/users", "", "", aliceToken)
		require.Equal(t, http.StatusForbidden, status)
	})

	t.Run("password change takes effect immediately", func(t *testing.T) {
		createUser(t, baseURL, adminToken, "bob", "BobPass1!", nil)

		change := `{"current_password":"BobPass1!","new_password":"BobPass2!"}`
		status, _ := doRequest(t, http.MethodPut, baseURL+"/v1/users/bob/password",
			"application/json", change, adminToken)
		require.Equal(t, http.StatusNoContent, status)

		oldStatus, _ := login(t, baseURL, "bob", "BobPass1!")
		require.Equal(t, http.StatusUnauthorized, oldStatus)

		mustLogin(t, baseURL, "bob", "BobPass2!")
	})

	t.Run("disabling refresh tokens removes them from login", func(t *testing.T) {
		createUser(t, baseURL, adminToken, "carol", "CarolPass1!", nil)

		settings := `{"refresh_token_enabled":false}`
		status, _ := doRequest(t, http.MethodPut, baseURL+"/v1/users/carol/settings",
			"application/json", settings, adminToken)
		require.Equal(t, http.StatusNoContent, status)

		token := mustLogin(t, baseURL, "carol", "CarolPass1!")
		require.Empty(t, token.RefreshToken)
		require.NotEmpty(t, token.AccessToken)
	})

	t.Run("deleted user cannot log in", func(t *testing.T) {
		createUser(t, baseURL, adminToken, "dave", "DavePass1!", nil)
		mustLogin(t, baseURL, "dave", "DavePass1!")

		status, _ := doRequest(t, http.MethodDelete, baseURL+"/v1/users/dave", "", "", adminToken)
		require.Equal(t, http.StatusNoContent, status)

		loginStatus, _ := login(t, baseURL, "dave", "DavePass1!")
		require.Equal(t, http.StatusUnauthorized, loginStatus)
	})
}
