package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for the auth service end-to-end
 * tests. This includes container setup, HTTP helpers, and assertions.
 */

const (
	testImageName = "userauth-test:latest"

	adminUsername = "admin"
	adminPassword = "Admin123!"
)

// tokenResponse mirrors the login response body.
type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int64   `json:"expires_in"`
	RefreshToken string  `json:"refresh_token"`
	Scope        *string `json:"scope"`
}

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building userauth Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up userauth Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/userauth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Image might not exist
}

// baseEnv is the container configuration shared by every test. Rate limits
// are raised well above anything the tests generate; tests that exercise
// throttling override the relevant keys.
func baseEnv() map[string]string {
	return map[string]string{
		"AUTH_ISSUER":            "userauth-e2e",
		"AUTH_ALGORITHM":         "hmac256",
		"AUTH_SECRET":            "e2e-test-secret",
		"AUTH_DATABASE_FILE":     "/tmp/userauth.db",
		"AUTH_PEPPER_FILE":       "/tmp/pepper",
		"BOOTSTRAP_USERNAME":     adminUsername,
		"BOOTSTRAP_PASSWORD":     adminPassword,
		"ENV":                    "test",
		"LOG_LEVEL":              "info",
		"LOG_FORMAT":             "json",
		"RATELIMIT_MAX_REQUESTS": "10000",
		"RATELIMIT_WINDOW":       "60s",
	}
}

// setupAuthContainer starts the auth service in a container and returns the
// base URL. Entries in overrides replace the base environment.
func setupAuthContainer(t *testing.T, overrides map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	env := baseEnv()
	for k, v := range overrides {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// doRequest performs an HTTP request and returns the status code and body.
func doRequest(t *testing.T, method, url, contentType, body, bearerToken string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, url, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

// login posts credentials and returns the raw status code and decoded token
// response. The token response is only populated on a 200.
func login(t *testing.T, baseURL, username, password string) (int, tokenResponse) {
	t.Helper()

	creds, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)

	status, body := doRequest(t, http.MethodPost, baseURL+"/auth", "application/json", string(creds), "")

	var token tokenResponse
	if status == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, &token))
	}
	return status, token
}

// mustLogin logs in and fails the test on anything but a 200.
func mustLogin(t *testing.T, baseURL, username, password string) tokenResponse {
	t.Helper()

	status, token := login(t, baseURL, username, password)
	require.Equal(t, http.StatusOK, status, "login should succeed")
	return token
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, token tokenResponse) {
	t.Helper()
	require.NotEmpty(t, token.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, token.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, "bearer", token.TokenType)
	require.Positive(t, token.ExpiresIn)
	require.Nil(t, token.Scope, "Scope is not granted")
}

// assertErrorBody checks the uniform error body the service returns.
func assertErrorBody(t *testing.T, body []byte, code string) {
	t.Helper()

	var parsed struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &parsed))
	require.Equal(t, code, parsed.Error)
}

// createUser provisions a user through the management API.
func createUser(t *testing.T, baseURL, adminToken, username, password string, authorities []string) {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"username":    username,
		"password":    password,
		"authorities": authorities,
	})
	require.NoError(t, err)

	status, body := doRequest(t, http.MethodPost, baseURL+"/v1/users", "application/json", string(payload), adminToken)
	require.Equal(t, http.StatusCreated, status, "create user: %s", bytes.TrimSpace(body))
}
