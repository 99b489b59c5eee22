// Copyright (c) 2026 BountyHive. All rights reserved.

package profile_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyhive/api/internal/platform/ctxutil"
	"github.com/bountyhive/api/internal/platform/middleware"
	"github.com/bountyhive/api/internal/users/identity"
	"github.com/bountyhive/api/internal/users/profile"
)

// injectUser simulates a completed Authenticate pass for a fixed user.
// When user is nil the request flows through anonymously.
func injectUser(user *identity.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if user != nil {
				request = request.WithContext(ctxutil.WithAuthUser(request.Context(), user))
			}
			next.ServeHTTP(writer, request)
		})
	}
}

func newTestServer(t *testing.T, user *identity.User) (*httptest.Server, *memoryRepository) {
	t.Helper()

	repository := newMemoryRepository()
	service := profile.NewService(repository, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := profile.NewHandler(service)

	router := chi.NewRouter()
	router.Use(injectUser(user))
	router.Mount("/api/users", handler.Routes(middleware.RequireAuth))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, repository
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	request, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })

	var payload map[string]any
	require.NoError(t, json.NewDecoder(response.Body).Decode(&payload))

	return response, payload
}

/*
TestHTTP_Sync_RequiresAuth verifies that an anonymous sync is rejected
with AUTH_REQUIRED before touching storage.
*/
func TestHTTP_Sync_RequiresAuth(t *testing.T) {
	server, repository := newTestServer(t, nil)

	response, payload := doJSON(t, http.MethodPost, server.URL+"/api/users/sync", "")

	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, "AUTH_REQUIRED", payload["code"])
	assert.Empty(t, repository.rows)
}

/*
TestHTTP_Sync_EmptyBodyCreatesProfile verifies the first-sync happy path
with no request body.
*/
func TestHTTP_Sync_EmptyBodyCreatesProfile(t *testing.T) {
	user := &identity.User{
		ID:            "u1",
		WalletAddress: "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
	}
	server, _ := newTestServer(t, user)

	response, payload := doJSON(t, http.MethodPost, server.URL+"/api/users/sync", "")

	assert.Equal(t, http.StatusOK, response.StatusCode)

	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", data["id"])
	assert.Equal(t, user.WalletAddress, data["wallet_address"])

	// First sync: both timestamps come from the same write.
	assert.Equal(t, data["created_at"], data["updated_at"])
}

/*
TestHTTP_Sync_SubjectMismatch verifies the 403 contract when the body
names a different user.
*/
func TestHTTP_Sync_SubjectMismatch(t *testing.T) {
	server, _ := newTestServer(t, &identity.User{ID: "u1"})

	response, payload := doJSON(t, http.MethodPost, server.URL+"/api/users/sync",
		`{"userId":"u2"}`)

	assert.Equal(t, http.StatusForbidden, response.StatusCode)
	assert.Equal(t, "FORBIDDEN", payload["code"])
}

/*
TestHTTP_Sync_InvalidWalletRejected verifies request validation of the
walletAddress override.
*/
func TestHTTP_Sync_InvalidWalletRejected(t *testing.T) {
	server, _ := newTestServer(t, &identity.User{ID: "u1"})

	response, payload := doJSON(t, http.MethodPost, server.URL+"/api/users/sync",
		`{"walletAddress":"not-a-wallet"}`)

	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", payload["code"])
}

/*
TestHTTP_GetMe_NeverSynced verifies the 404 contract for /me before the
first sync, matching GET /profile.
*/
func TestHTTP_GetMe_NeverSynced(t *testing.T) {
	server, _ := newTestServer(t, &identity.User{ID: "u1", Email: "hunter@bountyhive.app"})

	response, payload := doJSON(t, http.MethodGet, server.URL+"/api/users/me", "")

	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, "NOT_FOUND", payload["code"])
}

/*
TestHTTP_GetMe_AfterSync verifies that /me serves the token identity
alongside the stored profile once one exists.
*/
func TestHTTP_GetMe_AfterSync(t *testing.T) {
	user := &identity.User{ID: "u1", Email: "hunter@bountyhive.app"}
	server, _ := newTestServer(t, user)

	response, _ := doJSON(t, http.MethodPost, server.URL+"/api/users/sync", "")
	require.Equal(t, http.StatusOK, response.StatusCode)

	response, payload := doJSON(t, http.MethodGet, server.URL+"/api/users/me", "")
	assert.Equal(t, http.StatusOK, response.StatusCode)

	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)

	identityPart, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", identityPart["id"])

	profilePart, ok := data["profile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", profilePart["id"])
	assert.Equal(t, "hunter@bountyhive.app", profilePart["email"])
}

/*
TestHTTP_GetProfile_NotFound verifies the 404 contract for a profile
that was never synced.
*/
func TestHTTP_GetProfile_NotFound(t *testing.T) {
	server, _ := newTestServer(t, &identity.User{ID: "u1"})

	response, payload := doJSON(t, http.MethodGet, server.URL+"/api/users/profile", "")

	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, "NOT_FOUND", payload["code"])
}

/*
TestHTTP_UpdateProfile_PartialUpdate verifies that PUT /profile updates
supplied fields and leaves the rest alone.
*/
func TestHTTP_UpdateProfile_PartialUpdate(t *testing.T) {
	user := &identity.User{
		ID:            "u1",
		WalletAddress: "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
		Email:         "hunter@bountyhive.app",
	}
	server, _ := newTestServer(t, user)

	// Seed via sync.
	response, _ := doJSON(t, http.MethodPost, server.URL+"/api/users/sync", "")
	require.Equal(t, http.StatusOK, response.StatusCode)

	response, payload := doJSON(t, http.MethodPut, server.URL+"/api/users/profile",
		`{"email":"new@bountyhive.app","metadata":{"theme":"dark"}}`)

	assert.Equal(t, http.StatusOK, response.StatusCode)

	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "new@bountyhive.app", data["email"])
	assert.Equal(t, user.WalletAddress, data["wallet_address"])

	metadata, ok := data["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dark", metadata["theme"])
}

/*
TestHTTP_TestDBConnection_Public verifies that the diagnostics endpoint
answers without authentication.
*/
func TestHTTP_TestDBConnection_Public(t *testing.T) {
	server, _ := newTestServer(t, nil)

	response, payload := doJSON(t, http.MethodGet, server.URL+"/api/users/test-db-connection", "")

	assert.Equal(t, http.StatusOK, response.StatusCode)

	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", data["status"])

	latency, ok := data["latency_ms"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, latency, float64(0))
}
