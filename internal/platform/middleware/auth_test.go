// Copyright (c) 2026 BountyHive. All rights reserved.

package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyhive/api/internal/platform/apperr"
	"github.com/bountyhive/api/internal/platform/ctxutil"
	"github.com/bountyhive/api/internal/platform/middleware"
	"github.com/bountyhive/api/internal/platform/sec"
)

// stubVerifier returns canned claims or a canned error and counts calls.
type stubVerifier struct {
	claims *sec.AuthClaims
	err    error
	calls  int
}

func (verifier *stubVerifier) VerifyToken(_ string) (*sec.AuthClaims, error) {
	verifier.calls++
	if verifier.err != nil {
		return nil, verifier.err
	}
	return verifier.claims, nil
}

// fixedSource serves one verifier, or an acquisition error.
func fixedSource(verifier middleware.TokenVerifier, err error) middleware.VerifierAcquirer {
	return middleware.VerifierAcquirerFunc(func(_ context.Context) (middleware.TokenVerifier, error) {
		if err != nil {
			return nil, err
		}
		return verifier, nil
	})
}

func validClaims(subject string) *sec.AuthClaims {
	claims := &sec.AuthClaims{}
	claims.Subject = subject
	return claims
}

// echoUser writes the authenticated user's id, or "anonymous".
func echoUser(writer http.ResponseWriter, request *http.Request) {
	user := ctxutil.GetAuthUser(request.Context())
	if user == nil {
		_, _ = writer.Write([]byte("anonymous"))
		return
	}
	_, _ = writer.Write([]byte(user.ID))
}

func runRequest(t *testing.T, handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		request.Header.Set("Authorization", authHeader)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeErrorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	code, _ := payload["code"].(string)
	return code
}

/*
TestAuthenticate_NoHeaderPassesThroughAnonymously verifies that a request
without an Authorization header reaches the handler as anonymous and the
verifier is never invoked.
*/
func TestAuthenticate_NoHeaderPassesThroughAnonymously(t *testing.T) {
	verifier := &stubVerifier{claims: validClaims("did:privy:u1")}
	handler := middleware.Authenticate(fixedSource(verifier, nil))(http.HandlerFunc(echoUser))

	recorder := runRequest(t, handler, "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "anonymous", recorder.Body.String())
	assert.Zero(t, verifier.calls)
}

/*
TestAuthenticate_ValidTokenInjectsUser verifies the happy path: claims
are normalized and the user lands in the request context.
*/
func TestAuthenticate_ValidTokenInjectsUser(t *testing.T) {
	verifier := &stubVerifier{claims: validClaims("did:privy:u1")}
	handler := middleware.Authenticate(fixedSource(verifier, nil))(http.HandlerFunc(echoUser))

	recorder := runRequest(t, handler, "Bearer some-token")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "u1", recorder.Body.String())
	assert.Equal(t, 1, verifier.calls)
}

/*
TestAuthenticate_MalformedHeader verifies the 401 INVALID_AUTH_FORMAT
contract for broken Authorization headers.
*/
func TestAuthenticate_MalformedHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing_scheme", "some-token"},
		{"wrong_scheme", "Basic dXNlcjpwYXNz"},
		{"empty_token", "Bearer "},
		{"extra_parts", "Bearer a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &stubVerifier{claims: validClaims("did:privy:u1")}
			handler := middleware.Authenticate(fixedSource(verifier, nil))(http.HandlerFunc(echoUser))

			recorder := runRequest(t, handler, tt.header)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Equal(t, "INVALID_AUTH_FORMAT", decodeErrorCode(t, recorder))
			assert.Zero(t, verifier.calls)
		})
	}
}

/*
TestAuthenticate_ExpiredToken verifies that an expired token maps to
401 TOKEN_EXPIRED, distinct from generic invalidity.
*/
func TestAuthenticate_ExpiredToken(t *testing.T) {
	verifier := &stubVerifier{err: sec.ErrTokenExpired}
	handler := middleware.Authenticate(fixedSource(verifier, nil))(http.HandlerFunc(echoUser))

	recorder := runRequest(t, handler, "Bearer expired-token")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "TOKEN_EXPIRED", decodeErrorCode(t, recorder))
}

/*
TestAuthenticate_InvalidToken verifies the 401 TOKEN_INVALID contract.
*/
func TestAuthenticate_InvalidToken(t *testing.T) {
	verifier := &stubVerifier{err: sec.ErrTokenInvalid}
	handler := middleware.Authenticate(fixedSource(verifier, nil))(http.HandlerFunc(echoUser))

	recorder := runRequest(t, handler, "Bearer bad-token")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "TOKEN_INVALID", decodeErrorCode(t, recorder))
}

/*
TestAuthenticate_VerifierNotReady verifies that a failed lifecycle guard
surfaces as 503 NOT_READY to callers presenting a token.
*/
func TestAuthenticate_VerifierNotReady(t *testing.T) {
	handler := middleware.Authenticate(fixedSource(nil, apperr.NotReady("identity-verifier")))(http.HandlerFunc(echoUser))

	recorder := runRequest(t, handler, "Bearer some-token")

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, "NOT_READY", decodeErrorCode(t, recorder))
}

/*
TestRequireAuth_AnonymousRejected verifies that protected routes reject
anonymous requests with AUTH_REQUIRED and never consult the verifier.
*/
func TestRequireAuth_AnonymousRejected(t *testing.T) {
	verifier := &stubVerifier{claims: validClaims("did:privy:u1")}
	chain := middleware.Authenticate(fixedSource(verifier, nil))(
		middleware.RequireAuth(http.HandlerFunc(echoUser)),
	)

	recorder := runRequest(t, chain, "")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "AUTH_REQUIRED", decodeErrorCode(t, recorder))
	assert.Zero(t, verifier.calls)
}

/*
TestRequireAuth_AuthenticatedPasses verifies the full chain for a valid
bearer token on a protected route.
*/
func TestRequireAuth_AuthenticatedPasses(t *testing.T) {
	verifier := &stubVerifier{claims: validClaims("did:privy:u1")}
	chain := middleware.Authenticate(fixedSource(verifier, nil))(
		middleware.RequireAuth(http.HandlerFunc(echoUser)),
	)

	recorder := runRequest(t, chain, "Bearer some-token")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "u1", recorder.Body.String())
}
