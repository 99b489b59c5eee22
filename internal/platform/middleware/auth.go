// Copyright (c) 2026 BountyHive. All rights reserved.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bountyhive/api/internal/platform/apperr"
	"github.com/bountyhive/api/internal/platform/ctxutil"
	"github.com/bountyhive/api/internal/platform/respond"
	"github.com/bountyhive/api/internal/platform/sec"
	"github.com/bountyhive/api/internal/users/identity"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the `sec`
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// VerifierAcquirer yields the token verifier on demand.
//
// The verifier lives behind a lifecycle guard (its initialization depends on
// external configuration), so the middleware acquires it per request rather
// than holding a reference from startup. Acquisition failures surface as
// NOT_READY or CONFIGURATION_ERROR responses.
type VerifierAcquirer interface {
	Acquire(ctx context.Context) (TokenVerifier, error)
}

// VerifierAcquirerFunc adapts a plain function to [VerifierAcquirer].
type VerifierAcquirerFunc func(ctx context.Context) (TokenVerifier, error)

// Acquire implements [VerifierAcquirer].
func (f VerifierAcquirerFunc) Acquire(ctx context.Context) (TokenVerifier, error) {
	return f(ctx)
}

// Authenticate extracts and verifies the bearer token from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, the request proceeds as anonymous — the verifier is never invoked.
//     [RequireAuth] rejects anonymous requests on protected routes.
//  3. If present but malformed, reject with 401 INVALID_AUTH_FORMAT.
//  4. Otherwise acquire the verifier through its lifecycle guard, verify the
//     token, normalize the claims into an [identity.User], and inject it into
//     the request context.
//
// # Logging
//
// Every rejection is logged with its machine-readable code. The raw token value
// is never logged.
func Authenticate(source VerifierAcquirer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				rejectAuth(writer, request, apperr.InvalidAuthFormat("Authorization header must be 'Bearer <token>'"))
				return
			}

			// ── 3. Verifier Acquisition ───────────────────────────────────────
			verifier, err := source.Acquire(request.Context())
			if err != nil {
				rejectAuth(writer, request, err)
				return
			}

			// ── 4. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(parts[1])
			if err != nil {
				if errors.Is(err, sec.ErrTokenExpired) {
					rejectAuth(writer, request, apperr.TokenExpired())
					return
				}
				rejectAuth(writer, request, apperr.TokenInvalid(err))
				return
			}

			// ── 5. Session Normalization ──────────────────────────────────────
			user, err := identity.FromClaims(claims)
			if err != nil {
				rejectAuth(writer, request, apperr.TokenInvalid(err))
				return
			}

			// ── 6. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), user)
			ctxutil.GetLogger(ctx).DebugContext(ctx, "request_authorized",
				slog.String("user_id", user.ID),
			)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if an [identity.User] exists in context.
//  2. If missing, abort with HTTP 401 AUTH_REQUIRED. The token verifier is
//     never invoked for requests that carried no Authorization header at all.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		user := ctxutil.GetAuthUser(request.Context())
		if user == nil {
			rejectAuth(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// rejectAuth logs the rejection with its machine-readable code and writes the
// error response. Raw credentials never reach the log.
func rejectAuth(writer http.ResponseWriter, request *http.Request, err error) {
	code := "INTERNAL_ERROR"
	if appError := apperr.As(err); appError != nil {
		code = appError.Code
	}

	ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "request_rejected",
		slog.String("code", code),
	)

	respond.Error(writer, request, err)
}
