// Copyright (c) 2026 BountyHive. All rights reserved.

// Package sec provides token verification against the hosted identity provider.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. BountyHive
// never signs tokens itself: the identity provider authenticates the user in the
// frontend and issues a signed access token. Our only job is verifying that
// signature against the provider's published verification key and enforcing the
// audience (our application id) and issuer.
package sec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors distinguishing the two rejection classes the provider exposes.
var (
	// ErrTokenExpired marks a structurally valid token whose expiry is in the past.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid marks a malformed token, a bad signature, or a wrong
	// audience/issuer. The underlying detail is wrapped for server-side logs.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// AuthClaims represents the verified payload of a provider-issued access token.
//
// It is immutable once produced and lives for the duration of a single request.
// Downstream code should not consume it directly; the session normalizer maps it
// into an [identity.User] first.
type AuthClaims struct {
	jwt.RegisteredClaims

	// SessionID is the provider-side session identifier ("sid" claim).
	SessionID string `json:"sid,omitempty"`

	// LinkedAccounts carries the provider's linked-account list as a raw JSON
	// string. The provider duck-types this claim; decoding and validation
	// happen at the normalizer boundary, not here.
	LinkedAccounts string `json:"linked_accounts,omitempty"`
}

// TokenVerifier validates provider-issued bearer tokens using the provider's
// PEM-encoded public verification key.
//
// # Supported Algorithms
//
// The identity provider signs with ES256; RS256 is accepted as well so that a
// provider-side key rotation to RSA does not require a code change. Symmetric
// algorithms are rejected outright.
type TokenVerifier struct {
	publicKey any
	appID     string
	issuer    string
}

// verifyValidMethods restricts acceptable signing algorithms.
var verifyValidMethods = []string{"ES256", "RS256"}

// NewTokenVerifier parses the PEM verification key and returns a ready verifier.
//
// # Parameters
//   - verificationKeyPEM: The provider's public key in PEM form.
//   - appID: Our application id at the provider; enforced as the token audience.
//   - issuer: The expected "iss" claim.
func NewTokenVerifier(verificationKeyPEM, appID, issuer string) (*TokenVerifier, error) {
	keyData := []byte(strings.TrimSpace(verificationKeyPEM))

	// The provider documents an EC P-256 key but has shipped RSA keys to older
	// applications. Try both parsers before giving up.
	var publicKey any
	publicKey, err := jwt.ParseECPublicKeyFromPEM(keyData)
	if err != nil {
		publicKey, err = jwt.ParseRSAPublicKeyFromPEM(keyData)
	}
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse verification key: %w", err)
	}

	return &TokenVerifier{
		publicKey: publicKey,
		appID:     appID,
		issuer:    issuer,
	}, nil
}

// VerifyToken checks the signature and validity of a bearer token string.
//
// # Returns
//   - *AuthClaims: The verified claims, with subject/audience/expiry enforced.
//   - error: [ErrTokenExpired] or [ErrTokenInvalid] (both wrap the library detail).
func (verifier *TokenVerifier) VerifyToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return verifier.publicKey, nil
		},
		jwt.WithValidMethods(verifyValidMethods),
		jwt.WithAudience(verifier.appID),
		jwt.WithIssuer(verifier.issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		// Expiry is the one failure class worth distinguishing for clients.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return claims, nil
}

// ExpiresIn reports the remaining lifetime of the claims at the given instant.
// Zero or negative means expired.
func (claims *AuthClaims) ExpiresIn(now time.Time) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(now)
}
