// Copyright (c) 2026 BountyHive. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bountyhive/api/internal/platform/apperr"
	"github.com/bountyhive/api/internal/platform/ctxutil"
	"github.com/bountyhive/api/internal/platform/validate"
	"github.com/bountyhive/api/internal/users/identity"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
AuthUser extracts the normalized authenticated user from the request context.

Returns nil if the request is not authenticated.
*/
func AuthUser(request *http.Request) *identity.User {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredAuthUser ensures the request is authenticated and returns the user.

Returns:
  - *identity.User: The normalized authenticated user
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredAuthUser(request *http.Request) (*identity.User, error) {

	// Get the normalized user from context
	user := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if user == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return user, nil
}

/*
RequiredUserID returns the canonical user ID of the currently logged-in user.

Returns:
  - string: Canonical user ID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {

	// Get the authenticated user
	user, err := RequiredAuthUser(request)

	// If the user is not authenticated, return an error
	if err != nil {
		return "", err
	}

	return user.ID, nil
}
