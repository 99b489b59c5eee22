// Copyright (c) 2026 BountyHive. All rights reserved.

/*
Package profile provides the HTTP delivery layer for user sync and lookup.

It implements the RESTful interface the frontend calls right after the
identity provider completes a login, plus the read endpoints backing the
profile page.

# Security

All endpoints except the storage diagnostics route require an active
authentication session provided by the RequireAuth middleware.
*/
package profile

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/bountyhive/api/internal/platform/request"
	"github.com/bountyhive/api/internal/platform/respond"
	"github.com/bountyhive/api/internal/platform/validate"
)

// Handler implements the HTTP layer for profile sync and lookup.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new profile [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns a [chi.Router] configured with the profile endpoints.
// The requireAuth middleware guards everything except diagnostics.
func (handler *Handler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	// Storage diagnostics (public)
	router.Get("/test-db-connection", handler.testDBConnection)

	// Authenticated surface
	router.Group(func(protected chi.Router) {
		protected.Use(requireAuth)
		protected.Post("/sync", handler.sync)
		protected.Get("/me", handler.getMe)
		protected.Get("/profile", handler.getProfile)
		protected.Put("/profile", handler.updateProfile)
	})

	return router
}

// syncRequest defines the expected JSON payload for profile sync.
// All fields are optional; the token identity is the source of truth.
type syncRequest struct {
	UserID        *string        `json:"userId"`
	WalletAddress *string        `json:"walletAddress"`
	Email         *string        `json:"email"`
	Metadata      map[string]any `json:"metadata"`
}

// validateSync checks the optional override fields of a sync payload.
func validateSync(input *syncRequest) error {
	v := &validate.Validator{}
	if input.WalletAddress != nil && *input.WalletAddress != "" {
		v.WalletAddress("walletAddress", *input.WalletAddress)
	}
	if input.Email != nil && *input.Email != "" {
		v.Email("email", *input.Email)
	}
	return v.Err()
}

/*
POST /api/users/sync.

Description: Upserts the caller's profile from their verified token
identity, applying any overrides carried in the body. Safe to repeat.

Request:
  - body: syncRequest (Optional partial JSON)

Response:
  - 200: Profile: The stored profile
  - 400: Validation: Invalid override fields
  - 401: AUTH_REQUIRED: Authentication required
  - 403: FORBIDDEN: Body userId does not match the token subject
*/
func (handler *Handler) sync(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredAuthUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// An empty body is a valid sync request.
	var input syncRequest
	if request.ContentLength != 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	if err := validateSync(&input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	stored, err := handler.profileService.Sync(request.Context(), user, SyncInput{
		UserID:        input.UserID,
		WalletAddress: input.WalletAddress,
		Email:         input.Email,
		Metadata:      input.Metadata,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stored)
}

/*
GET /api/users/me.

Description: Returns the caller's token identity alongside their stored
profile.

Response:
  - 200: meResponse
  - 401: AUTH_REQUIRED: Authentication required
  - 404: NOT_FOUND: The caller has never synced
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredAuthUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stored, err := handler.profileService.GetProfile(request.Context(), user.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"user":    user,
		"profile": stored,
	})
}

/*
GET /api/users/profile.

Description: Returns the caller's stored profile.

Response:
  - 200: Profile
  - 401: AUTH_REQUIRED: Authentication required
  - 404: NOT_FOUND: The caller has never synced
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stored, err := handler.profileService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stored)
}

/*
PUT /api/users/profile.

Description: Applies partial updates to the caller's profile. Shares the
sync upsert path, so an update before any explicit sync still creates
the record from the token identity.

Request:
  - body: syncRequest (Partial JSON)

Response:
  - 200: Profile: The updated profile
  - 400: Validation: Invalid input data
  - 401: AUTH_REQUIRED: Authentication required
  - 403: FORBIDDEN: Body userId does not match the token subject
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredAuthUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input syncRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := validateSync(&input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	stored, err := handler.profileService.Sync(request.Context(), user, SyncInput{
		UserID:        input.UserID,
		WalletAddress: input.WalletAddress,
		Email:         input.Email,
		Metadata:      input.Metadata,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stored)
}

/*
GET /api/users/test-db-connection.

Description: Storage diagnostics for deploy smoke tests. Reports whether
the database backend is reachable, triggering lazy initialization if the
pool has not been created yet.

Response:
  - 200: {status: "ok", latency_ms}
  - 503: NOT_READY: Backend initialization failed recently
*/
func (handler *Handler) testDBConnection(writer http.ResponseWriter, request *http.Request) {
	started := time.Now()
	if err := handler.profileService.CheckStorage(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"status":     "ok",
		"latency_ms": time.Since(started).Milliseconds(),
	})
}
