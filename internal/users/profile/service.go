// Copyright (c) 2026 BountyHive. All rights reserved.

package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bountyhive/api/internal/platform/apperr"
	"github.com/bountyhive/api/internal/users/identity"
)

// # Service Layer

// Service orchestrates the sync and read paths for user profiles.
//
// It enforces that a caller can only ever write their own record, and
// that syncing is safe to repeat: the same token identity produces the
// same row, modulo the updatedat timestamp.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		logger:     logger,
	}
}

// SyncInput defines the optional overrides a sync request may carry.
//
// Pointer fields distinguish "omitted" from "supplied but empty": a nil
// pointer leaves the stored value untouched, a pointer to "" clears it.
type SyncInput struct {
	UserID        *string
	WalletAddress *string
	Email         *string
	Metadata      map[string]any
}

/*
Sync upserts the caller's profile from their verified token identity.

Description: The profile id always comes from the token subject. If the
request body names a userId, it must match the token subject, otherwise
the call is rejected. On first sync, wallet and email fall back to the
values extracted from the token's linked accounts for any field the body
omits.

Parameters:
  - context: context.Context
  - user: *identity.User (Verified token identity)
  - input: SyncInput

Returns:
  - *Profile: The stored profile
  - error: apperr.Forbidden on subject mismatch, or storage failures
*/
func (service *Service) Sync(context context.Context, user *identity.User, input SyncInput) (*Profile, error) {

	// Business: The body may restate the caller's id but never someone else's.
	if input.UserID != nil && *input.UserID != user.ID {
		service.logger.Warn("profile_sync_subject_mismatch",
			slog.String("token_subject", user.ID),
		)
		return nil, apperr.Forbidden("Cannot sync a different user's profile")
	}

	// Load current state to distinguish first sync from refresh.
	existing, err := service.repository.FindByID(context, user.ID)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("profile_service_sync_lookup_failed: %w", err)
	}

	candidate := &Profile{ID: user.ID}
	if existing != nil {
		candidate.WalletAddress = existing.WalletAddress
		candidate.Email = existing.Email
		candidate.Metadata = existing.Metadata
	} else {
		// First sync: seed from the token's linked accounts.
		candidate.WalletAddress = user.WalletAddress
		candidate.Email = user.Email
	}

	// Apply delta updates
	if input.WalletAddress != nil {
		candidate.WalletAddress = *input.WalletAddress
	}

	// Apply delta updates
	if input.Email != nil {
		candidate.Email = *input.Email
	}

	// Metadata merges key-by-key rather than replacing the whole bag.
	if len(input.Metadata) > 0 {
		if candidate.Metadata == nil {
			candidate.Metadata = make(map[string]any, len(input.Metadata))
		}
		for key, value := range input.Metadata {
			candidate.Metadata[key] = value
		}
	}

	// A nil map is encoded as SQL NULL, which violates the NOT NULL
	// jsonb column. Always persist at least an empty object.
	if candidate.Metadata == nil {
		candidate.Metadata = map[string]any{}
	}

	stored, err := service.repository.Upsert(context, candidate)
	if err != nil {
		return nil, fmt.Errorf("profile_service_sync_upsert_failed: %w", err)
	}

	service.logger.Info("profile_synced",
		slog.String("user_id", stored.ID),
		slog.Bool("created", existing == nil),
	)

	return stored, nil
}

/*
GetProfile retrieves the caller's stored profile.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: The hydrated profile
  - error: apperr.NotFound if the user has never synced
*/
func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {
	stored, err := service.repository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("profile_service_get_failed: %w", err)
	}
	return stored, nil
}

/*
CheckStorage verifies that the profile storage backend is reachable.

Parameters:
  - context: context.Context

Returns:
  - error: Connectivity failures
*/
func (service *Service) CheckStorage(context context.Context) error {
	if err := service.repository.Ping(context); err != nil {
		return fmt.Errorf("profile_service_storage_check_failed: %w", err)
	}
	return nil
}

// isNotFound reports whether err is an application-level NOT_FOUND.
func isNotFound(err error) bool {
	var appError *apperr.AppError
	if errors.As(err, &appError) {
		return appError.Code == "NOT_FOUND"
	}
	return false
}
