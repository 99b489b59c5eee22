// Copyright (c) 2026 BountyHive. All rights reserved.

/*
Package profile persists the application-side view of externally
authenticated users.

The identity provider owns credentials and login flows; this package owns
the mirrored record (wallet, email, metadata) that the rest of the
application joins against. Records are created and refreshed through an
idempotent sync operation driven by the verified token identity.

# Architecture

  - Entities: Profile.
  - Domain: Depends on the identity package for the normalized user.
  - Concurrency: Syncs for the same id are last-write-wins; there is no
    per-user lock.
*/
package profile

import (
	"context"
	"time"
)

// # Domain Entities

// Profile represents a synced user record in the users.profile table.
//
// The ID is the normalized token subject and never changes. All other
// fields are mutable through sync and profile updates.
type Profile struct {
	ID            string         `json:"id"`
	WalletAddress string         `json:"wallet_address,omitempty"`
	Email         string         `json:"email,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// # Repository Contracts

// Repository defines the persistence contract for user profiles.
type Repository interface {
	/*
		FindByID retrieves a profile by its normalized subject id.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Profile: Loaded profile entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Profile, error)

	/*
		Upsert creates the profile on first sync or updates the mutable
		fields on subsequent syncs, bumping updatedat.

		Parameters:
		  - context: context.Context
		  - profile: *Profile (Hydrated entity with changes)

		Returns:
		  - *Profile: The stored row including server-side timestamps
		  - error: Storage or constraint failures
	*/
	Upsert(context context.Context, profile *Profile) (*Profile, error)

	/*
		Ping verifies storage connectivity for the diagnostics endpoint.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Connectivity failures
	*/
	Ping(context context.Context) error
}
