// Copyright (c) 2026 BountyHive. All rights reserved.

/*
Package profile (Postgres) implements the storage layer for synced users.

# Schema Table Mapping
  - users.profile: Mirrored identity record keyed by normalized subject.
*/
package profile

import (
	"context"
	"fmt"

	"github.com/bountyhive/api/internal/platform/database/schema"
	"github.com/bountyhive/api/internal/platform/dberr"
	"github.com/bountyhive/api/internal/platform/postgres"
)

// # Repository Implementations

// PostgresRepository implements [Repository] using pgx.
//
// The pool is pulled through a [postgres.PoolSource] on every call, so
// the repository inherits lazy initialization: the first query after
// boot triggers the connection attempt, and a failed backend surfaces
// as NOT_READY instead of a process crash.
type PostgresRepository struct {
	source postgres.PoolSource
}

// NewRepository creates a new Postgres implementation for profile storage.
func NewRepository(source postgres.PoolSource) *PostgresRepository {
	return &PostgresRepository{source: source}
}

/*
FindByID retrieves a profile record from the users.profile table.

Parameters:
  - context: context.Context
  - id: string (Normalized subject)

Returns:
  - *Profile: Hydrated profile entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Profile, error) {
	pool, err := repository.source.Acquire(context)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.UserProfile.ID, schema.UserProfile.WalletAddress, schema.UserProfile.Email,
		schema.UserProfile.Metadata, schema.UserProfile.CreatedAt, schema.UserProfile.UpdatedAt,
		schema.UserProfile.Table, schema.UserProfile.ID,
	)

	stored := &Profile{}
	err = pool.QueryRow(context, query, id).Scan(
		&stored.ID,
		&stored.WalletAddress,
		&stored.Email,
		&stored.Metadata,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Profile")
	}

	return stored, nil
}

/*
Upsert creates or refreshes a profile row.

Description: Uses INSERT ... ON CONFLICT so the first sync and every
subsequent sync share one statement. createdat is set once by the
database; updatedat is bumped on every conflict update.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - *Profile: The stored row with server-side timestamps
  - error: Storage or constraint failures
*/
func (repository *PostgresRepository) Upsert(context context.Context, profile *Profile) (*Profile, error) {
	pool, err := repository.source.Acquire(context)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, COALESCE($4, '{}'::jsonb))
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
		RETURNING %s, %s, %s, %s, %s, %s`,
		schema.UserProfile.Table,
		schema.UserProfile.ID, schema.UserProfile.WalletAddress, schema.UserProfile.Email, schema.UserProfile.Metadata,
		schema.UserProfile.ID,
		schema.UserProfile.WalletAddress, schema.UserProfile.WalletAddress,
		schema.UserProfile.Email, schema.UserProfile.Email,
		schema.UserProfile.Metadata, schema.UserProfile.Metadata,
		schema.UserProfile.UpdatedAt,
		schema.UserProfile.ID, schema.UserProfile.WalletAddress, schema.UserProfile.Email,
		schema.UserProfile.Metadata, schema.UserProfile.CreatedAt, schema.UserProfile.UpdatedAt,
	)

	stored := &Profile{}
	err = pool.QueryRow(context, query,
		profile.ID,
		profile.WalletAddress,
		profile.Email,
		profile.Metadata,
	).Scan(
		&stored.ID,
		&stored.WalletAddress,
		&stored.Email,
		&stored.Metadata,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Profile")
	}

	return stored, nil
}

/*
Ping verifies database connectivity on behalf of the diagnostics endpoint.

Parameters:
  - context: context.Context

Returns:
  - error: Acquisition or ping failures
*/
func (repository *PostgresRepository) Ping(context context.Context) error {
	pool, err := repository.source.Acquire(context)
	if err != nil {
		return err
	}
	return postgres.Ping(context, pool)
}
