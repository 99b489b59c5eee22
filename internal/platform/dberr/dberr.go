// Copyright (c) 2026 BountyHive. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// It hides internal database details from the client while classifying the
// error type via the Postgres SQLSTATE.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bountyhive/api/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// # Classification
//
//  1. pgx.ErrNoRows        -> 404 NOT_FOUND (named by resource)
//  2. Unique violation     -> 409 CONFLICT
//  3. Foreign key missing  -> 400 VALIDATION_ERROR
//  4. Anything else        -> 500 INTERNAL_ERROR (cause preserved for logging)
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict(resource + " already exists").WithCause(err)
		case pgerrcode.ForeignKeyViolation:
			return apperr.ValidationError(resource + " references a missing record")
		}
	}

	return apperr.Internal(fmt.Errorf("dberr: %s: %w", resource, err))
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
