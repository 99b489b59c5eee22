// Copyright (c) 2026 BountyHive. All rights reserved.

/*
Package lifecycle guards the initialization of external SDK clients.

Every external system BountyHive talks to (identity verifier, Postgres pool,
Redis, the secret vault) is expensive or fallible to initialize, and the process
may receive many concurrent requests before any client is ready. The [Handle]
type memoizes initialization behind an explicit state machine:

	uninitialized -> initializing -> {ready, failed}
	failed        -> initializing   (only after the cooldown elapses)

Guarantees:

  - At most one initialization attempt is in flight per handle at any time.
  - All concurrent callers of the same attempt receive the same client or the
    same error.
  - Ready is permanent for the process lifetime; there is no automatic
    invalidation.
  - After a failure, callers inside the cooldown window fail fast with
    NOT_READY instead of re-triggering the SDK.
*/
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bountyhive/api/internal/platform/apperr"
)

// initTimeout bounds a single initialization attempt. Attempts run on a
// detached context so that one caller giving up does not cancel the attempt
// for everyone else waiting on it.
const initTimeout = 15 * time.Second

// # State Machine

// State is the lifecycle state of an external client handle.
type State uint8

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

// String returns the lowercase name of the state for logging.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// # Handle

// InitFunc constructs the external client. It must be safe to call again after
// a failure and must return [apperr.Configuration] for missing credentials so
// that operators see a descriptive message instead of an opaque SDK error.
type InitFunc[T any] func(ctx context.Context) (T, error)

// Handle is a process-wide memoized handle to a lazily-initialized external client.
//
// # Concurrency
//
// All fields behind mu are mutated only through [Handle.Acquire]; request
// handlers never touch the state directly.
type Handle[T any] struct {
	name     string
	init     InitFunc[T]
	cooldown time.Duration
	log      *slog.Logger

	flight singleflight.Group

	mu          sync.Mutex
	state       State
	client      T
	lastAttempt time.Time
	lastErr     error
}

// NewHandle constructs a guard for one external system.
//
// # Parameters
//   - name: Stable identifier used in logs, singleflight keys, and NOT_READY messages.
//   - cooldown: Minimum interval between attempts after a failure.
//   - logger: Structured logger for state transitions.
//   - init: The actual SDK initialization.
func NewHandle[T any](name string, cooldown time.Duration, logger *slog.Logger, init InitFunc[T]) *Handle[T] {
	return &Handle[T]{
		name:     name,
		init:     init,
		cooldown: cooldown,
		log:      logger.With(slog.String("client", name)),
		state:    StateUninitialized,
	}
}

// Acquire returns the initialized client, initializing it on first use.
//
// # Flow
//  1. Ready: return the cached client immediately.
//  2. Failed inside the cooldown window: fail fast with NOT_READY.
//  3. Otherwise: start or join the single in-flight initialization attempt.
//
// Callers waiting on an in-flight attempt respect ctx cancellation; the attempt
// itself keeps running so later callers can still benefit from its outcome.
func (h *Handle[T]) Acquire(ctx context.Context) (T, error) {
	var zero T

	h.mu.Lock()
	switch h.state {
	case StateReady:
		client := h.client
		h.mu.Unlock()
		return client, nil

	case StateFailed:
		if time.Since(h.lastAttempt) < h.cooldown {
			cause := h.lastErr
			h.mu.Unlock()
			return zero, apperr.NotReady(h.name).WithCause(cause)
		}
	}
	h.mu.Unlock()

	// singleflight collapses concurrent callers into one attempt. Both the
	// uninitialized and the cooldown-elapsed paths land here; racing callers
	// that pass the cooldown check simultaneously still share one attempt.
	resultCh := h.flight.DoChan(h.name, func() (any, error) {
		return h.attempt()
	})

	select {
	case result := <-resultCh:
		if result.Err != nil {
			return zero, result.Err
		}
		return result.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// State reports the current lifecycle state. Intended for health endpoints and tests.
func (h *Handle[T]) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// attempt runs one initialization and records the resulting transition.
func (h *Handle[T]) attempt() (any, error) {
	h.mu.Lock()
	// A caller can join the flight after a racing attempt already succeeded.
	if h.state == StateReady {
		client := h.client
		h.mu.Unlock()
		return client, nil
	}
	// A caller that observed an in-flight attempt can reach here after that
	// attempt failed and singleflight forgot the key. Honor the cooldown
	// instead of starting a fresh attempt.
	if h.state == StateFailed && time.Since(h.lastAttempt) < h.cooldown {
		cause := h.lastErr
		h.mu.Unlock()
		return nil, apperr.NotReady(h.name).WithCause(cause)
	}
	h.state = StateInitializing
	h.lastAttempt = time.Now()
	h.mu.Unlock()

	h.log.Info("client_initializing")

	initCtx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	client, err := h.init(initCtx)

	h.mu.Lock()
	defer h.mu.Unlock()

	if err != nil {
		h.state = StateFailed
		h.lastErr = err
		h.log.Error("client_initialization_failed",
			slog.Any("error", err),
			slog.Duration("cooldown", h.cooldown),
		)
		return nil, fmt.Errorf("lifecycle: %s initialization failed: %w", h.name, err)
	}

	h.client = client
	h.state = StateReady
	h.lastErr = nil
	h.log.Info("client_ready")

	return client, nil
}
