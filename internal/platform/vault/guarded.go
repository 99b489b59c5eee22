// Copyright (c) 2026 BountyHive. All rights reserved.

package vault

import (
	"context"
	"time"
)

// Source yields a ready vault client, initializing it on first use.
// It is satisfied by [lifecycle.Handle] instantiated over *Client.
type Source interface {
	Acquire(ctx context.Context) (*Client, error)
}

// Guarded adapts a [Source] to the vault operations, acquiring the
// underlying client per call. Sealing-key validation happens inside the
// guard's initializer, so a bad VAULT_KEY surfaces on first use as a
// CONFIGURATION_ERROR rather than at boot.
type Guarded struct {
	source Source
}

// NewGuarded wraps a vault source.
func NewGuarded(source Source) *Guarded {
	return &Guarded{source: source}
}

// Put seals and stores a secret through the guarded client.
func (guarded *Guarded) Put(ctx context.Context, name string, plaintext []byte, ttl time.Duration) error {
	client, err := guarded.source.Acquire(ctx)
	if err != nil {
		return err
	}
	return client.Put(ctx, name, plaintext, ttl)
}

// Get retrieves and opens a secret through the guarded client.
func (guarded *Guarded) Get(ctx context.Context, name string) ([]byte, error) {
	client, err := guarded.source.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return client.Get(ctx, name)
}

// Delete removes a secret through the guarded client.
func (guarded *Guarded) Delete(ctx context.Context, name string) error {
	client, err := guarded.source.Acquire(ctx)
	if err != nil {
		return err
	}
	return client.Delete(ctx, name)
}
