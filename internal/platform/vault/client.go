// Copyright (c) 2026 BountyHive. All rights reserved.

package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bountyhive/api/internal/platform/apperr"
	"github.com/bountyhive/api/internal/platform/constants"
	redisplatform "github.com/bountyhive/api/internal/platform/redis"
)

// ErrSealedPayload indicates a stored payload that cannot be opened,
// either because it was truncated or because it was sealed with a
// different key.
var ErrSealedPayload = errors.New("vault: sealed payload is corrupt or key mismatch")

// Client stores sealed secrets in Redis.
//
// The Redis client is pulled through a [redisplatform.ClientSource] on
// each call, so the vault inherits the lazy initialization and cooldown
// semantics of the underlying lifecycle guard.
type Client struct {
	cipher *Cipher
	source redisplatform.ClientSource
}

// NewClient wires a cipher to a Redis source.
func NewClient(cipher *Cipher, source redisplatform.ClientSource) *Client {
	return &Client{cipher: cipher, source: source}
}

/*
Put seals a secret and stores it under the given name.

Parameters:
  - ctx: context.Context
  - name: Logical secret name, namespaced under the vault key prefix.
  - plaintext: []byte
  - ttl: time.Duration (zero means no expiration)

Returns:
  - error: Sealing or storage failures
*/
func (client *Client) Put(ctx context.Context, name string, plaintext []byte, ttl time.Duration) error {

	redisClient, err := client.source.Acquire(ctx)
	if err != nil {
		return err
	}

	sealed, err := client.cipher.Seal(plaintext)
	if err != nil {
		return err
	}

	key := constants.RedisPrefixVaultSecret + name

	if err := redisClient.Set(ctx, key, sealed, ttl).Err(); err != nil {
		return fmt.Errorf("vault_put_failed: %w", err)
	}

	return nil
}

/*
Get retrieves and opens a sealed secret.

Description: Returns apperr.NotFound if the secret is absent or expired.

Parameters:
  - ctx: context.Context
  - name: string

Returns:
  - []byte: Original plaintext
  - error: apperr.NotFound, ErrSealedPayload or connectivity errors
*/
func (client *Client) Get(ctx context.Context, name string) ([]byte, error) {

	redisClient, err := client.source.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	key := constants.RedisPrefixVaultSecret + name

	sealed, err := redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Secret not found or expired")
		}
		return nil, fmt.Errorf("vault_get_failed: %w", err)
	}

	return client.cipher.Open(sealed)
}

/*
Delete removes a sealed secret.

Parameters:
  - ctx: context.Context
  - name: string

Returns:
  - error: Deletion failures
*/
func (client *Client) Delete(ctx context.Context, name string) error {

	redisClient, err := client.source.Acquire(ctx)
	if err != nil {
		return err
	}

	key := constants.RedisPrefixVaultSecret + name

	if err := redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("vault_delete_failed: %w", err)
	}

	return nil
}
