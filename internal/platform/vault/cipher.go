// Copyright (c) 2026 BountyHive. All rights reserved.

/*
Package vault provides sealed storage for small secrets.

Payloads are encrypted with ChaCha20-Poly1305 before they ever leave the
process, then parked in Redis under a namespaced key with an optional TTL.
Redis only ever sees ciphertext; the sealing key lives in configuration and
is validated when the vault client is first initialized.
*/
package vault

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher seals and opens byte payloads with a fixed symmetric key.
type Cipher struct {
	key []byte
}

// NewCipher validates and decodes a base64-encoded 32-byte sealing key.
func NewCipher(encodedKey string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("vault: sealing key is not valid base64: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("vault: sealing key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &Cipher{key: key}, nil
}

/*
Seal encrypts a plaintext payload.

The random nonce is prepended to the ciphertext so that Open needs no
additional state.

Parameters:
  - plaintext: []byte

Returns:
  - []byte: nonce || ciphertext
  - error: Entropy or cipher construction failures
*/
func (cipher *Cipher) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(cipher.key)
	if err != nil {
		return nil, fmt.Errorf("vault: cipher construction failed: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("vault: nonce generation failed: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

/*
Open decrypts a payload produced by Seal.

Parameters:
  - sealed: []byte (nonce || ciphertext)

Returns:
  - []byte: Original plaintext
  - error: ErrSealedPayload if the payload is truncated or tampered with
*/
func (cipher *Cipher) Open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(cipher.key)
	if err != nil {
		return nil, fmt.Errorf("vault: cipher construction failed: %w", err)
	}

	if len(sealed) < aead.NonceSize() {
		return nil, ErrSealedPayload
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSealedPayload
	}

	return plaintext, nil
}
