// Copyright (c) 2026 BountyHive. All rights reserved.

package vault_test

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyhive/api/internal/platform/vault"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(key)
}

/*
TestCipher_RoundTrip verifies that a sealed payload opens back to the
original plaintext.
*/
func TestCipher_RoundTrip(t *testing.T) {
	cipher, err := vault.NewCipher(testKey(t))
	require.NoError(t, err)

	plaintext := []byte(`{"provider":"github","token":"ghp_secret"}`)

	sealed, err := cipher.Seal(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)

	opened, err := cipher.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

/*
TestCipher_NonceUniqueness verifies that sealing the same payload twice
yields distinct ciphertexts.
*/
func TestCipher_NonceUniqueness(t *testing.T) {
	cipher, err := vault.NewCipher(testKey(t))
	require.NoError(t, err)

	first, err := cipher.Seal([]byte("payload"))
	require.NoError(t, err)

	second, err := cipher.Seal([]byte("payload"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestCipher_TamperDetection verifies that a modified payload is rejected.
*/
func TestCipher_TamperDetection(t *testing.T) {
	cipher, err := vault.NewCipher(testKey(t))
	require.NoError(t, err)

	sealed, err := cipher.Seal([]byte("payload"))
	require.NoError(t, err)

	// Flip a bit in the ciphertext body.
	sealed[len(sealed)-1] ^= 0x01

	_, err = cipher.Open(sealed)
	assert.ErrorIs(t, err, vault.ErrSealedPayload)
}

/*
TestCipher_WrongKey verifies that a payload sealed under one key cannot
be opened under another.
*/
func TestCipher_WrongKey(t *testing.T) {
	sealing, err := vault.NewCipher(testKey(t))
	require.NoError(t, err)

	opening, err := vault.NewCipher(testKey(t))
	require.NoError(t, err)

	sealed, err := sealing.Seal([]byte("payload"))
	require.NoError(t, err)

	_, err = opening.Open(sealed)
	assert.ErrorIs(t, err, vault.ErrSealedPayload)
}

/*
TestCipher_TruncatedPayload verifies that payloads shorter than a nonce
are rejected rather than sliced out of range.
*/
func TestCipher_TruncatedPayload(t *testing.T) {
	cipher, err := vault.NewCipher(testKey(t))
	require.NoError(t, err)

	_, err = cipher.Open([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, vault.ErrSealedPayload)
}

/*
TestNewCipher_KeyValidation verifies key decoding and length checks.
*/
func TestNewCipher_KeyValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		isValid bool
	}{
		{"valid_32_bytes", base64.StdEncoding.EncodeToString(make([]byte, 32)), true},
		{"too_short", base64.StdEncoding.EncodeToString(make([]byte, 16)), false},
		{"too_long", base64.StdEncoding.EncodeToString(make([]byte, 64)), false},
		{"not_base64", "!!!not-base64!!!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vault.NewCipher(tt.key)
			if tt.isValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
