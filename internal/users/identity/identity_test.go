// Copyright (c) 2026 BountyHive. All rights reserved.

package identity_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyhive/api/internal/platform/sec"
	"github.com/bountyhive/api/internal/users/identity"
)

func claimsFor(subject, linkedAccounts string) *sec.AuthClaims {
	return &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		SessionID:        "session-1",
		LinkedAccounts:   linkedAccounts,
	}
}

/*
TestNormalizeSubject covers DID-prefix stripping and the canonical-id rules.
*/
func TestNormalizeSubject(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		want    string
		wantErr bool
	}{
		{name: "did prefix stripped", subject: "did:privy:u1", want: "u1"},
		{name: "bare id passes through", subject: "u1", want: "u1"},
		{name: "surrounding whitespace trimmed", subject: "  did:privy:u1  ", want: "u1"},
		{name: "empty remainder rejected", subject: "did:privy:", wantErr: true},
		{name: "empty subject rejected", subject: "", wantErr: true},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := identity.NormalizeSubject(testCase.subject)
			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

/*
TestFromClaims_FirstMatchPerType verifies that wallet and email are taken from
the first account of their type and the full list passes through.
*/
func TestFromClaims_FirstMatchPerType(t *testing.T) {
	linked := `[
		{"type":"email","email":"first@example.com"},
		{"type":"wallet","address":"0xaaa"},
		{"type":"wallet","address":"0xbbb"},
		{"type":"email","email":"second@example.com"},
		{"type":"social","provider":"github","username":"hunter"}
	]`

	user, err := identity.FromClaims(claimsFor("did:privy:u1", linked))
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "0xaaa", user.WalletAddress)
	assert.Equal(t, "first@example.com", user.Email)
	assert.Len(t, user.LinkedAccounts, 5)
	assert.Equal(t, "github:hunter", user.LinkedAccounts[4].Identifier())
}

/*
TestFromClaims_AbsenceIsNotAnError verifies that a user with no linked wallet
or email still normalizes cleanly.
*/
func TestFromClaims_AbsenceIsNotAnError(t *testing.T) {
	user, err := identity.FromClaims(claimsFor("did:privy:u1", ""))
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Empty(t, user.WalletAddress)
	assert.Empty(t, user.Email)
	assert.Empty(t, user.LinkedAccounts)
}

/*
TestFromClaims_MalformedEntriesSkipped verifies that entries failing the tagged
union validation are dropped without failing the session.
*/
func TestFromClaims_MalformedEntriesSkipped(t *testing.T) {
	linked := `[
		{"type":"wallet"},
		{"type":"teleporter","address":"0xbad"},
		{"type":"email","email":"ok@example.com"},
		{"type":"social","provider":"github"}
	]`

	user, err := identity.FromClaims(claimsFor("did:privy:u1", linked))
	require.NoError(t, err)

	require.Len(t, user.LinkedAccounts, 1)
	assert.Equal(t, identity.AccountEmail, user.LinkedAccounts[0].Type)
	assert.Equal(t, "ok@example.com", user.Email)
	assert.Empty(t, user.WalletAddress)
}

/*
TestFromClaims_UndecodableClaimTreatedAsAbsent verifies that a non-JSON claim
value does not fail normalization.
*/
func TestFromClaims_UndecodableClaimTreatedAsAbsent(t *testing.T) {
	user, err := identity.FromClaims(claimsFor("u1", "{not json"))
	require.NoError(t, err)
	assert.Empty(t, user.LinkedAccounts)
}

/*
TestLinkedAccount_Validate exercises the per-type required identifier rules.
*/
func TestLinkedAccount_Validate(t *testing.T) {
	valid := []identity.LinkedAccount{
		{Type: identity.AccountEmail, Email: "a@b.com"},
		{Type: identity.AccountWallet, Address: "0xabc"},
		{Type: identity.AccountSocial, Provider: "github", Username: "octo"},
	}
	for _, account := range valid {
		assert.NoError(t, account.Validate(), "type %s", account.Type)
	}

	invalid := []identity.LinkedAccount{
		{Type: identity.AccountEmail},
		{Type: identity.AccountWallet},
		{Type: identity.AccountSocial, Username: "octo"},
		{Type: "unknown", Address: "0xabc"},
	}
	for _, account := range invalid {
		assert.Error(t, account.Validate(), "type %s", account.Type)
	}
}
