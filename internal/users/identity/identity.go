// Copyright (c) 2026 BountyHive. All rights reserved.

/*
Package identity implements the session normalization layer.

The identity provider's token claims are duck-typed JSON: the linked-account
list in particular has a provider-owned, loosely-specified shape. This package
is the single boundary where that shape is decoded, validated, and mapped into
the explicit types the rest of the system consumes.

# Architecture

  - LinkedAccount: Explicit tagged union (email | wallet | social) instead of an
    open-ended object.
  - User: The request-scoped normalized identity attached to the context by the
    auth middleware. Never persisted directly; the profile sync service maps it
    into the durable record.
  - Subject normalization: provider DID prefixes are stripped here, once, so a
    single canonical user-id format flows through middleware, services, and storage.
*/
package identity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bountyhive/api/internal/platform/sec"
)

// DIDPrefix is the decentralized-identifier prefix the provider prepends to
// subject claims. The canonical BountyHive user id is the bare remainder.
const DIDPrefix = "did:privy:"

// # Linked Accounts

// AccountType enumerates the kinds of external identities a user can attach.
type AccountType string

const (
	AccountEmail  AccountType = "email"
	AccountWallet AccountType = "wallet"
	AccountSocial AccountType = "social"
)

// LinkedAccount is one external identity attached to a user.
//
// Exactly one shape is valid per type:
//
//	{type: "email",  email}
//	{type: "wallet", address}
//	{type: "social", provider, username}
type LinkedAccount struct {
	Type AccountType `json:"type"`

	// Email is set when Type == AccountEmail.
	Email string `json:"email,omitempty"`

	// Address is the wallet address when Type == AccountWallet.
	Address string `json:"address,omitempty"`

	// Provider and Username are set when Type == AccountSocial.
	Provider string `json:"provider,omitempty"`
	Username string `json:"username,omitempty"`
}

// Validate checks that the account carries the identifier its type requires.
func (account LinkedAccount) Validate() error {
	switch account.Type {
	case AccountEmail:
		if account.Email == "" {
			return fmt.Errorf("identity: email account missing email")
		}
	case AccountWallet:
		if account.Address == "" {
			return fmt.Errorf("identity: wallet account missing address")
		}
	case AccountSocial:
		if account.Provider == "" || account.Username == "" {
			return fmt.Errorf("identity: social account missing provider or username")
		}
	default:
		return fmt.Errorf("identity: unknown account type %q", account.Type)
	}
	return nil
}

// Identifier returns the type-specific identifier string.
func (account LinkedAccount) Identifier() string {
	switch account.Type {
	case AccountEmail:
		return account.Email
	case AccountWallet:
		return account.Address
	case AccountSocial:
		return account.Provider + ":" + account.Username
	default:
		return ""
	}
}

// # Normalized User

// User is the request-scoped identity derived from verified token claims.
//
// It is created per request by [FromClaims], attached to the request context by
// the auth middleware, and discarded when the request ends.
type User struct {
	// ID is the canonical user id (the token subject with the DID prefix stripped).
	ID string `json:"id"`

	// WalletAddress is the first linked wallet, if any.
	WalletAddress string `json:"wallet_address,omitempty"`

	// Email is the first linked email, if any.
	Email string `json:"email,omitempty"`

	// LinkedAccounts is the validated linked-account list, passed through unchanged.
	LinkedAccounts []LinkedAccount `json:"linked_accounts,omitempty"`

	// SessionID is the provider-side session identifier, carried for logging.
	SessionID string `json:"-"`
}

// NormalizeSubject converts a provider subject claim into the canonical user id.
//
// # Rules
//
//   - "did:privy:abc123" -> "abc123"
//   - "abc123"           -> "abc123" (bare ids pass through)
//   - "did:privy:"       -> error (empty remainder)
func NormalizeSubject(subject string) (string, error) {
	id := strings.TrimPrefix(strings.TrimSpace(subject), DIDPrefix)
	if id == "" {
		return "", fmt.Errorf("identity: empty subject after normalization (%q)", subject)
	}
	return id, nil
}

// FromClaims maps verified provider claims into a normalized [User].
//
// # Behavior
//
// Absence of a wallet or email is "not present", never an error. Malformed
// entries in the linked-account list are skipped rather than failing the whole
// session: the provider has shipped shape changes before, and a user with an
// odd third account must still be able to authenticate.
func FromClaims(claims *sec.AuthClaims) (*User, error) {
	id, err := NormalizeSubject(claims.Subject)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:        id,
		SessionID: claims.SessionID,
	}

	if claims.LinkedAccounts != "" {
		var accounts []LinkedAccount
		// The claim is a JSON-encoded array. A fully undecodable claim is
		// treated the same as an absent one.
		if err := json.Unmarshal([]byte(claims.LinkedAccounts), &accounts); err == nil {
			for _, account := range accounts {
				if account.Validate() != nil {
					continue
				}
				user.LinkedAccounts = append(user.LinkedAccounts, account)

				// First match per type wins.
				switch account.Type {
				case AccountWallet:
					if user.WalletAddress == "" {
						user.WalletAddress = account.Address
					}
				case AccountEmail:
					if user.Email == "" {
						user.Email = account.Email
					}
				}
			}
		}
	}

	return user, nil
}
