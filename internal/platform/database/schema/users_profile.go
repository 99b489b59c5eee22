// Copyright (c) 2026 BountyHive. All rights reserved.

// Package schema centralizes table and column names so that SQL in the
// repository layer never spells out identifiers by hand.
package schema

// UserProfileTable represents the 'users.profile' table
type UserProfileTable struct {
	Table         string
	ID            string
	WalletAddress string
	Email         string
	Metadata      string
	CreatedAt     string
	UpdatedAt     string
}

// UserProfile is the schema definition for users.profile
var UserProfile = UserProfileTable{
	Table:         "users.profile",
	ID:            "id",
	WalletAddress: "walletaddress",
	Email:         "email",
	Metadata:      "metadata",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

// Columns returns all standard column names
func (t UserProfileTable) Columns() []string {
	return []string{t.ID, t.WalletAddress, t.Email, t.Metadata, t.CreatedAt, t.UpdatedAt}
}
