// Copyright (c) 2026 BountyHive. All rights reserved.

// Package bounty implements the bounty marketplace: browse, create,
// match, complete, and the encrypted brief attached to each bounty.
package bounty

import (
	"context"
	"time"
)

// Bounty lifecycle states.
const (
	StatusOpen      = "open"
	StatusMatched   = "matched"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Bounty represents a posted task with an on-platform reward.
type Bounty struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	RewardAmount string    `json:"reward_amount"`
	RewardAsset  string    `json:"reward_asset"`
	CreatorID    string    `json:"creator_id"`
	HunterID     string    `json:"hunter_id,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Filter narrows bounty list queries.
type Filter struct {
	Status string
	Query  string
}

// Repository defines the persistence contract for bounties.
type Repository interface {
	// List returns a page of bounties plus the unpaged total.
	List(context context.Context, filter Filter, limit, offset int) ([]Bounty, int, error)

	// FindByIDOrSlug resolves a bounty by UUID or by its URL slug.
	FindByIDOrSlug(context context.Context, idOrSlug string) (*Bounty, error)

	// Create inserts a new bounty row.
	Create(context context.Context, bounty *Bounty) error

	// Update persists status, hunter and timestamp changes.
	Update(context context.Context, bounty *Bounty) error
}
