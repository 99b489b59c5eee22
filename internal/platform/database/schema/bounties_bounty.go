// Copyright (c) 2026 BountyHive. All rights reserved.

package schema

// BountyTable represents the 'bounties.bounty' table
type BountyTable struct {
	Table        string
	ID           string
	Slug         string
	Title        string
	Description  string
	RewardAmount string
	RewardAsset  string
	CreatorID    string
	HunterID     string
	Status       string
	CreatedAt    string
	UpdatedAt    string
}

// Bounty is the schema definition for bounties.bounty
var Bounty = BountyTable{
	Table:        "bounties.bounty",
	ID:           "id",
	Slug:         "slug",
	Title:        "title",
	Description:  "description",
	RewardAmount: "rewardamount",
	RewardAsset:  "rewardasset",
	CreatorID:    "creatorid",
	HunterID:     "hunterid",
	Status:       "status",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t BountyTable) Columns() []string {
	return []string{
		t.ID, t.Slug, t.Title, t.Description, t.RewardAmount, t.RewardAsset,
		t.CreatorID, t.HunterID, t.Status, t.CreatedAt, t.UpdatedAt,
	}
}
