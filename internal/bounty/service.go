// Copyright (c) 2026 BountyHive. All rights reserved.

package bounty

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bountyhive/api/internal/platform/apperr"
	"github.com/bountyhive/api/pkg/slug"
	"github.com/bountyhive/api/pkg/uuid"
)

// BriefVault seals and stores bounty briefs. Satisfied by vault.Client.
type BriefVault interface {
	Put(context context.Context, name string, plaintext []byte, ttl time.Duration) error
	Get(context context.Context, name string) ([]byte, error)
}

// Service orchestrates the bounty lifecycle.
type Service struct {
	repository Repository
	briefVault BriefVault
	logger     *slog.Logger
}

// NewService constructs a bounty [Service].
func NewService(repository Repository, briefVault BriefVault, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		briefVault: briefVault,
		logger:     logger,
	}
}

// ListBounties returns a page of bounties matching the filter.
func (service *Service) ListBounties(context context.Context, filter Filter, limit, offset int) ([]Bounty, int, error) {
	bounties, total, err := service.repository.List(context, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("bounty_service_list_failed: %w", err)
	}
	return bounties, total, nil
}

// GetBounty resolves a single bounty by id or slug.
func (service *Service) GetBounty(context context.Context, idOrSlug string) (*Bounty, error) {
	found, err := service.repository.FindByIDOrSlug(context, idOrSlug)
	if err != nil {
		return nil, fmt.Errorf("bounty_service_get_failed: %w", err)
	}
	return found, nil
}

// CreateInput carries the caller-supplied fields for a new bounty.
type CreateInput struct {
	Title        string
	Description  string
	RewardAmount string
	RewardAsset  string
}

// CreateBounty posts a new open bounty owned by creatorID.
func (service *Service) CreateBounty(context context.Context, creatorID string, input CreateInput) (*Bounty, error) {
	created := &Bounty{
		ID:           uuid.Must(),
		Slug:         slug.From(input.Title),
		Title:        input.Title,
		Description:  input.Description,
		RewardAmount: input.RewardAmount,
		RewardAsset:  input.RewardAsset,
		CreatorID:    creatorID,
		Status:       StatusOpen,
	}

	if err := service.repository.Create(context, created); err != nil {
		return nil, fmt.Errorf("bounty_service_create_failed: %w", err)
	}

	service.logger.Info("bounty_created",
		slog.String("bounty_id", created.ID),
		slog.String("creator_id", creatorID),
	)

	return created, nil
}

// MatchBounty claims an open bounty for hunterID.
//
// Business rules: only open bounties can be matched, and a creator can
// never hunt their own bounty.
func (service *Service) MatchBounty(context context.Context, bountyID, hunterID string) (*Bounty, error) {
	found, err := service.repository.FindByIDOrSlug(context, bountyID)
	if err != nil {
		return nil, fmt.Errorf("bounty_service_match_lookup_failed: %w", err)
	}

	if found.CreatorID == hunterID {
		return nil, apperr.Forbidden("Cannot match your own bounty")
	}

	if found.Status != StatusOpen {
		return nil, apperr.Conflict("Bounty is not open for matching")
	}

	found.HunterID = hunterID
	found.Status = StatusMatched

	if err := service.repository.Update(context, found); err != nil {
		return nil, fmt.Errorf("bounty_service_match_update_failed: %w", err)
	}

	service.logger.Info("bounty_matched",
		slog.String("bounty_id", found.ID),
		slog.String("hunter_id", hunterID),
	)

	return found, nil
}

// CompleteBounty closes a matched bounty. Creator only.
func (service *Service) CompleteBounty(context context.Context, bountyID, callerID string) (*Bounty, error) {
	found, err := service.repository.FindByIDOrSlug(context, bountyID)
	if err != nil {
		return nil, fmt.Errorf("bounty_service_complete_lookup_failed: %w", err)
	}

	if found.CreatorID != callerID {
		return nil, apperr.Forbidden("Only the creator can complete a bounty")
	}

	if found.Status != StatusMatched {
		return nil, apperr.Conflict("Only matched bounties can be completed")
	}

	found.Status = StatusCompleted

	if err := service.repository.Update(context, found); err != nil {
		return nil, fmt.Errorf("bounty_service_complete_update_failed: %w", err)
	}

	service.logger.Info("bounty_completed", slog.String("bounty_id", found.ID))

	return found, nil
}

// PutBrief seals the bounty's private brief and stores it. Creator only.
func (service *Service) PutBrief(context context.Context, bountyID, callerID, brief string) error {
	found, err := service.repository.FindByIDOrSlug(context, bountyID)
	if err != nil {
		return fmt.Errorf("bounty_service_brief_lookup_failed: %w", err)
	}

	if found.CreatorID != callerID {
		return apperr.Forbidden("Only the creator can attach a brief")
	}

	if err := service.briefVault.Put(context, briefName(found.ID), []byte(brief), 0); err != nil {
		return fmt.Errorf("bounty_service_brief_put_failed: %w", err)
	}

	return nil
}

// GetBrief retrieves and opens a bounty's brief.
//
// Visible to the creator and, once matched, to the hunter.
func (service *Service) GetBrief(context context.Context, bountyID, callerID string) (string, error) {
	found, err := service.repository.FindByIDOrSlug(context, bountyID)
	if err != nil {
		return "", fmt.Errorf("bounty_service_brief_lookup_failed: %w", err)
	}

	if found.CreatorID != callerID && found.HunterID != callerID {
		return "", apperr.Forbidden("Brief is restricted to the creator and matched hunter")
	}

	plaintext, err := service.briefVault.Get(context, briefName(found.ID))
	if err != nil {
		return "", fmt.Errorf("bounty_service_brief_get_failed: %w", err)
	}

	return string(plaintext), nil
}

// briefName namespaces a bounty's brief inside the vault.
func briefName(bountyID string) string {
	return "bounty-brief:" + bountyID
}
