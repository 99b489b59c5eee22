// Copyright (c) 2026 BountyHive. All rights reserved.

package bounty_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyhive/api/internal/bounty"
	"github.com/bountyhive/api/internal/platform/apperr"
)

// memoryRepository is an in-memory bounty store for service tests.
type memoryRepository struct {
	rows map[string]*bounty.Bounty
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: make(map[string]*bounty.Bounty)}
}

func (repository *memoryRepository) List(_ context.Context, filter bounty.Filter, limit, offset int) ([]bounty.Bounty, int, error) {
	var matched []bounty.Bounty
	for _, stored := range repository.rows {
		if filter.Status != "" && stored.Status != filter.Status {
			continue
		}
		if filter.Query != "" && !strings.Contains(stored.Title, filter.Query) {
			continue
		}
		matched = append(matched, *stored)
	}

	total := len(matched)
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (repository *memoryRepository) FindByIDOrSlug(_ context.Context, idOrSlug string) (*bounty.Bounty, error) {
	for _, stored := range repository.rows {
		if stored.ID == idOrSlug || stored.Slug == idOrSlug {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Bounty")
}

func (repository *memoryRepository) Create(_ context.Context, b *bounty.Bounty) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	clone := *b
	repository.rows[b.ID] = &clone
	return nil
}

func (repository *memoryRepository) Update(_ context.Context, b *bounty.Bounty) error {
	stored, ok := repository.rows[b.ID]
	if !ok {
		return apperr.NotFound("Bounty")
	}
	stored.HunterID = b.HunterID
	stored.Status = b.Status
	stored.UpdatedAt = time.Now()
	b.UpdatedAt = stored.UpdatedAt
	return nil
}

// memoryVault keeps briefs in a map, standing in for the sealed store.
type memoryVault struct {
	secrets map[string][]byte
}

func newMemoryVault() *memoryVault {
	return &memoryVault{secrets: make(map[string][]byte)}
}

func (vault *memoryVault) Put(_ context.Context, name string, plaintext []byte, _ time.Duration) error {
	vault.secrets[name] = plaintext
	return nil
}

func (vault *memoryVault) Get(_ context.Context, name string) ([]byte, error) {
	plaintext, ok := vault.secrets[name]
	if !ok {
		return nil, apperr.NotFound("Secret")
	}
	return plaintext, nil
}

func newTestService() (*bounty.Service, *memoryRepository) {
	repository := newMemoryRepository()
	service := bounty.NewService(repository, newMemoryVault(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return service, repository
}

func createOpenBounty(t *testing.T, service *bounty.Service, creatorID string) *bounty.Bounty {
	t.Helper()
	created, err := service.CreateBounty(context.Background(), creatorID, bounty.CreateInput{
		Title:        "Audit the staking contract",
		Description:  "Full review before mainnet",
		RewardAmount: "2500",
		RewardAsset:  "USDC",
	})
	require.NoError(t, err)
	return created
}

/*
TestService_CreateBounty verifies creation defaults: open status, slug
derived from the title, creator recorded.
*/
func TestService_CreateBounty(t *testing.T) {
	service, _ := newTestService()

	created := createOpenBounty(t, service, "creator-1")

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "audit-the-staking-contract", created.Slug)
	assert.Equal(t, bounty.StatusOpen, created.Status)
	assert.Equal(t, "creator-1", created.CreatorID)
	assert.Empty(t, created.HunterID)
}

/*
TestService_GetBounty_BySlug verifies slug-based lookup.
*/
func TestService_GetBounty_BySlug(t *testing.T) {
	service, _ := newTestService()
	created := createOpenBounty(t, service, "creator-1")

	found, err := service.GetBounty(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

/*
TestService_MatchBounty verifies the open -> matched transition.
*/
func TestService_MatchBounty(t *testing.T) {
	service, _ := newTestService()
	created := createOpenBounty(t, service, "creator-1")

	matched, err := service.MatchBounty(context.Background(), created.ID, "hunter-1")
	require.NoError(t, err)

	assert.Equal(t, bounty.StatusMatched, matched.Status)
	assert.Equal(t, "hunter-1", matched.HunterID)
}

/*
TestService_MatchBounty_OwnBountyForbidden verifies that a creator
cannot hunt their own bounty.
*/
func TestService_MatchBounty_OwnBountyForbidden(t *testing.T) {
	service, _ := newTestService()
	created := createOpenBounty(t, service, "creator-1")

	_, err := service.MatchBounty(context.Background(), created.ID, "creator-1")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "FORBIDDEN", appError.Code)
}

/*
TestService_MatchBounty_AlreadyMatchedConflict verifies that a second
hunter gets a conflict.
*/
func TestService_MatchBounty_AlreadyMatchedConflict(t *testing.T) {
	service, _ := newTestService()
	created := createOpenBounty(t, service, "creator-1")

	_, err := service.MatchBounty(context.Background(), created.ID, "hunter-1")
	require.NoError(t, err)

	_, err = service.MatchBounty(context.Background(), created.ID, "hunter-2")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

/*
TestService_CompleteBounty verifies the matched -> completed transition
and its guards.
*/
func TestService_CompleteBounty(t *testing.T) {
	service, _ := newTestService()
	created := createOpenBounty(t, service, "creator-1")

	// Open bounties cannot be completed.
	_, err := service.CompleteBounty(context.Background(), created.ID, "creator-1")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	_, err = service.MatchBounty(context.Background(), created.ID, "hunter-1")
	require.NoError(t, err)

	// Only the creator may complete.
	_, err = service.CompleteBounty(context.Background(), created.ID, "hunter-1")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	completed, err := service.CompleteBounty(context.Background(), created.ID, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, bounty.StatusCompleted, completed.Status)
}

/*
TestService_Brief_AccessControl verifies who can read a bounty's brief
through its lifecycle.
*/
func TestService_Brief_AccessControl(t *testing.T) {
	service, _ := newTestService()
	created := createOpenBounty(t, service, "creator-1")

	// Only the creator can attach a brief.
	err := service.PutBrief(context.Background(), created.ID, "hunter-1", "secret scope")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	require.NoError(t, service.PutBrief(context.Background(), created.ID, "creator-1", "secret scope"))

	// Unmatched hunters cannot read it.
	_, err = service.GetBrief(context.Background(), created.ID, "hunter-1")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// The creator always can.
	brief, err := service.GetBrief(context.Background(), created.ID, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, "secret scope", brief)

	// After matching, the hunter can too.
	_, err = service.MatchBounty(context.Background(), created.ID, "hunter-1")
	require.NoError(t, err)

	brief, err = service.GetBrief(context.Background(), created.ID, "hunter-1")
	require.NoError(t, err)
	assert.Equal(t, "secret scope", brief)
}

/*
TestService_ListBounties_StatusFilter verifies status filtering and the
unpaged total.
*/
func TestService_ListBounties_StatusFilter(t *testing.T) {
	service, _ := newTestService()

	first := createOpenBounty(t, service, "creator-1")
	createOpenBounty(t, service, "creator-2")

	_, err := service.MatchBounty(context.Background(), first.ID, "hunter-1")
	require.NoError(t, err)

	open, total, err := service.ListBounties(context.Background(), bounty.Filter{Status: bounty.StatusOpen}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, open, 1)
	assert.Equal(t, bounty.StatusOpen, open[0].Status)
}
