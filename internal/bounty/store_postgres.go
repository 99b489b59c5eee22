// Copyright (c) 2026 BountyHive. All rights reserved.

package bounty

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bountyhive/api/internal/platform/database/schema"
	"github.com/bountyhive/api/internal/platform/dberr"
	"github.com/bountyhive/api/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx through a lazily
// initialized pool source.
type PostgresRepository struct {
	source postgres.PoolSource
}

func NewPostgresRepository(source postgres.PoolSource) *PostgresRepository {
	return &PostgresRepository{source: source}
}

func (repository *PostgresRepository) List(context context.Context, f Filter, limit, offset int) ([]Bounty, int, error) {
	pool, err := repository.source.Acquire(context)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, COALESCE(%s, ''), %s, %s, %s
		FROM %s
		WHERE 1=1
	`,
		schema.Bounty.ID, schema.Bounty.Slug, schema.Bounty.Title, schema.Bounty.Description,
		schema.Bounty.RewardAmount, schema.Bounty.RewardAsset, schema.Bounty.CreatorID,
		schema.Bounty.HunterID, schema.Bounty.Status, schema.Bounty.CreatedAt, schema.Bounty.UpdatedAt,
		schema.Bounty.Table,
	)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE 1=1`, schema.Bounty.Table)

	args := []any{}
	countArgs := []any{}

	if f.Status != "" {
		clause := fmt.Sprintf(" AND %s = $%d", schema.Bounty.Status, len(args)+1)
		query += clause
		countQuery += clause
		args = append(args, f.Status)
		countArgs = append(countArgs, f.Status)
	}

	if f.Query != "" {
		searchTerm := "%" + f.Query + "%"
		clause := fmt.Sprintf(" AND (%s ILIKE $%d OR %s ILIKE $%d)",
			schema.Bounty.Title, len(args)+1, schema.Bounty.Description, len(args)+1)
		query += clause
		countQuery += clause
		args = append(args, searchTerm)
		countArgs = append(countArgs, searchTerm)
	}

	query += fmt.Sprintf(" ORDER BY %s DESC LIMIT $", schema.Bounty.CreatedAt) + itos(len(args)+1) + ` OFFSET $` + itos(len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := pool.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_bounties")
	}

	rows, err := pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_bounties")
	}
	defer rows.Close()

	var bounties []Bounty
	for rows.Next() {
		b := Bounty{}
		if err := rows.Scan(
			&b.ID, &b.Slug, &b.Title, &b.Description, &b.RewardAmount, &b.RewardAsset,
			&b.CreatorID, &b.HunterID, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_bounty")
		}
		bounties = append(bounties, b)
	}

	return bounties, total, nil
}

func (repository *PostgresRepository) FindByIDOrSlug(context context.Context, idOrSlug string) (*Bounty, error) {
	pool, err := repository.source.Acquire(context)
	if err != nil {
		return nil, err
	}

	// Slugs never parse as UUIDs, so one OR covers both lookups. The id
	// column is compared textually to avoid a cast error on slug input.
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, COALESCE(%s, ''), %s, %s, %s
		FROM %s
		WHERE %s::text = $1 OR %s = $1
	`,
		schema.Bounty.ID, schema.Bounty.Slug, schema.Bounty.Title, schema.Bounty.Description,
		schema.Bounty.RewardAmount, schema.Bounty.RewardAsset, schema.Bounty.CreatorID,
		schema.Bounty.HunterID, schema.Bounty.Status, schema.Bounty.CreatedAt, schema.Bounty.UpdatedAt,
		schema.Bounty.Table, schema.Bounty.ID, schema.Bounty.Slug,
	)

	b := &Bounty{}
	err = pool.QueryRow(context, query, idOrSlug).Scan(
		&b.ID, &b.Slug, &b.Title, &b.Description, &b.RewardAmount, &b.RewardAsset,
		&b.CreatorID, &b.HunterID, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Bounty")
	}

	return b, nil
}

func (repository *PostgresRepository) Create(context context.Context, b *Bounty) error {
	pool, err := repository.source.Acquire(context)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s
	`,
		schema.Bounty.Table,
		schema.Bounty.ID, schema.Bounty.Slug, schema.Bounty.Title, schema.Bounty.Description,
		schema.Bounty.RewardAmount, schema.Bounty.RewardAsset, schema.Bounty.CreatorID, schema.Bounty.Status,
		schema.Bounty.CreatedAt, schema.Bounty.UpdatedAt,
	)

	err = pool.QueryRow(context, query,
		b.ID, b.Slug, b.Title, b.Description, b.RewardAmount, b.RewardAsset, b.CreatorID, b.Status,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	return dberr.Wrap(err, "Bounty")
}

func (repository *PostgresRepository) Update(context context.Context, b *Bounty) error {
	pool, err := repository.source.Acquire(context)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = NULLIF($2, ''), %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.Bounty.Table,
		schema.Bounty.HunterID, schema.Bounty.Status, schema.Bounty.UpdatedAt,
		schema.Bounty.ID,
		schema.Bounty.UpdatedAt,
	)

	err = pool.QueryRow(context, query, b.ID, b.HunterID, b.Status).Scan(&b.UpdatedAt)
	return dberr.Wrap(err, "Bounty")
}

func itos(i int) string {
	return strconv.Itoa(i)
}
