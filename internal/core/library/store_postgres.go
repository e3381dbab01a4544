// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/database/schema"
	"github.com/taibuivan/inkwell/internal/platform/dberr"
)

const resourcePurchase = "purchase"

// # PostgreSQL Repository

// purchaseRepository implements [Repository] using pgx.
type purchaseRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed purchase store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &purchaseRepository{pool: pool}
}

/*
Create inserts a purchase row.

Description: The partial unique indexes on library.purchase reject a second
purchase of the same target, which surfaces as apperr.Conflict.
*/
func (repository *purchaseRepository) Create(ctx context.Context, purchase *Purchase) error {
	p := schema.LibraryPurchase

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		p.Table, p.UserID, p.BookID, p.SeriesID, p.ExplorationID,
		p.ID, p.CreatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		purchase.UserID, purchase.BookID, purchase.SeriesID, purchase.ExplorationID,
	).Scan(&purchase.ID, &purchase.CreatedAt)
	return dberr.WrapReference(err, resourcePurchase, "create", "target")
}

/*
Owned resolves ownership for many targets in one statement.

Description: Targets are split per kind into bigint arrays and matched with
= ANY, so a listing page costs a single round-trip regardless of its size.
*/
func (repository *purchaseRepository) Owned(ctx context.Context, userID int64, targets []entitlement.Target) (map[entitlement.Target]bool, error) {
	owned := make(map[entitlement.Target]bool, len(targets))
	if len(targets) == 0 {
		return owned, nil
	}

	var bookIDs, seriesIDs, explorationIDs []int64
	for _, target := range targets {
		switch target.Kind {
		case node.KindBook:
			bookIDs = append(bookIDs, target.ID)
		case node.KindSeries:
			seriesIDs = append(seriesIDs, target.ID)
		case node.KindExploration:
			explorationIDs = append(explorationIDs, target.ID)
		}
	}

	p := schema.LibraryPurchase
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE %s = $1 AND (%s = ANY($2) OR %s = ANY($3) OR %s = ANY($4))`,
		p.BookID, p.SeriesID, p.ExplorationID,
		p.Table,
		p.UserID, p.BookID, p.SeriesID, p.ExplorationID,
	)

	rows, err := repository.pool.Query(ctx, query, userID, bookIDs, seriesIDs, explorationIDs)
	if err != nil {
		return nil, dberr.Wrap(err, resourcePurchase, "lookup")
	}
	defer rows.Close()

	for rows.Next() {
		purchase := &Purchase{}
		if err := rows.Scan(&purchase.BookID, &purchase.SeriesID, &purchase.ExplorationID); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan purchase: %w", err)
		}
		owned[purchase.Target()] = true
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, resourcePurchase, "lookup")
	}
	return owned, nil
}

// ListByUser returns a page of a user's purchases, newest first.
func (repository *purchaseRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Purchase, int, error) {
	p := schema.LibraryPurchase

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE %s = $1`,
		strings.Join(p.Columns(), ", "), p.Table, p.UserID,
	))
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC, %s DESC", p.CreatedAt, p.ID))

	args := []any{userID}
	if limit > 0 {
		queryBuilder.WriteString(" LIMIT $2 OFFSET $3")
		args = append(args, limit, offset)
	}

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, resourcePurchase, "list")
	}
	defer rows.Close()

	var purchases []*Purchase
	var totalCount int

	for rows.Next() {
		purchase, err := scanPurchase(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan purchase: %w", err)
		}
		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, resourcePurchase, "list")
	}
	return purchases, totalCount, nil
}

func scanPurchase(row pgx.Row, extra ...any) (*Purchase, error) {
	purchase := &Purchase{}
	destinations := append([]any{
		&purchase.ID, &purchase.UserID,
		&purchase.BookID, &purchase.SeriesID, &purchase.ExplorationID,
		&purchase.CreatedAt,
	}, extra...)

	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}
	return purchase, nil
}
