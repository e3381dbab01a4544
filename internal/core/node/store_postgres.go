// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
PostgreSQL implementation of the node [Repository].

Every kind maps to one table under the "content" schema. Statements are built
from the kind's [schema.ContentNodeTable], so a single implementation serves
all thirteen tables. Kind-specific fields round-trip through a JSONB column.
*/
package node

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/dberr"
	"github.com/taibuivan/inkwell/internal/platform/postgres"
)

// # PostgreSQL Repository

// nodeRepository implements [Repository] using pgx.
type nodeRepository struct {
	pool *pgxpool.Pool
	db   postgres.Querier
	inTx bool
}

// NewRepository constructs a PostgreSQL backed node store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &nodeRepository{pool: pool, db: pool}
}

/*
Create inserts a node and reads back its generated identity.

Parameters:
  - ctx: context.Context
  - n: *Node (Kind selects the table)

Returns:
  - error: Validation error on a dangling parent, wrapped storage error otherwise
*/
func (repository *nodeRepository) Create(ctx context.Context, n *Node) error {
	spec, ok := Lookup(n.Kind)
	if !ok {
		return errUnknownKind(n.Kind)
	}
	table := spec.Table

	columns := []string{table.AuthorID}
	args := []any{n.AuthorID}
	if table.HasParent() {
		columns = append(columns, table.ParentID)
		args = append(args, n.ParentID)
	}
	columns = append(columns,
		table.Ordinal, table.Title, table.Description, table.IsPublic,
		table.Price, table.PublishDate, table.Attributes,
	)
	args = append(args,
		n.Order, n.Title, n.Description, n.Public,
		n.Price, n.PublishDate, attributesOrEmpty(n.Attributes),
	)

	placeholders := make([]string, len(args))
	for index := range args {
		placeholders[index] = fmt.Sprintf("$%d", index+1)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (%s)
		RETURNING %s, %s, %s`,
		table.Table, strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		table.ID, table.CreatedAt, table.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query, args...).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	return dberr.WrapReference(err, n.Kind.Resource(), "create", MustLookup(n.Kind).ParentKey)
}

/*
Update overwrites the mutable columns of an existing node.

Description: The WHERE clause pins both the id and the stored author, so a
client cannot redirect an update onto someone else's row by guessing ids.
The parent column is only replaced when a new parent id is supplied.
*/
func (repository *nodeRepository) Update(ctx context.Context, n *Node) error {
	spec, ok := Lookup(n.Kind)
	if !ok {
		return errUnknownKind(n.Kind)
	}
	table := spec.Table

	assignments := []string{
		fmt.Sprintf("%s = $3", table.Ordinal),
		fmt.Sprintf("%s = $4", table.Title),
		fmt.Sprintf("%s = $5", table.Description),
		fmt.Sprintf("%s = $6", table.IsPublic),
		fmt.Sprintf("%s = $7", table.Price),
		fmt.Sprintf("%s = $8", table.PublishDate),
		fmt.Sprintf("%s = $9", table.Attributes),
		fmt.Sprintf("%s = now()", table.UpdatedAt),
	}
	args := []any{
		n.ID, n.AuthorID,
		n.Order, n.Title, n.Description, n.Public, n.Price, n.PublishDate,
		attributesOrEmpty(n.Attributes),
	}

	returning := []string{table.CreatedAt, table.UpdatedAt}
	if table.HasParent() {
		assignments = append(assignments, fmt.Sprintf("%s = COALESCE($10, %s)", table.ParentID, table.ParentID))
		args = append(args, n.ParentID)
		returning = append(returning, table.ParentID)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE %s = $1 AND %s = $2
		RETURNING %s`,
		table.Table, strings.Join(assignments, ", "),
		table.ID, table.AuthorID,
		strings.Join(returning, ", "),
	)

	destinations := []any{&n.CreatedAt, &n.UpdatedAt}
	if table.HasParent() {
		destinations = append(destinations, &n.ParentID)
	}

	err := repository.db.QueryRow(ctx, query, args...).Scan(destinations...)
	return dberr.WrapReference(err, n.Kind.Resource(), "update", MustLookup(n.Kind).ParentKey)
}

// FindByID returns a single node by its kind and id.
func (repository *nodeRepository) FindByID(ctx context.Context, kind Kind, id int64) (*Node, error) {
	spec, ok := Lookup(kind)
	if !ok {
		return nil, errUnknownKind(kind)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(spec.Table.Columns(), ", "), spec.Table.Table, spec.Table.ID,
	)

	n, err := scanNode(repository.db.QueryRow(ctx, query, id), spec)
	if err != nil {
		return nil, dberr.Wrap(err, kind.Resource(), "find")
	}
	return n, nil
}

/*
FindMany lists nodes of one kind.

Description: Results are ordered by sibling order, then id, so children come
back in the sequence the cascade wrote them. Total count is computed with a
window function to avoid a second round-trip.
*/
func (repository *nodeRepository) FindMany(ctx context.Context, kind Kind, filter Filter) ([]*Node, int, error) {
	spec, ok := Lookup(kind)
	if !ok {
		return nil, 0, errUnknownKind(kind)
	}
	table := spec.Table

	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE TRUE`,
		strings.Join(table.Columns(), ", "), table.Table,
	))

	if filter.ParentID != nil {
		if !table.HasParent() {
			return nil, 0, apperr.ValidationError("Validation failed", apperr.FieldError{
				Field:   "parent",
				Message: fmt.Sprintf("%s has no parent", kind),
			})
		}
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", table.ParentID, argID))
		args = append(args, *filter.ParentID)
		argID++
	}

	if filter.AuthorID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", table.AuthorID, argID))
		args = append(args, *filter.AuthorID)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s ASC, %s ASC", table.Ordinal, table.ID))

	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := repository.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, kind.Resource(), "list")
	}
	defer rows.Close()

	var nodes []*Node
	var totalCount int

	for rows.Next() {
		n, err := scanNode(rows, spec, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan %s: %w", kind.Resource(), err)
		}
		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, kind.Resource(), "list")
	}

	return nodes, totalCount, nil
}

// Delete removes one node authored by authorID. Child rows cascade in the schema.
func (repository *nodeRepository) Delete(ctx context.Context, kind Kind, id, authorID int64) error {
	spec, ok := Lookup(kind)
	if !ok {
		return errUnknownKind(kind)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		spec.Table.Table, spec.Table.ID, spec.Table.AuthorID,
	)

	tag, err := repository.db.Exec(ctx, query, id, authorID)
	if err != nil {
		return dberr.Wrap(err, kind.Resource(), "delete")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(kind.Resource())
	}
	return nil
}

// WithinTx runs fn inside one transaction. Nested calls join the outer one.
func (repository *nodeRepository) WithinTx(ctx context.Context, fn func(repo Repository) error) error {
	if repository.inTx {
		return fn(repository)
	}

	return postgres.InTx(ctx, repository.pool, func(tx pgx.Tx) error {
		return fn(&nodeRepository{pool: repository.pool, db: tx, inTx: true})
	})
}

// # Internal Helpers

// scanNode hydrates a node from a row selected with [schema.ContentNodeTable.Columns].
// Extra destinations (e.g. a window count) are appended after the node columns.
func scanNode(row pgx.Row, spec Spec, extra ...any) (*Node, error) {
	n := &Node{Kind: spec.Kind}

	destinations := []any{&n.ID, &n.AuthorID}
	if spec.Table.HasParent() {
		destinations = append(destinations, &n.ParentID)
	}
	destinations = append(destinations,
		&n.Order, &n.Title, &n.Description, &n.Public, &n.Price, &n.PublishDate,
		&n.Attributes, &n.CreatedAt, &n.UpdatedAt,
	)
	destinations = append(destinations, extra...)

	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}

	if n.PublishDate != nil {
		utc := n.PublishDate.UTC()
		n.PublishDate = &utc
	}
	return n, nil
}

func attributesOrEmpty(attributes map[string]any) map[string]any {
	if attributes == nil {
		return map[string]any{}
	}
	return attributes
}
