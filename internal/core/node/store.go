// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package node

import "context"

// # Content Data Access

// Filter narrows a [Repository.FindMany] call.
type Filter struct {
	// ParentID restricts results to children of one parent row.
	ParentID *int64
	// AuthorID restricts results to one author.
	AuthorID *int64
	Limit    int
	Offset   int
}

// Repository defines the storage contract for every node kind.
//
// Each call is atomic on its own. Callers needing several calls to commit
// together use [Repository.WithinTx].
type Repository interface {

	/*
		Create inserts n into the table for n.Kind.

		On success n.ID, n.CreatedAt and n.UpdatedAt are populated.
	*/
	Create(ctx context.Context, n *Node) error

	/*
		Update overwrites the row identified by n.ID.

		The row must be stored under n.AuthorID; any other row, or a missing
		one, is reported as apperr.NotFound. A nil n.ParentID keeps the stored
		parent. Timestamps on n are refreshed from the stored row.
	*/
	Update(ctx context.Context, n *Node) error

	/*
		FindByID returns the node of kind with the given id.

		Returns:
		  - error: apperr.NotFound if missing
	*/
	FindByID(ctx context.Context, kind Kind, id int64) (*Node, error)

	/*
		FindMany lists nodes of kind ordered by their sibling order.

		Returns:
		  - []*Node: Page of matching nodes
		  - int: Total matching nodes ignoring pagination
	*/
	FindMany(ctx context.Context, kind Kind, filter Filter) ([]*Node, int, error)

	/*
		Delete removes the node of kind with the given id if it is stored under
		authorID. Descendants are removed with it.

		Returns:
		  - error: apperr.NotFound if missing or authored by someone else
	*/
	Delete(ctx context.Context, kind Kind, id, authorID int64) error

	/*
		WithinTx runs fn against a repository whose writes commit together
		when fn returns nil and are discarded otherwise.
	*/
	WithinTx(ctx context.Context, fn func(repo Repository) error) error
}
