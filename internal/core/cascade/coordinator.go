// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/sec"
	"github.com/taibuivan/inkwell/internal/platform/validate"
	"github.com/taibuivan/inkwell/pkg/pointer"
)

// Mode selects the transaction boundary of a cascade.
type Mode int

const (
	// ModeSequential issues independent writes. A failing child leaves its
	// ancestors and earlier siblings in place.
	ModeSequential Mode = iota

	// ModeTransactional wraps the whole cascade in one repository transaction.
	ModeTransactional
)

func (m Mode) String() string {
	if m == ModeTransactional {
		return "transactional"
	}
	return "sequential"
}

// Result is the outcome of a successful cascade.
type Result struct {
	Root    *node.Node
	Written []Ref
}

// Created reports whether the root node was inserted rather than updated.
func (r *Result) Created() bool {
	return len(r.Written) > 0 && r.Written[0].Op == OpCreate
}

// # Coordinator

// Coordinator walks nested write documents against a [node.Repository].
type Coordinator struct {
	repo   node.Repository
	mode   Mode
	logger *slog.Logger
}

// NewCoordinator constructs a coordinator writing through repo.
func NewCoordinator(repo node.Repository, mode Mode, logger *slog.Logger) *Coordinator {
	return &Coordinator{repo: repo, mode: mode, logger: logger}
}

/*
Upsert persists the tree rooted at in on behalf of viewer.

Description: The whole document is normalized and validated before the first
write. The root is then written with the viewer as author, and each child
batch follows depth-first in kind-table order, siblings in input order. Every
child write is awaited before Upsert returns.

Parameters:
  - ctx: context.Context
  - viewer: sec.Viewer (must be authenticated)
  - in: *node.Input (normalized in place)

Returns:
  - *Result: The persisted root and every written row
  - error: Validation error before any write, the root's write error,
    or [*Error] when a child failed after earlier writes
*/
func (coordinator *Coordinator) Upsert(ctx context.Context, viewer sec.Viewer, in *node.Input) (*Result, error) {
	if !viewer.IsAuthenticated() {
		return nil, apperr.Unauthorized("Authentication required")
	}
	if in == nil || !in.Kind.IsValid() {
		return nil, validate.RequiredError("kind", "Unknown content kind")
	}

	// 1. Validate the entire tree up front
	if err := coordinator.prepare(ctx, viewer, in); err != nil {
		return nil, err
	}

	// 2. Write it
	walk := &cascadeRun{}
	var root *node.Node
	var err error

	if coordinator.mode == ModeTransactional {
		err = coordinator.repo.WithinTx(ctx, func(repo node.Repository) error {
			walk.repo = repo
			root, err = walk.upsert(ctx, in, "")
			return err
		})
		var cascadeErr *Error
		if errors.As(err, &cascadeErr) {
			cascadeErr.RolledBack = true
		}
	} else {
		walk.repo = coordinator.repo
		root, err = walk.upsert(ctx, in, "")
	}

	if err != nil {
		coordinator.logFailure(ctx, in, err)
		return nil, err
	}

	coordinator.logger.InfoContext(ctx, "cascade_completed",
		slog.String("kind", string(root.Kind)),
		slog.Int64("root_id", root.ID),
		slog.Int64("author_id", root.AuthorID),
		slog.Int("written", len(walk.written)),
		slog.String("mode", coordinator.mode.String()),
	)

	return &Result{Root: root, Written: walk.written}, nil
}

// # Validation Pass

/*
prepare normalizes every node, assigns child orders and checks authorship.

Description: Order defaults depend only on sibling position, so they are fixed
here. Parent ids are not known until the parent is written and are injected
during the walk. A top-level node of a non-root kind must name a parent owned
by the viewer.
*/
func (coordinator *Coordinator) prepare(ctx context.Context, viewer sec.Viewer, in *node.Input) error {
	spec := node.MustLookup(in.Kind)
	validator := &validate.Validator{}

	// Root authorship is never taken from the document
	in.AuthorID = pointer.To(*viewer.ID)

	prepareTree(in, 0, *viewer.ID, validator, "")

	if spec.HasParent() {
		if err := coordinator.checkTopLevelParent(ctx, spec, viewer, in, validator); err != nil {
			return err
		}
	} else {
		in.ParentID = nil
	}

	return validator.Err()
}

func prepareTree(in *node.Input, index int, authorID int64, validator *validate.Validator, path string) {
	fields := validator
	if path != "" {
		fields = &validate.Validator{}
	}

	normalize(in, index, fields)

	if in.AuthorID != nil && *in.AuthorID != authorID {
		fields.Custom("authorId", true, "Must match the parent author")
	}
	in.AuthorID = pointer.To(authorID)

	if path != "" {
		validator.Merge(path, fields)
	}

	spec := node.MustLookup(in.Kind)
	for _, collection := range spec.Children {
		for childIndex, child := range in.Children[collection.Kind] {
			prepareTree(child, childIndex, authorID, validator, childPath(path, collection, childIndex))
		}
	}
}

// childPath renders document paths such as "Books[0].Chapters[2]".
func childPath(parent string, collection node.Collection, index int) string {
	segment := fmt.Sprintf("%s[%d]", collection.Name, index)
	if parent == "" {
		return segment
	}
	return parent + "." + segment
}

func (coordinator *Coordinator) checkTopLevelParent(ctx context.Context, spec node.Spec, viewer sec.Viewer, in *node.Input, validator *validate.Validator) error {
	if in.ParentID == nil {
		// Updates keep their stored parent; creates need one unless optional
		validator.Custom(spec.ParentKey, in.ID == nil && !spec.ParentOptional,
			fmt.Sprintf("%s requires a parent %s", spec.Kind, spec.Parent))
		return nil
	}

	parent, err := coordinator.repo.FindByID(ctx, spec.Parent, *in.ParentID)
	if apperr.IsNotFound(err) || (err == nil && !viewer.Is(parent.AuthorID)) {
		validator.Custom(spec.ParentKey, true, "Unknown parent")
		return nil
	}
	return err
}

// # Write Pass

// cascadeRun carries the state of one walk.
type cascadeRun struct {
	repo    node.Repository
	written []Ref
}

func (walk *cascadeRun) upsert(ctx context.Context, in *node.Input, path string) (*node.Node, error) {
	n := materialize(in)
	intent := Route(in)

	var err error
	switch intent.Op {
	case OpUpdate:
		n.ID = intent.ID
		err = walk.repo.Update(ctx, n)
	default:
		err = walk.repo.Create(ctx, n)
	}

	if err != nil {
		// The root failing leaves nothing behind and is reported as-is
		if len(walk.written) == 0 {
			return nil, err
		}
		return nil, &Error{
			Written: append([]Ref(nil), walk.written...),
			Kind:    in.Kind,
			Path:    path,
			Cause:   err,
		}
	}

	walk.written = append(walk.written, Ref{Kind: n.Kind, ID: n.ID, Op: intent.Op})

	spec := node.MustLookup(in.Kind)
	for _, collection := range spec.Children {
		for index, child := range in.Children[collection.Kind] {

			// Foreign keys always come from the freshly written parent
			child.ParentID = pointer.To(n.ID)
			child.AuthorID = pointer.To(n.AuthorID)

			if _, err := walk.upsert(ctx, child, childPath(path, collection, index)); err != nil {
				return nil, err
			}
		}
	}

	return n, nil
}

func (coordinator *Coordinator) logFailure(ctx context.Context, in *node.Input, err error) {
	var cascadeErr *Error
	if !errors.As(err, &cascadeErr) {
		return
	}

	coordinator.logger.WarnContext(ctx, "cascade_partial_failure",
		slog.String("kind", string(in.Kind)),
		slog.String("failed_path", cascadeErr.Path),
		slog.Int("written", len(cascadeErr.Written)),
		slog.Bool("rolled_back", cascadeErr.RolledBack),
		slog.Any("cause", cascadeErr.Cause),
	)
}
