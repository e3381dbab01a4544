// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package node

import (
	"context"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
)

/*
Ancestry loads the parent chain of n, nearest parent first.

Description: The walk follows each kind's parent column up to a top-level
node. A Book without a series simply has an empty chain. A parent row that no
longer exists ends the walk early; the partial chain is returned without error
so the entitlement layer can decide how to treat the gap.

Returns:
  - []*Node: Ancestors, nearest first
  - error: Storage failures other than not found
*/
func Ancestry(ctx context.Context, repo Repository, n *Node) ([]*Node, error) {
	var chain []*Node
	current := n

	for {
		spec, ok := Lookup(current.Kind)
		if !ok || !spec.HasParent() || current.ParentID == nil {
			return chain, nil
		}

		parent, err := repo.FindByID(ctx, spec.Parent, *current.ParentID)
		if apperr.IsNotFound(err) {
			return chain, nil
		}
		if err != nil {
			return nil, err
		}

		chain = append(chain, parent)
		current = parent
	}
}

// Nearest returns the closest node of kind in chain, or nil.
func Nearest(chain []*Node, kind Kind) *Node {
	for _, ancestor := range chain {
		if ancestor.Kind == kind {
			return ancestor
		}
	}
	return nil
}
