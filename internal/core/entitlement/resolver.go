// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement

import (
	"context"

	"github.com/taibuivan/inkwell/internal/core/node"
)

// # Resolver

// Resolver evaluates read access for any node kind.
type Resolver struct {
	oracle    Oracle
	scheduler *Scheduler
}

// NewResolver constructs a resolver consulting oracle for paid roots.
func NewResolver(oracle Oracle, scheduler *Scheduler) *Resolver {
	if scheduler == nil {
		scheduler = NewScheduler(nil)
	}
	return &Resolver{oracle: oracle, scheduler: scheduler}
}

/*
CanRead decides what viewer may see of n.

Description: Rules are applied in order and the first match wins.

 1. The author of n, or of its gating root, sees everything.
 2. A private gating root is denied.
 3. A priced gating root needs a purchase; a Book is also unlocked by owning
    its Series. An unpurchased Exploration is partially visible.
 4. A scheduled gating root must have reached its publish date.

Descendants are judged by their gating root from ancestry (nearest first, as
returned by [node.Ancestry]) and only inherit a Full verdict.

Returns:
  - Decision: Full, Partial or Denied
  - error: [ErrAncestryIncomplete], or an oracle failure unchanged
*/
func (resolver *Resolver) CanRead(ctx context.Context, viewer Viewer, n *node.Node, ancestry []*node.Node) (Decision, error) {
	if viewer.Is(n.AuthorID) {
		return Full, nil
	}

	spec := n.Spec()
	gate := n
	if !spec.Root {
		gate = node.Nearest(ancestry, spec.Gate)
		if gate == nil {
			return Denied, ErrAncestryIncomplete
		}
		if viewer.Is(gate.AuthorID) {
			return Full, nil
		}
	}

	decision, err := resolver.evaluateRoot(ctx, viewer, gate, ancestry)
	if err != nil {
		return Denied, err
	}

	// Descendants carry no flags of their own and are never partially shown
	if gate != n && decision != Full {
		return Denied, nil
	}
	return decision, nil
}

// evaluateRoot applies the public, monetization and publication rules to a root.
func (resolver *Resolver) evaluateRoot(ctx context.Context, viewer Viewer, root *node.Node, ancestry []*node.Node) (Decision, error) {
	spec := root.Spec()

	// Root gating
	if !root.Public {
		return Denied, nil
	}

	// Monetization gating
	if spec.Priced && !root.Free() {
		owned, err := resolver.ownsRoot(ctx, viewer, root, ancestry)
		if err != nil {
			return Denied, err
		}
		if !owned {
			if root.Kind == node.KindExploration {
				return Partial, nil
			}
			return Denied, nil
		}
	}

	// Publication scheduling
	if spec.Scheduled && !resolver.scheduler.IsPublished(root.PublishDate) {
		return Denied, nil
	}

	return Full, nil
}

func (resolver *Resolver) ownsRoot(ctx context.Context, viewer Viewer, root *node.Node, ancestry []*node.Node) (bool, error) {
	if !viewer.IsAuthenticated() {
		return false, nil
	}

	owned, err := resolver.oracle.OwnsPurchase(ctx, *viewer.ID, TargetOf(root))
	if err != nil || owned {
		return owned, err
	}

	if root.Kind == node.KindBook {
		if series := node.Nearest(ancestry, node.KindSeries); series != nil {
			return resolver.oracle.OwnsPurchase(ctx, *viewer.ID, TargetOf(series))
		}
	}
	return false, nil
}
