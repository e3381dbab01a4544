// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entitlement decides whether a viewer may read a content node.

The decision depends on authorship, the public flag of the gating root,
monetization backed by purchase records, and publication scheduling. It never
performs storage I/O itself beyond the purchase lookup delegated to [Oracle].

# Outcomes

  - Full: node and all its collections are visible.
  - Partial: node is visible but its collections are redacted.
  - Denied: the caller must answer "not found".
*/
package entitlement

import (
	"context"
	"errors"

	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/sec"
)

// Decision is the read-access verdict for a (viewer, node) pair.
type Decision int

const (
	Denied Decision = iota
	Partial
	Full
)

func (d Decision) String() string {
	switch d {
	case Full:
		return "full"
	case Partial:
		return "partial"
	default:
		return "denied"
	}
}

// Visible reports whether the node itself may be shown.
func (d Decision) Visible() bool {
	return d != Denied
}

// Viewer is the identity a decision is made for.
type Viewer = sec.Viewer

// ErrAncestryIncomplete is returned when a descendant is evaluated without
// its gating ancestor in the supplied ancestry.
var ErrAncestryIncomplete = errors.New("entitlement: gating ancestor missing from ancestry")

// # Library Oracle

// Target names one purchasable root.
type Target struct {
	Kind node.Kind
	ID   int64
}

// TargetOf returns the purchase target for n.
func TargetOf(n *node.Node) Target {
	return Target{Kind: n.Kind, ID: n.ID}
}

// Oracle answers whether a purchase record exists for a user and a root.
type Oracle interface {
	OwnsPurchase(ctx context.Context, userID int64, target Target) (bool, error)
}
