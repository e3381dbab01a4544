// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog exposes content trees to the outside world.

Writes go through the cascade coordinator. Reads load the node and its
ancestry, ask the entitlement resolver for a verdict and shape the answer:

  - Full: node plus its direct children, each child judged on its own.
  - Partial: node with every collection emptied.
  - Denied: indistinguishable from a missing node.
*/
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taibuivan/inkwell/internal/core/cascade"
	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/constants"
	"github.com/taibuivan/inkwell/internal/platform/sec"
	"github.com/taibuivan/inkwell/pkg/slice"
)

// Prefetcher resolves many ownership lookups ahead of per-node decisions.
type Prefetcher interface {
	OwnedAmong(ctx context.Context, userID int64, targets []entitlement.Target) (map[entitlement.Target]bool, error)
}

// ListFilter narrows a listing.
type ListFilter struct {
	ParentID *int64
	AuthorID *int64
	Limit    int
	Offset   int
}

// # Service Layer

// Service combines the cascade writer with entitlement-filtered reads.
type Service struct {
	nodes       node.Repository
	coordinator *cascade.Coordinator
	resolver    *entitlement.Resolver
	prefetcher  Prefetcher
	logger      *slog.Logger

	// scanLimit caps the rows one listing reads before entitlement filtering.
	scanLimit int
}

// NewService constructs a catalog [Service]. prefetcher may be nil.
func NewService(nodes node.Repository, coordinator *cascade.Coordinator, resolver *entitlement.Resolver, prefetcher Prefetcher, logger *slog.Logger) *Service {
	return &Service{
		nodes:       nodes,
		coordinator: coordinator,
		resolver:    resolver,
		prefetcher:  prefetcher,
		logger:      logger,
		scanLimit:   constants.MaxListScan,
	}
}

// Upsert writes a nested document on behalf of viewer.
func (service *Service) Upsert(ctx context.Context, viewer sec.Viewer, in *node.Input) (*cascade.Result, error) {
	return service.coordinator.Upsert(ctx, viewer, in)
}

/*
Get returns what viewer may see of one node.

Returns:
  - *View: The node, and its children when the verdict is Full
  - error: apperr.NotFound for a missing or denied node
*/
func (service *Service) Get(ctx context.Context, viewer sec.Viewer, kind node.Kind, id int64) (*View, error) {
	n, err := service.nodes.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	ancestry, err := node.Ancestry(ctx, service.nodes, n)
	if err != nil {
		return nil, err
	}

	decision, err := service.decide(ctx, viewer, n, ancestry)
	if err != nil {
		return nil, err
	}
	if !decision.Visible() {
		return nil, apperr.NotFound(kind.Resource())
	}

	view := &View{Node: n, Decision: decision, Collections: map[string][]*node.Node{}}
	spec := n.Spec()
	for _, collection := range spec.Children {
		view.Collections[collection.Name] = []*node.Node{}
	}
	if decision != entitlement.Full {
		return view, nil
	}

	// Children see n as their nearest ancestor
	chain := append([]*node.Node{n}, ancestry...)
	for _, collection := range spec.Children {
		children, _, err := service.nodes.FindMany(ctx, collection.Kind, node.Filter{ParentID: &n.ID})
		if err != nil {
			return nil, err
		}

		visible, err := service.filter(ctx, viewer, children, func(*node.Node) []*node.Node { return chain })
		if err != nil {
			return nil, err
		}
		view.Collections[collection.Name] = visible
	}
	return view, nil
}

/*
List returns the nodes of kind that viewer may see.

Description: Denied rows are dropped before paging, so totals never count
content the viewer cannot know about. Partial rows are listed like any other;
listings never carry collections. At most scanLimit rows, in sibling order,
are read per call; totals and pages cover that window only.

Returns:
  - []*node.Node: Visible page
  - int: Total visible rows
*/
func (service *Service) List(ctx context.Context, viewer sec.Viewer, kind node.Kind, filter ListFilter) ([]*node.Node, int, error) {
	nodes, matched, err := service.nodes.FindMany(ctx, kind, node.Filter{
		ParentID: filter.ParentID,
		AuthorID: filter.AuthorID,
		Limit:    service.scanLimit,
	})
	if err != nil {
		return nil, 0, err
	}
	if matched > len(nodes) {
		service.logger.WarnContext(ctx, "catalog_scan_truncated",
			slog.String("kind", string(kind)),
			slog.Int("matched", matched),
			slog.Int("scanned", len(nodes)),
		)
	}

	// Siblings share a chain, so ancestry is loaded once per parent
	chains := map[int64][]*node.Node{}
	var lookupErr error
	ancestryOf := func(n *node.Node) []*node.Node {
		if n.ParentID == nil || lookupErr != nil {
			return nil
		}
		if chain, ok := chains[*n.ParentID]; ok {
			return chain
		}
		chain, err := node.Ancestry(ctx, service.nodes, n)
		if err != nil {
			lookupErr = err
			return nil
		}
		chains[*n.ParentID] = chain
		return chain
	}

	visible, err := service.filter(ctx, viewer, nodes, ancestryOf)
	if lookupErr != nil {
		return nil, 0, lookupErr
	}
	if err != nil {
		return nil, 0, err
	}

	total := len(visible)
	if filter.Offset >= total {
		return []*node.Node{}, total, nil
	}
	visible = visible[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(visible) {
		visible = visible[:filter.Limit]
	}
	return visible, total, nil
}

// Delete removes a node the viewer authored. Anything else is not found.
func (service *Service) Delete(ctx context.Context, viewer sec.Viewer, kind node.Kind, id int64) error {
	if !viewer.IsAuthenticated() {
		return apperr.Unauthorized("Authentication required")
	}

	if err := service.nodes.Delete(ctx, kind, id, *viewer.ID); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "content_deleted",
		slog.String("kind", string(kind)),
		slog.Int64("id", id),
		slog.Int64("author_id", *viewer.ID),
	)
	return nil
}

// # Internal Helpers

// decide wraps the resolver. An orphaned descendant is treated as denied.
func (service *Service) decide(ctx context.Context, viewer sec.Viewer, n *node.Node, ancestry []*node.Node) (entitlement.Decision, error) {
	decision, err := service.resolver.CanRead(ctx, viewer, n, ancestry)
	if errors.Is(err, entitlement.ErrAncestryIncomplete) {
		service.logger.WarnContext(ctx, "content_orphaned",
			slog.String("kind", string(n.Kind)),
			slog.Int64("id", n.ID),
		)
		return entitlement.Denied, nil
	}
	return decision, err
}

// filter keeps the visible nodes, in order.
func (service *Service) filter(ctx context.Context, viewer sec.Viewer, nodes []*node.Node, ancestryOf func(*node.Node) []*node.Node) ([]*node.Node, error) {
	chains := slice.Map(nodes, ancestryOf)

	if err := service.prefetch(ctx, viewer, nodes, chains); err != nil {
		return nil, err
	}

	visible := make([]*node.Node, 0, len(nodes))
	for index, n := range nodes {
		decision, err := service.decide(ctx, viewer, n, chains[index])
		if err != nil {
			return nil, err
		}
		if decision.Visible() {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

// prefetch warms the ownership memo with every paid gate the batch will ask about.
func (service *Service) prefetch(ctx context.Context, viewer sec.Viewer, nodes []*node.Node, chains [][]*node.Node) error {
	if service.prefetcher == nil || !viewer.IsAuthenticated() {
		return nil
	}

	seen := map[entitlement.Target]bool{}
	var targets []entitlement.Target
	add := func(candidate *node.Node) {
		if candidate == nil {
			return
		}
		if target := entitlement.TargetOf(candidate); !seen[target] {
			seen[target] = true
			targets = append(targets, target)
		}
	}

	for index, n := range nodes {
		spec := n.Spec()
		gate := n
		if !spec.Root {
			gate = node.Nearest(chains[index], spec.Gate)
		}
		if gate == nil || !gate.Public || !gate.Spec().IsPurchasable() || gate.Free() || viewer.Is(gate.AuthorID) {
			continue
		}

		add(gate)
		if gate.Kind == node.KindBook {
			add(node.Nearest(chains[index], node.KindSeries))
		}
	}

	if len(targets) == 0 {
		return nil
	}
	_, err := service.prefetcher.OwnedAmong(ctx, *viewer.ID, targets)
	return err
}
