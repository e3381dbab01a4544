// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package node_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/pkg/pointer"
)

func TestAncestry_WalksToTopLevel(t *testing.T) {
	ctx := context.Background()
	repo := node.NewMemoryRepository()

	world := &node.Node{Kind: node.KindWorld, AuthorID: 1, Order: 1}
	require.NoError(t, repo.Create(ctx, world))
	timeline := &node.Node{Kind: node.KindTimeline, AuthorID: 1, ParentID: pointer.To(world.ID), Order: 1}
	require.NoError(t, repo.Create(ctx, timeline))
	event := &node.Node{Kind: node.KindEvent, AuthorID: 1, ParentID: pointer.To(timeline.ID), Order: 1}
	require.NoError(t, repo.Create(ctx, event))

	chain, err := node.Ancestry(ctx, repo, event)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, node.KindTimeline, chain[0].Kind)
	assert.Equal(t, node.KindWorld, chain[1].Kind)

	assert.Equal(t, world.ID, node.Nearest(chain, node.KindWorld).ID)
	assert.Nil(t, node.Nearest(chain, node.KindBook))
}

func TestAncestry_StandaloneBookHasNoChain(t *testing.T) {
	ctx := context.Background()
	repo := node.NewMemoryRepository()

	book := &node.Node{Kind: node.KindBook, AuthorID: 1, Order: 1}
	require.NoError(t, repo.Create(ctx, book))

	chain, err := node.Ancestry(ctx, repo, book)
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestAncestry_StopsAtMissingParent(t *testing.T) {
	repo := node.NewMemoryRepository()
	orphan := &node.Node{Kind: node.KindScene, AuthorID: 1, ParentID: pointer.To(int64(77)), Order: 1}

	chain, err := node.Ancestry(context.Background(), repo, orphan)
	require.NoError(t, err)
	assert.Empty(t, chain)
}
