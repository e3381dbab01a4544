// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/core/library"
	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/apperr"
)

func TestNewPurchase_SetsExactlyOneTarget(t *testing.T) {
	cases := []node.Kind{node.KindBook, node.KindSeries, node.KindExploration}

	for _, kind := range cases {
		t.Run(string(kind), func(t *testing.T) {
			target := entitlement.Target{Kind: kind, ID: 9}

			purchase, err := library.NewPurchase(3, target)
			require.NoError(t, err)

			set := 0
			for _, id := range []*int64{purchase.BookID, purchase.SeriesID, purchase.ExplorationID} {
				if id != nil {
					set++
				}
			}
			assert.Equal(t, 1, set)
			assert.Equal(t, target, purchase.Target())
			assert.Equal(t, int64(3), purchase.UserID)
		})
	}
}

func TestNewPurchase_RejectsNonPurchasable(t *testing.T) {
	for _, target := range []entitlement.Target{
		{Kind: node.KindChapter, ID: 1},
		{Kind: node.KindWorld, ID: 1},
		{Kind: node.KindBook, ID: 0},
	} {
		_, err := library.NewPurchase(1, target)

		var appErr *apperr.AppError
		require.True(t, errors.As(err, &appErr), "target %+v", target)
		assert.Equal(t, apperr.CodeValidation, appErr.Code)
	}
}

func TestMemoryRepository_Purchases(t *testing.T) {
	ctx := context.Background()
	repo := library.NewMemoryRepository()

	book := entitlement.Target{Kind: node.KindBook, ID: 1}
	series := entitlement.Target{Kind: node.KindSeries, ID: 1}

	first, _ := library.NewPurchase(7, book)
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(time.Millisecond)
	second, _ := library.NewPurchase(7, series)
	require.NoError(t, repo.Create(ctx, second))

	t.Run("duplicate is a conflict", func(t *testing.T) {
		again, _ := library.NewPurchase(7, book)
		err := repo.Create(ctx, again)

		var appErr *apperr.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperr.CodeConflict, appErr.Code)
	})

	t.Run("owned among", func(t *testing.T) {
		exploration := entitlement.Target{Kind: node.KindExploration, ID: 1}

		owned, err := repo.Owned(ctx, 7, []entitlement.Target{book, exploration})
		require.NoError(t, err)
		assert.True(t, owned[book])
		assert.False(t, owned[exploration])
		assert.False(t, owned[series], "not asked for")

		other, err := repo.Owned(ctx, 8, []entitlement.Target{book})
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("list newest first", func(t *testing.T) {
		purchases, total, err := repo.ListByUser(ctx, 7, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, purchases, 1)
		assert.Equal(t, series, purchases[0].Target())

		rest, _, err := repo.ListByUser(ctx, 7, 10, 1)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, book, rest[0].Target())
	})
}
