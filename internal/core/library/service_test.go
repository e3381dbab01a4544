// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/core/library"
	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/ctxutil"
	"github.com/taibuivan/inkwell/internal/platform/sec"
)

func newLibraryService(t *testing.T) (*library.Service, *node.Node) {
	t.Helper()

	nodes := node.NewMemoryRepository()
	book := &node.Node{Kind: node.KindBook, AuthorID: 1, Order: 1, Title: "Book"}
	require.NoError(t, nodes.Create(context.Background(), book))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return library.NewService(library.NewMemoryRepository(), nodes, logger), book
}

func TestService_Grant(t *testing.T) {
	ctx := context.Background()
	service, book := newLibraryService(t)
	target := entitlement.TargetOf(book)

	purchase, err := service.Grant(ctx, 5, target)
	require.NoError(t, err)
	assert.NotZero(t, purchase.ID)
	assert.Equal(t, target, purchase.Target())

	_, err = service.Grant(ctx, 5, target)
	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.CodeConflict, appErr.Code)
}

func TestService_Grant_UnknownTarget(t *testing.T) {
	service, _ := newLibraryService(t)

	_, err := service.Grant(context.Background(), 5, entitlement.Target{Kind: node.KindSeries, ID: 99})

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestService_Grant_NotPurchasable(t *testing.T) {
	service, _ := newLibraryService(t)

	_, err := service.Grant(context.Background(), 5, entitlement.Target{Kind: node.KindScene, ID: 1})

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
}

func TestHandler_ListPurchases(t *testing.T) {
	service, book := newLibraryService(t)
	_, err := service.Grant(context.Background(), 5, entitlement.TargetOf(book))
	require.NoError(t, err)

	router := library.NewHandler(service).Routes()

	t.Run("requires a viewer", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("lists the viewer's purchases", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/?page=1&limit=10", nil)
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: 5, Role: string(sec.RoleReader)}))

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusOK, recorder.Code)

		var body struct {
			Data []map[string]any `json:"data"`
			Meta struct {
				Total int `json:"total"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Meta.Total)
		require.Len(t, body.Data, 1)
		assert.EqualValues(t, book.ID, body.Data[0]["bookId"])
	})
}
