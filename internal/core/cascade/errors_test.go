// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cascade_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/inkwell/internal/core/cascade"
	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/apperr"
)

func TestError_AppError(t *testing.T) {
	written := []cascade.Ref{
		{Kind: node.KindSeries, ID: 1, Op: cascade.OpCreate},
		{Kind: node.KindBook, ID: 4, Op: cascade.OpUpdate},
	}

	t.Run("kept_writes_are_listed", func(t *testing.T) {
		err := &cascade.Error{Written: written, Kind: node.KindChapter, Path: "Books[0].Chapters[0]", Cause: apperr.NotFound("chapter")}
		appError := err.AppError()

		assert.Equal(t, apperr.CodePartialCascade, appError.Code)
		assert.Equal(t, http.StatusInternalServerError, appError.HTTPStatus)
		assert.Equal(t, []apperr.FieldError{
			{Field: "Series:1", Message: "created"},
			{Field: "Book:4", Message: "updated"},
			{Field: "Books[0].Chapters[0]", Message: "failed: chapter not found"},
		}, appError.Details)
	})

	t.Run("rolled_back_reports_cause", func(t *testing.T) {
		err := &cascade.Error{Written: written, Kind: node.KindChapter, RolledBack: true, Cause: apperr.NotFound("chapter")}
		assert.Equal(t, apperr.CodeNotFound, err.AppError().Code)
	})
}
