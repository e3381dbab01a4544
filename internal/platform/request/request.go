// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/ctxutil"
	"github.com/taibuivan/inkwell/internal/platform/validate"
)

/*
LimitedBody wraps the request body so that reads beyond limit fail.
*/
func LimitedBody(writer http.ResponseWriter, request *http.Request, limit int64) io.Reader {
	return http.MaxBytesReader(writer, request.Body, limit)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Int64Param retrieves a named URL parameter as a positive integer id.

Returns:
  - int64: Parsed identifier
  - error: validation error naming the parameter when malformed
*/
func Int64Param(request *http.Request, name string) (int64, error) {
	raw := chi.URLParam(request, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validate.RequiredError(name, "Must be a positive integer")
	}
	return id, nil
}

/*
OptionalInt64Query parses an optional integer query parameter.
An absent parameter yields nil; a malformed one is a validation error.
*/
func OptionalInt64Query(request *http.Request, name string) (*int64, error) {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, validate.RequiredError(name, "Must be an integer")
	}
	return &id, nil
}

/*
RequiredUserID returns the id of the currently authenticated viewer.

Returns:
  - int64: Viewer id
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (int64, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return 0, apperr.Unauthorized("Authentication required")
	}
	return claims.UserID, nil
}
