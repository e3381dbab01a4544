// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
)

// Wrap inspects a database error and classifies it.
//
//   - pgx.ErrNoRows becomes apperr.NotFound(resource).
//   - A foreign key violation becomes a validation error.
//   - A unique violation becomes apperr.Conflict.
//   - Anything else is wrapped with the action for server-side logs.
func Wrap(err error, resource, action string) error {
	return WrapReference(err, resource, action, "")
}

// WrapReference is [Wrap] for writes whose foreign key the client supplied
// under field. A dangling reference is reported on that field; constraint
// names never reach the client.
func WrapReference(err error, resource, action, field string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Constraint violations the client can act on
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			var details []apperr.FieldError
			if field != "" {
				details = append(details, apperr.FieldError{Field: field, Message: "Unknown reference"})
			}
			return apperr.ValidationError("Referenced row does not exist", details...)
		case pgerrcode.UniqueViolation:
			return apperr.Conflict(resource + " already exists")
		}
	}

	// 3. Unknown query errors keep their chain for the caller
	return fmt.Errorf("postgres: failed to %s %s: %w", action, resource, err)
}
