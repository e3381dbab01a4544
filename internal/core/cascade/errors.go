// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cascade

import (
	"fmt"

	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/apperr"
)

// Ref identifies one row touched by a cascade.
type Ref struct {
	Kind node.Kind `json:"kind"`
	ID   int64     `json:"id"`
	Op   Op        `json:"op"`
}

// Error reports a child write that failed after earlier writes of the same
// cascade had succeeded.
type Error struct {
	// Written lists the rows persisted before the failure, in write order.
	Written []Ref
	// Kind and Path locate the failing node, e.g. Chapter at "Books[0].Chapters[2]".
	Kind node.Kind
	Path string
	// RolledBack is set when the cascade ran in a transaction and nothing was kept.
	RolledBack bool
	Cause      error
}

func (e *Error) Error() string {
	state := "kept"
	if e.RolledBack {
		state = "rolled back"
	}
	return fmt.Sprintf("cascade: %s at %s failed after %d writes (%s): %v",
		e.Kind.Resource(), e.Path, len(e.Written), state, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// As lets errors.As resolve an [*apperr.AppError] from the cascade error
// itself rather than from its cause.
func (e *Error) As(target any) bool {
	if appError, ok := target.(**apperr.AppError); ok {
		*appError = e.AppError()
		return true
	}
	return false
}

/*
AppError maps the failure onto the API error taxonomy.

A rolled back cascade left nothing behind, so the cause is reported as if the
whole request had failed. Otherwise the caller gets PARTIAL_CASCADE with one
detail per written row, enough to retry the remaining children.
*/
func (e *Error) AppError() *apperr.AppError {
	if e.RolledBack {
		if cause := apperr.As(e.Cause); cause != nil {
			return cause
		}
		return apperr.Internal(e.Cause)
	}

	details := make([]apperr.FieldError, 0, len(e.Written)+1)
	for _, ref := range e.Written {
		details = append(details, apperr.FieldError{
			Field:   fmt.Sprintf("%s:%d", ref.Kind, ref.ID),
			Message: string(ref.Op) + "d",
		})
	}
	details = append(details, apperr.FieldError{
		Field:   e.Path,
		Message: "failed: " + causeMessage(e.Cause),
	})

	return apperr.PartialFailure("Content was partially saved", e, details...)
}

// causeMessage keeps storage internals out of client-facing details.
func causeMessage(err error) string {
	if appError := apperr.As(err); appError != nil && appError.HTTPStatus < 500 {
		return appError.Message
	}
	return "storage error"
}
