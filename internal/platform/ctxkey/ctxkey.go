// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines typed context keys used by middleware, handlers and
// request-scoped loaders.
package ctxkey

// key is unexported so that no other package can construct a colliding key.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser is the context key for the authenticated viewer claims ([sec.AuthClaims]).
	KeyUser key = "user"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"

	// KeyPurchaseLoader is the context key for the request-scoped purchase
	// lookup memo installed by the library middleware.
	KeyPurchaseLoader key = "purchase_loader"
)
