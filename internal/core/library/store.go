// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
)

// # Purchase Data Access

// Repository defines the storage contract for purchase records.
type Repository interface {

	/*
		Create persists a purchase and fills its id and timestamp.

		Returns:
		  - error: apperr.Conflict if the user already owns the target
	*/
	Create(ctx context.Context, purchase *Purchase) error

	/*
		Owned reports which of targets userID has purchased.
		Targets without a record are absent from the map.
	*/
	Owned(ctx context.Context, userID int64, targets []entitlement.Target) (map[entitlement.Target]bool, error)

	/*
		ListByUser returns a user's purchases, newest first.

		Returns:
		  - []*Purchase: Page of purchases
		  - int: Total purchases of the user
	*/
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Purchase, int, error)
}
