// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
)

// # Library Oracle

// BatchOracle is an [entitlement.Oracle] that can also answer for many
// targets at once. Listing endpoints use it to prefetch a whole page.
type BatchOracle interface {
	entitlement.Oracle
	OwnedAmong(ctx context.Context, userID int64, targets []entitlement.Target) (map[entitlement.Target]bool, error)
}

// Oracle answers ownership straight from the purchase [Repository].
type Oracle struct {
	repo Repository
}

// NewOracle builds an oracle over repo.
func NewOracle(repo Repository) *Oracle {
	return &Oracle{repo: repo}
}

// OwnsPurchase reports whether a purchase record exists for userID and target.
func (oracle *Oracle) OwnsPurchase(ctx context.Context, userID int64, target entitlement.Target) (bool, error) {
	owned, err := oracle.repo.Owned(ctx, userID, []entitlement.Target{target})
	if err != nil {
		return false, err
	}
	return owned[target], nil
}

// OwnedAmong resolves ownership for every target in one repository call.
func (oracle *Oracle) OwnedAmong(ctx context.Context, userID int64, targets []entitlement.Target) (map[entitlement.Target]bool, error) {
	return oracle.repo.Owned(ctx, userID, targets)
}
