// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library records purchases of paid roots and answers ownership lookups.

A purchase row links a user to exactly one Book, Series or Exploration. Its
existence is the only signal that the user owns a paid copy. The package
implements [entitlement.Oracle] over those rows, with an optional Redis cache
of positive answers and a per-request memo built on dataloader.
*/
package library

import (
	"time"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/validate"
	"github.com/taibuivan/inkwell/pkg/pointer"
)

// # Domain Models

// Purchase links a user to one paid root.
type Purchase struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	BookID        *int64    `json:"bookId,omitempty"`
	SeriesID      *int64    `json:"seriesId,omitempty"`
	ExplorationID *int64    `json:"explorationId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewPurchase builds an unsaved purchase of target for userID.
//
// Returns:
//   - error: VALIDATION_ERROR when target is not a purchasable kind
func NewPurchase(userID int64, target entitlement.Target) (*Purchase, error) {
	if err := ValidateTarget(target); err != nil {
		return nil, err
	}

	purchase := &Purchase{UserID: userID}
	switch target.Kind {
	case node.KindBook:
		purchase.BookID = pointer.To(target.ID)
	case node.KindSeries:
		purchase.SeriesID = pointer.To(target.ID)
	case node.KindExploration:
		purchase.ExplorationID = pointer.To(target.ID)
	}
	return purchase, nil
}

// Target returns the single root the purchase covers.
func (purchase *Purchase) Target() entitlement.Target {
	switch {
	case purchase.BookID != nil:
		return entitlement.Target{Kind: node.KindBook, ID: *purchase.BookID}
	case purchase.SeriesID != nil:
		return entitlement.Target{Kind: node.KindSeries, ID: *purchase.SeriesID}
	default:
		return entitlement.Target{Kind: node.KindExploration, ID: pointer.Val(purchase.ExplorationID)}
	}
}

// ValidateTarget checks that target names a purchasable root.
func ValidateTarget(target entitlement.Target) error {
	spec, ok := node.Lookup(target.Kind)

	validator := &validate.Validator{}
	validator.Custom("kind", !ok || !spec.IsPurchasable(), "Only books, series and explorations can be purchased")
	validator.Custom("id", target.ID <= 0, "Must be a positive integer")
	return validator.Err()
}
