// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"log/slog"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/core/node"
)

// # Service Layer

// Service orchestrates purchase records.
type Service struct {
	repo   Repository
	nodes  node.Repository
	logger *slog.Logger
}

// NewService constructs a new library [Service].
func NewService(repo Repository, nodes node.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, nodes: nodes, logger: logger}
}

/*
Grant records that userID owns target.

Parameters:
  - context: context.Context
  - userID: int64
  - target: entitlement.Target (Book, Series or Exploration)

Returns:
  - *Purchase: Stored record
  - error: Validation error for a non-purchasable kind, NotFound when the
    target does not exist, Conflict when it is already owned
*/
func (service *Service) Grant(context context.Context, userID int64, target entitlement.Target) (*Purchase, error) {
	purchase, err := NewPurchase(userID, target)
	if err != nil {
		return nil, err
	}

	if _, err := service.nodes.FindByID(context, target.Kind, target.ID); err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, purchase); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "purchase_granted",
		slog.Int64("purchase_id", purchase.ID),
		slog.Int64("user_id", userID),
		slog.String("kind", string(target.Kind)),
		slog.Int64("target_id", target.ID),
	)
	return purchase, nil
}

/*
ListPurchases returns a page of the user's library.

Returns:
  - []*Purchase: Newest first
  - int: Total purchases of the user
*/
func (service *Service) ListPurchases(context context.Context, userID int64, limit, offset int) ([]*Purchase, int, error) {
	return service.repo.ListByUser(context, userID, limit, offset)
}
