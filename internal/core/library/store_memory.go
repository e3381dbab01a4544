// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/platform/apperr"
)

// MemoryRepository is an in-process [Repository] used by tests and by the
// API when no database is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	rows   []*Purchase
	nextID int64
	now    func() time.Time
}

// NewMemoryRepository returns an empty purchase store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

// Create stores a copy of purchase. A repeated target is a conflict.
func (repository *MemoryRepository) Create(_ context.Context, purchase *Purchase) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	target := purchase.Target()
	for _, row := range repository.rows {
		if row.UserID == purchase.UserID && row.Target() == target {
			return apperr.Conflict(resourcePurchase + " already exists")
		}
	}

	repository.nextID++
	purchase.ID = repository.nextID
	purchase.CreatedAt = repository.now().UTC()

	stored := *purchase
	repository.rows = append(repository.rows, &stored)
	return nil
}

// Owned reports which targets userID has a purchase for.
func (repository *MemoryRepository) Owned(_ context.Context, userID int64, targets []entitlement.Target) (map[entitlement.Target]bool, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	wanted := make(map[entitlement.Target]bool, len(targets))
	for _, target := range targets {
		wanted[target] = true
	}

	owned := make(map[entitlement.Target]bool)
	for _, row := range repository.rows {
		if row.UserID != userID {
			continue
		}
		if target := row.Target(); wanted[target] {
			owned[target] = true
		}
	}
	return owned, nil
}

// ListByUser pages a user's purchases, newest first.
func (repository *MemoryRepository) ListByUser(_ context.Context, userID int64, limit, offset int) ([]*Purchase, int, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	var matched []*Purchase
	for _, row := range repository.rows {
		if row.UserID == userID {
			copied := *row
			matched = append(matched, &copied)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}
