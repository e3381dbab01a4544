// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package node

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
)

// MemoryRepository is an in-process [Repository].
//
// It backs tests and the API's in-memory mode. Parent references are checked
// like foreign keys and deletes cascade to descendants. [MemoryRepository.WithinTx]
// restores a snapshot on failure; it serializes transactions but does not
// isolate them from concurrent non-transactional writes.
type MemoryRepository struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	rows   map[Kind]map[int64]*Node
	nextID map[Kind]int64
	now    func() time.Time
}

// NewMemoryRepository creates an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows:   make(map[Kind]map[int64]*Node),
		nextID: make(map[Kind]int64),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source.
func (store *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	store.now = now
	return store
}

func (store *MemoryRepository) Create(ctx context.Context, n *Node) error {
	spec, ok := Lookup(n.Kind)
	if !ok {
		return errUnknownKind(n.Kind)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.checkParent(spec, n.ParentID); err != nil {
		return err
	}

	store.nextID[n.Kind]++
	n.ID = store.nextID[n.Kind]
	n.CreatedAt = store.now()
	n.UpdatedAt = n.CreatedAt

	store.table(n.Kind)[n.ID] = n.Clone()
	return nil
}

func (store *MemoryRepository) Update(ctx context.Context, n *Node) error {
	spec, ok := Lookup(n.Kind)
	if !ok {
		return errUnknownKind(n.Kind)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	stored, found := store.table(n.Kind)[n.ID]
	if !found || stored.AuthorID != n.AuthorID {
		return apperr.NotFound(n.Kind.Resource())
	}

	if n.ParentID == nil {
		n.ParentID = stored.ParentID
	} else if err := store.checkParent(spec, n.ParentID); err != nil {
		return err
	}

	n.CreatedAt = stored.CreatedAt
	n.UpdatedAt = store.now()

	store.table(n.Kind)[n.ID] = n.Clone()
	return nil
}

func (store *MemoryRepository) FindByID(ctx context.Context, kind Kind, id int64) (*Node, error) {
	if !kind.IsValid() {
		return nil, errUnknownKind(kind)
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	stored, found := store.rows[kind][id]
	if !found {
		return nil, apperr.NotFound(kind.Resource())
	}
	return stored.Clone(), nil
}

func (store *MemoryRepository) FindMany(ctx context.Context, kind Kind, filter Filter) ([]*Node, int, error) {
	spec, ok := Lookup(kind)
	if !ok {
		return nil, 0, errUnknownKind(kind)
	}
	if filter.ParentID != nil && !spec.HasParent() {
		return nil, 0, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   "parent",
			Message: string(kind) + " has no parent",
		})
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	matches := make([]*Node, 0)
	for _, stored := range store.rows[kind] {
		if filter.ParentID != nil && (stored.ParentID == nil || *stored.ParentID != *filter.ParentID) {
			continue
		}
		if filter.AuthorID != nil && stored.AuthorID != *filter.AuthorID {
			continue
		}
		matches = append(matches, stored)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Order != matches[j].Order {
			return matches[i].Order < matches[j].Order
		}
		return matches[i].ID < matches[j].ID
	})

	total := len(matches)
	if filter.Offset > 0 {
		if filter.Offset >= total {
			return []*Node{}, total, nil
		}
		matches = matches[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matches) {
		matches = matches[:filter.Limit]
	}

	page := make([]*Node, len(matches))
	for index, stored := range matches {
		page[index] = stored.Clone()
	}
	return page, total, nil
}

func (store *MemoryRepository) Delete(ctx context.Context, kind Kind, id, authorID int64) error {
	if !kind.IsValid() {
		return errUnknownKind(kind)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	stored, found := store.rows[kind][id]
	if !found || stored.AuthorID != authorID {
		return apperr.NotFound(kind.Resource())
	}

	store.deleteCascade(kind, id)
	return nil
}

func (store *MemoryRepository) WithinTx(ctx context.Context, fn func(repo Repository) error) error {
	store.txMu.Lock()
	defer store.txMu.Unlock()

	snapshot := store.snapshot()
	if err := fn(store); err != nil {
		store.restore(snapshot)
		return err
	}
	return nil
}

// Len returns the number of stored rows of kind.
func (store *MemoryRepository) Len(kind Kind) int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.rows[kind])
}

// # Internal Helpers

func (store *MemoryRepository) table(kind Kind) map[int64]*Node {
	table, ok := store.rows[kind]
	if !ok {
		table = make(map[int64]*Node)
		store.rows[kind] = table
	}
	return table
}

func (store *MemoryRepository) checkParent(spec Spec, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if !spec.HasParent() {
		return apperr.ValidationError("Referenced parent does not exist", apperr.FieldError{
			Field: "parent", Message: string(spec.Kind) + " has no parent",
		})
	}
	if _, found := store.rows[spec.Parent][*parentID]; !found {
		return apperr.ValidationError("Referenced parent does not exist", apperr.FieldError{
			Field: spec.ParentKey, Message: "Unknown parent",
		})
	}
	return nil
}

func (store *MemoryRepository) deleteCascade(kind Kind, id int64) {
	delete(store.rows[kind], id)

	for _, childKind := range ordered {
		if specs[childKind].Parent != kind {
			continue
		}
		for childID, child := range store.rows[childKind] {
			if child.ParentID != nil && *child.ParentID == id {
				store.deleteCascade(childKind, childID)
			}
		}
	}
}

type memorySnapshot struct {
	rows   map[Kind]map[int64]*Node
	nextID map[Kind]int64
}

func (store *MemoryRepository) snapshot() memorySnapshot {
	store.mu.RLock()
	defer store.mu.RUnlock()

	copied := memorySnapshot{
		rows:   make(map[Kind]map[int64]*Node, len(store.rows)),
		nextID: make(map[Kind]int64, len(store.nextID)),
	}
	for kind, table := range store.rows {
		copiedTable := make(map[int64]*Node, len(table))
		for id, stored := range table {
			copiedTable[id] = stored.Clone()
		}
		copied.rows[kind] = copiedTable
	}
	for kind, id := range store.nextID {
		copied.nextID[kind] = id
	}
	return copied
}

func (store *MemoryRepository) restore(snapshot memorySnapshot) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.rows = snapshot.rows
	store.nextID = snapshot.nextID
}
