// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/platform/ctxkey"
)

// # Request-Scoped Memo

// ownershipKey is the dataloader key for one (user, target) lookup.
type ownershipKey struct {
	userID int64
	target entitlement.Target
}

func (key ownershipKey) String() string {
	return fmt.Sprintf("%d:%s:%d", key.userID, key.target.Kind, key.target.ID)
}

func (key ownershipKey) Raw() interface{} {
	return key
}

// Loaders holds the request-scoped batch loaders of the library.
type Loaders struct {
	Ownership *dataloader.Loader
}

// NewLoaders builds fresh loaders over oracle.
//
// Lookups issued within the same millisecond are coalesced per user into one
// OwnedAmong call, and every answer is memoized for the loader's lifetime.
func NewLoaders(oracle BatchOracle) *Loaders {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		// 1. Group targets by user, usually a single viewer
		byUser := make(map[int64][]entitlement.Target)
		for _, key := range keys {
			ownership := key.Raw().(ownershipKey)
			byUser[ownership.userID] = append(byUser[ownership.userID], ownership.target)
		}

		// 2. One batch lookup per user
		answers := make(map[int64]map[entitlement.Target]bool, len(byUser))
		failures := make(map[int64]error)
		for userID, targets := range byUser {
			owned, err := oracle.OwnedAmong(ctx, userID, targets)
			if err != nil {
				failures[userID] = err
				continue
			}
			answers[userID] = owned
		}

		// 3. Results in key order
		for index, key := range keys {
			ownership := key.Raw().(ownershipKey)
			if err, failed := failures[ownership.userID]; failed {
				results[index] = &dataloader.Result{Error: err}
				continue
			}
			results[index] = &dataloader.Result{Data: answers[ownership.userID][ownership.target]}
		}
		return results
	}

	return &Loaders{
		Ownership: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond)),
	}
}

// WithLoaders returns a context carrying loaders.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, ctxkey.KeyPurchaseLoader, loaders)
}

// LoadersFrom returns the loaders installed on ctx, or nil.
func LoadersFrom(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(ctxkey.KeyPurchaseLoader).(*Loaders)
	return loaders
}

// Middleware installs fresh [Loaders] on every request.
func Middleware(oracle BatchOracle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := WithLoaders(request.Context(), NewLoaders(oracle))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

/*
MemoOracle routes lookups through the request's [Loaders] when present.

Description: Outside a request (CLI, background jobs) it falls back to the
wrapped oracle directly.
*/
type MemoOracle struct {
	next BatchOracle
}

// NewMemoOracle wraps next.
func NewMemoOracle(next BatchOracle) *MemoOracle {
	return &MemoOracle{next: next}
}

// OwnsPurchase answers one lookup, memoized per request.
func (oracle *MemoOracle) OwnsPurchase(ctx context.Context, userID int64, target entitlement.Target) (bool, error) {
	loaders := LoadersFrom(ctx)
	if loaders == nil {
		return oracle.next.OwnsPurchase(ctx, userID, target)
	}

	value, err := loaders.Ownership.Load(ctx, ownershipKey{userID: userID, target: target})()
	if err != nil {
		return false, err
	}
	owned, _ := value.(bool)
	return owned, nil
}

// OwnedAmong answers many lookups and leaves them in the request memo.
func (oracle *MemoOracle) OwnedAmong(ctx context.Context, userID int64, targets []entitlement.Target) (map[entitlement.Target]bool, error) {
	loaders := LoadersFrom(ctx)
	if loaders == nil {
		return oracle.next.OwnedAmong(ctx, userID, targets)
	}

	keys := make(dataloader.Keys, len(targets))
	for index, target := range targets {
		keys[index] = ownershipKey{userID: userID, target: target}
	}

	values, errs := loaders.Ownership.LoadMany(ctx, keys)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	owned := make(map[entitlement.Target]bool, len(targets))
	for index, value := range values {
		if hit, _ := value.(bool); hit {
			owned[targets[index]] = true
		}
	}
	return owned, nil
}
