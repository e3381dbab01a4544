// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement

import "time"

// Scheduler decides whether a scheduled publication is visible yet.
type Scheduler struct {
	now func() time.Time
}

// NewScheduler builds a scheduler reading the given clock. A nil clock uses wall time.
func NewScheduler(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{now: now}
}

// IsPublished is true once now has reached publishDate. A nil date means the
// node was never published. Both instants are compared in UTC.
func (scheduler *Scheduler) IsPublished(publishDate *time.Time) bool {
	if publishDate == nil {
		return false
	}
	return !scheduler.now().UTC().Before(publishDate.UTC())
}
