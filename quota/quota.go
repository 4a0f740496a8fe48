//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package quota provides the per-user free-usage ledger: request counters,
// user metadata, and global aggregate statistics.
package quota

import (
	"context"
	"time"
)

// DefaultFreeLimit is the default number of free accepted generations.
const DefaultFreeLimit = 10

// Record is the per-user quota record.
type Record struct {
	UserID int64
	// Requests is the cumulative accepted-generation count. It only
	// increases, and only as a result of a successful generation.
	Requests  int64
	Username  string
	FirstSeen time.Time
	LastSeen  time.Time
}

// Stats holds the global aggregate counters.
type Stats struct {
	// TotalUsers is the number of distinct users ever seen.
	TotalUsers int64
	// TotalRequests is the total accepted generations across all users.
	TotalRequests int64
	// ActiveToday counts activity on the current UTC calendar day. It is
	// incremented once per recorded success rather than once per user per
	// day, so it is an approximation, not a distinct-user count.
	ActiveToday int64
}

// Ledger answers "may this user proceed?" and records accepted generations.
// Counter mutations are atomic increments so the ledger stays correct under
// concurrent access.
type Ledger interface {
	// Register upserts the user's metadata. On first contact it initializes
	// the record and increments the distinct-user counter exactly once, even
	// under concurrent first-contact calls. On later calls it refreshes
	// last-seen and the display name.
	Register(ctx context.Context, userID int64, username string) error
	// RequestCount returns the user's cumulative accepted-generation count,
	// zero for unknown users.
	RequestCount(ctx context.Context, userID int64) (int64, error)
	// RecordSuccess atomically increments the user's counter and returns the
	// new value, bumping the global and current-day counters alongside.
	RecordSuccess(ctx context.Context, userID int64) (int64, error)
	// Meta returns the user's quota record, or nil if the user is unknown.
	Meta(ctx context.Context, userID int64) (*Record, error)
	// Top returns all users ordered by count descending, ties broken by user
	// ID ascending, truncated to n.
	Top(ctx context.Context, n int) ([]Record, error)
	// Stats returns the global aggregate counters.
	Stats(ctx context.Context) (Stats, error)
	// ResetAll clears every per-user counter and returns how many were
	// cleared. With resetTotal it also zeroes the global accepted-generation
	// counter. Metadata and the distinct-user counter survive.
	ResetAll(ctx context.Context, resetTotal bool) (int, error)
	// Close releases ledger resources.
	Close() error
}

// Gate wraps a Ledger with the free-limit policy and the exempt owner
// identity. The owner is never checked and never charged.
type Gate struct {
	Ledger  Ledger
	Limit   int64
	OwnerID int64
}

// MayProceed reports whether the user is allowed another generation.
func (g *Gate) MayProceed(ctx context.Context, userID int64) (bool, error) {
	if userID == g.OwnerID {
		return true, nil
	}
	count, err := g.Ledger.RequestCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return count < g.Limit, nil
}

// Charge records one accepted generation and returns how many free requests
// remain. The owner is exempt: nothing is recorded and remaining is -1.
func (g *Gate) Charge(ctx context.Context, userID int64) (remaining int64, err error) {
	if userID == g.OwnerID {
		return -1, nil
	}
	count, err := g.Ledger.RecordSuccess(ctx, userID)
	if err != nil {
		return 0, err
	}
	remaining = g.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
