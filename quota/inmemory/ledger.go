//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory quota ledger, suitable for tests
// and single-process deployments.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-cardgen/quota"
)

var _ quota.Ledger = (*Ledger)(nil)

// Ledger is the in-memory quota ledger.
type Ledger struct {
	mu            sync.Mutex
	records       map[int64]*quota.Record
	totalUsers    int64
	totalRequests int64
	activeByDay   map[string]int64
}

// NewLedger creates a new in-memory quota ledger.
func NewLedger() *Ledger {
	return &Ledger{
		records:     make(map[int64]*quota.Record),
		activeByDay: make(map[string]int64),
	}
}

// Register upserts the user's metadata.
func (l *Ledger) Register(_ context.Context, userID int64, username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	rec, ok := l.records[userID]
	if !ok {
		l.records[userID] = &quota.Record{
			UserID:    userID,
			Username:  username,
			FirstSeen: now,
			LastSeen:  now,
		}
		l.totalUsers++
		return nil
	}
	rec.LastSeen = now
	if username != "" {
		rec.Username = username
	}
	return nil
}

// RequestCount returns the user's cumulative accepted-generation count.
func (l *Ledger) RequestCount(_ context.Context, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[userID]
	if !ok {
		return 0, nil
	}
	return rec.Requests, nil
}

// RecordSuccess atomically increments the user's counter.
func (l *Ledger) RecordSuccess(_ context.Context, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	rec, ok := l.records[userID]
	if !ok {
		rec = &quota.Record{UserID: userID, FirstSeen: now}
		l.records[userID] = rec
		l.totalUsers++
	}
	rec.Requests++
	rec.LastSeen = now
	l.totalRequests++
	l.activeByDay[now.Format(time.DateOnly)]++
	return rec.Requests, nil
}

// Meta returns the user's quota record, or nil if unknown.
func (l *Ledger) Meta(_ context.Context, userID int64) (*quota.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[userID]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

// Top returns users ordered by count descending, user ID ascending on ties.
func (l *Ledger) Top(_ context.Context, n int) ([]quota.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]quota.Record, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Requests != out[j].Requests {
			return out[i].Requests > out[j].Requests
		}
		return out[i].UserID < out[j].UserID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Stats returns the global aggregate counters.
func (l *Ledger) Stats(_ context.Context) (quota.Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return quota.Stats{
		TotalUsers:    l.totalUsers,
		TotalRequests: l.totalRequests,
		ActiveToday:   l.activeByDay[time.Now().UTC().Format(time.DateOnly)],
	}, nil
}

// ResetAll clears every per-user counter, keeping metadata.
func (l *Ledger) ResetAll(_ context.Context, resetTotal bool) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cleared := 0
	for _, rec := range l.records {
		if rec.Requests > 0 {
			cleared++
		}
		rec.Requests = 0
	}
	if resetTotal {
		l.totalRequests = 0
	}
	return cleared, nil
}

// Close is a no-op for the in-memory ledger.
func (l *Ledger) Close() error { return nil }
