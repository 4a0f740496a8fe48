//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package redis provides the redis quota ledger.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trpc.group/trpc-go/trpc-cardgen/log"
	"trpc.group/trpc-go/trpc-cardgen/quota"
)

var _ quota.Ledger = (*Ledger)(nil)

// Key layout, kept compatible with the original deployment so existing
// counters survive upgrades:
//
//	user_requests:<userID>      counter of accepted generations
//	user_meta:<userID>          hash: first_seen, last_seen, username, total_requests
//	stats:total_users           distinct-user counter
//	stats:total_requests        global accepted-generation counter
//	stats:active_today:<date>   per-UTC-day activity counter
const (
	userRequestsPrefix = "user_requests:"
	userMetaPrefix     = "user_meta:"
	statsTotalUsersKey = "stats:total_users"
	statsTotalReqsKey  = "stats:total_requests"
	statsActivePrefix  = "stats:active_today:"
)

const (
	metaFieldFirstSeen = "first_seen"
	metaFieldLastSeen  = "last_seen"
	metaFieldUsername  = "username"
	metaFieldRequests  = "total_requests"
)

// Ledger is the redis quota ledger. Every counter mutation is a single INCR
// or HINCRBY, never a read-modify-write, so the ledger stays correct under
// concurrent access.
type Ledger struct {
	opts        LedgerOpts
	redisClient redis.UniversalClient
}

// NewLedger creates a new redis quota ledger.
func NewLedger(options ...LedgerOpt) (*Ledger, error) {
	opts := LedgerOpts{}
	for _, option := range options {
		option(&opts)
	}
	redisClient := opts.client
	if redisClient == nil {
		var err error
		redisClient, err = clientBuilder(opts.url)
		if err != nil {
			return nil, fmt.Errorf("create redis client failed: %w", err)
		}
	}
	return &Ledger{opts: opts, redisClient: redisClient}, nil
}

func requestsKey(userID int64) string {
	return userRequestsPrefix + strconv.FormatInt(userID, 10)
}

func metaKey(userID int64) string {
	return userMetaPrefix + strconv.FormatInt(userID, 10)
}

func todayKey(now time.Time) string {
	return statsActivePrefix + now.UTC().Format(time.DateOnly)
}

// Register upserts the user's metadata. HSETNX on first_seen decides
// first-contact exactly once, so a racing pair of first events increments
// the distinct-user counter a single time.
func (l *Ledger) Register(ctx context.Context, userID int64, username string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	key := metaKey(userID)

	isNew, err := l.redisClient.HSetNX(ctx, key, metaFieldFirstSeen, now).Result()
	if err != nil {
		return fmt.Errorf("register user failed: %w", err)
	}

	pipe := l.redisClient.Pipeline()
	pipe.HSet(ctx, key, metaFieldLastSeen, now)
	if username != "" {
		pipe.HSet(ctx, key, metaFieldUsername, username)
	}
	if isNew {
		pipe.HSetNX(ctx, key, metaFieldRequests, "0")
		pipe.Incr(ctx, statsTotalUsersKey)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("register user failed: %w", err)
	}
	if isNew {
		log.Infof("registered new user: %d (@%s)", userID, username)
	}
	return nil
}

// RequestCount returns the user's cumulative accepted-generation count.
func (l *Ledger) RequestCount(ctx context.Context, userID int64) (int64, error) {
	count, err := l.redisClient.Get(ctx, requestsKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get request count failed: %w", err)
	}
	return count, nil
}

// RecordSuccess atomically increments the user's counter and the global
// aggregates. The per-day counter is bumped per success, not per distinct
// user, matching the deployed accounting.
func (l *Ledger) RecordSuccess(ctx context.Context, userID int64) (int64, error) {
	count, err := l.redisClient.Incr(ctx, requestsKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("increment request count failed: %w", err)
	}

	now := time.Now().UTC()
	pipe := l.redisClient.Pipeline()
	pipe.HSet(ctx, metaKey(userID), metaFieldLastSeen, now.Format(time.RFC3339))
	pipe.HIncrBy(ctx, metaKey(userID), metaFieldRequests, 1)
	pipe.Incr(ctx, statsTotalReqsKey)
	pipe.Incr(ctx, todayKey(now))
	if _, err := pipe.Exec(ctx); err != nil {
		return count, fmt.Errorf("update aggregates failed: %w", err)
	}
	log.Infof("user %d request count: %d", userID, count)
	return count, nil
}

// Meta returns the user's quota record, or nil if unknown.
func (l *Ledger) Meta(ctx context.Context, userID int64) (*quota.Record, error) {
	fields, err := l.redisClient.HGetAll(ctx, metaKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get user meta failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	count, err := l.RequestCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec := &quota.Record{
		UserID:   userID,
		Requests: count,
		Username: fields[metaFieldUsername],
	}
	if t, err := time.Parse(time.RFC3339, fields[metaFieldFirstSeen]); err == nil {
		rec.FirstSeen = t
	}
	if t, err := time.Parse(time.RFC3339, fields[metaFieldLastSeen]); err == nil {
		rec.LastSeen = t
	}
	return rec, nil
}

// Top enumerates all per-user counters and returns the n highest, count
// descending, user ID ascending on ties.
func (l *Ledger) Top(ctx context.Context, n int) ([]quota.Record, error) {
	ids, err := l.scanUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]quota.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := l.Meta(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			count, err := l.RequestCount(ctx, id)
			if err != nil {
				return nil, err
			}
			rec = &quota.Record{UserID: id, Requests: count}
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Requests != records[j].Requests {
			return records[i].Requests > records[j].Requests
		}
		return records[i].UserID < records[j].UserID
	})
	if n >= 0 && len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// Stats returns the global aggregate counters.
func (l *Ledger) Stats(ctx context.Context) (quota.Stats, error) {
	var stats quota.Stats
	now := time.Now().UTC()
	for _, item := range []struct {
		key string
		dst *int64
	}{
		{statsTotalUsersKey, &stats.TotalUsers},
		{statsTotalReqsKey, &stats.TotalRequests},
		{todayKey(now), &stats.ActiveToday},
	} {
		v, err := l.redisClient.Get(ctx, item.key).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return quota.Stats{}, fmt.Errorf("get stats failed: %w", err)
		}
		*item.dst = v
	}
	return stats, nil
}

// ResetAll deletes every per-user counter key. Metadata hashes and the
// distinct-user counter are left intact so first-seen history survives.
func (l *Ledger) ResetAll(ctx context.Context, resetTotal bool) (int, error) {
	ids, err := l.scanUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	cleared := 0
	for _, id := range ids {
		n, err := l.redisClient.Del(ctx, requestsKey(id)).Result()
		if err != nil {
			return cleared, fmt.Errorf("delete counter failed: %w", err)
		}
		cleared += int(n)
	}
	if resetTotal {
		if err := l.redisClient.Set(ctx, statsTotalReqsKey, "0", 0).Err(); err != nil {
			return cleared, fmt.Errorf("reset total counter failed: %w", err)
		}
	}
	log.Infof("quota reset: cleared %d user counters (resetTotal=%v)", cleared, resetTotal)
	return cleared, nil
}

// Close closes the underlying redis client.
func (l *Ledger) Close() error {
	return l.redisClient.Close()
}

func (l *Ledger) scanUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	iter := l.redisClient.Scan(ctx, 0, userRequestsPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw := strings.TrimPrefix(iter.Val(), userRequestsPrefix)
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan counters failed: %w", err)
	}
	return ids, nil
}
