//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*Ledger, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	ledger, err := NewLedger(WithRedisClientURL("redis://" + mr.Addr()))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return ledger, mr
}

func TestRegisterFirstContact(t *testing.T) {
	ledger, mr := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Register(ctx, 1, "alice"))
	require.NoError(t, ledger.Register(ctx, 1, "alice"))
	require.NoError(t, ledger.Register(ctx, 2, ""))

	total, err := mr.Get("stats:total_users")
	require.NoError(t, err)
	assert.Equal(t, "2", total)

	assert.Equal(t, "alice", mr.HGet("user_meta:1", "username"))
	assert.Equal(t, "0", mr.HGet("user_meta:1", "total_requests"))
	assert.NotEmpty(t, mr.HGet("user_meta:1", "first_seen"))
}

func TestRegisterKeepsFirstSeen(t *testing.T) {
	ledger, mr := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Register(ctx, 1, "alice"))
	firstSeen := mr.HGet("user_meta:1", "first_seen")
	require.NotEmpty(t, firstSeen)

	require.NoError(t, ledger.Register(ctx, 1, "renamed"))
	assert.Equal(t, firstSeen, mr.HGet("user_meta:1", "first_seen"))
	assert.Equal(t, "renamed", mr.HGet("user_meta:1", "username"))
}

func TestRecordSuccessIncrementsAllCounters(t *testing.T) {
	ledger, mr := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, ledger.Register(ctx, 1, "alice"))

	count, err := ledger.RecordSuccess(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = ledger.RecordSuccess(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	got, err := ledger.RequestCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	totalReqs, err := mr.Get("stats:total_requests")
	require.NoError(t, err)
	assert.Equal(t, "2", totalReqs)
	assert.Equal(t, "2", mr.HGet("user_meta:1", "total_requests"))

	stats, err := ledger.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalRequests)
	assert.Equal(t, int64(2), stats.ActiveToday)
}

func TestRequestCountUnknownUser(t *testing.T) {
	ledger, _ := newTestLedger(t)
	count, err := ledger.RequestCount(context.Background(), 404)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMetaRoundTrip(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	rec, err := ledger.Meta(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, ledger.Register(ctx, 7, "bob"))
	_, err = ledger.RecordSuccess(ctx, 7)
	require.NoError(t, err)

	rec, err = ledger.Meta(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(7), rec.UserID)
	assert.Equal(t, "bob", rec.Username)
	assert.Equal(t, int64(1), rec.Requests)
	assert.False(t, rec.FirstSeen.IsZero())
	assert.False(t, rec.LastSeen.IsZero())
}

func TestTopOrdering(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	for userID, n := range map[int64]int{1: 3, 2: 5, 3: 5, 4: 1} {
		require.NoError(t, ledger.Register(ctx, userID, ""))
		for i := 0; i < n; i++ {
			_, err := ledger.RecordSuccess(ctx, userID)
			require.NoError(t, err)
		}
	}

	top, err := ledger.Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, int64(2), top[0].UserID)
	assert.Equal(t, int64(3), top[1].UserID)
	assert.Equal(t, int64(1), top[2].UserID)
	assert.Equal(t, int64(5), top[0].Requests)
}

func TestResetAllKeepsMetadata(t *testing.T) {
	ledger, mr := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Register(ctx, 1, "alice"))
	require.NoError(t, ledger.Register(ctx, 2, "bob"))
	for _, id := range []int64{1, 2} {
		_, err := ledger.RecordSuccess(ctx, id)
		require.NoError(t, err)
	}

	cleared, err := ledger.ResetAll(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	count, err := ledger.RequestCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, "alice", mr.HGet("user_meta:1", "username"))

	totalReqs, err := mr.Get("stats:total_requests")
	require.NoError(t, err)
	assert.Equal(t, "2", totalReqs, "global counter survives without resetTotal")

	_, err = ledger.ResetAll(ctx, true)
	require.NoError(t, err)
	totalReqs, err = mr.Get("stats:total_requests")
	require.NoError(t, err)
	assert.Equal(t, "0", totalReqs)
}
