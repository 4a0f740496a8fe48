//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-cardgen/session"
)

func TestGetUnknownUser(t *testing.T) {
	svc := NewService()
	defer svc.Close()

	_, err := svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestPutGetRoundTrip(t *testing.T) {
	svc := NewService()
	defer svc.Close()
	ctx := context.Background()

	sess := session.New(1)
	sess.State = session.StateWaitingBrief
	sess.Photos = []string{"a", "b"}
	require.NoError(t, svc.Put(ctx, sess))

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingBrief, got.State)
	assert.Equal(t, []string{"a", "b"}, got.Photos)

	// The returned session is a copy, not an alias.
	got.Photos[0] = "mutated"
	again, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Photos[0])
}

func TestUpdateCreatesFreshSession(t *testing.T) {
	svc := NewService()
	defer svc.Close()
	ctx := context.Background()

	got, err := svc.Update(ctx, 7, func(s *session.Session) error {
		s.Reset()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, session.StateWaitingPhotos, got.State)

	stored, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingPhotos, stored.State)
}

func TestUpdateErrorAborts(t *testing.T) {
	svc := NewService()
	defer svc.Close()
	ctx := context.Background()

	sess := session.New(1)
	sess.State = session.StateWaitingPhotos
	require.NoError(t, svc.Put(ctx, sess))

	_, err := svc.Update(ctx, 1, func(s *session.Session) error {
		s.State = session.StateShowResult
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	stored, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.StateWaitingPhotos, stored.State, "failed update must not persist")
}

func TestUpdateRefreshesUpdatedAt(t *testing.T) {
	svc := NewService()
	defer svc.Close()
	ctx := context.Background()

	sess := session.New(1)
	created := sess.CreatedAt
	require.NoError(t, svc.Put(ctx, sess))

	time.Sleep(5 * time.Millisecond)
	got, err := svc.Update(ctx, 1, func(s *session.Session) error {
		s.State = session.StateWaitingPhotos
		return nil
	})
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(created), "write must bump UpdatedAt")
	assert.Equal(t, created, got.CreatedAt)

	stored, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.After(created))
}

func TestUsers(t *testing.T) {
	svc := NewService()
	defer svc.Close()
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		require.NoError(t, svc.Put(ctx, session.New(id)))
	}
	users, err := svc.Users(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 3}, users)
}

func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	svc := NewService()
	defer svc.Close()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Update(ctx, 1, func(s *session.Session) error {
				s.Photos = append(s.Photos, "p")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got.Photos, n)
}
