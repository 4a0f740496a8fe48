//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-cardgen/transport"
)

type recordingHandler struct {
	mu     sync.Mutex
	order  map[int64][]string
	delay  time.Duration
	wg     sync.WaitGroup
	active map[int64]bool
	racy   bool
}

func (h *recordingHandler) HandleEvent(ctx context.Context, ev transport.Event) error {
	h.mu.Lock()
	if h.active[ev.UserID] {
		h.racy = true
	}
	h.active[ev.UserID] = true
	h.mu.Unlock()

	time.Sleep(h.delay)

	h.mu.Lock()
	h.active[ev.UserID] = false
	h.order[ev.UserID] = append(h.order[ev.UserID], ev.Text)
	h.mu.Unlock()
	h.wg.Done()
	return nil
}

func TestDispatcherSerializesPerUser(t *testing.T) {
	h := &recordingHandler{
		order:  make(map[int64][]string),
		active: make(map[int64]bool),
		delay:  2 * time.Millisecond,
	}
	d, err := NewDispatcher(h, 8)
	require.NoError(t, err)
	defer d.Release()

	ctx := context.Background()
	texts := []string{"a", "b", "c", "d", "e"}
	h.wg.Add(len(texts) * 2)
	for _, text := range texts {
		for _, userID := range []int64{1, 2} {
			require.NoError(t, d.Dispatch(ctx, transport.Event{
				Kind: transport.EventText, UserID: userID, Text: text,
			}))
		}
	}
	h.wg.Wait()

	assert.False(t, h.racy, "events for one user must never overlap")
	assert.Equal(t, texts, h.order[1])
	assert.Equal(t, texts, h.order[2])
}

func TestDispatcherDefaultPoolSize(t *testing.T) {
	h := &recordingHandler{order: make(map[int64][]string), active: make(map[int64]bool)}
	d, err := NewDispatcher(h, 0)
	require.NoError(t, err)
	defer d.Release()

	h.wg.Add(1)
	require.NoError(t, d.Dispatch(context.Background(), transport.Event{UserID: 1, Text: "x"}))
	h.wg.Wait()
	assert.Equal(t, []string{"x"}, h.order[1])
}
