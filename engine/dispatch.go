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

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-cardgen/log"
	"trpc.group/trpc-go/trpc-cardgen/transport"
)

const defaultPoolSize = 64

// Dispatcher fans inbound events out to a worker pool while keeping events
// for one user strictly ordered: each user has a FIFO queue drained by at
// most one worker at a time. Different users run concurrently; a slow
// generation for one user never blocks another.
type Dispatcher struct {
	handler transport.Handler
	pool    *ants.Pool

	mu      sync.Mutex
	queues  map[int64][]transport.Event
	running map[int64]bool
}

// NewDispatcher creates a dispatcher over the given handler. size <= 0 uses
// the default pool size.
func NewDispatcher(handler transport.Handler, size int) (*Dispatcher, error) {
	if size <= 0 {
		size = defaultPoolSize
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		handler: handler,
		pool:    pool,
		queues:  make(map[int64][]transport.Event),
		running: make(map[int64]bool),
	}, nil
}

// Dispatch enqueues one event for asynchronous handling. It returns once the
// event is queued; handling errors are logged by the worker.
func (d *Dispatcher) Dispatch(ctx context.Context, ev transport.Event) error {
	d.mu.Lock()
	d.queues[ev.UserID] = append(d.queues[ev.UserID], ev)
	if d.running[ev.UserID] {
		d.mu.Unlock()
		return nil
	}
	d.running[ev.UserID] = true
	d.mu.Unlock()

	err := d.pool.Submit(func() { d.drain(ctx, ev.UserID) })
	if err != nil {
		d.mu.Lock()
		d.running[ev.UserID] = false
		d.mu.Unlock()
	}
	return err
}

// drain runs the user's queue to exhaustion, one event at a time.
func (d *Dispatcher) drain(ctx context.Context, userID int64) {
	for {
		d.mu.Lock()
		queue := d.queues[userID]
		if len(queue) == 0 {
			d.running[userID] = false
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		ev := queue[0]
		d.queues[userID] = queue[1:]
		d.mu.Unlock()

		if err := d.handler.HandleEvent(ctx, ev); err != nil {
			log.Debugf("user %d: event %s finished with: %v", userID, ev.Kind, err)
		}
	}
}

// Release shuts the worker pool down, waiting for in-flight events.
func (d *Dispatcher) Release() {
	d.pool.Release()
}
