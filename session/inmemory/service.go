//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory session service, suitable for tests
// and single-process deployments.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-cardgen/session"
)

var _ session.Service = (*Service)(nil)

// Service is the in-memory session service. Atomicity of Update is provided
// by a per-user lock so concurrent events for the same user serialize.
type Service struct {
	mu       sync.RWMutex
	sessions map[int64]*session.Session
	locks    map[int64]*sync.Mutex
}

// NewService creates a new in-memory session service.
func NewService() *Service {
	return &Service{
		sessions: make(map[int64]*session.Session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (s *Service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Get returns the session for the user, or session.ErrNotFound.
func (s *Service) Get(_ context.Context, userID int64) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, session.ErrNotFound
	}
	return sess.Clone(), nil
}

// Put overwrites the stored session, stamping the write time.
func (s *Service) Put(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = time.Now()
	s.sessions[sess.UserID] = sess.Clone()
	return nil
}

// Update applies fn under the user's lock and persists the result.
func (s *Service) Update(ctx context.Context, userID int64, fn session.UpdateFunc) (*session.Session, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	sess, err := s.Get(ctx, userID)
	if err == session.ErrNotFound {
		sess = session.New(userID)
	} else if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// Users enumerates user IDs with a stored session, ascending.
func (s *Service) Users(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Close is a no-op for the in-memory service.
func (s *Service) Close() error { return nil }
