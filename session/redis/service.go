//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package redis provides the redis session service.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trpc.group/trpc-go/trpc-cardgen/session"
)

var _ session.Service = (*Service)(nil)

// sessionKeyPrefix is the key namespace for stored sessions.
// storage structure: cardgen:session:<userID> -> Session (json)
const sessionKeyPrefix = "cardgen:session:"

// Service is the redis session service. Update runs as an optimistic
// WATCH/MULTI transaction so a racing write for the same user aborts the
// transaction and the read-modify-write is retried on fresh data.
type Service struct {
	opts        ServiceOpts
	redisClient redis.UniversalClient
}

// NewService creates a new redis session service.
func NewService(options ...ServiceOpt) (*Service, error) {
	opts := defaultOptions
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
	return &Service{opts: opts, redisClient: redisClient}, nil
}

func sessionKey(userID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(userID, 10)
}

// Get returns the session for the user, or session.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID int64) (*session.Session, error) {
	data, err := s.redisClient.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	sess := &session.Session{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return sess, nil
}

// Put overwrites the stored session unconditionally, stamping the write time.
func (s *Service) Put(ctx context.Context, sess *session.Session) error {
	sess.UpdatedAt = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := s.redisClient.Set(ctx, sessionKey(sess.UserID), data, s.opts.sessionTTL).Err(); err != nil {
		return fmt.Errorf("put session failed: %w", err)
	}
	return nil
}

// Update applies fn to the stored session under optimistic concurrency
// control. The watched key aborts the transaction if another writer touches
// it between read and write; up to maxRetries attempts are made before
// giving up with session.ErrConflict.
func (s *Service) Update(ctx context.Context, userID int64, fn session.UpdateFunc) (*session.Session, error) {
	key := sessionKey(userID)
	var written *session.Session

	txn := func(tx *redis.Tx) error {
		sess := session.New(userID)
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			// first contact, start from a fresh session
		case err != nil:
			return fmt.Errorf("get session failed: %w", err)
		default:
			if err := json.Unmarshal(data, sess); err != nil {
				return fmt.Errorf("unmarshal session failed: %w", err)
			}
		}

		if err := fn(sess); err != nil {
			return err
		}
		sess.UpdatedAt = time.Now()
		out, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshal session failed: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.opts.sessionTTL)
			return nil
		})
		if err != nil {
			return err
		}
		written = sess
		return nil
	}

	for i := 0; i < s.opts.maxRetries; i++ {
		err := s.redisClient.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return written, nil
	}
	return nil, session.ErrConflict
}

// Users enumerates user IDs with a stored session via SCAN.
func (s *Service) Users(ctx context.Context) ([]int64, error) {
	var ids []int64
	iter := s.redisClient.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw := strings.TrimPrefix(iter.Val(), sessionKeyPrefix)
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions failed: %w", err)
	}
	return ids, nil
}

// Close closes the underlying redis client.
func (s *Service) Close() error {
	return s.redisClient.Close()
}
