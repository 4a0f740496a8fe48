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
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// clientBuilder builds a redis client from a URL.
// scheme: redis://<username>:<password>@<host>:<port>/<db>?<options>
var clientBuilder = func(url string) (redis.UniversalClient, error) {
	if url == "" {
		return nil, fmt.Errorf("redis: url is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url %s: %w", url, err)
	}
	return redis.NewClient(opts), nil
}

// defaultUpdateRetries bounds the optimistic CAS loop in Update.
const defaultUpdateRetries = 5

var defaultOptions = ServiceOpts{
	maxRetries: defaultUpdateRetries,
}

// ServiceOpts is the options for the redis session service.
type ServiceOpts struct {
	url        string
	client     redis.UniversalClient
	sessionTTL time.Duration
	maxRetries int
}

// ServiceOpt is the option for the redis session service.
type ServiceOpt func(*ServiceOpts)

// WithRedisClientURL creates a redis client from URL and sets it to the service.
func WithRedisClientURL(url string) ServiceOpt {
	return func(opts *ServiceOpts) {
		opts.url = url
	}
}

// WithRedisClient sets a pre-built redis client on the service.
func WithRedisClient(client redis.UniversalClient) ServiceOpt {
	return func(opts *ServiceOpts) {
		opts.client = client
	}
}

// WithSessionTTL sets the expiration applied to stored sessions.
// Zero means no expiration.
func WithSessionTTL(ttl time.Duration) ServiceOpt {
	return func(opts *ServiceOpts) {
		opts.sessionTTL = ttl
	}
}

// WithUpdateRetries sets how many times Update retries a conflicted
// transaction before returning session.ErrConflict.
func WithUpdateRetries(n int) ServiceOpt {
	return func(opts *ServiceOpts) {
		if n > 0 {
			opts.maxRetries = n
		}
	}
}
