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

// LedgerOpts is the options for the redis quota ledger.
type LedgerOpts struct {
	url    string
	client redis.UniversalClient
}

// LedgerOpt is the option for the redis quota ledger.
type LedgerOpt func(*LedgerOpts)

// WithRedisClientURL creates a redis client from URL and sets it to the ledger.
func WithRedisClientURL(url string) LedgerOpt {
	return func(opts *LedgerOpts) {
		opts.url = url
	}
}

// WithRedisClient sets a pre-built redis client on the ledger.
func WithRedisClient(client redis.UniversalClient) LedgerOpt {
	return func(opts *LedgerOpts) {
		opts.client = client
	}
}
