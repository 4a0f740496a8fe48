//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package telegram

import (
	"net/http"
	"time"
)

const (
	defaultAPIBase     = "https://api.telegram.org"
	defaultPollTimeout = 30 * time.Second
)

// Opts is the configuration for the bot.
type Opts struct {
	apiBase     string
	pollTimeout time.Duration
	httpClient  *http.Client
}

var defaultOpts = Opts{
	apiBase:     defaultAPIBase,
	pollTimeout: defaultPollTimeout,
	httpClient:  &http.Client{},
}

// Opt is the option for the bot.
type Opt func(*Opts)

// WithAPIBase overrides the Bot API base URL. Used in tests.
func WithAPIBase(base string) Opt {
	return func(o *Opts) {
		o.apiBase = base
	}
}

// WithPollTimeout sets the long-poll timeout.
func WithPollTimeout(d time.Duration) Opt {
	return func(o *Opts) {
		if d > 0 {
			o.pollTimeout = d
		}
	}
}

// WithHTTPClient sets the HTTP client used for all Bot API calls.
func WithHTTPClient(c *http.Client) Opt {
	return func(o *Opts) {
		if c != nil {
			o.httpClient = c
		}
	}
}
