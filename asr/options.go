//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package asr

import (
	"slices"
	"time"
)

var defaultClientOpts = ClientOpts{
	baseURL: "http://localhost:8001",
	timeout: 60 * time.Second,
	formats: DefaultFormats,
}

// ClientOpts is the options for the ASR client.
type ClientOpts struct {
	baseURL string
	timeout time.Duration
	formats []string
}

// ClientOpt is the option for the ASR client.
type ClientOpt func(*ClientOpts)

// WithBaseURL sets the service base URL, e.g. http://asr:8001.
func WithBaseURL(url string) ClientOpt {
	return func(opts *ClientOpts) {
		opts.baseURL = url
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) ClientOpt {
	return func(opts *ClientOpts) {
		if timeout > 0 {
			opts.timeout = timeout
		}
	}
}

// WithFormats sets the audio format allow-list.
func WithFormats(formats []string) ClientOpt {
	return func(opts *ClientOpts) {
		if len(formats) > 0 {
			opts.formats = slices.Clone(formats)
		}
	}
}
