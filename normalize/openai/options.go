//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package openai

import "time"

var defaultOpts = Opts{
	model:     "models/Qwen3-30B-A3B-Instruct-2507-AWQ-4bit",
	apiKey:    "not-needed", // vLLM does not require a key
	maxTokens: 2000,
	timeout:   30 * time.Second,
}

// Opts is the options for the normalizer.
type Opts struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int64
	timeout   time.Duration
}

// Opt is the option for the normalizer.
type Opt func(*Opts)

// WithBaseURL sets the OpenAI-compatible endpoint base URL.
func WithBaseURL(url string) Opt {
	return func(opts *Opts) {
		opts.baseURL = url
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Opt {
	return func(opts *Opts) {
		opts.apiKey = key
	}
}

// WithModel sets the model name.
func WithModel(model string) Opt {
	return func(opts *Opts) {
		opts.model = model
	}
}

// WithMaxTokens caps the completion size.
func WithMaxTokens(n int64) Opt {
	return func(opts *Opts) {
		if n > 0 {
			opts.maxTokens = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Opt {
	return func(opts *Opts) {
		if timeout > 0 {
			opts.timeout = timeout
		}
	}
}
