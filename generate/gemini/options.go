//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package gemini

import "time"

var defaultOpts = Opts{
	model:     "gemini-3-pro-image-preview",
	imageSize: "1K",
	timeout:   120 * time.Second,
}

// Opts is the options for the Gemini generator.
type Opts struct {
	apiKey    string
	model     string
	imageSize string
	timeout   time.Duration
}

// Opt is the option for the Gemini generator.
type Opt func(*Opts)

// WithAPIKey sets the Gemini API key.
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

// WithImageSize sets the generated image size, e.g. "1K".
func WithImageSize(size string) Opt {
	return func(opts *Opts) {
		if size != "" {
			opts.imageSize = size
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
