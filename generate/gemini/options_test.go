//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package gemini

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	opts := defaultOpts
	for _, option := range []Opt{
		WithAPIKey("key"),
		WithModel("custom-model"),
		WithImageSize("2K"),
		WithTimeout(10 * time.Second),
	} {
		option(&opts)
	}
	assert.Equal(t, "key", opts.apiKey)
	assert.Equal(t, "custom-model", opts.model)
	assert.Equal(t, "2K", opts.imageSize)
	assert.Equal(t, 10*time.Second, opts.timeout)
}

func TestOptionGuards(t *testing.T) {
	opts := defaultOpts
	WithTimeout(0)(&opts)
	WithImageSize("")(&opts)
	assert.Equal(t, defaultOpts.timeout, opts.timeout)
	assert.Equal(t, defaultOpts.imageSize, opts.imageSize)
}
