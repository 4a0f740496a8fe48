//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package generate defines the image generation contract.
package generate

import (
	"bytes"
	"context"
	"errors"
)

// ErrNoImages is returned when the generation service produces zero images.
var ErrNoImages = errors.New("generate: no images produced")

// Generator produces 1..n generated images from the supplied product photos
// and a model-facing instruction.
type Generator interface {
	Generate(ctx context.Context, photos [][]byte, instruction string) ([][]byte, error)
}

// SniffMIME detects the image MIME type from magic bytes, defaulting to
// image/jpeg.
func SniffMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xd8}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("GIF")):
		return "image/gif"
	case len(data) > 11 && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
