//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package gemini provides the image generator backed by the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-cardgen/generate"
	"trpc.group/trpc-go/trpc-cardgen/log"
)

var _ generate.Generator = (*Generator)(nil)

// Generator calls the Gemini API with the studio system prompt, the product
// photos, and the model-facing instruction, and collects the inline image
// payloads from the response.
type Generator struct {
	client *genai.Client
	opts   Opts
}

// New creates a new Gemini generator.
func New(ctx context.Context, options ...Opt) (*Generator, error) {
	opts := defaultOpts
	for _, option := range options {
		option(&opts)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client failed: %w", err)
	}
	return &Generator{client: client, opts: opts}, nil
}

// Generate produces generated images. Zero images in the response is
// generate.ErrNoImages.
func (g *Generator) Generate(ctx context.Context, photos [][]byte, instruction string) ([][]byte, error) {
	if g.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.timeout)
		defer cancel()
	}

	parts := make([]*genai.Part, 0, len(photos)+1)
	for _, photo := range photos {
		parts = append(parts, genai.NewPartFromBytes(photo, generate.SniffMIME(photo)))
	}
	prompt := fmt.Sprintf("%s\n\nЗапрос пользователя: %s", systemPrompt, instruction)
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig:        &genai.ImageConfig{ImageSize: g.opts.imageSize},
		Tools:              []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	rsp, err := g.client.Models.GenerateContent(ctx, g.opts.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content failed: %w", err)
	}

	var images [][]byte
	for _, candidate := range rsp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				images = append(images, part.InlineData.Data)
			}
			if part.Text != "" {
				log.Debugf("gemini: text response: %s", part.Text)
			}
		}
	}
	if len(images) == 0 {
		return nil, generate.ErrNoImages
	}
	log.Infof("gemini: generated %d image(s)", len(images))
	return images, nil
}
