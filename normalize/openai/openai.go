//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package openai provides the brief normalizer backed by an OpenAI-compatible
// chat completion endpoint (vLLM in the reference deployment).
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"

	"trpc.group/trpc-go/trpc-cardgen/log"
	"trpc.group/trpc-go/trpc-cardgen/normalize"
)

var _ normalize.Normalizer = (*Normalizer)(nil)

// ErrEmptyResponse is returned when the model produces no content.
var ErrEmptyResponse = errors.New("normalize: empty model response")

// Normalizer calls the chat completion endpoint with the art-director
// contract and parses the structured JSON answer.
type Normalizer struct {
	client openai.Client
	opts   Opts
}

// New creates a new normalizer.
func New(options ...Opt) *Normalizer {
	opts := defaultOpts
	for _, option := range options {
		option(&opts)
	}

	var clientOpts []openaiopt.RequestOption
	if opts.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(opts.apiKey))
	}
	if opts.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(opts.baseURL))
	}
	return &Normalizer{
		client: openai.NewClient(clientOpts...),
		opts:   opts,
	}
}

// Normalize runs the brief through the model and returns the validated
// Result. Any failure is returned to the caller, which applies the local
// fallback; this method never synthesizes results itself.
func (n *Normalizer) Normalize(ctx context.Context, brief, photosNote string) (*normalize.Result, error) {
	if n.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.opts.timeout)
		defer cancel()
	}

	completion, err := n.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: n.opts.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(brief, photosNote)),
		},
		MaxTokens:   openai.Int(n.opts.maxTokens),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("normalize: completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	result, err := parseResult(content)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	result.ApplyDefaults(brief)
	if err := result.Validate(); err != nil {
		return nil, err
	}
	log.Infof("brief normalized: image_type=%s style=%s marketplace=%s",
		result.ImageType, result.Style, result.Marketplace)
	return result, nil
}

// parseResult extracts the JSON object from the model answer. Models wrap
// JSON in markdown fences or surround it with prose, so both are tolerated.
func parseResult(content string) (*normalize.Result, error) {
	candidate := stripFences(content)
	result := &normalize.Result{}
	if err := json.Unmarshal([]byte(candidate), result); err == nil {
		return result, nil
	}
	// last resort: widest brace-delimited substring
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(candidate[start:end+1]), result); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}
	return result, nil
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	var body []string
	inside := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inside {
				break
			}
			inside = true
			continue
		}
		if inside {
			body = append(body, line)
		}
	}
	return strings.Join(body, "\n")
}

func buildUserPrompt(brief, photosNote string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Запрос пользователя:\n%s\n", brief)
	if photosNote != "" {
		fmt.Fprintf(&b, "\nКонтекст фотографий: %s\n", photosNote)
	}
	b.WriteString(userPromptTail)
	return b.String()
}
