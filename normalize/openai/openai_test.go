//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "normalized_brief": "Инфографика для зелёного чая",
  "prompt_for_model": "Professional product photography...",
  "image_type": "infographic",
  "style": "white_background",
  "marketplace": "wildberries",
  "additional_params": {
    "has_infographic": true,
    "product_type": "food",
    "extracted_specs": {"вес": "100 г"},
    "extracted_benefits": ["натуральный состав"]
  }
}`

func TestParseResultBareJSON(t *testing.T) {
	result, err := parseResult(sampleJSON)
	require.NoError(t, err)
	assert.Equal(t, "infographic", result.ImageType)
	assert.Equal(t, "wildberries", result.Marketplace)
	assert.True(t, result.AdditionalParams.HasInfographic)
	assert.Equal(t, "100 г", result.AdditionalParams.ExtractedSpecs["вес"])
	assert.Equal(t, []string{"натуральный состав"}, result.AdditionalParams.ExtractedBenefits)
}

func TestParseResultMarkdownFences(t *testing.T) {
	for _, content := range []string{
		"```json\n" + sampleJSON + "\n```",
		"```\n" + sampleJSON + "\n```",
		"```json\n" + sampleJSON + "\n```\nНадеюсь, это поможет!",
	} {
		result, err := parseResult(content)
		require.NoError(t, err, "content: %q", content)
		assert.Equal(t, "infographic", result.ImageType)
	}
}

func TestParseResultSurroundingProse(t *testing.T) {
	content := "Вот результат анализа:\n" + sampleJSON + "\nГотово."
	result, err := parseResult(content)
	require.NoError(t, err)
	assert.Equal(t, "Инфографика для зелёного чая", result.NormalizedBrief)
}

func TestParseResultNoJSON(t *testing.T) {
	_, err := parseResult("извините, не могу обработать запрос")
	assert.Error(t, err)
}

func TestParseResultMalformedJSON(t *testing.T) {
	_, err := parseResult(`{"image_type": "infographic",`)
	assert.Error(t, err)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "plain", stripFences("plain"))
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := buildUserPrompt("чай зелёный", "Загружено 2 фото(графий) товара")
	assert.Contains(t, prompt, "чай зелёный")
	assert.Contains(t, prompt, "Загружено 2 фото")

	noPhotos := buildUserPrompt("чай зелёный", "")
	assert.NotContains(t, noPhotos, "Контекст фотографий")
}

func TestOptionsDefaults(t *testing.T) {
	n := New()
	assert.Equal(t, defaultOpts.model, n.opts.model)
	assert.Equal(t, defaultOpts.maxTokens, n.opts.maxTokens)
	assert.Equal(t, defaultOpts.timeout, n.opts.timeout)

	custom := New(WithModel("other"), WithMaxTokens(100))
	assert.Equal(t, "other", custom.opts.model)
	assert.Equal(t, int64(100), custom.opts.maxTokens)
}
