//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package normalize defines the brief normalization contract: turning a raw
// user brief into a structured, model-facing generation instruction.
package normalize

import (
	"context"
	"fmt"
	"slices"
)

// Normalizer turns a raw user brief into a structured Result.
type Normalizer interface {
	// Normalize normalizes the raw brief. photosNote is a short textual note
	// about how many product photos were supplied, empty when there are none.
	Normalize(ctx context.Context, brief, photosNote string) (*Result, error)
}

// Image type classifications produced by normalization.
const (
	ImageTypeMainPhoto   = "main_photo"
	ImageTypeInfographic = "infographic"
	ImageTypeLifestyle   = "lifestyle"
	ImageTypeOther       = "other"
)

// Style classifications produced by normalization.
const (
	StyleWhiteBackground = "white_background"
	StyleLifestyle       = "lifestyle"
	StyleInterior        = "interior"
	StyleColorful        = "colorful"
)

// Marketplace classifications produced by normalization.
const (
	MarketplaceWildberries  = "wildberries"
	MarketplaceOzon         = "ozon"
	MarketplaceYandexMarket = "yandex_market"
	MarketplaceAmazon       = "amazon"
	MarketplaceOther        = "other"
)

// InfographicStructure describes the visual hierarchy of an infographic card.
type InfographicStructure struct {
	PrioritySpecs   []string `json:"priority_specs"`
	BenefitsOrder   []string `json:"benefits_order"`
	VisualHierarchy string   `json:"visual_hierarchy"`
}

// Params is the bag of extracted attributes that enriches the generation
// instruction. All fields are optional.
type Params struct {
	IconsCount           int                  `json:"icons_count,omitempty"`
	TextElements         bool                 `json:"text_elements,omitempty"`
	ProductCentered      bool                 `json:"product_centered,omitempty"`
	BackgroundColor      string               `json:"background_color,omitempty"`
	LightingType         string               `json:"lighting_type,omitempty"`
	CameraAngle          string               `json:"camera_angle,omitempty"`
	HasInfographic       bool                 `json:"has_infographic"`
	ProductType          string               `json:"product_type,omitempty"`
	ExtractedSpecs       map[string]string    `json:"extracted_specs,omitempty"`
	ExtractedBenefits    []string             `json:"extracted_benefits,omitempty"`
	InfographicStructure InfographicStructure `json:"infographic_structure,omitempty"`
}

// Result is the structured output of brief normalization.
type Result struct {
	// NormalizedBrief is a human-readable restatement of the request.
	NormalizedBrief string `json:"normalized_brief"`
	// PromptForModel is the model-facing generation instruction.
	PromptForModel string `json:"prompt_for_model"`
	// ImageType is one of the ImageType* constants.
	ImageType string `json:"image_type"`
	// Style is one of the Style* constants.
	Style string `json:"style"`
	// Marketplace is one of the Marketplace* constants.
	Marketplace string `json:"marketplace"`
	// AdditionalParams carries the extracted attribute bag.
	AdditionalParams Params `json:"additional_params"`
}

var (
	imageTypes   = []string{ImageTypeMainPhoto, ImageTypeInfographic, ImageTypeLifestyle, ImageTypeOther}
	styles       = []string{StyleWhiteBackground, StyleLifestyle, StyleInterior, StyleColorful}
	marketplaces = []string{MarketplaceWildberries, MarketplaceOzon, MarketplaceYandexMarket, MarketplaceAmazon, MarketplaceOther}
)

// Validate reports the first classification field holding a value outside
// its enumeration. Call after ApplyDefaults; empty fields are invalid too.
func (r *Result) Validate() error {
	if !slices.Contains(imageTypes, r.ImageType) {
		return fmt.Errorf("normalize: invalid image_type %q", r.ImageType)
	}
	if !slices.Contains(styles, r.Style) {
		return fmt.Errorf("normalize: invalid style %q", r.Style)
	}
	if !slices.Contains(marketplaces, r.Marketplace) {
		return fmt.Errorf("normalize: invalid marketplace %q", r.Marketplace)
	}
	if r.PromptForModel == "" {
		return fmt.Errorf("normalize: empty prompt_for_model")
	}
	return nil
}

// ApplyDefaults fills gaps left by a partially valid normalization response
// so that downstream consumers always see a complete Result. brief is the raw
// user brief used as a last-resort value.
func (r *Result) ApplyDefaults(brief string) {
	if r.NormalizedBrief == "" {
		r.NormalizedBrief = brief
	}
	if r.PromptForModel == "" {
		r.PromptForModel = brief
	}
	if r.ImageType == "" {
		if WantsPlainPhoto(brief) {
			r.ImageType = ImageTypeMainPhoto
		} else {
			r.ImageType = ImageTypeInfographic
			r.AdditionalParams.HasInfographic = true
		}
	}
	if r.Style == "" {
		r.Style = StyleWhiteBackground
	}
	if r.Marketplace == "" {
		r.Marketplace = MarketplaceOther
	}
}
