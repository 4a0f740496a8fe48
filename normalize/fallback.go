//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package normalize

import (
	"fmt"
	"strings"
)

// optOutPhrases are the phrases meaning "no infographic, photo only".
// Matching is case-insensitive substring search over the raw brief.
var optOutPhrases = []string{
	"без инфографики",
	"только фото",
	"просто фото",
	"без текста",
	"no infographic",
}

// preservation clauses appended whenever the user supplied product photos:
// the generated scene may change, the product itself may not.
const (
	preservePhoto = "Preserve original product exactly as shown in input image. " +
		"Do not modify product shape, color, details, or geometry. " +
		"Product must remain identical to input image. " +
		"Only change background and lighting. "
	preserveInfographic = "Preserve original product exactly as shown in input image. " +
		"Do not modify product shape, color, details, or geometry. " +
		"Product must remain identical to input image. " +
		"Only change background, lighting, and add infographic around product. "
)

// WantsPlainPhoto reports whether the brief contains an explicit opt-out from
// infographic generation.
func WantsPlainPhoto(brief string) bool {
	lower := strings.ToLower(brief)
	for _, phrase := range optOutPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Fallback synthesizes a Result locally when the normalization service is
// unavailable or returns an unusable payload. Brief quality only affects
// output quality, so generation proceeds with template text built around the
// raw brief. photosNote is non-empty when the session holds product photos.
func Fallback(brief, photosNote string) *Result {
	hasPhotos := photosNote != ""

	if WantsPlainPhoto(brief) {
		preserve := ""
		if hasPhotos {
			preserve = preservePhoto
		}
		return &Result{
			NormalizedBrief: brief,
			PromptForModel: fmt.Sprintf(
				"Professional studio product photography: %s. %s"+
					"Softbox studio lighting, white background, centered composition, "+
					"high detail, commercial quality.",
				brief, preserve),
			ImageType:   ImageTypeMainPhoto,
			Style:       StyleWhiteBackground,
			Marketplace: MarketplaceOther,
			AdditionalParams: Params{
				HasInfographic: false,
				ProductType:    "other",
			},
		}
	}

	preserve := ""
	if hasPhotos {
		preserve = preserveInfographic
	}
	return &Result{
		NormalizedBrief: brief,
		PromptForModel: fmt.Sprintf(
			"Professional studio product photography with infographic: %s. %s"+
				"Product centered (70-80%% of frame), infographic elements around "+
				"product or at bottom with product benefits and specifications in "+
				"Russian language. Softbox studio lighting, white background, modern "+
				"typography, high contrast text colors, professional iconography. "+
				"All text in Russian language.",
			brief, preserve),
		ImageType:   ImageTypeInfographic,
		Style:       StyleWhiteBackground,
		Marketplace: MarketplaceOther,
		AdditionalParams: Params{
			HasInfographic: true,
			ProductType:    "other",
			InfographicStructure: InfographicStructure{
				VisualHierarchy: "main_specs_large, benefits_medium, other_specs_small",
			},
		},
	}
}
