//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package engine

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-cardgen/artifact"
	"trpc.group/trpc-go/trpc-cardgen/generate"
	"trpc.group/trpc-go/trpc-cardgen/log"
	"trpc.group/trpc-go/trpc-cardgen/normalize"
	"trpc.group/trpc-go/trpc-cardgen/session"
)

// runPipeline drives one generation request end to end: normalize the brief,
// load the stored photos, call the image model, deliver the results, then
// settle state and quota. The session is already in processing and quota
// admission has already passed when this runs.
//
// Failure classes map to distinct exits:
//   - normalization failure is absorbed by the deterministic fallback;
//   - photo-read, generation and zero-delivery failures are fatal: the
//     session returns to idle and the stored photos are discarded;
//   - a quota charge failure after delivery is logged but never shown, the
//     user already has their images.
func (e *Engine) runPipeline(ctx context.Context, userID int64, photoRefs []string, brief string) error {
	note := photosNote(len(photoRefs))

	result, err := e.deps.Normalizer.Normalize(ctx, brief, note)
	if err != nil {
		log.Warnf("user %d: brief normalization failed, using fallback: %v", userID, err)
		result = normalize.Fallback(brief, note)
	}

	if err := e.persistBrief(ctx, userID, brief, result); err != nil {
		// The briefs are advisory; generation proceeds from locals.
		log.Errorf("user %d: persist brief failed: %v", userID, err)
	}

	photos, err := e.loadPhotos(ctx, photoRefs)
	if err != nil {
		e.failFatal(ctx, userID, photoRefs, err.Error())
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	e.reply(ctx, userID, msgGenerating)
	log.Infof("user %d: generating, photos=%d prompt_len=%d", userID, len(photos), len(result.PromptForModel))

	images, err := e.deps.Generator.Generate(ctx, photos, result.PromptForModel)
	if err != nil {
		log.Errorf("user %d: generation failed: %v", userID, err)
		e.failFatal(ctx, userID, photoRefs, err.Error())
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	delivered := e.deliver(ctx, userID, images)
	if delivered == 0 {
		e.failFatal(ctx, userID, photoRefs, "ни одно изображение не доставлено")
		return fmt.Errorf("%w: no image could be delivered", ErrGenerationFailed)
	}

	e.settle(ctx, userID, photoRefs)
	return nil
}

func (e *Engine) persistBrief(ctx context.Context, userID int64, brief string, result *normalize.Result) error {
	_, err := e.deps.Sessions.Update(ctx, userID, func(s *session.Session) error {
		s.RawBrief = brief
		s.NormalizedBrief = result
		return nil
	})
	return err
}

func (e *Engine) loadPhotos(ctx context.Context, refs []string) ([][]byte, error) {
	photos := make([][]byte, 0, len(refs))
	for _, ref := range refs {
		data, err := e.deps.Artifacts.Load(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("load photo %s failed: %w", ref, err)
		}
		photos = append(photos, data)
	}
	return photos, nil
}

// deliver sends up to maxDelivered images and returns how many reached the
// user. Each image is stored, sent, and removed independently, so one bad
// image never blocks the rest.
func (e *Engine) deliver(ctx context.Context, userID int64, images [][]byte) int {
	if len(images) > e.opts.maxDelivered {
		images = images[:e.opts.maxDelivered]
	}
	delivered := 0
	for i, img := range images {
		ref, err := e.deps.Artifacts.Save(ctx, &artifact.Artifact{
			Data:     img,
			MimeType: generate.SniffMIME(img),
		}, ".png")
		if err != nil {
			log.Errorf("user %d: save result %d failed: %v", userID, i, err)
			continue
		}
		if err := e.deps.Transport.SendPhoto(ctx, userID, img); err != nil {
			log.Errorf("user %d: send result %d failed: %v", userID, i, err)
		} else {
			delivered++
		}
		e.deleteArtifact(ctx, ref)
	}
	return delivered
}

// settle finishes a successful request: discard the input photo artifacts,
// move the session to show-result, and charge the quota. All steps are
// best-effort at this point, the user already received their images. The
// photo refs stay in the session through show-result; the next /gen clears
// them via Reset.
func (e *Engine) settle(ctx context.Context, userID int64, photoRefs []string) {
	for _, ref := range photoRefs {
		e.deleteArtifact(ctx, ref)
	}

	_, err := e.deps.Sessions.Update(ctx, userID, func(s *session.Session) error {
		s.State = session.StateShowResult
		return nil
	})
	if err != nil {
		log.Errorf("user %d: settle session failed: %v", userID, err)
	}

	remaining, err := e.gate.Charge(ctx, userID)
	if err != nil {
		log.Errorf("user %d: quota charge failed: %v", userID, err)
		e.reply(ctx, userID, msgSuccessPlain)
		return
	}
	e.reply(ctx, userID, msgSuccess(remaining, e.opts.freeLimit, e.opts.ownerUsername))
}

// failFatal aborts the request: photos are discarded and the session falls
// back to idle so the next /gen starts clean. Quota is never charged here.
// The owner gets an alert with the cause.
func (e *Engine) failFatal(ctx context.Context, userID int64, photoRefs []string, cause string) {
	for _, ref := range photoRefs {
		e.deleteArtifact(ctx, ref)
	}
	_, err := e.deps.Sessions.Update(ctx, userID, func(s *session.Session) error {
		s.Photos = nil
		s.RawBrief = ""
		s.NormalizedBrief = nil
		s.State = session.StateIdle
		return nil
	})
	if err != nil {
		log.Errorf("user %d: reset to idle failed: %v", userID, err)
	}
	e.reply(ctx, userID, msgGenerationFailed)
	if e.opts.ownerID != 0 && userID != e.opts.ownerID {
		e.reply(ctx, e.opts.ownerID, msgOwnerAlert(userID, cause))
	}
}
