//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package engine

import "errors"

// Failure classes surfaced by the generation pipeline. Every stage-level
// failure is converted into one of these before it reaches the state
// machine; a raw collaborator error never escapes the engine.
var (
	// ErrTranscriptionFailed covers bad audio format, empty recognition
	// result, or a voice download error. Recoverable: the session returns to
	// waiting-brief with photos retained.
	ErrTranscriptionFailed = errors.New("engine: transcription failed")
	// ErrGenerationFailed covers a generation collaborator error or an empty
	// image batch. Fatal to the attempt: the session returns to idle and the
	// input photos are discarded.
	ErrGenerationFailed = errors.New("engine: generation failed")
	// ErrQuotaExceeded is the normal over-limit decision path, not a fault:
	// the event is not processed and no transition occurs.
	ErrQuotaExceeded = errors.New("engine: quota exceeded")
	// ErrStorage marks a session store failure, fatal to the current event.
	ErrStorage = errors.New("engine: session storage failure")
)
