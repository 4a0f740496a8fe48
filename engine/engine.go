//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package engine implements the session state machine and the quota-gated
// generation pipeline: the core that routes inbound user events by
// conversational state, sequences the transcribe -> normalize -> generate
// call chain, and keeps session and quota data consistent.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-cardgen/artifact"
	"trpc.group/trpc-go/trpc-cardgen/asr"
	"trpc.group/trpc-go/trpc-cardgen/generate"
	"trpc.group/trpc-go/trpc-cardgen/log"
	"trpc.group/trpc-go/trpc-cardgen/normalize"
	"trpc.group/trpc-go/trpc-cardgen/quota"
	"trpc.group/trpc-go/trpc-cardgen/session"
	"trpc.group/trpc-go/trpc-cardgen/transport"
)

var _ transport.Handler = (*Engine)(nil)

// Deps are the collaborators the engine drives. All are required.
type Deps struct {
	Sessions    session.Service
	Ledger      quota.Ledger
	Artifacts   artifact.Store
	Transcriber asr.Transcriber
	Normalizer  normalize.Normalizer
	Generator   generate.Generator
	Transport   transport.Transport
}

// Engine is the conversational workflow engine. It holds no per-session
// state of its own: the session store is the single source of truth and a
// session is re-read on every event.
type Engine struct {
	deps Deps
	gate *quota.Gate
	opts Opts
}

// New creates a new engine.
func New(deps Deps, options ...Opt) (*Engine, error) {
	for _, check := range []struct {
		name    string
		missing bool
	}{
		{"Sessions", deps.Sessions == nil},
		{"Ledger", deps.Ledger == nil},
		{"Artifacts", deps.Artifacts == nil},
		{"Transcriber", deps.Transcriber == nil},
		{"Normalizer", deps.Normalizer == nil},
		{"Generator", deps.Generator == nil},
		{"Transport", deps.Transport == nil},
	} {
		if check.missing {
			return nil, fmt.Errorf("engine: missing dependency %s", check.name)
		}
	}
	opts := defaultOpts
	for _, option := range options {
		option(&opts)
	}
	return &Engine{
		deps: deps,
		gate: &quota.Gate{
			Ledger:  deps.Ledger,
			Limit:   opts.freeLimit,
			OwnerID: opts.ownerID,
		},
		opts: opts,
	}, nil
}

// HandleEvent processes one inbound user event: registers the user, routes
// commands, then dispatches on the current session state. Errors returned
// here are already reflected to the user; callers only log them.
func (e *Engine) HandleEvent(ctx context.Context, ev transport.Event) error {
	if err := e.deps.Ledger.Register(ctx, ev.UserID, ev.Username); err != nil {
		log.Warnf("user %d: register failed: %v", ev.UserID, err)
	}

	// "ген" as bare text is an alias for the /gen command.
	if ev.Kind == transport.EventText && strings.EqualFold(strings.TrimSpace(ev.Text), "ген") {
		ev.Kind = transport.EventCommand
		ev.Command = "gen"
	}
	if ev.Kind == transport.EventCommand {
		return e.handleCommand(ctx, ev)
	}

	sess, err := e.deps.Sessions.Get(ctx, ev.UserID)
	if errors.Is(err, session.ErrNotFound) {
		sess = session.New(ev.UserID)
	} else if err != nil {
		e.reply(ctx, ev.UserID, msgInternalError)
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	state := sess.State
	// A session left in processing (crash mid-pipeline) must never swallow
	// events: treat it as waiting for a brief again.
	if state == session.StateProcessing {
		state = session.StateWaitingBrief
	}

	log.Infof("user %d (@%s) state=%s event=%s", ev.UserID, ev.Username, state, ev.Kind)

	switch state {
	case session.StateIdle:
		e.reply(ctx, ev.UserID, msgIdleHint)
		return nil
	case session.StateWaitingPhotos:
		return e.handleWaitingPhotos(ctx, ev, sess)
	case session.StateWaitingBrief:
		return e.handleBrief(ctx, ev, sess)
	case session.StateShowResult:
		// Only a new /gen is accepted here; it is handled above.
		e.reply(ctx, ev.UserID, msgShowResultHint)
		return nil
	default:
		e.reply(ctx, ev.UserID, msgInternalError)
		return fmt.Errorf("engine: unknown session state %q", sess.State)
	}
}

func (e *Engine) handleCommand(ctx context.Context, ev transport.Event) error {
	switch ev.Command {
	case "start":
		e.reply(ctx, ev.UserID, msgWelcome)
		return nil
	case "gen":
		return e.startGeneration(ctx, ev.UserID)
	case "stats":
		return e.handleStats(ctx, ev)
	case "user":
		return e.handleUserStats(ctx, ev)
	default:
		e.reply(ctx, ev.UserID, msgIdleHint)
		return nil
	}
}

// startGeneration resets the session and enters photo collection. Legal from
// any state.
func (e *Engine) startGeneration(ctx context.Context, userID int64) error {
	_, err := e.deps.Sessions.Update(ctx, userID, func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
	if err != nil {
		e.reply(ctx, userID, msgInternalError)
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	e.reply(ctx, userID, msgGenIntro)
	return nil
}

func (e *Engine) handleWaitingPhotos(ctx context.Context, ev transport.Event, sess *session.Session) error {
	switch ev.Kind {
	case transport.EventPhoto:
		return e.acceptPhoto(ctx, ev)
	case transport.EventText, transport.EventVoice:
		if len(sess.Photos) > 0 {
			// The user moved on to the brief; follow them.
			updated, err := e.deps.Sessions.Update(ctx, ev.UserID, func(s *session.Session) error {
				s.State = session.StateWaitingBrief
				return nil
			})
			if err != nil {
				e.reply(ctx, ev.UserID, msgInternalError)
				return fmt.Errorf("%w: %v", ErrStorage, err)
			}
			return e.handleBrief(ctx, ev, updated)
		}
		e.reply(ctx, ev.UserID, msgSendPhoto)
		return nil
	default:
		if len(sess.Photos) > 0 {
			e.reply(ctx, ev.UserID, msgAlreadyHavePhoto)
		} else {
			e.reply(ctx, ev.UserID, msgSendPhoto)
		}
		return nil
	}
}

func (e *Engine) acceptPhoto(ctx context.Context, ev transport.Event) error {
	data, err := e.deps.Transport.FetchFile(ctx, ev.FileRef)
	if err != nil {
		log.Errorf("user %d: photo download failed: %v", ev.UserID, err)
		e.reply(ctx, ev.UserID, msgPhotoDownloadFailed)
		return nil
	}
	ref, err := e.deps.Artifacts.Save(ctx, &artifact.Artifact{
		Data:     data,
		MimeType: generate.SniffMIME(data),
	}, ".jpg")
	if err != nil {
		log.Errorf("user %d: photo save failed: %v", ev.UserID, err)
		e.reply(ctx, ev.UserID, msgPhotoDownloadFailed)
		return nil
	}

	var have int
	_, err = e.deps.Sessions.Update(ctx, ev.UserID, func(s *session.Session) error {
		s.Photos = append(s.Photos, ref)
		have = len(s.Photos)
		if have >= e.opts.photoThreshold {
			s.State = session.StateWaitingBrief
		}
		return nil
	})
	if err != nil {
		e.deleteArtifact(ctx, ref)
		e.reply(ctx, ev.UserID, msgInternalError)
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if have >= e.opts.photoThreshold {
		e.reply(ctx, ev.UserID, msgPhotoReceived)
	} else {
		e.reply(ctx, ev.UserID, msgMorePhotos(have, e.opts.photoThreshold))
	}
	return nil
}

func (e *Engine) handleBrief(ctx context.Context, ev transport.Event, sess *session.Session) error {
	if len(sess.Photos) == 0 {
		// Should not happen, but never strand the user.
		e.reply(ctx, ev.UserID, msgSendPhoto)
		_, err := e.deps.Sessions.Update(ctx, ev.UserID, func(s *session.Session) error {
			s.State = session.StateWaitingPhotos
			return nil
		})
		return err
	}

	switch ev.Kind {
	case transport.EventVoice, transport.EventText:
	default:
		e.reply(ctx, ev.UserID, msgSendTextOrVoice)
		return nil
	}

	if ev.Kind == transport.EventText && strings.TrimSpace(ev.Text) == "" {
		e.reply(ctx, ev.UserID, msgEmptyBrief)
		return nil
	}

	// Quota gate. The over-limit path is a decision, not a fault: the event
	// is answered and dropped with no state transition.
	allowed, err := e.gate.MayProceed(ctx, ev.UserID)
	if err != nil {
		e.reply(ctx, ev.UserID, msgInternalError)
		return fmt.Errorf("quota check failed: %w", err)
	}
	if !allowed {
		log.Infof("user %d exceeded free limit (%d)", ev.UserID, e.opts.freeLimit)
		e.reply(ctx, ev.UserID, msgLimitExceeded(e.opts.freeLimit, e.opts.ownerUsername))
		return ErrQuotaExceeded
	}

	if ev.Kind == transport.EventVoice {
		return e.handleVoiceBrief(ctx, ev, sess)
	}

	e.reply(ctx, ev.UserID, msgProcessing)
	if err := e.enterProcessing(ctx, ev.UserID); err != nil {
		return err
	}
	return e.runPipeline(ctx, ev.UserID, sess.Photos, strings.TrimSpace(ev.Text))
}

func (e *Engine) handleVoiceBrief(ctx context.Context, ev transport.Event, sess *session.Session) error {
	e.reply(ctx, ev.UserID, msgProcessingVoice)
	if err := e.enterProcessing(ctx, ev.UserID); err != nil {
		return err
	}

	transcript, err := e.transcribeVoice(ctx, ev)
	if err != nil {
		// Recoverable: photos retained, user asked to type instead.
		e.backToBrief(ctx, ev.UserID)
		switch {
		case errors.Is(err, asr.ErrUnsupportedFormat):
			e.reply(ctx, ev.UserID, msgVoiceFormatUnsupported(ev.VoiceFormat))
		case errors.Is(err, asr.ErrEmptyTranscript):
			e.reply(ctx, ev.UserID, msgVoiceNotRecognized)
		default:
			e.reply(ctx, ev.UserID, msgVoiceDownloadFailed)
		}
		return fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	e.reply(ctx, ev.UserID, msgRecognized(transcript))
	return e.runPipeline(ctx, ev.UserID, sess.Photos, transcript)
}

// transcribeVoice downloads the voice message, stages it in the artifact
// store, and transcribes from the stored copy. The artifact is deleted on
// every exit path, success or failure.
func (e *Engine) transcribeVoice(ctx context.Context, ev transport.Event) (string, error) {
	data, err := e.deps.Transport.FetchFile(ctx, ev.FileRef)
	if err != nil {
		return "", fmt.Errorf("voice download failed: %w", err)
	}
	ref, err := e.deps.Artifacts.Save(ctx, &artifact.Artifact{Data: data}, "."+ev.VoiceFormat)
	if err != nil {
		return "", fmt.Errorf("voice save failed: %w", err)
	}
	defer e.deleteArtifact(ctx, ref)

	audio, err := e.deps.Artifacts.Load(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("voice read failed: %w", err)
	}
	return e.deps.Transcriber.Transcribe(ctx, audio, ev.VoiceFormat)
}

func (e *Engine) enterProcessing(ctx context.Context, userID int64) error {
	_, err := e.deps.Sessions.Update(ctx, userID, func(s *session.Session) error {
		s.State = session.StateProcessing
		return nil
	})
	if err != nil {
		// Nothing was consumed yet: photos and state survive in the store.
		e.reply(ctx, userID, msgBriefPreservedAfterError)
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// backToBrief best-effort returns the session to waiting-brief, preserving
// photos. If the session cannot be written, the next event still recovers it
// via the processing-as-waiting-brief rule.
func (e *Engine) backToBrief(ctx context.Context, userID int64) {
	_, err := e.deps.Sessions.Update(ctx, userID, func(s *session.Session) error {
		s.State = session.StateWaitingBrief
		return nil
	})
	if err != nil {
		log.Errorf("user %d: restore waiting-brief failed: %v", userID, err)
	}
}

func (e *Engine) handleStats(ctx context.Context, ev transport.Event) error {
	if ev.UserID != e.opts.ownerID {
		log.Warnf("user %d tried to access /stats", ev.UserID)
		e.reply(ctx, ev.UserID, msgOwnerOnly)
		return nil
	}
	stats, err := e.deps.Ledger.Stats(ctx)
	if err != nil {
		e.reply(ctx, ev.UserID, msgInternalError)
		return fmt.Errorf("get stats failed: %w", err)
	}
	top, err := e.deps.Ledger.Top(ctx, 10)
	if err != nil {
		e.reply(ctx, ev.UserID, msgInternalError)
		return fmt.Errorf("get top users failed: %w", err)
	}
	e.reply(ctx, ev.UserID, formatStats(stats, top))
	return nil
}

func (e *Engine) handleUserStats(ctx context.Context, ev transport.Event) error {
	if ev.UserID != e.opts.ownerID {
		e.reply(ctx, ev.UserID, msgOwnerOnly)
		return nil
	}
	target, err := strconv.ParseInt(strings.TrimSpace(ev.Args), 10, 64)
	if err != nil {
		e.reply(ctx, ev.UserID, "📊 Использование: /user <user_id>")
		return nil
	}
	rec, err := e.deps.Ledger.Meta(ctx, target)
	if err != nil {
		e.reply(ctx, ev.UserID, msgInternalError)
		return fmt.Errorf("get user meta failed: %w", err)
	}
	if rec == nil {
		e.reply(ctx, ev.UserID, fmt.Sprintf("❌ Пользователь %d не найден в базе.", target))
		return nil
	}
	e.reply(ctx, ev.UserID, formatUserStats(rec))
	return nil
}

// reply is best-effort: a failed delivery is logged, never propagated, so a
// transport hiccup cannot corrupt a state transition.
func (e *Engine) reply(ctx context.Context, userID int64, text string) {
	if err := e.deps.Transport.SendReply(ctx, userID, text); err != nil {
		log.Errorf("user %d: send reply failed: %v", userID, err)
	}
}

func (e *Engine) deleteArtifact(ctx context.Context, ref string) {
	if err := e.deps.Artifacts.Delete(ctx, ref); err != nil {
		log.Warnf("delete artifact %s failed: %v", ref, err)
	}
}
