//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package transport defines the narrow contract between the engine and the
// chat transport: inbound events and the outbound reply surface. Message
// delivery, command parsing, and file plumbing belong to implementations.
package transport

import "context"

// EventKind classifies an inbound user event.
type EventKind string

// Inbound event kinds.
const (
	EventCommand EventKind = "command"
	EventText    EventKind = "text"
	EventVoice   EventKind = "voice"
	EventPhoto   EventKind = "photo"
	EventOther   EventKind = "other"
)

// Event is one inbound user event, tagged with the user identity.
type Event struct {
	Kind     EventKind
	UserID   int64
	Username string
	// Command is the command name without the leading slash, lowercased.
	// Set only for EventCommand.
	Command string
	// Args is the remainder of the command line after the command name.
	Args string
	// Text is the message text. Set for EventText.
	Text string
	// FileRef is the transport's opaque file reference. Set for EventVoice
	// and EventPhoto.
	FileRef string
	// VoiceFormat is the audio file extension hint without the leading dot,
	// e.g. "ogg". Set for EventVoice.
	VoiceFormat string
}

// Transport is the outbound surface the engine talks through.
type Transport interface {
	// SendReply sends a plain text reply to the user.
	SendReply(ctx context.Context, userID int64, text string) error
	// SendPhoto sends an image to the user.
	SendPhoto(ctx context.Context, userID int64, image []byte) error
	// FetchFile downloads the payload behind an inbound file reference.
	FetchFile(ctx context.Context, ref string) ([]byte, error)
}

// Handler consumes inbound events. The engine implements this.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event) error
}
