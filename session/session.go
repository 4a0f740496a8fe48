//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package session provides the per-user conversational session model and the
// store contract that keeps it durable.
package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"trpc.group/trpc-go/trpc-cardgen/normalize"
)

var (
	// ErrNotFound is returned when no session exists for a user.
	ErrNotFound = errors.New("session: not found")
	// ErrConflict is returned when an atomic update loses the write race more
	// times than the store is willing to retry.
	ErrConflict = errors.New("session: concurrent modification")
)

// State is the conversational state of a session.
type State string

// Session states. A session walks Idle -> WaitingPhotos -> WaitingBrief ->
// Processing -> ShowResult, with recovery edges from Processing back to
// WaitingBrief or Idle.
const (
	StateIdle          State = "idle"
	StateWaitingPhotos State = "waiting_photos"
	StateWaitingBrief  State = "waiting_brief"
	StateProcessing    State = "processing"
	StateShowResult    State = "show_result"
)

// Valid reports whether s is one of the enumerated states.
func (s State) Valid() bool {
	switch s {
	case StateIdle, StateWaitingPhotos, StateWaitingBrief, StateProcessing, StateShowResult:
		return true
	}
	return false
}

// Session is the per-user conversational state plus accumulated generation
// inputs. The store holds the canonical copy; callers work on a transient
// copy during one event and write it back atomically.
type Session struct {
	UserID int64 `json:"userID"`
	State  State `json:"state"`
	// Photos holds artifact references in insertion order. Order matters only
	// for display; all photos are submitted together to generation.
	Photos []string `json:"photos,omitempty"`
	// RawBrief is the last brief obtained from the user, typed or transcribed.
	RawBrief string `json:"rawBrief,omitempty"`
	// NormalizedBrief is present only after normalization succeeds within the
	// current generation attempt.
	NormalizedBrief *normalize.Result `json:"normalizedBrief,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// New returns a fresh idle session for the user.
func New(userID int64) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset clears accumulated generation data and moves the session to
// WaitingPhotos, the entry point of a new generation cycle.
func (s *Session) Reset() {
	s.State = StateWaitingPhotos
	s.Photos = nil
	s.RawBrief = ""
	s.NormalizedBrief = nil
}

// Clone returns a copy of the session with its own photo slice.
func (s *Session) Clone() *Session {
	copied := *s
	copied.Photos = slices.Clone(s.Photos)
	if s.NormalizedBrief != nil {
		nb := *s.NormalizedBrief
		copied.NormalizedBrief = &nb
	}
	return &copied
}

// UpdateFunc mutates a session inside an atomic read-modify-write. Returning
// an error aborts the update without writing.
type UpdateFunc func(*Session) error

// Service is the session store contract. Implementations must make Update an
// atomic per-user read-modify-write so racing events never lose writes.
type Service interface {
	// Get returns the session for the user, or ErrNotFound.
	Get(ctx context.Context, userID int64) (*Session, error)
	// Put overwrites the stored session unconditionally.
	Put(ctx context.Context, sess *Session) error
	// Update applies fn to the current session (a fresh one if none is
	// stored) and persists the result atomically. It returns the session as
	// written.
	Update(ctx context.Context, userID int64, fn UpdateFunc) (*Session, error)
	// Users enumerates user IDs with a stored session, for admin tooling.
	Users(ctx context.Context) ([]int64, error)
	// Close releases store resources.
	Close() error
}
