//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trpc.group/trpc-go/trpc-cardgen/normalize"
)

func TestStateValid(t *testing.T) {
	for _, s := range []State{StateIdle, StateWaitingPhotos, StateWaitingBrief, StateProcessing, StateShowResult} {
		assert.True(t, s.Valid(), "state %q", s)
	}
	assert.False(t, State("").Valid())
	assert.False(t, State("sleeping").Valid())
}

func TestNewStartsIdle(t *testing.T) {
	sess := New(7)
	assert.Equal(t, int64(7), sess.UserID)
	assert.Equal(t, StateIdle, sess.State)
	assert.False(t, sess.CreatedAt.IsZero())
}

func TestResetClearsGenerationData(t *testing.T) {
	sess := New(7)
	sess.State = StateShowResult
	sess.Photos = []string{"a"}
	sess.RawBrief = "бриф"
	sess.NormalizedBrief = &normalize.Result{PromptForModel: "p"}

	sess.Reset()

	assert.Equal(t, StateWaitingPhotos, sess.State)
	assert.Empty(t, sess.Photos)
	assert.Empty(t, sess.RawBrief)
	assert.Nil(t, sess.NormalizedBrief)
	assert.Equal(t, int64(7), sess.UserID)
}

func TestCloneIsIndependent(t *testing.T) {
	sess := New(7)
	sess.Photos = []string{"a", "b"}
	sess.NormalizedBrief = &normalize.Result{PromptForModel: "p"}

	clone := sess.Clone()
	clone.Photos[0] = "mutated"
	clone.NormalizedBrief.PromptForModel = "changed"

	assert.Equal(t, "a", sess.Photos[0])
	assert.Equal(t, "p", sess.NormalizedBrief.PromptForModel)
}
