//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-cardgen/artifact"
)

func TestSaveLoadDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Save(ctx, &artifact.Artifact{
		Data:     []byte("payload"),
		MimeType: "image/jpeg",
	}, ".jpg")
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	data, err := store.Load(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Load(ctx, ref)
	assert.Error(t, err)
}

func TestDeleteUnknownRefIsNotAnError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Delete(context.Background(), "no-such-ref.jpg"))
}

func TestSaveGeneratesDistinctRefs(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	a, err := store.Save(ctx, &artifact.Artifact{Data: []byte("one")}, ".png")
	require.NoError(t, err)
	b, err := store.Save(ctx, &artifact.Artifact{Data: []byte("two")}, ".png")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
