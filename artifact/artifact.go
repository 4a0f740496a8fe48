//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package artifact provides the definition and store for transient content
// artifacts: product photos, voice clips, and generated images.
package artifact

import "context"

// Artifact represents a transient content artifact such as an image or an
// audio clip.
type Artifact struct {
	// Data contains the raw bytes (required).
	Data []byte
	// MimeType is the IANA standard MIME type of the source data.
	MimeType string
	// Name is an optional display name of the artifact.
	Name string
}

// Store holds transient artifacts between pipeline stages. Artifacts are
// referenced by the opaque string returned from Save and must be deleted
// explicitly once consumed.
type Store interface {
	// Save stores the artifact and returns its reference. ext is the file
	// extension to preserve, including the leading dot, and may be empty.
	Save(ctx context.Context, a *Artifact, ext string) (ref string, err error)
	// Load returns the artifact bytes for the reference.
	Load(ctx context.Context, ref string) ([]byte, error)
	// Delete removes the artifact. Deleting an unknown reference is not an
	// error.
	Delete(ctx context.Context, ref string) error
}
