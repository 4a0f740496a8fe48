//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package local provides a temp-directory backed artifact store. References
// are absolute file paths inside the store's root.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-cardgen/artifact"
)

var _ artifact.Store = (*Store)(nil)

// Store keeps artifacts as files under a root directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir, defaulting to the system temp
// directory. The directory is created if missing.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "cardgen")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir failed: %w", err)
	}
	return &Store{root: dir}, nil
}

// Save writes the artifact to a uniquely named file and returns its path.
func (s *Store) Save(_ context.Context, a *artifact.Artifact, ext string) (string, error) {
	name := a.Name
	if name == "" {
		name = uuid.New().String()
	}
	if ext != "" && !strings.HasSuffix(name, ext) {
		name += ext
	}
	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, a.Data, 0o600); err != nil {
		return "", fmt.Errorf("write artifact failed: %w", err)
	}
	return path, nil
}

// Load reads the artifact bytes back.
func (s *Store) Load(_ context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("read artifact failed: %w", err)
	}
	return data, nil
}

// Delete removes the artifact file. A missing file is not an error.
func (s *Store) Delete(_ context.Context, ref string) error {
	err := os.Remove(ref)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete artifact failed: %w", err)
	}
	return nil
}
