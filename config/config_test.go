//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60*time.Second, cfg.ASR.Timeout)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, int64(2000), cfg.LLM.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "1K", cfg.Gemini.ImageSize)
	assert.Equal(t, int64(10), cfg.Quota.FreeLimit)
	assert.Equal(t, 1, cfg.Engine.PhotoThreshold)
	assert.Equal(t, 3, cfg.Engine.MaxDelivered)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
redis:
  url: redis://localhost:6379/1
llm:
  model: another-model
  timeout: 45s
quota:
  free_limit: 25
  owner_id: 99
engine:
  photo_threshold: 2
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
	assert.Equal(t, "another-model", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, int64(25), cfg.Quota.FreeLimit)
	assert.Equal(t, int64(99), cfg.Quota.OwnerID)
	assert.Equal(t, 2, cfg.Engine.PhotoThreshold)
	// untouched sections keep defaults
	assert.Equal(t, int64(2000), cfg.LLM.MaxTokens)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-from-env")
	t.Setenv("GEMINI_API_KEY", "key-from-env")
	t.Setenv("REDIS_URL", "redis://envhost:6379")
	t.Setenv("FREE_REQUESTS_LIMIT", "5")
	t.Setenv("OWNER_ID", "8347160745")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "token-from-env", cfg.Telegram.Token)
	assert.Equal(t, "key-from-env", cfg.Gemini.APIKey)
	assert.Equal(t, "redis://envhost:6379", cfg.Redis.URL)
	assert.Equal(t, int64(5), cfg.Quota.FreeLimit)
	assert.Equal(t, int64(8347160745), cfg.Quota.OwnerID)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestEnvWinsOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redis:\n  url: redis://file:6379\n"), 0o600))
	t.Setenv("REDIS_URL", "redis://env:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://env:6379", cfg.Redis.URL)
}

func TestValidateMissingSecrets(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	cfg.Telegram.Token = "t"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	cfg.Gemini.APIKey = "k"
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/no/such/config.yaml")
	assert.Error(t, err)
}

func TestInvalidEnvIntIgnored(t *testing.T) {
	t.Setenv("FREE_REQUESTS_LIMIT", "not-a-number")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(10), cfg.Quota.FreeLimit)
}
