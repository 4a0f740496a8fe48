//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package config loads the service configuration from an optional YAML file
// with environment variable overrides. Secrets (bot token, API keys) come
// from the environment only.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Telegram Telegram `yaml:"telegram"`
	Redis    Redis    `yaml:"redis"`
	ASR      ASR      `yaml:"asr"`
	LLM      LLM      `yaml:"llm"`
	Gemini   Gemini   `yaml:"gemini"`
	Quota    Quota    `yaml:"quota"`
	Engine   Engine   `yaml:"engine"`
}

// Telegram configures the bot transport.
type Telegram struct {
	Token       string        `yaml:"-"`
	PollTimeout time.Duration `yaml:"poll_timeout"`
}

// Redis configures session and quota storage. An empty URL selects the
// in-memory backends.
type Redis struct {
	URL string `yaml:"url"`
}

// ASR configures the speech recognition service.
type ASR struct {
	Host    string        `yaml:"host"`
	Timeout time.Duration `yaml:"timeout"`
}

// LLM configures the brief normalization model.
type LLM struct {
	Host      string        `yaml:"host"`
	Model     string        `yaml:"model"`
	MaxTokens int64         `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Gemini configures the image generation model.
type Gemini struct {
	APIKey    string        `yaml:"-"`
	Model     string        `yaml:"model"`
	ImageSize string        `yaml:"image_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Quota configures the free tier.
type Quota struct {
	FreeLimit     int64  `yaml:"free_limit"`
	OwnerID       int64  `yaml:"owner_id"`
	OwnerUsername string `yaml:"owner_username"`
}

// Engine configures workflow behavior.
type Engine struct {
	PhotoThreshold int    `yaml:"photo_threshold"`
	MaxDelivered   int    `yaml:"max_delivered"`
	PoolSize       int    `yaml:"pool_size"`
	ArtifactDir    string `yaml:"artifact_dir"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Telegram: Telegram{PollTimeout: 30 * time.Second},
		ASR:      ASR{Host: "http://localhost:8001", Timeout: 60 * time.Second},
		LLM: LLM{
			Host:      "http://localhost:8000",
			Model:     "models/Qwen3-30B-A3B-Instruct-2507-AWQ-4bit",
			MaxTokens: 2000,
			Timeout:   30 * time.Second,
		},
		Gemini: Gemini{
			Model:     "gemini-3-pro-image-preview",
			ImageSize: "1K",
			Timeout:   120 * time.Second,
		},
		Quota: Quota{FreeLimit: 10},
		Engine: Engine{
			PhotoThreshold: 1,
			MaxDelivered:   3,
			PoolSize:       64,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty), and finally environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.ASR.Host, "ASR_HOST")
	setString(&c.LLM.Host, "VLLM_HOST")
	setString(&c.LLM.Model, "VLLM_MODEL")
	setString(&c.Gemini.Model, "GEMINI_MODEL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Quota.OwnerUsername, "OWNER_USERNAME")
	setString(&c.Engine.ArtifactDir, "ARTIFACT_DIR")
	setInt64(&c.Quota.OwnerID, "OWNER_ID")
	setInt64(&c.Quota.FreeLimit, "FREE_REQUESTS_LIMIT")
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("config: TELEGRAM_BOT_TOKEN is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("config: GEMINI_API_KEY is required")
	}
	return nil
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, env string) {
	v, ok := os.LookupEnv(env)
	if !ok || v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return
	}
	*dst = n
}
