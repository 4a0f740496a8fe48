//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// cardgen is the product card generation bot: it collects product photos and
// a brief over Telegram, normalizes the brief with an LLM, and renders
// marketplace-ready images with Gemini.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	artifactlocal "trpc.group/trpc-go/trpc-cardgen/artifact/local"
	"trpc.group/trpc-go/trpc-cardgen/asr"
	"trpc.group/trpc-go/trpc-cardgen/config"
	"trpc.group/trpc-go/trpc-cardgen/engine"
	"trpc.group/trpc-go/trpc-cardgen/generate/gemini"
	"trpc.group/trpc-go/trpc-cardgen/log"
	normopenai "trpc.group/trpc-go/trpc-cardgen/normalize/openai"
	"trpc.group/trpc-go/trpc-cardgen/quota"
	quotainmemory "trpc.group/trpc-go/trpc-cardgen/quota/inmemory"
	quotaredis "trpc.group/trpc-go/trpc-cardgen/quota/redis"
	"trpc.group/trpc-go/trpc-cardgen/session"
	sessinmemory "trpc.group/trpc-go/trpc-cardgen/session/inmemory"
	sessredis "trpc.group/trpc-go/trpc-cardgen/session/redis"
	"trpc.group/trpc-go/trpc-cardgen/transport/telegram"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// .env is optional; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions, ledger := buildStores(cfg)
	defer sessions.Close()
	defer func() {
		if err := ledger.Close(); err != nil {
			log.Warnf("close ledger: %v", err)
		}
	}()

	artifacts, err := artifactlocal.NewStore(cfg.Engine.ArtifactDir)
	if err != nil {
		log.Fatalf("init artifact store: %v", err)
	}

	generator, err := gemini.New(ctx,
		gemini.WithAPIKey(cfg.Gemini.APIKey),
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithImageSize(cfg.Gemini.ImageSize),
		gemini.WithTimeout(cfg.Gemini.Timeout),
	)
	if err != nil {
		log.Fatalf("init gemini: %v", err)
	}

	bot, err := telegram.New(cfg.Telegram.Token,
		telegram.WithPollTimeout(cfg.Telegram.PollTimeout),
	)
	if err != nil {
		log.Fatalf("init telegram: %v", err)
	}

	transcriber := asr.NewClient(
		asr.WithBaseURL(cfg.ASR.Host),
		asr.WithTimeout(cfg.ASR.Timeout),
	)
	if !transcriber.Healthy(ctx) {
		log.Warnf("asr service at %s is not responding, voice briefs will fail", cfg.ASR.Host)
	}

	eng, err := engine.New(engine.Deps{
		Sessions:    sessions,
		Ledger:      ledger,
		Artifacts:   artifacts,
		Transcriber: transcriber,
		Normalizer: normopenai.New(
			normopenai.WithBaseURL(cfg.LLM.Host),
			normopenai.WithModel(cfg.LLM.Model),
			normopenai.WithMaxTokens(cfg.LLM.MaxTokens),
			normopenai.WithTimeout(cfg.LLM.Timeout),
		),
		Generator: generator,
		Transport: bot,
	},
		engine.WithFreeLimit(cfg.Quota.FreeLimit),
		engine.WithOwner(cfg.Quota.OwnerID, cfg.Quota.OwnerUsername),
		engine.WithPhotoThreshold(cfg.Engine.PhotoThreshold),
		engine.WithMaxDelivered(cfg.Engine.MaxDelivered),
	)
	if err != nil {
		log.Fatalf("init engine: %v", err)
	}

	dispatcher, err := engine.NewDispatcher(eng, cfg.Engine.PoolSize)
	if err != nil {
		log.Fatalf("init dispatcher: %v", err)
	}
	defer dispatcher.Release()

	log.Infof("cardgen started, free_limit=%d owner=%d", cfg.Quota.FreeLimit, cfg.Quota.OwnerID)
	if err := bot.Run(ctx, dispatcher.Dispatch); err != nil && ctx.Err() == nil {
		log.Fatalf("poll loop: %v", err)
	}
	log.Infof("cardgen stopped")
}

// buildStores selects the Redis backends when a URL is configured and falls
// back to the in-memory ones otherwise.
func buildStores(cfg *config.Config) (session.Service, quota.Ledger) {
	if cfg.Redis.URL == "" {
		log.Warnf("REDIS_URL not set, using in-memory session and quota stores")
		return sessinmemory.NewService(), quotainmemory.NewLedger()
	}
	sessions, err := sessredis.NewService(sessredis.WithRedisClientURL(cfg.Redis.URL))
	if err != nil {
		log.Fatalf("init redis sessions: %v", err)
	}
	ledger, err := quotaredis.NewLedger(quotaredis.WithRedisClientURL(cfg.Redis.URL))
	if err != nil {
		log.Fatalf("init redis quota ledger: %v", err)
	}
	return sessions, ledger
}
