//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package asr provides the speech-to-text client used to transcribe voice
// briefs.
package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-cardgen/log"
)

var (
	// ErrUnsupportedFormat is returned for audio formats outside the
	// allow-list.
	ErrUnsupportedFormat = errors.New("asr: unsupported audio format")
	// ErrEmptyTranscript is returned when the service recognizes nothing.
	ErrEmptyTranscript = errors.New("asr: empty transcript")
)

// DefaultFormats is the default audio format allow-list.
var DefaultFormats = []string{"wav", "mp3", "ogg", "m4a", "flac", "webm"}

// Transcriber converts recorded speech into text.
type Transcriber interface {
	// Transcribe transcribes the audio payload. format is the file extension
	// without the leading dot.
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}

var _ Transcriber = (*Client)(nil)

// Client calls an HTTP transcription service: multipart POST of the audio
// file to /transcribe, JSON response carrying the text under one of several
// accepted field names.
type Client struct {
	opts       ClientOpts
	httpClient *http.Client
}

// NewClient creates a new ASR client.
func NewClient(options ...ClientOpt) *Client {
	opts := defaultClientOpts
	for _, option := range options {
		option(&opts)
	}
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.timeout},
	}
}

type transcribeResponse struct {
	Text          string `json:"text"`
	Transcript    string `json:"transcript"`
	Transcription string `json:"transcription"`
}

// Transcribe validates the format, uploads the audio, and returns the
// recognized text. An empty recognition result is ErrEmptyTranscript.
func (c *Client) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if !slices.Contains(c.opts.formats, format) {
		return "", fmt.Errorf("%w: %s (supported: %s)",
			ErrUnsupportedFormat, format, strings.Join(c.opts.formats, ", "))
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "voice."+format)
	if err != nil {
		return "", fmt.Errorf("asr: build request failed: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("asr: build request failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("asr: build request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.baseURL+"/transcribe", body)
	if err != nil {
		return "", fmt.Errorf("asr: build request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.Debugf("asr: uploading %d bytes (%s)", len(audio), format)
	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("asr: request failed: %w", err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(rsp.Body, 512))
		return "", fmt.Errorf("asr: unexpected status %d: %s", rsp.StatusCode, payload)
	}

	var parsed transcribeResponse
	if err := json.NewDecoder(rsp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("asr: decode response failed: %w", err)
	}
	transcript := parsed.Text
	if transcript == "" {
		transcript = parsed.Transcript
	}
	if transcript == "" {
		transcript = parsed.Transcription
	}
	if transcript == "" {
		return "", ErrEmptyTranscript
	}
	log.Debugf("asr: transcription successful, %d characters", len(transcript))
	return transcript, nil
}

// Healthy probes the service health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	rsp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warnf("asr: health check failed: %v", err)
		return false
	}
	defer rsp.Body.Close()
	return rsp.StatusCode < http.StatusInternalServerError
}
