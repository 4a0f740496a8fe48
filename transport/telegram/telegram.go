//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// Package telegram implements the chat transport over the Telegram Bot API
// with long polling.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-cardgen/log"
	"trpc.group/trpc-go/trpc-cardgen/transport"
)

var _ transport.Transport = (*Bot)(nil)

// Bot is a long-polling Telegram Bot API client.
type Bot struct {
	token  string
	opts   Opts
	offset int64
}

// New creates a bot for the given token.
func New(token string, options ...Opt) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: empty bot token")
	}
	opts := defaultOpts
	for _, option := range options {
		option(&opts)
	}
	return &Bot{token: token, opts: opts}, nil
}

// Run polls for updates until ctx is canceled, forwarding each event through
// dispatch. Poll errors are logged and retried.
func (b *Bot) Run(ctx context.Context, dispatch func(context.Context, transport.Event) error) error {
	log.Infof("telegram: polling started, timeout=%s", b.opts.pollTimeout)
	for {
		updates, err := b.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Errorf("telegram: get updates failed: %v", err)
			continue
		}
		for _, upd := range updates {
			if upd.UpdateID >= b.offset {
				b.offset = upd.UpdateID + 1
			}
			ev, ok := toEvent(upd)
			if !ok {
				continue
			}
			if err := dispatch(ctx, ev); err != nil {
				log.Errorf("telegram: dispatch update %d failed: %v", upd.UpdateID, err)
			}
		}
	}
}

// SendReply sends a plain text message.
func (b *Bot) SendReply(ctx context.Context, userID int64, text string) error {
	_, err := b.call(ctx, "sendMessage", map[string]any{
		"chat_id": userID,
		"text":    text,
	})
	return err
}

// SendPhoto uploads and sends an image.
func (b *Bot) SendPhoto(ctx context.Context, userID int64, image []byte) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("chat_id", strconv.FormatInt(userID, 10)); err != nil {
		return err
	}
	part, err := w.CreateFormFile("photo", "result.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(image); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.methodURL("sendPhoto"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := b.opts.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: sendPhoto: %w", err)
	}
	defer resp.Body.Close()
	return decodeAPIError(resp)
}

// FetchFile resolves a file_id and downloads its payload.
func (b *Bot) FetchFile(ctx context.Context, ref string) ([]byte, error) {
	raw, err := b.call(ctx, "getFile", map[string]any{"file_id": ref})
	if err != nil {
		return nil, err
	}
	var file struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("telegram: decode getFile: %w", err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("telegram: getFile returned no path for %s", ref)
	}

	dl := fmt.Sprintf("%s/file/bot%s/%s", b.opts.apiBase, b.token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dl, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.opts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram: download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) getUpdates(ctx context.Context) ([]update, error) {
	// Long poll: the request hangs server side up to pollTimeout.
	pollCtx, cancel := context.WithTimeout(ctx, b.opts.pollTimeout*2)
	defer cancel()
	raw, err := b.call(pollCtx, "getUpdates", map[string]any{
		"offset":          b.offset,
		"timeout":         int(b.opts.pollTimeout.Seconds()),
		"allowed_updates": []string{"message"},
	})
	if err != nil {
		return nil, err
	}
	var updates []update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("telegram: decode updates: %w", err)
	}
	return updates, nil
}

// call invokes one Bot API method with a JSON body and returns the raw
// result payload.
func (b *Bot) call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := b.opts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("telegram: %s: decode response: %w", method, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("telegram: %s: %s", method, apiResp.Description)
	}
	return apiResp.Result, nil
}

func (b *Bot) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", b.opts.apiBase, url.PathEscape(b.token), method)
}

func decodeAPIError(resp *http.Response) error {
	var apiResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram: %s", apiResp.Description)
	}
	return nil
}

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	From *struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"from"`
	Text   string `json:"text"`
	Photos []struct {
		FileID   string `json:"file_id"`
		FileSize int64  `json:"file_size"`
	} `json:"photo"`
	Voice *struct {
		FileID   string `json:"file_id"`
		MimeType string `json:"mime_type"`
	} `json:"voice"`
	Document *struct {
		FileID   string `json:"file_id"`
		MimeType string `json:"mime_type"`
	} `json:"document"`
}

// toEvent converts one Telegram update into an engine event.
func toEvent(upd update) (transport.Event, bool) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return transport.Event{}, false
	}
	ev := transport.Event{
		Kind:     transport.EventOther,
		UserID:   msg.From.ID,
		Username: msg.From.Username,
	}

	switch {
	case strings.HasPrefix(msg.Text, "/"):
		name, args, _ := strings.Cut(strings.TrimPrefix(msg.Text, "/"), " ")
		// Strip the @botname suffix of group-style commands.
		name, _, _ = strings.Cut(name, "@")
		ev.Kind = transport.EventCommand
		ev.Command = strings.ToLower(name)
		ev.Args = strings.TrimSpace(args)
	case msg.Voice != nil:
		ev.Kind = transport.EventVoice
		ev.FileRef = msg.Voice.FileID
		ev.VoiceFormat = formatFromMime(msg.Voice.MimeType, "ogg")
	case len(msg.Photos) > 0:
		// Telegram sends several sizes of one photo; take the largest.
		best := msg.Photos[0]
		for _, p := range msg.Photos[1:] {
			if p.FileSize > best.FileSize {
				best = p
			}
		}
		ev.Kind = transport.EventPhoto
		ev.FileRef = best.FileID
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		ev.Kind = transport.EventPhoto
		ev.FileRef = msg.Document.FileID
	case msg.Text != "":
		ev.Kind = transport.EventText
		ev.Text = msg.Text
	}
	return ev, true
}

func formatFromMime(mimeType, fallback string) string {
	switch {
	case strings.Contains(mimeType, "ogg"), strings.Contains(mimeType, "opus"):
		return "ogg"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "mp3"
	case strings.Contains(mimeType, "wav"):
		return "wav"
	case strings.Contains(mimeType, "webm"):
		return "webm"
	case strings.Contains(mimeType, "mp4"), strings.Contains(mimeType, "m4a"):
		return "m4a"
	case strings.Contains(mimeType, "flac"):
		return "flac"
	default:
		return fallback
	}
}
