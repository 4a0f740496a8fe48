//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-cardgen/transport"
)

func TestNewRequiresToken(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestSendReply(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok": true, "result": {}}`)
	}))
	defer srv.Close()

	bot, err := New("test-token", WithAPIBase(srv.URL))
	require.NoError(t, err)

	require.NoError(t, bot.SendReply(context.Background(), 42, "привет"))
	assert.Equal(t, float64(42), got["chat_id"])
	assert.Equal(t, "привет", got["text"])
}

func TestSendReplyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": false, "description": "Forbidden: bot was blocked by the user"}`)
	}))
	defer srv.Close()

	bot, err := New("test-token", WithAPIBase(srv.URL))
	require.NoError(t, err)

	err = bot.SendReply(context.Background(), 42, "привет")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestSendPhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-token/sendPhoto", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "42", r.FormValue("chat_id"))
		_, header, err := r.FormFile("photo")
		require.NoError(t, err)
		assert.Equal(t, "result.png", header.Filename)
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer srv.Close()

	bot, err := New("test-token", WithAPIBase(srv.URL))
	require.NoError(t, err)
	require.NoError(t, bot.SendPhoto(context.Background(), 42, []byte("image-bytes")))
}

func TestFetchFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bottest-token/getFile":
			fmt.Fprint(w, `{"ok": true, "result": {"file_path": "photos/file_1.jpg"}}`)
		case "/file/bottest-token/photos/file_1.jpg":
			w.Write([]byte("photo-bytes"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	bot, err := New("test-token", WithAPIBase(srv.URL))
	require.NoError(t, err)

	data, err := bot.FetchFile(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("photo-bytes"), data)
}

func TestToEventCommand(t *testing.T) {
	ev, ok := toEvent(update{Message: &message{
		From: &struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		}{ID: 7, Username: "alice"},
		Text: "/User@my_bot  12345 ",
	}})
	require.True(t, ok)
	assert.Equal(t, transport.EventCommand, ev.Kind)
	assert.Equal(t, "user", ev.Command)
	assert.Equal(t, "12345", ev.Args)
	assert.Equal(t, int64(7), ev.UserID)
	assert.Equal(t, "alice", ev.Username)
}

func TestToEventText(t *testing.T) {
	ev, ok := toEvent(update{Message: &message{
		From: &struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		}{ID: 7},
		Text: "сделай карточку",
	}})
	require.True(t, ok)
	assert.Equal(t, transport.EventText, ev.Kind)
	assert.Equal(t, "сделай карточку", ev.Text)
}

func TestToEventPhotoPicksLargest(t *testing.T) {
	msg := &message{
		From: &struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		}{ID: 7},
	}
	msg.Photos = []struct {
		FileID   string `json:"file_id"`
		FileSize int64  `json:"file_size"`
	}{
		{FileID: "small", FileSize: 100},
		{FileID: "large", FileSize: 9000},
		{FileID: "medium", FileSize: 800},
	}
	ev, ok := toEvent(update{Message: msg})
	require.True(t, ok)
	assert.Equal(t, transport.EventPhoto, ev.Kind)
	assert.Equal(t, "large", ev.FileRef)
}

func TestToEventVoice(t *testing.T) {
	msg := &message{
		From: &struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		}{ID: 7},
	}
	msg.Voice = &struct {
		FileID   string `json:"file_id"`
		MimeType string `json:"mime_type"`
	}{FileID: "v1", MimeType: "audio/ogg; codecs=opus"}

	ev, ok := toEvent(update{Message: msg})
	require.True(t, ok)
	assert.Equal(t, transport.EventVoice, ev.Kind)
	assert.Equal(t, "v1", ev.FileRef)
	assert.Equal(t, "ogg", ev.VoiceFormat)
}

func TestToEventSkipsNonMessageUpdates(t *testing.T) {
	_, ok := toEvent(update{})
	assert.False(t, ok)
	_, ok = toEvent(update{Message: &message{}})
	assert.False(t, ok)
}

func TestFormatFromMime(t *testing.T) {
	assert.Equal(t, "ogg", formatFromMime("audio/ogg", "ogg"))
	assert.Equal(t, "mp3", formatFromMime("audio/mpeg", "ogg"))
	assert.Equal(t, "m4a", formatFromMime("audio/mp4", "ogg"))
	assert.Equal(t, "ogg", formatFromMime("application/octet-stream", "ogg"))
}
