/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suparena/stockwatch/errors"
)

// fakeBotAPI answers sendMessage like the Telegram bot API and records the requests.
type fakeBotAPI struct {
	mu       sync.Mutex
	requests []map[string]string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
		http.NotFound(w, r)
		return
	}

	params := map[string]string{}
	body, _ := io.ReadAll(r.Body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]any
		_ = json.Unmarshal(body, &raw)
		for k, v := range raw {
			if s, ok := v.(string); ok {
				params[k] = s
			}
		}
	} else {
		values, _ := url.ParseQuery(string(body))
		for k := range values {
			params[k] = values.Get(k)
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, params)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if params["chat_id"] == "404" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":123,"type":"private"},"text":"ok"}}`))
}

func TestTelegramSender(t *testing.T) {
	api := &fakeBotAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	sender, err := NewTelegramSender(TelegramConfig{Token: "123:abc", APIURL: srv.URL})
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), "123", "✅ **AVAILABLE**"))
	require.Error(t, sender.Send(context.Background(), "404", "hello"))

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.requests, 2)
	require.Equal(t, "123", api.requests[0]["chat_id"])
	require.Equal(t, "✅ **AVAILABLE**", api.requests[0]["text"])
	require.Equal(t, "Markdown", api.requests[0]["parse_mode"])
}

func TestTelegramSenderRequiresToken(t *testing.T) {
	_, err := NewTelegramSender(TelegramConfig{})
	require.True(t, errors.IsValidationError(err))
}
