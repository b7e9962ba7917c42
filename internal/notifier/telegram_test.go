package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSend(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok": true}`))
	}))
	t.Cleanup(server.Close)

	tg := New(Config{
		BaseURL:  server.URL,
		BotToken: "123:abc",
		ChatID:   "-100200300",
		Timeout:  5 * time.Second,
	}, testLogger())

	err := tg.Send(context.Background(), "🚨 *alert*")
	require.NoError(t, err)

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "-100200300", gotBody.ChatID)
	assert.Equal(t, "🚨 *alert*", gotBody.Text)
	assert.Equal(t, "Markdown", gotBody.ParseMode)
}

func TestSend_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok": false, "description": "Bad Request: can't parse entities"}`))
	}))
	t.Cleanup(server.Close)

	tg := New(Config{
		BaseURL:  server.URL,
		BotToken: "123:abc",
		ChatID:   "-100200300",
		Timeout:  5 * time.Second,
	}, testLogger())

	err := tg.Send(context.Background(), "broken *markdown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 400")
	assert.Contains(t, err.Error(), "can't parse entities")
}

func TestNew_DefaultBaseURL(t *testing.T) {
	tg := New(Config{BotToken: "t", ChatID: "c"}, testLogger())
	assert.Equal(t, defaultBaseURL, tg.baseURL)
}
