package notification

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyJobSuccess(t *testing.T) {
	var got DiscordMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()
	t.Setenv("DISCORD_SUCCESS_NOTIFICATION_URL", server.URL)

	require.NoError(t, NotifyJob("ndvi composite", 90*time.Second, nil))
	require.Len(t, got.Embeds, 1)
	assert.Contains(t, got.Embeds[0].Description, "ndvi composite")
	assert.Contains(t, got.Embeds[0].Description, "1m30s")
	assert.Equal(t, colorGreen, got.Embeds[0].Color)
}

func TestNotifyJobFailureUsesErrorWebhook(t *testing.T) {
	var got DiscordMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	t.Setenv("DISCORD_ERROR_NOTIFICATION_URL", server.URL)

	require.NoError(t, NotifyJob("ingest", time.Second, errors.New("token expired")))
	require.Len(t, got.Embeds, 1)
	assert.Contains(t, got.Embeds[0].Description, "token expired")
	assert.Equal(t, colorRed, got.Embeds[0].Color)
}

func TestSendDiscordNotificationErrors(t *testing.T) {
	t.Setenv("DISCORD_SUCCESS_NOTIFICATION_URL", "")
	assert.Error(t, SendDiscordSuccessNotification("nope"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	t.Setenv("DISCORD_SUCCESS_NOTIFICATION_URL", server.URL)
	assert.Error(t, SendDiscordSuccessNotification("boom"))
}
