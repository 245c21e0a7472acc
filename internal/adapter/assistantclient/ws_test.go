package assistantclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/protocol"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/service"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/transport/ws"
	"github.com/2014Akamanzi/kiul-app-sub001/tests/helpers"
)

func newWSClient(t *testing.T, fake *helpers.ScriptedLLM) *WSClient {
	t.Helper()
	cfg := &config.Config{
		AssistantModel:   "gpt-4o-mini",
		WSMaxMessageSize: 65536,
		WSWriteTimeout:   5 * time.Second,
	}
	svc := service.New(helpers.NewTestSQLiteStore(t), fake, &helpers.RecordingSender{}, cfg, config.DefaultSite(), zerolog.Nop())
	e := echo.New()
	ws.NewServer(svc, cfg, zerolog.Nop()).RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	client := NewWSClient(srv.URL, zerolog.Nop())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewWSClientURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8080/api/assistant/ws", NewWSClient("http://localhost:8080/", zerolog.Nop()).url)
	assert.Equal(t, "wss://kiul.ac.tz/api/assistant/ws", NewWSClient("https://kiul.ac.tz", zerolog.Nop()).url)
}

func TestWSClientStream(t *testing.T) {
	client := newWSClient(t, &helpers.ScriptedLLM{Chunks: []string{"Hel", "lo"}})
	messages := []domain.ConversationMessage{{Role: domain.RoleUser, Content: "hi"}}

	for i := 0; i < 2; i++ {
		var got []string
		err := client.StreamChatCompletion(context.Background(), messages, func(chunk string) error {
			got = append(got, chunk)
			return nil
		}, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"Hel", "lo"}, got)
	}
}

func TestWSClientUpstreamError(t *testing.T) {
	client := newWSClient(t, &helpers.ScriptedLLM{Chunks: []string{"partial"}, Err: errors.New("upstream reset")})

	var text string
	err := client.StreamChatCompletion(context.Background(), []domain.ConversationMessage{{Role: domain.RoleUser, Content: "hi"}}, func(chunk string) error {
		text += chunk
		return nil
	}, "")

	var frameErr *FrameError
	require.ErrorAs(t, err, &frameErr)
	assert.Equal(t, protocol.ErrorCodeUpstream, frameErr.Code)
	assert.Equal(t, "partial", text)
}

func TestWSClientInvalidRequest(t *testing.T) {
	client := newWSClient(t, &helpers.ScriptedLLM{})

	err := client.StreamChatCompletion(context.Background(), nil, func(string) error { return nil }, "")

	var frameErr *FrameError
	require.ErrorAs(t, err, &frameErr)
	assert.Equal(t, protocol.ErrorCodeInvalidMessage, frameErr.Code)
}

func TestWSClientCanceled(t *testing.T) {
	client := newWSClient(t, &helpers.ScriptedLLM{Chunks: []string{"first"}, Block: true})
	ctx, cancel := context.WithCancel(context.Background())

	err := client.StreamChatCompletion(ctx, []domain.ConversationMessage{{Role: domain.RoleUser, Content: "hi"}}, func(string) error {
		cancel()
		return nil
	}, "")

	assert.ErrorIs(t, err, context.Canceled)
}
