package email

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

func TestClientSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "re_test", "KIUL <no-reply@kiul.ac.tz>", 5*time.Second)
	result, err := client.Send(context.Background(), domain.EmailRequest{
		To:      "reader@example.com",
		Subject: "Hello",
		Text:    "body",
	})

	require.NoError(t, err)
	assert.Equal(t, "Email sent successfully", result.Message)
	assert.Equal(t, "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794", result.Data["id"])
	assert.Equal(t, []string{"reader@example.com"}, got.To)
	assert.Equal(t, "KIUL <no-reply@kiul.ac.tz>", got.From)
	assert.Equal(t, "Hello", got.Subject)
	assert.Empty(t, got.HTML)
}

func TestClientSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "re_test", "from@kiul.ac.tz", 5*time.Second)
	_, err := client.Send(context.Background(), domain.EmailRequest{To: "bad", Subject: "x"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
	assert.Contains(t, err.Error(), "Invalid to field")
}

func TestConsoleSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewConsoleSender(zerolog.New(&buf))

	result, err := sender.Send(context.Background(), domain.EmailRequest{To: "a@b.c", Subject: "Hi", Text: "there"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Message)
	assert.Nil(t, result.Data)
	assert.Contains(t, buf.String(), `"to":"a@b.c"`)
	assert.Contains(t, buf.String(), `"subject":"Hi"`)
}

func TestNewSender(t *testing.T) {
	cfg := &config.Config{EmailAPIURL: "https://api.resend.com", EmailTimeout: time.Second}
	assert.Equal(t, ModeConsole, NewSender(cfg, zerolog.Nop()).Mode())

	cfg.EmailAPIKey = "re_test"
	assert.Equal(t, ModeProvider, NewSender(cfg, zerolog.Nop()).Mode())
}
