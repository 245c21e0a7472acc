package assistant

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/service"
	"github.com/2014Akamanzi/kiul-app-sub001/tests/helpers"
)

func newTestHandler(t *testing.T, fake *helpers.ScriptedLLM) *Handler {
	t.Helper()
	cfg := &config.Config{AssistantModel: "gpt-4o-mini", AssistantTemperature: 0.7, AssistantMaxTokens: 500}
	svc := service.New(helpers.NewTestSQLiteStore(t), fake, &helpers.RecordingSender{}, cfg, config.DefaultSite(), zerolog.Nop())
	return NewHandler(svc, zerolog.Nop())
}

func newRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestStream(t *testing.T) {
	fake := &helpers.ScriptedLLM{Chunks: []string{"Hel", "lo", "", " world"}}
	h := newTestHandler(t, fake)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(`{"messages":[{"role":"user","content":"hi"}]}`), rec)

	require.NoError(t, h.Stream(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello world", rec.Body.String())
	assert.Equal(t, "text/event-stream; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.True(t, strings.HasPrefix(rec.Header().Get(HeaderRequestID), "asst_"))
	assert.Equal(t, "false", rec.Header().Get(HeaderEscalation))
	assert.True(t, rec.Flushed)
	assert.NotContains(t, rec.Body.String(), "[DONE]")

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Messages, 2)
	assert.Equal(t, config.DefaultPersona, reqs[0].Messages[0].Content)
	assert.Equal(t, "hi", reqs[0].Messages[1].Content)
}

func TestStreamCustomPromptAndEscalation(t *testing.T) {
	fake := &helpers.ScriptedLLM{Chunks: []string{"I'm here to help."}}
	h := newTestHandler(t, fake)

	e := echo.New()
	rec := httptest.NewRecorder()
	body := `{"messages":[{"role":"user","content":"hello"},{"role":"assistant","content":"Hi!"},{"role":"user","content":"Sometimes I want to hurt myself"}],"systemPrompt":"Be gentle."}`
	c := e.NewContext(newRequest(body), rec)

	require.NoError(t, h.Stream(c))

	assert.Equal(t, "true", rec.Header().Get(HeaderEscalation))
	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	msgs := reqs[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, domain.ConversationMessage{Role: domain.RoleSystem, Content: "Be gentle."}, msgs[0])
	assert.Equal(t, domain.RoleAssistant, msgs[2].Role)
}

func TestStreamBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"malformed json", `{"messages":`},
		{"missing messages", `{"systemPrompt":"x"}`},
		{"empty messages", `{"messages":[]}`},
		{"invalid role", `{"messages":[{"role":"wizard","content":"hi"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &helpers.ScriptedLLM{Chunks: []string{"x"}}
			h := newTestHandler(t, fake)

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(newRequest(tt.body), rec)

			require.NoError(t, h.Stream(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			assert.Empty(t, fake.Requests())
		})
	}
}

func TestStreamUpstreamErrorBeforeFirstChunk(t *testing.T) {
	h := newTestHandler(t, &helpers.ScriptedLLM{Err: errors.New("provider failure: invalid api key")})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(`{"messages":[{"role":"user","content":"hi"}]}`), rec)

	require.NoError(t, h.Stream(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"provider failure: invalid api key"}`, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get(HeaderRequestID), "asst_"))
}

func TestStreamUpstreamErrorMidStream(t *testing.T) {
	h := newTestHandler(t, &helpers.ScriptedLLM{Chunks: []string{"partial"}, Err: errors.New("connection reset")})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(`{"messages":[{"role":"user","content":"hi"}]}`), rec)

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		_ = h.Stream(c)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestStreamEmptyCompletion(t *testing.T) {
	h := newTestHandler(t, &helpers.ScriptedLLM{})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newRequest(`{"messages":[{"role":"user","content":"hi"}]}`), rec)

	require.NoError(t, h.Stream(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "text/event-stream; charset=utf-8", rec.Header().Get("Content-Type"))
}
