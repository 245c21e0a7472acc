package assistantclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

// readsReader returns one scripted read per call, then err.
type readsReader struct {
	reads [][]byte
	err   error
}

func (r *readsReader) Read(p []byte) (int, error) {
	if len(r.reads) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.reads[0])
	r.reads = r.reads[1:]
	return n, nil
}

func collect(t *testing.T, r io.Reader) ([]string, error) {
	t.Helper()
	var got []string
	err := consumeStream(r, func(s string) error {
		got = append(got, s)
		return nil
	})
	return got, err
}

func TestConsumeStreamOneCallbackPerRead(t *testing.T) {
	got, err := collect(t, &readsReader{reads: [][]byte{[]byte("Hel"), []byte("lo"), []byte(" world")}})

	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo", " world"}, got)
}

func TestConsumeStreamEmptyBody(t *testing.T) {
	got, err := collect(t, &readsReader{})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConsumeStreamSplitRune(t *testing.T) {
	word := []byte("café!")
	split := len("caf") + 1 // inside the two-byte é

	got, err := collect(t, &readsReader{reads: [][]byte{word[:split], word[split:]}})

	require.NoError(t, err)
	assert.Equal(t, []string{"caf", "é!"}, got)
}

func TestConsumeStreamPartialOnlyReadProducesNoCallback(t *testing.T) {
	emoji := []byte("😀")

	got, err := collect(t, &readsReader{reads: [][]byte{emoji[:1], emoji[1:3], emoji[3:]}})

	require.NoError(t, err)
	assert.Equal(t, []string{"😀"}, got)
}

func TestConsumeStreamFlushesTrailingBytesAtEOF(t *testing.T) {
	emoji := []byte("😀")

	got, err := collect(t, &readsReader{reads: [][]byte{[]byte("ok"), emoji[:2]}})

	require.NoError(t, err)
	assert.Equal(t, []string{"ok", string(emoji[:2])}, got)
}

func TestConsumeStreamReadError(t *testing.T) {
	got, err := collect(t, &readsReader{reads: [][]byte{[]byte("Hel")}, err: io.ErrUnexpectedEOF})

	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, []string{"Hel"}, got)
}

func TestConsumeStreamCallbackError(t *testing.T) {
	stop := errors.New("render failed")
	calls := 0
	err := consumeStream(&readsReader{reads: [][]byte{[]byte("a"), []byte("b")}}, func(string) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestSplitUTF8(t *testing.T) {
	euro := []byte("€") // three bytes
	tests := []struct {
		name         string
		in           []byte
		wantComplete string
		wantRest     []byte
	}{
		{"ascii", []byte("abc"), "abc", nil},
		{"complete multibyte", []byte("a€"), "a€", nil},
		{"one byte of three", append([]byte("a"), euro[:1]...), "a", euro[:1]},
		{"two bytes of three", append([]byte("a"), euro[:2]...), "a", euro[:2]},
		{"empty", nil, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete, rest := splitUTF8(tt.in)
			assert.Equal(t, tt.wantComplete, string(complete))
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestStreamChatCompletion(t *testing.T) {
	var gotReq assistantRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/assistant", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.Header().Set("X-Request-ID", "asst_1234abcd")
		flusher := w.(http.Flusher)
		for _, part := range []string{"Hel", "lo", " world"} {
			fmt.Fprint(w, part)
			flusher.Flush()
			time.Sleep(10 * time.Millisecond)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", zerolog.Nop())
	messages := []domain.ConversationMessage{{Role: domain.RoleUser, Content: "hi"}}

	var text string
	err := client.StreamChatCompletion(context.Background(), messages, func(chunk string) error {
		text += chunk
		return nil
	}, "be brief")

	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
	assert.Equal(t, messages, gotReq.Messages)
	assert.Equal(t, "be brief", gotReq.SystemPrompt)
}

func TestStreamChatCompletionStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"upstream unavailable"}`)
	}))
	defer server.Close()

	called := false
	err := NewClient(server.URL, zerolog.Nop()).StreamChatCompletion(context.Background(), nil, func(string) error {
		called = true
		return nil
	}, "")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "upstream unavailable", statusErr.Message)
	assert.False(t, called)
}

func TestStreamChatCompletionAbortedStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		fmt.Fprint(w, "partial")
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	}))
	defer server.Close()

	var text string
	err := NewClient(server.URL, zerolog.Nop()).StreamChatCompletion(context.Background(), nil, func(chunk string) error {
		text += chunk
		return nil
	}, "")

	require.Error(t, err)
	assert.Equal(t, "partial", text)
}

func TestStreamChatCompletionCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "first")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	err := NewClient(server.URL, zerolog.Nop()).StreamChatCompletion(ctx, nil, func(string) error {
		cancel()
		return nil
	}, "")

	require.Error(t, err)
	assert.Error(t, ctx.Err())
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "leadership & policy", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"title":"Leadership","category":"books","path":"/publications/books/Leadership.pdf"}]`)
	}))
	defer server.Close()

	results, err := NewClient(server.URL, zerolog.Nop()).Search(context.Background(), "leadership & policy")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "books", results[0].Category)
}
