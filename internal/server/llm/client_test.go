package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *ChatClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewChatClient(srv.URL, "test-key", "test-model", 2*time.Second)
}

// stallingHandler reads the request and then blocks until the client gives
// up or release is called. Callers register release after the server so it
// runs before Close.
func stallingHandler() (http.HandlerFunc, func()) {
	done := make(chan struct{})
	h := func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}
	return h, func() { close(done) }
}

func TestChatClient_Generate_Success(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  ATP synthesis.  "}}]}`))
	})

	answer, err := c.Generate(context.Background(), SystemPrompt{Text: "sys", MaxTokens: 200, Temperature: 0.3}, "what?")
	require.NoError(t, err)
	assert.Equal(t, "ATP synthesis.", answer)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 200, got.MaxTokens)
	assert.InDelta(t, 0.3, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "what?"}, got.Messages[1])
}

func TestChatClient_Generate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: common.ErrAuth},
		{name: "forbidden", status: http.StatusForbidden, wantErr: common.ErrAuth},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: common.ErrUnavailable},
		{name: "server error", status: http.StatusInternalServerError, wantErr: common.ErrUnavailable},
		{name: "not json", status: http.StatusOK, body: "<html>", wantErr: common.ErrMalformedResponse},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: common.ErrMalformedResponse},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, wantErr: common.ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Generate(context.Background(), SystemPrompt{}, "q")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestChatClient_Generate_MissingKey(t *testing.T) {
	c := NewChatClient("http://127.0.0.1:0", "", "m", time.Second)
	_, err := c.Generate(context.Background(), SystemPrompt{}, "q")
	require.ErrorIs(t, err, common.ErrAuth)
}

func TestChatClient_Generate_Timeout(t *testing.T) {
	h, release := stallingHandler()
	c := newTestClient(t, h)
	t.Cleanup(release)
	c.HTTPClient.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := c.Generate(context.Background(), SystemPrompt{}, "q")
	require.ErrorIs(t, err, common.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestChatClient_Generate_ContextDeadline(t *testing.T) {
	h, release := stallingHandler()
	c := newTestClient(t, h)
	t.Cleanup(release)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Generate(ctx, SystemPrompt{}, "q")
	require.ErrorIs(t, err, common.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestChatClient_Generate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewChatClient(url, "k", "m", time.Second)
	_, err := c.Generate(context.Background(), SystemPrompt{}, "q")
	require.ErrorIs(t, err, common.ErrUnavailable)
}
