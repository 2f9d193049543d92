// Package llm talks to an OpenAI-compatible chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
)

// SystemPrompt carries the system message and sampling settings for one call.
type SystemPrompt struct {
	Text        string
	MaxTokens   int
	Temperature float64
}

// Client generates an answer for a user prompt.
type Client interface {
	Generate(ctx context.Context, system SystemPrompt, userPrompt string) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ChatClient is a Client backed by a /chat/completions endpoint.
type ChatClient struct {
	Endpoint   string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

func NewChatClient(endpoint, apiKey, model string, timeout time.Duration) *ChatClient {
	return &ChatClient{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Generate sends the system and user messages and returns the trimmed
// content of the first choice.
func (c *ChatClient) Generate(ctx context.Context, system SystemPrompt, userPrompt string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("%w: api key missing", common.ErrAuth)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system.Text},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   system.MaxTokens,
		Temperature: system.Temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: status %s", common.ErrAuth, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %s", common.ErrUnavailable, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(err)
	}
	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", common.ErrMalformedResponse)
	}
	answer := strings.TrimSpace(out.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", common.ErrMalformedResponse)
	}
	return answer, nil
}

func transportError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
}
