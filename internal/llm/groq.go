// Package llm provides a minimal client for OpenAI-compatible
// chat-completions endpoints (Groq). The client sends one synchronous,
// non-streaming request and returns the first choice's message content
// unmodified; no post-processing, truncation, or schema validation is
// performed on the model output. Call failures (network, auth, quota,
// malformed response) propagate to the caller; there is no retry and no
// fallback model.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is Groq's OpenAI-compatible API root.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// maxErrBody caps how much of an error response body is echoed in errors.
const maxErrBody = 512

// Message is a single turn in a chat-completions request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the wire payload for POST /chat/completions.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// chatResponse mirrors the subset of the OpenAI-style response we read.
type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client calls a Groq (OpenAI-compatible) chat-completions endpoint.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient returns a Client for the given endpoint and credential.
// An empty baseURL falls back to DefaultBaseURL; a non-positive timeout
// disables the client-side deadline (the per-call context still applies).
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Complete performs a single non-streaming chat completion and returns the
// first choice's message content. An HTTP status outside 2xx, a decode
// failure, or an empty choices array are all returned as errors.
func (c *Client) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrBody))
		return "", fmt.Errorf("chat completion: %s: %s", res.Status, strings.TrimSpace(string(body)))
	}

	var out chatResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat completion: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	return out.Choices[0].Message.Content, nil
}
