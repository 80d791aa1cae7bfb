// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// anthropicAPIURL is the Anthropic Messages API endpoint. Package-level var
// for test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// Anthropic calls the Anthropic Messages API, typically as the last entry in
// a fallback chain behind Gemini models.
type Anthropic struct {
	APIKey string
	Model  string
	Client *http.Client
}

// anthropicRequest is the request body for the Messages API.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

// anthropicMessage is a single message in the API conversation.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body from the Messages API.
type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

// anthropicContent is a content block in the API response.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Name returns the provider identifier.
func (a *Anthropic) Name() string { return "anthropic:" + a.Model }

// Call sends one prompt to the Anthropic API and returns the generated text.
func (a *Anthropic) Call(ctx context.Context, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     a.Model,
		MaxTokens: 8192,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Failure{Kind: Fatal, Detail: "marshaling request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &Failure{Kind: Fatal, Detail: "creating request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &Failure{Kind: Transient, Detail: "call timed out: " + err.Error()}
		}
		return "", &Failure{Kind: Transient, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		detail := fmt.Sprintf("Anthropic API returned %d: %s", resp.StatusCode, string(body))
		f := &Failure{Kind: classifyStatus(resp.StatusCode), Detail: detail}
		if f.Kind == QuotaExceeded {
			f.RetryAfter = retryAfterHeader(resp)
			if f.RetryAfter == 0 {
				f.RetryAfter = ParseRetryDelay(detail)
			}
		}
		return "", f
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return "", &Failure{Kind: Transient, Detail: "decoding response: " + err.Error()}
	}

	for _, block := range aResp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", &Failure{Kind: Transient, Detail: "no text content in Anthropic response"}
}

// retryAfterHeader parses a Retry-After header carrying whole seconds.
func retryAfterHeader(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
