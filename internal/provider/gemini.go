// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Gemini calls the Gemini API for one model. Build one adapter per model in
// the fallback chain; the client is shared between them.
type Gemini struct {
	client      *genai.Client
	model       string
	callTimeout time.Duration
}

// NewGeminiClient creates the shared Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return client, nil
}

// NewGemini wraps a shared client for one model.
func NewGemini(client *genai.Client, model string, callTimeout time.Duration) *Gemini {
	return &Gemini{client: client, model: model, callTimeout: callTimeout}
}

// Name returns the provider identifier.
func (g *Gemini) Name() string { return "gemini:" + g.model }

// Call sends one prompt to the Gemini API and returns the generated text.
func (g *Gemini) Call(ctx context.Context, prompt string) (string, error) {
	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", g.classify(err)
	}

	text := resp.Text()
	if text == "" {
		return "", &Failure{Kind: Transient, Detail: "empty response from " + g.Name()}
	}
	return text, nil
}

// classify converts a Gemini API error into a *Failure.
func (g *Gemini) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: Transient, Detail: "call timed out: " + err.Error()}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		f := &Failure{Kind: classifyStatus(apiErr.Code), Detail: err.Error()}
		if f.Kind == QuotaExceeded {
			f.RetryAfter = ParseRetryDelay(err.Error())
		}
		return f
	}

	return &Failure{Kind: Transient, Detail: err.Error()}
}
