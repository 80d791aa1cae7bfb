// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate produces long-form text from a generation provider under
// provider-side size and quota limits. Oversized prompts are segmented,
// generated piecewise, and reduced into one result; every provider call is
// individually wrapped in bounded retries with exponential backoff,
// quota-aware delays, and ordered fallback across providers.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/report-engine/internal/provider"
)

// ErrGenerationFailed is returned after all retries and all fallback
// providers are exhausted for a call.
var ErrGenerationFailed = errors.New("generation failed")

// Policy is the retry policy applied to each individual provider call.
// The zero value gets sensible defaults from New.
type Policy struct {
	// MaxAttempts is the retry ceiling per call. Each provider switch grants
	// one additional attempt with the fallback provider.
	MaxAttempts int

	// BaseDelay is the starting backoff for transient failures; it doubles
	// each attempt.
	BaseDelay time.Duration

	// QuotaDelay is the wait after a quota failure when the provider did not
	// suggest its own retry delay.
	QuotaDelay time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.QuotaDelay <= 0 {
		p.QuotaDelay = time.Minute
	}
	return p
}

// Generator turns prompts into text through an ordered provider chain.
//
// The fallback position is instance state: once a call escalates past the
// primary provider, later calls from the same Generator start at the
// fallback. A Generator is not safe for concurrent use; hand each concurrent
// section its own Clone.
type Generator struct {
	providers []provider.Provider
	policy    Policy
	threshold int
	current   int
	progress  io.Writer
}

// defaultThreshold is the maximum prompt size in bytes for a single call.
const defaultThreshold = 8000

// New builds a Generator over an ordered provider chain, primary first.
func New(providers []provider.Provider, policy Policy, threshold int, progress io.Writer) (*Generator, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Generator{
		providers: providers,
		policy:    policy.withDefaults(),
		threshold: threshold,
		progress:  progress,
	}, nil
}

// Clone returns a Generator sharing the provider chain and policy but with a
// fresh fallback position.
func (g *Generator) Clone() *Generator {
	return &Generator{
		providers: g.providers,
		policy:    g.policy,
		threshold: g.threshold,
		progress:  g.progress,
	}
}

// Generate produces one block of text for the prompt. Prompts at or below
// the size threshold go out as a single call; longer prompts are sliced into
// contiguous segments of at most threshold bytes, generated in order, and
// merged by one final reduce call. Each call carries its own retry budget,
// so a late segment's failure never discards earlier segments' output.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if len(prompt) <= g.threshold {
		return g.callWithRetry(ctx, prompt)
	}

	segments := splitPrompt(prompt, g.threshold)
	fmt.Fprintf(g.progress, "prompt exceeds %d bytes, generating %d segments\n", g.threshold, len(segments))

	partials := make([]string, 0, len(segments))
	for i, seg := range segments {
		text, err := g.callWithRetry(ctx, seg)
		if err != nil {
			return "", fmt.Errorf("segment %d/%d: %w", i+1, len(segments), err)
		}
		partials = append(partials, text)
	}

	return g.callWithRetry(ctx, reducePrompt(partials))
}

// reducePrompt builds the final merge instruction over ordered partial outputs.
func reducePrompt(partials []string) string {
	return "Combine the following ordered partial drafts into one cohesive text. " +
		"Preserve the order, remove duplication, and keep every inline citation exactly as written:\n\n" +
		strings.Join(partials, "\n\n---\n\n")
}

// splitPrompt slices text into contiguous, non-overlapping pieces of at most
// size bytes. Slicing is positional; segment boundaries carry no semantic
// meaning.
func splitPrompt(text string, size int) []string {
	var segments []string
	for i := 0; i < len(text); i += size {
		end := i + size
		if end > len(text) {
			end = len(text)
		}
		segments = append(segments, text[i:end])
	}
	return segments
}

// callWithRetry issues one logical provider call under the retry policy.
//
// Transient failures back off exponentially up to the attempt ceiling. Quota
// failures wait for the provider-suggested delay (or the policy's quota
// delay) between attempts; when the ceiling is reached with fallback
// providers remaining, the call switches to the next provider and earns one
// more attempt. Fatal failures escalate immediately.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxAttempts := g.policy.MaxAttempts
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		p := g.providers[g.current]

		text, err := p.Call(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var f *provider.Failure
		if !errors.As(err, &f) {
			// Unclassified adapter errors get the retryable treatment.
			f = &provider.Failure{Kind: provider.Transient, Detail: err.Error()}
		}

		switch f.Kind {
		case provider.Fatal:
			return "", fmt.Errorf("%w: %s: %v", ErrGenerationFailed, p.Name(), err)

		case provider.QuotaExceeded:
			if attempt == maxAttempts {
				if g.current+1 < len(g.providers) {
					g.current++
					maxAttempts++
					fmt.Fprintf(g.progress, "quota exhausted on %s, falling back to %s\n",
						p.Name(), g.providers[g.current].Name())
					continue
				}
				return "", fmt.Errorf("%w after %d attempts (quota exhausted): %v", ErrGenerationFailed, attempt, err)
			}
			delay := g.policy.QuotaDelay
			if f.RetryAfter > 0 {
				delay = f.RetryAfter
			}
			fmt.Fprintf(g.progress, "%s quota exceeded, waiting %v (attempt %d/%d)\n",
				p.Name(), delay, attempt, maxAttempts)
			if err := sleep(ctx, delay); err != nil {
				return "", err
			}

		default: // transient
			if attempt == maxAttempts {
				return "", fmt.Errorf("%w after %d attempts: %v", ErrGenerationFailed, attempt, err)
			}
			backoff := g.policy.BaseDelay << (attempt - 1)
			fmt.Fprintf(g.progress, "%s failed, retrying in %v (attempt %d/%d): %v\n",
				p.Name(), backoff, attempt, maxAttempts, err)
			if err := sleep(ctx, backoff); err != nil {
				return "", err
			}
		}
	}

	return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
