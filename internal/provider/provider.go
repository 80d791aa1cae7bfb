// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider abstracts generative text services behind a single call
// contract. Each vendor adapter classifies its failures into the shared
// taxonomy so the generation stage can apply one retry policy to all of them.
package provider

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// FailureKind classifies a provider call failure.
type FailureKind string

const (
	// Transient covers network errors, timeouts, and 5xx responses. Retryable
	// with exponential backoff.
	Transient FailureKind = "transient"

	// QuotaExceeded covers rate and usage limits. Retryable after a
	// provider-aware delay; escalates to the next fallback provider on the
	// final permitted attempt.
	QuotaExceeded FailureKind = "quota_exceeded"

	// Fatal covers malformed requests and authentication failures. Never
	// retried.
	Fatal FailureKind = "fatal"
)

// Failure is the structured outcome of an unsuccessful provider call.
type Failure struct {
	// Kind classifies the failure for retry handling.
	Kind FailureKind

	// Detail is the provider's error text.
	Detail string

	// RetryAfter is the provider-suggested wait before retrying, when the
	// provider communicated one. Zero when absent.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("provider failure (%s): %s", f.Kind, f.Detail)
}

// Provider is the uniform call contract for a generation service. A call
// either returns the full generated text or a *Failure; there is no partial
// success.
type Provider interface {
	// Name identifies the provider and model for progress output.
	Name() string

	// Call sends one prompt and returns the generated text.
	Call(ctx context.Context, prompt string) (string, error)
}

// Retry delay hints appear in quota error details as free text. Gemini emits
// both "Please retry in 12.5s" phrasing and proto-ish "retry_delay {
// seconds: 40 }" blocks depending on the surface.
var (
	retryInRe    = regexp.MustCompile(`(?i)retry in ([0-9.]+)s`)
	retrySecsRe  = regexp.MustCompile(`seconds:\s*([0-9]+)`)
	retryDelayRe = regexp.MustCompile(`(?i)retry_delay`)
)

// ParseRetryDelay extracts a suggested retry delay from free-text failure
// detail. It returns zero when no delay can be recognized.
func ParseRetryDelay(detail string) time.Duration {
	if m := retryInRe.FindStringSubmatch(detail); m != nil {
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	if retryDelayRe.MatchString(detail) {
		if m := retrySecsRe.FindStringSubmatch(detail); m != nil {
			if secs, err := strconv.Atoi(m[1]); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return 0
}

// classifyStatus maps an HTTP status code to a failure kind. Timeouts and
// connection errors are classified by the adapters before reaching here.
func classifyStatus(status int) FailureKind {
	switch {
	case status == 429:
		return QuotaExceeded
	case status >= 400 && status < 500:
		return Fatal
	default:
		return Transient
	}
}
