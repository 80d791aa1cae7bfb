// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/report-engine/internal/provider"
)

// fastPolicy keeps retry waits negligible in tests.
var fastPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, QuotaDelay: time.Millisecond}

// scriptedProvider replays a fixed sequence of results, one per call, and
// records every prompt it receives.
type scriptedProvider struct {
	name    string
	results []error
	calls   int
	prompts []string
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Call(_ context.Context, prompt string) (string, error) {
	p.calls++
	p.prompts = append(p.prompts, prompt)
	if len(p.results) > 0 {
		err := p.results[0]
		p.results = p.results[1:]
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s output %d", p.name, p.calls), nil
}

func transientErr() error {
	return &provider.Failure{Kind: provider.Transient, Detail: "503 upstream"}
}

func quotaErr() error {
	return &provider.Failure{Kind: provider.QuotaExceeded, Detail: "429 quota"}
}

func newTestGenerator(t *testing.T, providers []provider.Provider, threshold int) *Generator {
	t.Helper()
	g, err := New(providers, fastPolicy, threshold, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewRequiresProviders(t *testing.T) {
	if _, err := New(nil, fastPolicy, 0, nil); err == nil {
		t.Error("expected error for empty provider chain")
	}
}

func TestGenerateSingleCallAtThreshold(t *testing.T) {
	p := &scriptedProvider{name: "primary"}
	g := newTestGenerator(t, []provider.Provider{p}, 100)

	prompt := strings.Repeat("a", 100)
	text, err := g.Generate(context.Background(), prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "primary output 1" {
		t.Errorf("text = %q, want %q", text, "primary output 1")
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1", p.calls)
	}
	if p.prompts[0] != prompt {
		t.Error("prompt was altered before the provider call")
	}
}

func TestGenerateSegmentsOversizedPrompt(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		threshold int
		wantCalls int // segments + one reduce
	}{
		{name: "just over", size: 101, threshold: 100, wantCalls: 3},
		{name: "exact multiple", size: 300, threshold: 100, wantCalls: 4},
		{name: "many segments", size: 1050, threshold: 100, wantCalls: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProvider{name: "primary"}
			g := newTestGenerator(t, []provider.Provider{p}, tt.threshold)

			if _, err := g.Generate(context.Background(), strings.Repeat("x", tt.size)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", p.calls, tt.wantCalls)
			}

			// Every call except the last carries a segment of at most
			// threshold bytes; the last is the reduce over all partials.
			for i, prompt := range p.prompts[:len(p.prompts)-1] {
				if len(prompt) > tt.threshold {
					t.Errorf("segment %d is %d bytes, over threshold %d", i, len(prompt), tt.threshold)
				}
			}
			reduce := p.prompts[len(p.prompts)-1]
			if !strings.Contains(reduce, "Combine the following ordered partial drafts") {
				t.Errorf("final call is not a reduce prompt: %q", reduce[:60])
			}
			for i := 1; i < tt.wantCalls; i++ {
				want := fmt.Sprintf("primary output %d", i)
				if !strings.Contains(reduce, want) {
					t.Errorf("reduce prompt missing partial %q", want)
				}
			}
		})
	}
}

func TestSplitPromptCoversInput(t *testing.T) {
	text := strings.Repeat("abc", 70) // 210 bytes
	segments := splitPrompt(text, 100)
	if len(segments) != 3 {
		t.Fatalf("len(segments) = %d, want 3", len(segments))
	}
	if joined := strings.Join(segments, ""); joined != text {
		t.Error("segments do not reassemble the original text")
	}
}

func TestCallRetriesTransientThenSucceeds(t *testing.T) {
	p := &scriptedProvider{name: "primary", results: []error{transientErr(), transientErr(), nil}}
	g := newTestGenerator(t, []provider.Provider{p}, 0)

	if _, err := g.Generate(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}

func TestCallExhaustsAttemptsOnTransient(t *testing.T) {
	p := &scriptedProvider{name: "primary", results: []error{transientErr(), transientErr(), transientErr()}}
	g := newTestGenerator(t, []provider.Provider{p}, 0)

	_, err := g.Generate(context.Background(), "hello")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if p.calls != fastPolicy.MaxAttempts {
		t.Errorf("calls = %d, want %d", p.calls, fastPolicy.MaxAttempts)
	}
}

func TestCallFatalEscalatesImmediately(t *testing.T) {
	p := &scriptedProvider{name: "primary", results: []error{
		&provider.Failure{Kind: provider.Fatal, Detail: "invalid api key"},
	}}
	g := newTestGenerator(t, []provider.Provider{p}, 0)

	_, err := g.Generate(context.Background(), "hello")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1 (fatal must not retry)", p.calls)
	}
}

func TestQuotaExhaustionFallsBackToNextProvider(t *testing.T) {
	primary := &scriptedProvider{name: "primary", results: []error{quotaErr(), quotaErr(), quotaErr()}}
	fallback := &scriptedProvider{name: "fallback"}
	g := newTestGenerator(t, []provider.Provider{primary, fallback}, 0)

	text, err := g.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "fallback output 1" {
		t.Errorf("text = %q, want fallback output", text)
	}
	if primary.calls != 3 {
		t.Errorf("primary calls = %d, want 3", primary.calls)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d, want 1", fallback.calls)
	}
}

func TestQuotaExhaustionWithoutFallbackFails(t *testing.T) {
	p := &scriptedProvider{name: "primary", results: []error{quotaErr(), quotaErr(), quotaErr()}}
	g := newTestGenerator(t, []provider.Provider{p}, 0)

	_, err := g.Generate(context.Background(), "hello")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}

func TestFallbackPositionPersistsAcrossCalls(t *testing.T) {
	primary := &scriptedProvider{name: "primary", results: []error{quotaErr(), quotaErr(), quotaErr()}}
	fallback := &scriptedProvider{name: "fallback"}
	g := newTestGenerator(t, []provider.Provider{primary, fallback}, 0)

	if _, err := g.Generate(context.Background(), "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.Generate(context.Background(), "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.calls != 3 {
		t.Errorf("primary calls = %d, want 3 (later calls start at the fallback)", primary.calls)
	}
	if fallback.calls != 2 {
		t.Errorf("fallback calls = %d, want 2", fallback.calls)
	}
}

func TestCloneResetsFallbackPosition(t *testing.T) {
	primary := &scriptedProvider{name: "primary", results: []error{quotaErr(), quotaErr(), quotaErr()}}
	fallback := &scriptedProvider{name: "fallback"}
	g := newTestGenerator(t, []provider.Provider{primary, fallback}, 0)

	if _, err := g.Generate(context.Background(), "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clone := g.Clone()
	if _, err := clone.Generate(context.Background(), "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.calls != 4 {
		t.Errorf("primary calls = %d, want 4 (clone starts at the primary)", primary.calls)
	}
}

func TestUnclassifiedErrorsAreRetried(t *testing.T) {
	p := &scriptedProvider{name: "primary", results: []error{errors.New("connection reset"), nil}}
	g := newTestGenerator(t, []provider.Provider{p}, 0)

	if _, err := g.Generate(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
}

func TestGenerateHonoursContextCancellation(t *testing.T) {
	p := &scriptedProvider{name: "primary", results: []error{transientErr(), transientErr(), transientErr()}}
	g, err := New([]provider.Provider{p}, Policy{MaxAttempts: 3, BaseDelay: time.Hour, QuotaDelay: time.Hour}, 0, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Generate(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
