package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/internal/domain/entities"
	"github.com/voxcast/voxcast/pkg/config"
)

// fakeSynth records synthesized text and can fail a set number of times.
type fakeSynth struct {
	mu        sync.Mutex
	texts     []string
	failures  int
	failWith  error
	callCount int
}

func (f *fakeSynth) Name() string { return "fake" }

func (f *fakeSynth) SynthesizeSpeech(_ context.Context, text, speaker string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	if f.failures > 0 {
		f.failures--
		return nil, f.failWith
	}
	f.texts = append(f.texts, text)
	return []byte(speaker + ":" + text), nil
}

func TestNewSynthesizer_ProviderSelection(t *testing.T) {
	cases := []struct {
		provider string
		wantErr  bool
	}{
		{"google", false},
		{"openai", false},
		{"zyphra", false},
		{"espeak", true},
	}

	for _, tc := range cases {
		cfg := &config.TTSConfig{Provider: tc.provider, APIKey: "k"}
		_, err := NewSynthesizer(cfg)
		if tc.wantErr && err == nil {
			t.Errorf("provider %q: expected error", tc.provider)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("provider %q: unexpected error %v", tc.provider, err)
		}
	}
}

func TestProcessSegment_CleansTextBeforeSynthesis(t *testing.T) {
	synth := &fakeSynth{}
	engine := NewEngine(synth, nil, WithRateLimitWait(0))

	line := entities.DialogueLine{Speaker: "Host", Text: "This is a *test* with _emphasis_."}
	audio, err := engine.ProcessSegment(context.Background(), line)
	if err != nil {
		t.Fatalf("process segment: %v", err)
	}
	if string(audio) != "Host:This is a test with emphasis." {
		t.Fatalf("unexpected audio %q", audio)
	}
	if synth.texts[0] != "This is a test with emphasis." {
		t.Fatalf("text not cleaned: %q", synth.texts[0])
	}
}

func TestProcessSegment_RetriesOnRateLimit(t *testing.T) {
	synth := &fakeSynth{failures: 2, failWith: apperrors.ErrRateLimited("fake")}
	engine := NewEngine(synth, nil, WithRateLimitWait(0))

	_, err := engine.ProcessSegment(context.Background(), entities.DialogueLine{Speaker: "Host", Text: "hello"})
	if err != nil {
		t.Fatalf("expected recovery after rate limit, got %v", err)
	}
	if synth.callCount != 3 {
		t.Fatalf("expected 3 attempts got %d", synth.callCount)
	}
}

func TestProcessSegment_RateLimitExhaustsAttempts(t *testing.T) {
	synth := &fakeSynth{failures: 10, failWith: apperrors.ErrRateLimited("fake")}
	engine := NewEngine(synth, nil, WithRateLimitWait(0))

	_, err := engine.ProcessSegment(context.Background(), entities.DialogueLine{Speaker: "Host", Text: "hello"})
	if err == nil {
		t.Fatal("expected failure after exhausting attempts")
	}
	if synth.callCount != rateLimitAttempts {
		t.Fatalf("expected %d attempts got %d", rateLimitAttempts, synth.callCount)
	}
}

func TestProcessSegment_OtherErrorsAreNotRetried(t *testing.T) {
	synth := &fakeSynth{failures: 1, failWith: apperrors.ErrSynthesisFailed("Host", fmt.Errorf("boom"))}
	engine := NewEngine(synth, nil, WithRateLimitWait(0))

	_, err := engine.ProcessSegment(context.Background(), entities.DialogueLine{Speaker: "Host", Text: "hello"})
	if err == nil {
		t.Fatal("expected synthesis failure")
	}
	if synth.callCount != 1 {
		t.Fatalf("expected single attempt got %d", synth.callCount)
	}
}

func TestSynthesizeAll_PreservesOrder(t *testing.T) {
	synth := &fakeSynth{}
	engine := NewEngine(synth, nil, WithWorkers(3), WithRateLimitWait(0))

	lines := []entities.DialogueLine{
		{Speaker: "A", Text: "one"},
		{Speaker: "B", Text: "two"},
		{Speaker: "A", Text: "three"},
		{Speaker: "B", Text: "four"},
	}

	results, err := engine.SynthesizeAll(context.Background(), lines)
	if err != nil {
		t.Fatalf("synthesize all: %v", err)
	}
	want := []string{"A:one", "B:two", "A:three", "B:four"}
	for i, w := range want {
		if string(results[i]) != w {
			t.Fatalf("result %d = %q want %q", i, results[i], w)
		}
	}
}

func TestSynthesizeAll_PropagatesFailure(t *testing.T) {
	synth := &fakeSynth{failures: 1, failWith: apperrors.ErrSynthesisFailed("A", fmt.Errorf("boom"))}
	engine := NewEngine(synth, nil, WithWorkers(2), WithRateLimitWait(0))

	lines := []entities.DialogueLine{
		{Speaker: "A", Text: "one"},
		{Speaker: "B", Text: "two"},
	}

	if _, err := engine.SynthesizeAll(context.Background(), lines); err == nil {
		t.Fatal("expected failure to propagate")
	}
}

func TestSynthesizeAll_FailureIsNotMaskedByCancellation(t *testing.T) {
	synth := &fakeSynth{failures: 1, failWith: apperrors.ErrSynthesisFailed("A", fmt.Errorf("boom"))}
	engine := NewEngine(synth, nil, WithWorkers(1), WithRateLimitWait(0))

	lines := make([]entities.DialogueLine, 6)
	for i := range lines {
		lines[i] = entities.DialogueLine{Speaker: "A", Text: "line"}
	}

	_, err := engine.SynthesizeAll(context.Background(), lines)
	if err == nil {
		t.Fatal("expected failure")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation masked the synthesis error: %v", err)
	}
	if !apperrors.HasCode(err, apperrors.ErrorCode_TTS_SYNTHESIS_FAILED) {
		t.Fatalf("expected synthesis failure, got %v", err)
	}
}
