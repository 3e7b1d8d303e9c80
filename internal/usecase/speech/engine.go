package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/internal/domain/entities"
	"github.com/voxcast/voxcast/internal/infrastructure/media"
	"github.com/voxcast/voxcast/pkg/config"
)

const (
	// rateLimitAttempts bounds retries when a provider reports throttling.
	rateLimitAttempts = 5
	defaultRateWait   = 30 * time.Second
	defaultWorkers    = 4
)

// Synthesizer converts one line of text into audio with a named speaker's
// voice. Implementations map speakers to provider voices at construction.
type Synthesizer interface {
	Name() string
	SynthesizeSpeech(ctx context.Context, text, speaker string) ([]byte, error)
}

// NewSynthesizer selects a provider implementation from configuration.
func NewSynthesizer(cfg *config.TTSConfig) (Synthesizer, error) {
	switch cfg.Provider {
	case "google":
		return NewGoogleSynthesizer(cfg), nil
	case "openai":
		return NewOpenAISynthesizer(cfg), nil
	case "zyphra":
		return NewZyphraSynthesizer(cfg), nil
	default:
		return nil, apperrors.ErrUnsupportedProvider("tts", cfg.Provider)
	}
}

// Engine drives speech synthesis for a whole episode: it cleans each
// dialogue line, synthesizes lines concurrently while preserving order,
// and composes the results into one audio file.
type Engine struct {
	synth    Synthesizer
	logger   *zap.Logger
	workers  int
	rateWait time.Duration
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithWorkers sets the synthesis concurrency.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithRateLimitWait sets the pause between throttled attempts.
func WithRateLimitWait(d time.Duration) EngineOption {
	return func(e *Engine) { e.rateWait = d }
}

// NewEngine creates a speech synthesis engine
func NewEngine(synth Synthesizer, logger *zap.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		synth:    synth,
		logger:   logger,
		workers:  defaultWorkers,
		rateWait: defaultRateWait,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessSegment cleans one dialogue line and synthesizes it, waiting out
// provider rate limits. Any other failure is returned immediately.
func (e *Engine) ProcessSegment(ctx context.Context, line entities.DialogueLine) ([]byte, error) {
	text := CleanTextForTTS(line.Text)

	var audio []byte
	op := func() error {
		data, err := e.synth.SynthesizeSpeech(ctx, text, line.Speaker)
		if err != nil {
			if apperrors.HasCode(err, apperrors.ErrorCode_TTS_RATE_LIMITED) {
				e.logger.Warn("provider rate limited, waiting",
					zap.String("provider", e.synth.Name()),
					zap.String("speaker", line.Speaker),
				)
				return err
			}
			return backoff.Permanent(err)
		}
		audio = data
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(e.rateWait), rateLimitAttempts-1)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return audio, nil
}

// SynthesizeAll converts every dialogue line to audio. Lines are processed
// concurrently but results keep dialogue order. The first error cancels
// outstanding work.
func (e *Engine) SynthesizeAll(ctx context.Context, lines []entities.DialogueLine) ([][]byte, error) {
	results := make([][]byte, len(lines))
	errs := make([]error, len(lines))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

	for i, line := range lines {
		wg.Add(1)
		go func(i int, line entities.DialogueLine) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()

			audio, err := e.ProcessSegment(ctx, line)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			results[i] = audio
		}(i, line)
	}
	wg.Wait()

	// Workers parked on the semaphore record the cancellation, not the
	// failure that triggered it; prefer the real error.
	var canceled error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) {
			if canceled == nil {
				canceled = err
			}
			continue
		}
		return nil, err
	}
	if canceled != nil {
		return nil, canceled
	}
	return results, nil
}

// GenerateAudioFile writes the synthesized segments to disk and composes
// them into a single MP3 at outputPath.
func (e *Engine) GenerateAudioFile(ctx context.Context, segments [][]byte, outputPath string, opts media.CrossfadeOptions) error {
	if len(segments) == 0 {
		return apperrors.ErrAudioCompositionFailed(fmt.Errorf("no audio segments"))
	}

	tmpDir, err := os.MkdirTemp("", "voxcast-segments-")
	if err != nil {
		return apperrors.ErrAudioCompositionFailed(err)
	}
	defer os.RemoveAll(tmpDir)

	paths := make([]string, len(segments))
	for i, segment := range segments {
		path := filepath.Join(tmpDir, fmt.Sprintf("segment_%04d.mp3", i))
		if err := os.WriteFile(path, segment, 0o644); err != nil {
			return apperrors.ErrAudioCompositionFailed(err)
		}
		paths[i] = path
	}

	e.logger.Info("🔊 Composing episode audio",
		zap.Int("segments", len(segments)),
		zap.String("output", outputPath),
	)
	return media.Compose(ctx, paths, outputPath, opts)
}
