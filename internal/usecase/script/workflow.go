package script

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/internal/domain/entities"
	"github.com/voxcast/voxcast/pkg/config"
)

// parseRetries is the number of extra model calls allowed when a response
// fails to parse. Request failures are never retried here.
const parseRetries = 1

const (
	fallbackSegments = 5
	fallbackAnalysis = "Content analysis unavailable. Using default parameters."
	noPreviousMarker = "NO PREVIOUS SEGMENTS, THIS IS THE FIRST SEGMENT"
)

// Completer abstracts the chat model used for script generation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Workflow turns a source document into a full episode script using staged
// model calls: content analysis, outline, then one call per segment in
// narrative order.
type Workflow struct {
	llm          Completer
	parser       *Parser
	participants []config.Participant
	logger       *zap.Logger
}

// NewWorkflow creates a script generation workflow
func NewWorkflow(llm Completer, participants []config.Participant, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		llm:          llm,
		parser:       NewParser(),
		participants: participants,
		logger:       logger,
	}
}

// GenerateOutline produces the episode outline using two-stage prompting.
// A stage-1 failure degrades to defaults; a stage-2 failure is fatal.
func (w *Workflow) GenerateOutline(ctx context.Context, doc *entities.Document) (*entities.PodcastOutline, error) {
	optimalSegments := fallbackSegments
	analysisStr := fallbackAnalysis

	analysis, err := w.analyzeContent(ctx, doc)
	if err != nil {
		w.logger.Warn("content analysis failed, using defaults", zap.Error(err))
	} else {
		optimalSegments = analysis.OptimalSegments
		if encoded, marshalErr := json.MarshalIndent(analysis, "", "  "); marshalErr == nil {
			analysisStr = string(encoded)
		}
	}

	var outline *entities.PodcastOutline
	err = w.completeAndParse(ctx, "outline", outlinePrompt(doc, analysisStr, optimalSegments), func(raw string) error {
		parsed, parseErr := w.parser.ParseOutline(raw)
		if parseErr != nil {
			return parseErr
		}
		outline = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logger.Info("✅ Outline generated",
		zap.String("title", outline.Title),
		zap.Int("segments", len(outline.Segments)),
	)
	return outline, nil
}

func (w *Workflow) analyzeContent(ctx context.Context, doc *entities.Document) (*entities.ContentAnalysis, error) {
	var analysis *entities.ContentAnalysis
	err := w.completeAndParse(ctx, "analysis", analysisPrompt(doc), func(raw string) error {
		parsed, parseErr := w.parser.ParseContentAnalysis(raw)
		if parseErr != nil {
			return parseErr
		}
		analysis = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// GenerateSegmentScript writes the dialogue for one outline segment,
// conditioned on everything generated before it.
func (w *Workflow) GenerateSegmentScript(ctx context.Context, seg entities.OutlineSegment, sourceContent, previousContent string, segmentNumber, totalSegments int) (*entities.ScriptSegment, error) {
	prompt := segmentPrompt(seg, sourceContent, previousContent, hostProfiles(w.participants), segmentNumber, totalSegments)

	var result *entities.ScriptSegment
	err := w.completeAndParse(ctx, "segment", prompt, func(raw string) error {
		parsed, parseErr := w.parser.ParseScriptSegment(raw)
		if parseErr != nil {
			return parseErr
		}
		result = parsed
		return nil
	})
	if err != nil {
		return nil, apperrors.ErrSegmentGenerationFailed(segmentNumber, err)
	}
	return result, nil
}

// GenerateFullScript writes every segment strictly in order so that each
// prompt carries the transcript of all earlier segments.
func (w *Workflow) GenerateFullScript(ctx context.Context, outline *entities.PodcastOutline, sourceContent string) ([]*entities.ScriptSegment, error) {
	results := make([]*entities.ScriptSegment, 0, len(outline.Segments))
	total := len(outline.Segments)

	for i, seg := range outline.Segments {
		previousContent := noPreviousMarker
		if len(results) > 0 {
			previousContent = formatPreviousSegments(results)
		}

		w.logger.Info("🎙️ Generating segment",
			zap.Int("segment", i+1),
			zap.Int("total", total),
			zap.String("name", seg.Name),
		)

		segment, err := w.GenerateSegmentScript(ctx, seg, sourceContent, previousContent, i+1, total)
		if err != nil {
			return nil, err
		}
		results = append(results, segment)
	}

	return results, nil
}

// GenerateEpisode runs the complete workflow and flattens the segment
// dialogue into a single episode script.
func (w *Workflow) GenerateEpisode(ctx context.Context, doc *entities.Document) (*entities.EpisodeScript, error) {
	outline, err := w.GenerateOutline(ctx, doc)
	if err != nil {
		return nil, err
	}

	segments, err := w.GenerateFullScript(ctx, outline, doc.Content)
	if err != nil {
		return nil, err
	}

	episode := &entities.EpisodeScript{
		Title:       outline.Title,
		Description: outline.Description,
	}
	for _, seg := range segments {
		episode.Dialogues = append(episode.Dialogues, seg.Dialogue...)
	}
	return episode, nil
}

// completeAndParse calls the model and parses the response, re-asking the
// model when parsing fails. Transport errors are permanent.
func (w *Workflow) completeAndParse(ctx context.Context, stage, prompt string, parse func(string) error) error {
	op := func() error {
		raw, err := w.llm.Complete(ctx, prompt)
		if err != nil {
			return backoff.Permanent(apperrors.ErrLLMRequestFailed(stage, err))
		}
		if err := parse(raw); err != nil {
			w.logger.Warn("response parse failed, retrying",
				zap.String("stage", stage),
				zap.Error(err),
			)
			return apperrors.ErrLLMParseFailed(stage, err)
		}
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), parseRetries)
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}

// formatPreviousSegments renders earlier segments as transcript context.
func formatPreviousSegments(segments []*entities.ScriptSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		b.WriteString("\n--- SEGMENT ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(seg.Name)
		b.WriteString(" ---\n")
		for _, line := range seg.Dialogue {
			b.WriteString(line.Speaker)
			b.WriteString(": ")
			b.WriteString(line.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}
