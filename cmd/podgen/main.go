package main

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/voxcast/voxcast/internal/adapter/repository"
	"github.com/voxcast/voxcast/internal/domain/entities"
	"github.com/voxcast/voxcast/internal/infrastructure/database"
	"github.com/voxcast/voxcast/internal/infrastructure/media"
	"github.com/voxcast/voxcast/internal/infrastructure/storage"
	"github.com/voxcast/voxcast/internal/usecase/content"
	"github.com/voxcast/voxcast/internal/usecase/publish"
	"github.com/voxcast/voxcast/internal/usecase/script"
	"github.com/voxcast/voxcast/internal/usecase/speech"
	"github.com/voxcast/voxcast/pkg/ai"
	"github.com/voxcast/voxcast/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("❌ Podcast generation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Load the source content
	loader := content.NewFileLoader()
	doc, err := loader.Load(ctx, cfg.Content.Source)
	if err != nil {
		return err
	}
	logger.Info("📄 Content loaded",
		zap.String("source", cfg.Content.Source),
		zap.String("title", doc.Title),
	)

	// Craft the episode script
	llm := ai.NewLLMClient(&cfg.LLM)
	workflow := script.NewWorkflow(llm, cfg.TTS.Participants, logger)
	episodeScript, err := workflow.GenerateEpisode(ctx, doc)
	if err != nil {
		return err
	}
	logger.Info("📝 Script completed",
		zap.String("title", episodeScript.Title),
		zap.Int("dialogue_lines", len(episodeScript.Dialogues)),
	)

	// Save artifacts under a per-feed directory, keyed by source so
	// regenerating the same document overwrites its own files.
	outputDir := filepath.Join(cfg.Output.Dir, cfg.Feed.Slug)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	sourceHash := fmt.Sprintf("%x", md5.Sum([]byte(cfg.Content.Source)))

	transcriptPath := filepath.Join(outputDir, fmt.Sprintf("transcript_%s.txt", sourceHash))
	if err := writeTranscript(transcriptPath, episodeScript); err != nil {
		return err
	}
	logger.Info("💾 Transcript saved", zap.String("path", transcriptPath))

	if !cfg.TTS.Enabled {
		logger.Info("TTS is disabled, skipping audio generation and publishing")
		return nil
	}

	// Generate the episode audio
	synth, err := speech.NewSynthesizer(&cfg.TTS)
	if err != nil {
		return err
	}
	engine := speech.NewEngine(synth, logger)

	segments, err := engine.SynthesizeAll(ctx, episodeScript.Dialogues)
	if err != nil {
		return err
	}

	podcastPath := filepath.Join(outputDir, fmt.Sprintf("podcast_%s.mp3", sourceHash))
	if err := engine.GenerateAudioFile(ctx, segments, podcastPath, media.CrossfadeOptions{}); err != nil {
		return err
	}
	logger.Info("🎧 Podcast file generated", zap.String("path", podcastPath))

	if !cfg.Storage.Enabled {
		logger.Info("Storage is disabled, skipping podcast publishing")
		return nil
	}

	// Publish the episode
	db, err := database.NewSQLiteDB(&cfg.Output)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	store, err := storage.NewClient(&cfg.Storage)
	if err != nil {
		return err
	}

	repo := repository.NewFeedRepository(db)
	publisher := publish.NewPublisher(repo, store, &cfg.Storage, logger)

	if _, _, err := publisher.CreateFeed(ctx, &cfg.Feed); err != nil {
		return err
	}

	result, err := publisher.AddEpisode(ctx, cfg.Feed.Slug, podcastPath, publish.EpisodeMetadata{
		Title:       episodeScript.Title,
		Description: episodeScript.Description + "\n\nSource: " + cfg.Content.Source,
	})
	if err != nil {
		return err
	}

	logger.Info("🚀 Published",
		zap.String("feed_url", result.FeedURL),
		zap.String("episode_url", result.EpisodeURL),
	)
	fmt.Printf("Feed published at %s\n", result.FeedURL)
	fmt.Printf("Episode published at %s\n", result.EpisodeURL)
	return nil
}

// writeTranscript saves the human-readable transcript next to the audio.
func writeTranscript(path string, ep *entities.EpisodeScript) error {
	var b strings.Builder
	b.WriteString("Title: " + ep.Title + "\n")
	b.WriteString("Description: " + ep.Description + "\n\n")
	b.WriteString("Transcript:\n")
	for _, line := range ep.Dialogues {
		b.WriteString(line.Speaker + ": " + line.Text + "\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
