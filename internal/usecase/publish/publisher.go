package publish

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/internal/domain/entities"
	"github.com/voxcast/voxcast/internal/domain/repositories"
	"github.com/voxcast/voxcast/internal/infrastructure/media"
	"github.com/voxcast/voxcast/pkg/config"
)

// ObjectStore is the slice of object storage the publisher needs.
type ObjectStore interface {
	UploadBytes(ctx context.Context, objectName string, data []byte, contentType string, metadata map[string]string) (string, error)
	PublicURL(objectName string) string
}

// EpisodeMetadata carries caller-supplied episode fields. Duration and
// publication date fall back to probed and current values respectively.
type EpisodeMetadata struct {
	Title           string
	Description     string
	Duration        *int
	EpisodeType     entities.EpisodeType
	Explicit        string
	ImageURL        *string
	PublicationDate *time.Time
}

// PublishResult reports where a published episode and its feed ended up.
type PublishResult struct {
	EpisodeURL string
	FeedURL    string
	GUID       string
}

// Publisher coordinates feed persistence, audio upload, and RSS
// regeneration.
type Publisher struct {
	repo        repositories.FeedRepository
	store       ObjectStore
	logger      *zap.Logger
	audioPrefix string
	feedPrefix  string
}

// NewPublisher creates a publishing pipeline
func NewPublisher(repo repositories.FeedRepository, store ObjectStore, cfg *config.StorageConfig, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	audioPrefix := strings.Trim(cfg.AudioPrefix, "/")
	if audioPrefix == "" {
		audioPrefix = "episodes"
	}
	feedPrefix := strings.Trim(cfg.FeedPrefix, "/")
	if feedPrefix == "" {
		feedPrefix = "feeds"
	}
	return &Publisher{
		repo:        repo,
		store:       store,
		logger:      logger,
		audioPrefix: audioPrefix,
		feedPrefix:  feedPrefix,
	}
}

// CreateFeed ensures the feed exists and uploads its RSS document. An
// existing feed is reused as stored; the configuration only seeds new
// feeds. Existing episodes appear in the regenerated XML.
func (p *Publisher) CreateFeed(ctx context.Context, cfg *config.FeedConfig) (*entities.Feed, string, error) {
	feed := entities.NewFeed(cfg.Slug, cfg.Title)
	feed.Description = cfg.Description
	feed.Author = cfg.Author
	feed.Email = cfg.Email
	feed.Website = cfg.Website
	feed.Categories = cfg.Categories
	feed.Explicit = cfg.Explicit
	if cfg.Language != "" {
		feed.Language = cfg.Language
	}
	if cfg.ImageURL != "" {
		feed.ImageURL = &cfg.ImageURL
	}
	if cfg.Copyright != "" {
		feed.Copyright = &cfg.Copyright
	}

	stored, err := p.repo.UpsertFeedBySlug(ctx, feed)
	if err != nil {
		return nil, "", apperrors.ErrPublishFailed("upsert feed", err)
	}

	feedURL, err := p.uploadFeedXML(ctx, stored)
	if err != nil {
		return nil, "", err
	}

	p.logger.Info("✅ Feed published",
		zap.String("slug", stored.Slug),
		zap.String("url", feedURL),
	)
	return stored, feedURL, nil
}

// AddEpisode publishes one audio file into an existing feed: it probes the
// file, uploads the audio, records the episode, and regenerates the feed
// XML. A missing feed fails before any side effect.
func (p *Publisher) AddEpisode(ctx context.Context, slug, audioFilePath string, meta EpisodeMetadata) (*PublishResult, error) {
	feed, err := p.repo.GetFeedBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.ErrPublishFailed("resolve feed", err)
	}

	audioMeta, err := media.Probe(ctx, audioFilePath)
	if err != nil {
		return nil, apperrors.ErrPublishFailed("probe audio", err)
	}

	guid, err := episodeGUID(slug, audioFilePath)
	if err != nil {
		return nil, apperrors.ErrPublishFailed("compute guid", err)
	}

	data, err := os.ReadFile(audioFilePath)
	if err != nil {
		return nil, apperrors.ErrPublishFailed("read audio", err)
	}

	objectName := fmt.Sprintf("%s/%s/%s", p.audioPrefix, slug, filepath.Base(audioFilePath))
	audioURL, err := p.store.UploadBytes(ctx, objectName, data, audioMeta.MimeType, map[string]string{
		"feed_slug":     slug,
		"episode_title": meta.Title,
		"timestamp":     time.Now().UTC().Format("20060102-150405"),
	})
	if err != nil {
		return nil, apperrors.ErrPublishFailed("upload audio", err)
	}

	episode := entities.NewEpisode(feed.ID, guid, meta.Title, audioURL)
	episode.Description = meta.Description
	episode.FileSize = audioMeta.FileSize
	episode.MimeType = audioMeta.MimeType
	episode.Duration = meta.Duration
	if episode.Duration == nil {
		episode.Duration = audioMeta.DurationSeconds
	}
	if meta.EpisodeType != "" {
		episode.EpisodeType = meta.EpisodeType
	}
	if meta.Explicit != "" {
		episode.Explicit = meta.Explicit
	}
	episode.ImageURL = meta.ImageURL
	if meta.PublicationDate != nil {
		episode.PublicationDate = *meta.PublicationDate
	} else {
		episode.PublicationDate = time.Now().UTC()
	}

	if err := p.repo.AddEpisode(ctx, feed.ID.String(), episode); err != nil {
		return nil, apperrors.ErrPublishFailed("record episode", err)
	}

	feedURL, err := p.uploadFeedXML(ctx, feed)
	if err != nil {
		return nil, err
	}

	p.logger.Info("✅ Episode published",
		zap.String("slug", slug),
		zap.String("guid", guid),
		zap.Int("episode", episode.EpisodeNumber),
		zap.String("audio_url", audioURL),
	)
	return &PublishResult{
		EpisodeURL: audioURL,
		FeedURL:    feedURL,
		GUID:       guid,
	}, nil
}

// FeedURL resolves the public URL of a feed's RSS document.
func (p *Publisher) FeedURL(slug string) string {
	return p.store.PublicURL(p.feedObjectName(slug))
}

// ListEpisodes returns a feed's episodes newest-first.
func (p *Publisher) ListEpisodes(ctx context.Context, slug string, limit int) ([]*entities.Episode, error) {
	return p.repo.ListEpisodes(ctx, slug, limit)
}

func (p *Publisher) feedObjectName(slug string) string {
	return fmt.Sprintf("%s/%s.xml", p.feedPrefix, slug)
}

func (p *Publisher) uploadFeedXML(ctx context.Context, feed *entities.Feed) (string, error) {
	episodes, err := p.repo.ListEpisodes(ctx, feed.Slug, 0)
	if err != nil {
		return "", apperrors.ErrPublishFailed("list episodes", err)
	}

	feedXML, err := GenerateFeedXML(feed, episodes)
	if err != nil {
		return "", apperrors.ErrPublishFailed("generate feed xml", err)
	}

	feedURL, err := p.store.UploadBytes(ctx, p.feedObjectName(feed.Slug), []byte(feedXML), "application/rss+xml", nil)
	if err != nil {
		return "", apperrors.ErrPublishFailed("upload feed xml", err)
	}
	return feedURL, nil
}

// episodeGUID derives a stable identifier from the feed slug and the audio
// content, so republishing identical audio is rejected as a duplicate.
func episodeGUID(slug, audioFilePath string) (string, error) {
	data, err := os.ReadFile(audioFilePath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%x", slug, md5.Sum(data)), nil
}
