package repositories

import (
	"context"

	"github.com/voxcast/voxcast/internal/domain/entities"
)

// FeedRepository persists feeds and their episodes.
type FeedRepository interface {
	// CreateFeed inserts a new feed. Fails with ALREADY_EXISTS when the
	// slug is taken.
	CreateFeed(ctx context.Context, feed *entities.Feed) error

	// UpsertFeedBySlug creates the feed when the slug is new; an existing
	// feed is returned as stored with only its updated_at bumped.
	UpsertFeedBySlug(ctx context.Context, feed *entities.Feed) (*entities.Feed, error)

	// GetFeedBySlug returns the feed or NOT_FOUND.
	GetFeedBySlug(ctx context.Context, slug string) (*entities.Feed, error)

	// AddEpisode assigns the next (season, episode) pair for the feed and
	// inserts the episode atomically. Fails with ALREADY_EXISTS when the
	// GUID is already present.
	AddEpisode(ctx context.Context, feedID string, episode *entities.Episode) error

	// ListEpisodes returns episodes of the feed newest-first. limit <= 0
	// means no limit.
	ListEpisodes(ctx context.Context, slug string, limit int) ([]*entities.Episode, error)
}
