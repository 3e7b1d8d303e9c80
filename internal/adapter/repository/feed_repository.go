package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/internal/domain/entities"
	"github.com/voxcast/voxcast/internal/domain/repositories"
)

// feedRepository implements the FeedRepository interface
type feedRepository struct {
	db *gorm.DB

	// mu serializes episode numbering per feed within this process.
	mu      sync.Mutex
	feedMus map[uuid.UUID]*sync.Mutex
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *gorm.DB) repositories.FeedRepository {
	return &feedRepository{
		db:      db,
		feedMus: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (r *feedRepository) feedMu(feedID uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	mu, ok := r.feedMus[feedID]
	if !ok {
		mu = &sync.Mutex{}
		r.feedMus[feedID] = mu
	}
	return mu
}

// CreateFeed inserts a new feed
func (r *feedRepository) CreateFeed(ctx context.Context, feed *entities.Feed) error {
	if err := r.db.WithContext(ctx).Create(feed).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrFeedAlreadyExists(feed.Slug)
		}
		return apperrors.ErrDBQueryFailed("create feed", err)
	}
	return nil
}

// UpsertFeedBySlug returns the feed for the slug, creating it if missing.
// An existing feed is reused as stored; only its updated_at is bumped.
func (r *feedRepository) UpsertFeedBySlug(ctx context.Context, feed *entities.Feed) (*entities.Feed, error) {
	existing, err := r.GetFeedBySlug(ctx, feed.Slug)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.ErrorCode_NOT_FOUND) {
			return nil, err
		}
		if createErr := r.CreateFeed(ctx, feed); createErr != nil {
			return nil, createErr
		}
		return feed, nil
	}

	existing.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Model(existing).Update("updated_at", existing.UpdatedAt).Error; err != nil {
		return nil, apperrors.ErrDBQueryFailed("update feed", err)
	}
	return existing, nil
}

// GetFeedBySlug retrieves a feed by its slug
func (r *feedRepository) GetFeedBySlug(ctx context.Context, slug string) (*entities.Feed, error) {
	var feed entities.Feed
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&feed).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFeedNotFound(slug)
		}
		return nil, apperrors.ErrDBQueryFailed("get feed", err)
	}
	return &feed, nil
}

// AddEpisode assigns the next episode number for the feed and inserts the
// episode in one transaction
func (r *feedRepository) AddEpisode(ctx context.Context, feedID string, episode *entities.Episode) error {
	id, err := uuid.Parse(feedID)
	if err != nil {
		return apperrors.ErrInvalidArgument("invalid feed id")
	}

	mu := r.feedMu(id)
	mu.Lock()
	defer mu.Unlock()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last entities.Episode
		findErr := tx.
			Where("feed_id = ?", id).
			Order("season_number DESC, episode_number DESC").
			First(&last).Error

		switch {
		case findErr == nil:
			episode.SeasonNumber = last.SeasonNumber
			episode.EpisodeNumber = last.EpisodeNumber + 1
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			episode.SeasonNumber = 1
			episode.EpisodeNumber = 1
		default:
			return findErr
		}

		episode.FeedID = id
		return tx.Create(episode).Error
	})

	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrEpisodeAlreadyExists(episode.GUID)
		}
		return apperrors.ErrDBQueryFailed("add episode", err)
	}
	return nil
}

// ListEpisodes retrieves a feed's episodes newest-first
func (r *feedRepository) ListEpisodes(ctx context.Context, slug string, limit int) ([]*entities.Episode, error) {
	feed, err := r.GetFeedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var episodes []*entities.Episode
	query := r.db.WithContext(ctx).
		Where("feed_id = ?", feed.ID).
		Order("publication_date DESC, episode_number DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&episodes).Error; err != nil {
		return nil, apperrors.ErrDBQueryFailed("list episodes", err)
	}
	return episodes, nil
}

// isUniqueViolation detects unique-constraint failures across drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
