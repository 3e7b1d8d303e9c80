package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/internal/adapter/repository"
	"github.com/voxcast/voxcast/internal/domain/entities"
	"github.com/voxcast/voxcast/internal/domain/repositories"
	"github.com/voxcast/voxcast/pkg/config"
)

// fakeStore keeps uploaded objects in memory.
type fakeStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeStore) UploadBytes(_ context.Context, objectName string, data []byte, contentType string, _ map[string]string) (string, error) {
	f.objects[objectName] = data
	f.types[objectName] = contentType
	return f.PublicURL(objectName), nil
}

func (f *fakeStore) PublicURL(objectName string) string {
	return "https://cdn.example.com/" + objectName
}

func newTestPublisher(t *testing.T) (*Publisher, *fakeStore, repositories.FeedRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Feed{}, &entities.Episode{}))

	repo := repository.NewFeedRepository(db)
	store := newFakeStore()
	pub := NewPublisher(repo, store, &config.StorageConfig{AudioPrefix: "episodes", FeedPrefix: "feeds"}, nil)
	return pub, store, repo
}

func testFeedConfig() *config.FeedConfig {
	return &config.FeedConfig{
		Slug:        "tech-talk",
		Title:       "Tech Talk",
		Description: "Conversations about technology",
		Author:      "Jamie Rivers",
		Email:       "jamie@example.com",
		Website:     "https://example.com/tech-talk",
		Language:    "en",
		Categories:  []string{"Technology"},
	}
}

func writeAudioFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestCreateFeed_UploadsXML(t *testing.T) {
	pub, store, _ := newTestPublisher(t)

	feed, url, err := pub.CreateFeed(context.Background(), testFeedConfig())
	require.NoError(t, err)
	require.Equal(t, "tech-talk", feed.Slug)
	require.Equal(t, "https://cdn.example.com/feeds/tech-talk.xml", url)

	xml, ok := store.objects["feeds/tech-talk.xml"]
	require.True(t, ok)
	require.Contains(t, string(xml), "<title>Tech Talk</title>")
	require.Equal(t, "application/rss+xml", store.types["feeds/tech-talk.xml"])
}

func TestCreateFeed_IsIdempotentAndKeepsEpisodes(t *testing.T) {
	pub, store, _ := newTestPublisher(t)
	ctx := context.Background()

	_, _, err := pub.CreateFeed(ctx, testFeedConfig())
	require.NoError(t, err)

	audio := writeAudioFile(t, "ep1.mp3", []byte("audio-one"))
	_, err = pub.AddEpisode(ctx, "tech-talk", audio, EpisodeMetadata{Title: "Episode One"})
	require.NoError(t, err)

	cfg := testFeedConfig()
	cfg.Title = "Tech Talk Reloaded"
	feed, _, err := pub.CreateFeed(ctx, cfg)
	require.NoError(t, err)
	// The stored feed is reused, not rewritten.
	require.Equal(t, "Tech Talk", feed.Title)

	xml := string(store.objects["feeds/tech-talk.xml"])
	require.Contains(t, xml, "<title>Tech Talk</title>")
	require.NotContains(t, xml, "Tech Talk Reloaded")
	require.Contains(t, xml, "Episode One")
}

func TestAddEpisode_FullPipeline(t *testing.T) {
	pub, store, repo := newTestPublisher(t)
	ctx := context.Background()

	_, _, err := pub.CreateFeed(ctx, testFeedConfig())
	require.NoError(t, err)

	audio := writeAudioFile(t, "ep1.mp3", []byte("audio-one"))
	result, err := pub.AddEpisode(ctx, "tech-talk", audio, EpisodeMetadata{
		Title:       "Episode One",
		Description: "First episode",
	})
	require.NoError(t, err)

	require.Equal(t, "https://cdn.example.com/episodes/tech-talk/ep1.mp3", result.EpisodeURL)
	require.Equal(t, "https://cdn.example.com/feeds/tech-talk.xml", result.FeedURL)
	// GUID is slug plus content hash, stable across retries.
	require.Regexp(t, `^tech-talk-[0-9a-f]{32}$`, result.GUID)

	require.Equal(t, []byte("audio-one"), store.objects["episodes/tech-talk/ep1.mp3"])

	episodes, err := repo.ListEpisodes(ctx, "tech-talk", 0)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	require.Equal(t, 1, episodes[0].EpisodeNumber)
	require.Equal(t, int64(len("audio-one")), episodes[0].FileSize)
	require.Equal(t, "audio/mpeg", episodes[0].MimeType)

	xml := string(store.objects["feeds/tech-talk.xml"])
	require.Contains(t, xml, result.GUID)
	require.Contains(t, xml, "Episode One")
}

func TestAddEpisode_MissingFeedHasNoSideEffects(t *testing.T) {
	pub, store, _ := newTestPublisher(t)

	audio := writeAudioFile(t, "ep1.mp3", []byte("audio-one"))
	_, err := pub.AddEpisode(context.Background(), "missing", audio, EpisodeMetadata{Title: "Episode"})
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, apperrors.ErrorCode_PUBLISH_FAILED))
	require.Empty(t, store.objects)
}

func TestAddEpisode_DuplicateAudioRejected(t *testing.T) {
	pub, _, _ := newTestPublisher(t)
	ctx := context.Background()

	_, _, err := pub.CreateFeed(ctx, testFeedConfig())
	require.NoError(t, err)

	audio := writeAudioFile(t, "ep1.mp3", []byte("audio-one"))
	_, err = pub.AddEpisode(ctx, "tech-talk", audio, EpisodeMetadata{Title: "Episode One"})
	require.NoError(t, err)

	_, err = pub.AddEpisode(ctx, "tech-talk", audio, EpisodeMetadata{Title: "Episode One Again"})
	require.Error(t, err)
}

func TestAddEpisode_AssignsSequentialNumbers(t *testing.T) {
	pub, _, repo := newTestPublisher(t)
	ctx := context.Background()

	_, _, err := pub.CreateFeed(ctx, testFeedConfig())
	require.NoError(t, err)

	first := writeAudioFile(t, "ep1.mp3", []byte("audio-one"))
	second := writeAudioFile(t, "ep2.mp3", []byte("audio-two"))

	_, err = pub.AddEpisode(ctx, "tech-talk", first, EpisodeMetadata{Title: "Episode One"})
	require.NoError(t, err)
	_, err = pub.AddEpisode(ctx, "tech-talk", second, EpisodeMetadata{Title: "Episode Two"})
	require.NoError(t, err)

	episodes, err := repo.ListEpisodes(ctx, "tech-talk", 0)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	require.Equal(t, 2, episodes[0].EpisodeNumber)
	require.Equal(t, 1, episodes[1].EpisodeNumber)
}

func TestFeedURL(t *testing.T) {
	pub, _, _ := newTestPublisher(t)
	require.Equal(t, "https://cdn.example.com/feeds/tech-talk.xml", pub.FeedURL("tech-talk"))
}
