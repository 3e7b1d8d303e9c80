package entities

import (
	"time"

	"github.com/google/uuid"
)

// EpisodeType mirrors the itunes:episodeType vocabulary.
type EpisodeType string

const (
	EpisodeTypeFull    EpisodeType = "full"
	EpisodeTypeTrailer EpisodeType = "trailer"
	EpisodeTypeBonus   EpisodeType = "bonus"
)

// Episode represents one published audio item belonging to a Feed.
// GUID is derived from audio content plus feed slug and never changes;
// (SeasonNumber, EpisodeNumber) is assigned at creation time and never mutated.
type Episode struct {
	ID              uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	FeedID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"feed_id"`
	GUID            string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"guid"`
	Title           string      `gorm:"type:varchar(255);not null" json:"title"`
	Description     string      `gorm:"type:text" json:"description"`
	AudioURL        string      `gorm:"type:varchar(512);not null" json:"audio_url"`
	PublicationDate time.Time   `json:"publication_date"`
	Duration        *int        `json:"duration,omitempty"` // seconds
	SeasonNumber    int         `gorm:"default:1" json:"season_number"`
	EpisodeNumber   int         `json:"episode_number"`
	EpisodeType     EpisodeType `gorm:"type:varchar(50);default:'full'" json:"episode_type"`
	Explicit        string      `gorm:"type:varchar(10);default:'no'" json:"explicit"`
	ImageURL        *string     `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	FileSize        int64       `json:"file_size"` // bytes
	MimeType        string      `gorm:"type:varchar(100)" json:"mime_type"`
	CreatedAt       time.Time   `json:"created_at"`
}

// TableName specifies the table name for Episode
func (Episode) TableName() string {
	return "episodes"
}

// NewEpisode creates an episode with a fresh ID and sane defaults.
func NewEpisode(feedID uuid.UUID, guid, title, audioURL string) *Episode {
	return &Episode{
		ID:           uuid.New(),
		FeedID:       feedID,
		GUID:         guid,
		Title:        title,
		AudioURL:     audioURL,
		SeasonNumber: 1,
		EpisodeType:  EpisodeTypeFull,
		Explicit:     "no",
	}
}
