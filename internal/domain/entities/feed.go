package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Feed represents a published podcast channel, unique by slug.
type Feed struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primary_key" json:"id"`
	Slug        string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Author      string                      `gorm:"type:varchar(255)" json:"author"`
	Email       string                      `gorm:"type:varchar(255)" json:"email"`
	ImageURL    *string                     `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	Language    string                      `gorm:"type:varchar(50);default:'en'" json:"language"`
	Copyright   *string                     `gorm:"type:varchar(255)" json:"copyright,omitempty"`
	Website     string                      `gorm:"type:varchar(512)" json:"website"`
	Categories  datatypes.JSONSlice[string] `json:"categories"`
	Explicit    bool                        `gorm:"default:false" json:"explicit"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// TableName specifies the table name for Feed
func (Feed) TableName() string {
	return "feeds"
}

// NewFeed creates a feed with a fresh ID.
func NewFeed(slug, title string) *Feed {
	return &Feed{
		ID:       uuid.New(),
		Slug:     slug,
		Title:    title,
		Language: "en",
	}
}

// PrimaryCategory returns the first configured category, defaulting to
// "Technology" for podcast directory compatibility.
func (f *Feed) PrimaryCategory() string {
	if len(f.Categories) > 0 && f.Categories[0] != "" {
		return f.Categories[0]
	}
	return "Technology"
}
