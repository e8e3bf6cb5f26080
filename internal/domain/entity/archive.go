// Package entity defines domain entities.
package entity

import (
	"time"
)

// MediaType classifies an archive asset.
type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeAudio    MediaType = "audio"
	MediaTypeDocument MediaType = "document"
)

// ValidMediaType reports whether t is a known media type.
func ValidMediaType(t MediaType) bool {
	switch t {
	case MediaTypeImage, MediaTypeVideo, MediaTypeAudio, MediaTypeDocument:
		return true
	}
	return false
}

// Archive is a heritage archive record. Summary is generated for internal
// embedding use and never exposed through the API.
type Archive struct {
	ID           string      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title        string      `json:"title" gorm:"type:varchar(255);not null"`
	Description  string      `json:"description,omitempty" gorm:"type:text"`
	Summary      string      `json:"-" gorm:"type:text"`
	MediaTypes   []MediaType `json:"media_types" gorm:"type:jsonb;serializer:json"`
	Tags         []string    `json:"tags" gorm:"type:jsonb;serializer:json"`
	Dates        []string    `json:"dates" gorm:"type:jsonb;serializer:json"`
	StoragePaths []string    `json:"-" gorm:"type:jsonb;serializer:json"`
	CreatedAt    time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName names the backing table.
func (Archive) TableName() string {
	return "archives"
}

// NewArchive creates an archive record.
func NewArchive(title, description string) *Archive {
	now := time.Now()
	return &Archive{
		Title:       title,
		Description: description,
		MediaTypes:  []MediaType{},
		Tags:        []string{},
		Dates:       []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// EmbeddingText composes the text indexed into the vector store.
func (a *Archive) EmbeddingText() string {
	text := a.Title
	if a.Description != "" {
		text += "\n" + a.Description
	}
	if a.Summary != "" {
		text += "\n" + a.Summary
	}
	for _, tag := range a.Tags {
		text += "\n" + tag
	}
	return text
}
