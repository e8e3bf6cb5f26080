package dto

import (
	"time"

	"heritage-archive-api/internal/application/archive"
	"heritage-archive-api/internal/domain/entity"
)

// CreateArchiveRequest creates an archive record.
type CreateArchiveRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	MediaTypes   []string `json:"media_types,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Dates        []string `json:"dates,omitempty"`
	StoragePaths []string `json:"storage_paths,omitempty"`
}

// ToInput converts the request into a service input.
func (r *CreateArchiveRequest) ToInput() archive.CreateArchiveInput {
	return archive.CreateArchiveInput{
		Title:        r.Title,
		Description:  r.Description,
		Summary:      r.Summary,
		MediaTypes:   toMediaTypes(r.MediaTypes),
		Tags:         r.Tags,
		Dates:        r.Dates,
		StoragePaths: r.StoragePaths,
	}
}

// UpdateArchiveRequest partially updates an archive. Absent fields are
// untouched.
type UpdateArchiveRequest struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Summary      *string  `json:"summary,omitempty"`
	MediaTypes   []string `json:"media_types,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Dates        []string `json:"dates,omitempty"`
	StoragePaths []string `json:"storage_paths,omitempty"`
}

// ToInput converts the request into a service input.
func (r *UpdateArchiveRequest) ToInput() archive.UpdateArchiveInput {
	return archive.UpdateArchiveInput{
		Title:        r.Title,
		Description:  r.Description,
		Summary:      r.Summary,
		MediaTypes:   toMediaTypes(r.MediaTypes),
		Tags:         r.Tags,
		Dates:        r.Dates,
		StoragePaths: r.StoragePaths,
	}
}

func toMediaTypes(values []string) []entity.MediaType {
	if values == nil {
		return nil
	}
	out := make([]entity.MediaType, 0, len(values))
	for _, v := range values {
		out = append(out, entity.MediaType(v))
	}
	return out
}

// ArchiveResponse is an archive record on the wire.
type ArchiveResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	MediaTypes  []string  `json:"media_types"`
	Tags        []string  `json:"tags"`
	Dates       []string  `json:"dates"`
	FileURIs    []string  `json:"file_uris"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToArchiveResponse maps an archive entity, resolving storage paths into
// public URIs.
func ToArchiveResponse(a *entity.Archive, uris *archive.URIResolver) *ArchiveResponse {
	mediaTypes := make([]string, 0, len(a.MediaTypes))
	for _, mt := range a.MediaTypes {
		mediaTypes = append(mediaTypes, string(mt))
	}
	return &ArchiveResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		MediaTypes:  mediaTypes,
		Tags:        a.Tags,
		Dates:       a.Dates,
		FileURIs:    uris.Resolve(a.StoragePaths),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ArchiveListResponse is a page of archives.
type ArchiveListResponse struct {
	Archives []*ArchiveResponse `json:"archives"`
}

// ToArchiveListResponse maps a page of archive entities.
func ToArchiveListResponse(items []*entity.Archive, uris *archive.URIResolver) ArchiveListResponse {
	archives := make([]*ArchiveResponse, 0, len(items))
	for _, item := range items {
		archives = append(archives, ToArchiveResponse(item, uris))
	}
	return ArchiveListResponse{Archives: archives}
}

// ReindexResponse reports a vector reindex run.
type ReindexResponse struct {
	Indexed int `json:"indexed"`
}
