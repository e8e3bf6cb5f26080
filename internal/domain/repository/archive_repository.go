// Package repository defines data access interfaces.
package repository

import (
	"context"

	"heritage-archive-api/internal/domain/entity"
)

// ArchiveFilter narrows archive listings.
type ArchiveFilter struct {
	MediaType entity.MediaType
	Tag       string
	Title     string
}

// ArchiveRepository persists archive metadata.
type ArchiveRepository interface {
	Create(ctx context.Context, archive *entity.Archive) error

	GetByID(ctx context.Context, id string) (*entity.Archive, error)

	// GetByIDs returns the archives found for ids, preserving no particular
	// order. Missing ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Archive, error)

	Update(ctx context.Context, archive *entity.Archive) error

	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filter *ArchiveFilter, pagination Pagination) (*PagedResult[*entity.Archive], error)
}
