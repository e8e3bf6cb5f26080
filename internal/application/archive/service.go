package archive

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"heritage-archive-api/internal/domain/entity"
	"heritage-archive-api/internal/domain/repository"
	redisinfra "heritage-archive-api/internal/infrastructure/persistence/redis"
	apperrors "heritage-archive-api/pkg/errors"
	"heritage-archive-api/pkg/logger"
)

const (
	archiveCacheTTL     = 10 * time.Minute
	archiveListCacheTTL = 1 * time.Minute
)

// Service manages archive records and keeps the vector index in sync.
type Service struct {
	archives repository.ArchiveRepository
	tx       repository.Transactor
	cache    *redisinfra.Cache
	indexer  *Indexer
}

// NewService creates the archive service. cache and indexer may be nil.
func NewService(archives repository.ArchiveRepository, tx repository.Transactor, cache *redisinfra.Cache, indexer *Indexer) *Service {
	return &Service{
		archives: archives,
		tx:       tx,
		cache:    cache,
		indexer:  indexer,
	}
}

// CreateArchiveInput carries a new archive record.
type CreateArchiveInput struct {
	Title        string
	Description  string
	Summary      string
	MediaTypes   []entity.MediaType
	Tags         []string
	Dates        []string
	StoragePaths []string
}

// UpdateArchiveInput carries a partial update. Nil fields are untouched.
type UpdateArchiveInput struct {
	Title        *string
	Description  *string
	Summary      *string
	MediaTypes   []entity.MediaType
	Tags         []string
	Dates        []string
	StoragePaths []string
}

// Create validates, persists and indexes a new archive.
func (s *Service) Create(ctx context.Context, in CreateArchiveInput) (*entity.Archive, error) {
	ctx, span := tracer.Start(ctx, "archive.Create")
	defer span.End()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "title is required")
	}
	for _, mt := range in.MediaTypes {
		if !entity.ValidMediaType(mt) {
			return nil, apperrors.New(apperrors.CodeInvalidParam, "unknown media type").WithDetail(string(mt))
		}
	}

	archive := entity.NewArchive(title, strings.TrimSpace(in.Description))
	archive.Summary = in.Summary
	if len(in.MediaTypes) > 0 {
		archive.MediaTypes = in.MediaTypes
	}
	if len(in.Tags) > 0 {
		archive.Tags = in.Tags
	}
	if len(in.Dates) > 0 {
		archive.Dates = in.Dates
	}
	archive.StoragePaths = in.StoragePaths

	if err := s.archives.Create(ctx, archive); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("archive_id", archive.ID))

	s.indexArchive(ctx, archive)
	s.invalidateLists(ctx)

	return archive, nil
}

// Get returns one archive, served from cache when possible.
func (s *Service) Get(ctx context.Context, id string) (*entity.Archive, error) {
	ctx, span := tracer.Start(ctx, "archive.Get",
		trace.WithAttributes(attribute.String("archive_id", id)))
	defer span.End()

	if s.cache == nil {
		return s.archives.GetByID(ctx, id)
	}

	key := redisinfra.BuildArchiveKey(id)
	data, err := s.cache.GetOrLoadSafe(ctx, key, archiveCacheTTL, func() (interface{}, error) {
		return s.archives.GetByID(ctx, id)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var archive entity.Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		// Stale or corrupt cache entry, fall through to the database.
		logger.FromContext(ctx).Warn("discarding corrupt archive cache entry", "key", key, "error", err)
		_ = s.cache.Delete(ctx, key)
		return s.archives.GetByID(ctx, id)
	}
	return &archive, nil
}

// Update applies a partial update and reindexes the archive.
func (s *Service) Update(ctx context.Context, id string, in UpdateArchiveInput) (*entity.Archive, error) {
	ctx, span := tracer.Start(ctx, "archive.Update",
		trace.WithAttributes(attribute.String("archive_id", id)))
	defer span.End()

	var archive *entity.Archive
	err := s.inTx(ctx, func(txCtx context.Context) error {
		record, err := s.archives.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := applyUpdate(record, in); err != nil {
			return err
		}
		record.UpdatedAt = time.Now()
		if err := s.archives.Update(txCtx, record); err != nil {
			return err
		}
		archive = record
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.indexArchive(ctx, archive)
	s.invalidateArchive(ctx, id)

	return archive, nil
}

// inTx runs fn inside a transaction when a transactor is configured.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithTransaction(ctx, fn)
}

func applyUpdate(archive *entity.Archive, in UpdateArchiveInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return apperrors.New(apperrors.CodeInvalidParam, "title is required")
		}
		archive.Title = title
	}
	if in.Description != nil {
		archive.Description = strings.TrimSpace(*in.Description)
	}
	if in.Summary != nil {
		archive.Summary = *in.Summary
	}
	if in.MediaTypes != nil {
		for _, mt := range in.MediaTypes {
			if !entity.ValidMediaType(mt) {
				return apperrors.New(apperrors.CodeInvalidParam, "unknown media type").WithDetail(string(mt))
			}
		}
		archive.MediaTypes = in.MediaTypes
	}
	if in.Tags != nil {
		archive.Tags = in.Tags
	}
	if in.Dates != nil {
		archive.Dates = in.Dates
	}
	if in.StoragePaths != nil {
		archive.StoragePaths = in.StoragePaths
	}
	return nil
}

// Delete removes an archive and its embeddings.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "archive.Delete",
		trace.WithAttributes(attribute.String("archive_id", id)))
	defer span.End()

	if err := s.archives.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	if s.indexer.Enabled() {
		if err := s.indexer.RemoveArchive(ctx, id); err != nil {
			// The record is gone; a stale vector only costs a wasted hit.
			logger.FromContext(ctx).Warn("failed to remove archive vectors", "archive_id", id, "error", err)
		}
	}
	s.invalidateArchive(ctx, id)

	return nil
}

// List returns a filtered page of archives, cached briefly.
func (s *Service) List(ctx context.Context, filter *repository.ArchiveFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Archive], error) {
	ctx, span := tracer.Start(ctx, "archive.List")
	defer span.End()

	if s.cache == nil {
		return s.archives.List(ctx, filter, pagination)
	}

	var mediaType, tag, title string
	if filter != nil {
		mediaType = string(filter.MediaType)
		tag = filter.Tag
		title = filter.Title
	}
	key := redisinfra.BuildArchiveListKey(mediaType, tag, title, pagination.Page, pagination.PageSize)

	data, err := s.cache.GetOrLoadSafe(ctx, key, archiveListCacheTTL, func() (interface{}, error) {
		return s.archives.List(ctx, filter, pagination)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var page repository.PagedResult[*entity.Archive]
	if err := json.Unmarshal(data, &page); err != nil {
		logger.FromContext(ctx).Warn("discarding corrupt archive list cache entry", "key", key, "error", err)
		_ = s.cache.Delete(ctx, key)
		return s.archives.List(ctx, filter, pagination)
	}
	return &page, nil
}

// Reindex re-embeds every archive into the vector store. Returns the number
// of archives indexed.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "archive.Reindex")
	defer span.End()

	if !s.indexer.Enabled() {
		return 0, ErrVectorDisabled
	}

	indexed := 0
	pagination := repository.NewPagination(1, 100)
	for {
		page, err := s.archives.List(ctx, nil, pagination)
		if err != nil {
			span.RecordError(err)
			return indexed, err
		}
		for _, archive := range page.Items {
			if err := s.indexer.IndexArchive(ctx, archive); err != nil {
				span.RecordError(err)
				return indexed, apperrors.Wrap(err, apperrors.CodeIndexingFailed, "reindex aborted").WithDetail(archive.ID)
			}
			indexed++
		}
		if pagination.Page >= page.TotalPages {
			break
		}
		pagination.Page++
	}

	span.SetAttributes(attribute.Int("indexed", indexed))
	return indexed, nil
}

// indexArchive indexes best-effort: persistence already succeeded, so an
// indexing failure degrades search freshness but never fails the write.
func (s *Service) indexArchive(ctx context.Context, archive *entity.Archive) {
	if !s.indexer.Enabled() {
		return
	}
	if err := s.indexer.IndexArchive(ctx, archive); err != nil && !errors.Is(err, ErrVectorDisabled) {
		logger.FromContext(ctx).Warn("failed to index archive", "archive_id", archive.ID, "error", err)
	}
}

func (s *Service) invalidateArchive(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateArchive(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate archive cache", "archive_id", id, "error", err)
	}
	s.invalidateLists(ctx)
}

func (s *Service) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateArchiveLists(ctx); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate archive list cache", "error", err)
	}
}
