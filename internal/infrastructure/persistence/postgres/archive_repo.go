package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"heritage-archive-api/internal/domain/entity"
	"heritage-archive-api/internal/domain/repository"
	apperrors "heritage-archive-api/pkg/errors"
)

// ArchiveRepository implements repository.ArchiveRepository on PostgreSQL.
type ArchiveRepository struct {
	client *Client
}

// NewArchiveRepository creates the repository.
func NewArchiveRepository(client *Client) *ArchiveRepository {
	return &ArchiveRepository{client: client}
}

var _ repository.ArchiveRepository = (*ArchiveRepository)(nil)

// Create inserts an archive record.
func (r *ArchiveRepository) Create(ctx context.Context, archive *entity.Archive) error {
	ctx, span := tracer.Start(ctx, "postgres.ArchiveRepository.Create")
	defer span.End()

	db := dbFromContext(ctx, r.client.db)
	if err := db.Create(archive).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

// GetByID returns one archive or ErrArchiveNotFound.
func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*entity.Archive, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArchiveRepository.GetByID",
		trace.WithAttributes(attribute.String("archive_id", id)))
	defer span.End()

	db := dbFromContext(ctx, r.client.db)

	var archive entity.Archive
	err := db.First(&archive, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrArchiveNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get archive: %w", err)
	}
	return &archive, nil
}

// GetByIDs returns the archives found for ids. Missing ids are skipped.
func (r *ArchiveRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Archive, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArchiveRepository.GetByIDs",
		trace.WithAttributes(attribute.Int("id_count", len(ids))))
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	db := dbFromContext(ctx, r.client.db)

	var archives []*entity.Archive
	if err := db.Where("id IN ?", ids).Find(&archives).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get archives: %w", err)
	}
	return archives, nil
}

// Update saves the full archive record.
func (r *ArchiveRepository) Update(ctx context.Context, archive *entity.Archive) error {
	ctx, span := tracer.Start(ctx, "postgres.ArchiveRepository.Update",
		trace.WithAttributes(attribute.String("archive_id", archive.ID)))
	defer span.End()

	db := dbFromContext(ctx, r.client.db)

	result := db.Model(&entity.Archive{}).Where("id = ?", archive.ID).Select("*").Omit("id", "created_at").Updates(archive)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update archive: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrArchiveNotFound
	}
	return nil
}

// Delete removes an archive record.
func (r *ArchiveRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ArchiveRepository.Delete",
		trace.WithAttributes(attribute.String("archive_id", id)))
	defer span.End()

	db := dbFromContext(ctx, r.client.db)

	result := db.Delete(&entity.Archive{}, "id = ?", id)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to delete archive: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrArchiveNotFound
	}
	return nil
}

// List returns a filtered page ordered by last update.
func (r *ArchiveRepository) List(ctx context.Context, filter *repository.ArchiveFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Archive], error) {
	ctx, span := tracer.Start(ctx, "postgres.ArchiveRepository.List")
	defer span.End()

	db := dbFromContext(ctx, r.client.db)

	query := db.Model(&entity.Archive{})
	if filter != nil {
		if filter.MediaType != "" {
			needle, _ := json.Marshal([]entity.MediaType{filter.MediaType})
			query = query.Where("media_types @> ?::jsonb", string(needle))
		}
		if filter.Tag != "" {
			needle, _ := json.Marshal([]string{filter.Tag})
			query = query.Where("tags @> ?::jsonb", string(needle))
		}
		if filter.Title != "" {
			query = query.Where("title ILIKE ?", "%"+filter.Title+"%")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count archives: %w", err)
	}

	var archives []*entity.Archive
	err := query.
		Order("updated_at DESC").
		Limit(pagination.Limit()).
		Offset(pagination.Offset()).
		Find(&archives).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}

	return repository.NewPagedResult(archives, total, pagination), nil
}
