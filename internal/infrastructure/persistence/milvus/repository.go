// Package milvus provides the Milvus vector store access layer.
package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"heritage-archive-api/pkg/metrics"
)

// Repository manages the archive_vectors collection.
type Repository struct {
	client    *Client
	dimension int
}

// NewRepository creates the repository for the given embedding dimension.
func NewRepository(client *Client, dimension int) *Repository {
	if dimension <= 0 {
		dimension = DefaultVectorDimension
	}
	return &Repository{client: client, dimension: dimension}
}

// VectorSearchResult is one raw similarity hit. Score carries the metric
// distance as returned by Milvus.
type VectorSearchResult struct {
	ID        string
	ArchiveID string
	Title     string
	Score     float32
}

// CreateCollection creates a collection from schema.
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex creates the HNSW index on the vector field.
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// SearchArchives runs a vector similarity search over archive embeddings.
func (r *Repository) SearchArchives(ctx context.Context, queryVector []float32, topK int) ([]*VectorSearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchArchives",
		trace.WithAttributes(attribute.Int("top_k", topK)))
	defer span.End()

	collName := r.client.CollectionName(CollectionArchiveVectors)
	start := time.Now()

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		"",
		[]string{"id", "archive_id", "title"},
		[]entity.Vector{entity.FloatVector(queryVector)},
		"vector",
		entity.COSINE,
		topK,
		sp,
	)
	metrics.MilvusSearchDuration.WithLabelValues(CollectionArchiveVectors).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		metrics.MilvusSearchTotal.WithLabelValues(CollectionArchiveVectors, "error").Inc()
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	metrics.MilvusSearchTotal.WithLabelValues(CollectionArchiveVectors, "success").Inc()

	var searchResults []*VectorSearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &VectorSearchResult{
				Score: result.Scores[i],
			}
			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				sr.ID = idCol.Data()[i]
			}
			if archiveCol, ok := result.Fields.GetColumn("archive_id").(*entity.ColumnVarChar); ok {
				sr.ArchiveID = archiveCol.Data()[i]
			}
			if titleCol, ok := result.Fields.GetColumn("title").(*entity.ColumnVarChar); ok {
				sr.Title = titleCol.Data()[i]
			}
			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}

// UpsertArchiveVector replaces the stored embedding for an archive.
func (r *Repository) UpsertArchiveVector(ctx context.Context, vec *ArchiveVector) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	if vec == nil {
		return nil
	}
	ctx, span := tracer.Start(ctx, "milvus.UpsertArchiveVector",
		trace.WithAttributes(attribute.String("archive_id", vec.ArchiveID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionArchiveVectors)

	// One embedding per archive: clear stale vectors before inserting.
	filter := fmt.Sprintf(`archive_id == "%s"`, vec.ArchiveID)
	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete stale vector: %w", err)
	}

	idCol := entity.NewColumnVarChar("id", []string{vec.ID})
	vectorCol := entity.NewColumnFloatVector("vector", r.dimension, [][]float32{vec.Vector})
	archiveCol := entity.NewColumnVarChar("archive_id", []string{vec.ArchiveID})
	titleCol := entity.NewColumnVarChar("title", []string{vec.Title})

	_, err := r.client.milvus.Insert(ctx, collName, "", idCol, vectorCol, archiveCol, titleCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert vector: %w", err)
	}

	return nil
}

// DeleteArchiveVectors removes all embeddings of an archive.
func (r *Repository) DeleteArchiveVectors(ctx context.Context, archiveID string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.DeleteArchiveVectors",
		trace.WithAttributes(attribute.String("archive_id", archiveID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionArchiveVectors)
	filter := fmt.Sprintf(`archive_id == "%s"`, archiveID)

	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete vectors: %w", err)
	}

	return nil
}

// EnsureArchiveVectorsCollection creates and loads the collection when
// missing. Never drops or rebuilds existing data.
func (r *Repository) EnsureArchiveVectorsCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionArchiveVectors)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, ArchiveVectorsSchema(r.dimension)); err != nil {
			return err
		}
		// Index creation failure is recoverable by operations later.
		_ = r.CreateIndex(ctx, CollectionArchiveVectors)
	}

	return r.client.LoadCollection(ctx, CollectionArchiveVectors)
}
