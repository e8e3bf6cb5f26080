package archive

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"heritage-archive-api/internal/domain/entity"
	"heritage-archive-api/pkg/metrics"
)

var tracer = otel.Tracer("archive")

// Indexer maintains archive embeddings in the vector store.
type Indexer struct {
	embedder embedding.Embedder
	vectors  VectorStore
}

// NewIndexer creates the indexer. embedder and vectors may be nil when the
// vector stack is not configured; indexing then fails with ErrVectorDisabled.
func NewIndexer(embedder embedding.Embedder, vectors VectorStore) *Indexer {
	return &Indexer{
		embedder: embedder,
		vectors:  vectors,
	}
}

// Enabled reports whether the vector stack is configured.
func (i *Indexer) Enabled() bool {
	return i != nil && i.embedder != nil && i.vectors != nil
}

// IndexArchive embeds the archive text and upserts it into the vector store.
func (i *Indexer) IndexArchive(ctx context.Context, archive *entity.Archive) error {
	if !i.Enabled() {
		return ErrVectorDisabled
	}
	ctx, span := tracer.Start(ctx, "archive.IndexArchive",
		trace.WithAttributes(attribute.String("archive_id", archive.ID)))
	defer span.End()

	text := archive.EmbeddingText()
	if text == "" {
		metrics.ArchiveIndexTotal.WithLabelValues("index", "skipped").Inc()
		return nil
	}

	embeddings, err := i.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		span.RecordError(err)
		metrics.ArchiveIndexTotal.WithLabelValues("index", "error").Inc()
		return fmt.Errorf("failed to embed archive: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		metrics.ArchiveIndexTotal.WithLabelValues("index", "error").Inc()
		return fmt.Errorf("embedder returned empty vector")
	}

	vector := make([]float32, len(embeddings[0]))
	for j, v := range embeddings[0] {
		vector[j] = float32(v)
	}

	if err := i.vectors.Upsert(ctx, archive.ID, archive.Title, vector); err != nil {
		span.RecordError(err)
		metrics.ArchiveIndexTotal.WithLabelValues("index", "error").Inc()
		return err
	}

	metrics.ArchiveIndexTotal.WithLabelValues("index", "success").Inc()
	return nil
}

// RemoveArchive deletes the archive's embeddings from the vector store.
func (i *Indexer) RemoveArchive(ctx context.Context, archiveID string) error {
	if !i.Enabled() {
		return ErrVectorDisabled
	}
	ctx, span := tracer.Start(ctx, "archive.RemoveArchive",
		trace.WithAttributes(attribute.String("archive_id", archiveID)))
	defer span.End()

	if err := i.vectors.Remove(ctx, archiveID); err != nil {
		span.RecordError(err)
		metrics.ArchiveIndexTotal.WithLabelValues("remove", "error").Inc()
		return err
	}

	metrics.ArchiveIndexTotal.WithLabelValues("remove", "success").Inc()
	return nil
}
