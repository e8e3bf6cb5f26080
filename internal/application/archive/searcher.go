package archive

import (
	"context"
	"fmt"
	"sort"

	"github.com/cloudwego/eino/components/embedding"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"heritage-archive-api/internal/application/assistant"
	"heritage-archive-api/internal/domain/entity"
	"heritage-archive-api/internal/domain/repository"
)

// Searcher performs similarity search over archive embeddings and hydrates
// hits into full archive records. It implements assistant.Searcher.
type Searcher struct {
	embedder embedding.Embedder
	vectors  VectorStore
	archives repository.ArchiveRepository
	uris     *URIResolver
}

// NewSearcher creates the searcher. embedder and vectors may be nil when the
// vector stack is not configured; Search then fails with ErrVectorDisabled.
func NewSearcher(embedder embedding.Embedder, vectors VectorStore, archives repository.ArchiveRepository, uris *URIResolver) *Searcher {
	return &Searcher{
		embedder: embedder,
		vectors:  vectors,
		archives: archives,
		uris:     uris,
	}
}

// Enabled reports whether the vector stack is configured.
func (s *Searcher) Enabled() bool {
	return s != nil && s.embedder != nil && s.vectors != nil
}

// Search embeds the query, runs vector similarity search and returns hydrated
// results with similarity at or above threshold, best first, at most limit.
func (s *Searcher) Search(ctx context.Context, query string, threshold float64, limit int) ([]assistant.ResultItem, error) {
	if !s.Enabled() {
		return nil, ErrVectorDisabled
	}
	ctx, span := tracer.Start(ctx, "archive.Search",
		trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Over-fetch so duplicate and below-threshold hits do not starve the cap.
	topK := limit * 2
	if topK < 10 {
		topK = 10
	}

	hits, err := s.vectors.Search(ctx, vector, topK)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Keep the best similarity per archive.
	best := make(map[string]float64, len(hits))
	for _, hit := range hits {
		similarity := scoreToSimilarity(hit.Score)
		if similarity < threshold {
			continue
		}
		if prev, ok := best[hit.ArchiveID]; !ok || similarity > prev {
			best[hit.ArchiveID] = similarity
		}
	}

	if len(best) == 0 {
		span.SetAttributes(attribute.Int("result_count", 0))
		return nil, nil
	}

	ids := make([]string, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}

	records, err := s.archives.GetByIDs(ctx, ids)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to hydrate search hits: %w", err)
	}

	items := make([]assistant.ResultItem, 0, len(records))
	for _, record := range records {
		items = append(items, s.toResultItem(record, best[record.ID]))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Similarity > items[j].Similarity
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	span.SetAttributes(attribute.Int("result_count", len(items)))
	return items, nil
}

func (s *Searcher) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := s.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("embedder returned empty vector")
	}

	vector := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		vector[i] = float32(v)
	}
	return vector, nil
}

func (s *Searcher) toResultItem(record *entity.Archive, similarity float64) assistant.ResultItem {
	mediaTypes := make([]string, 0, len(record.MediaTypes))
	for _, mt := range record.MediaTypes {
		mediaTypes = append(mediaTypes, string(mt))
	}

	return assistant.ResultItem{
		ID:          record.ID,
		Title:       record.Title,
		Description: record.Description,
		MediaTypes:  mediaTypes,
		Tags:        record.Tags,
		Dates:       record.Dates,
		FileURIs:    s.uris.Resolve(record.StoragePaths),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
		Similarity:  similarity,
	}
}

// scoreToSimilarity converts a COSINE distance into a similarity in [0, 1].
func scoreToSimilarity(score float32) float64 {
	similarity := 1 - float64(score)
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}
