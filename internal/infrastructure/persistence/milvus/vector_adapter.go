package milvus

import (
	"context"

	"github.com/google/uuid"

	"heritage-archive-api/internal/application/archive"
)

// VectorAdapter exposes the archive_vectors repository through the
// application-level VectorStore port.
type VectorAdapter struct {
	repo *Repository
}

// NewVectorAdapter wraps the repository. Returns nil when repo is nil so the
// application degrades to metadata-only mode.
func NewVectorAdapter(repo *Repository) *VectorAdapter {
	if repo == nil {
		return nil
	}
	return &VectorAdapter{repo: repo}
}

var _ archive.VectorStore = (*VectorAdapter)(nil)

// EnsureReady creates and loads the archive_vectors collection when missing.
func (a *VectorAdapter) EnsureReady(ctx context.Context) error {
	return a.repo.EnsureArchiveVectorsCollection(ctx)
}

// Search returns the topK nearest hits for the query vector.
func (a *VectorAdapter) Search(ctx context.Context, vector []float32, topK int) ([]*archive.VectorHit, error) {
	results, err := a.repo.SearchArchives(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	hits := make([]*archive.VectorHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, &archive.VectorHit{
			ArchiveID: r.ArchiveID,
			Title:     r.Title,
			Score:     r.Score,
		})
	}
	return hits, nil
}

// Upsert replaces the stored embedding for an archive.
func (a *VectorAdapter) Upsert(ctx context.Context, archiveID, title string, vector []float32) error {
	return a.repo.UpsertArchiveVector(ctx, &ArchiveVector{
		ID:        uuid.NewString(),
		Vector:    vector,
		ArchiveID: archiveID,
		Title:     title,
	})
}

// Remove deletes all embeddings of an archive.
func (a *VectorAdapter) Remove(ctx context.Context, archiveID string) error {
	return a.repo.DeleteArchiveVectors(ctx, archiveID)
}
