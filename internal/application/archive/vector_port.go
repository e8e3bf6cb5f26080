package archive

import "context"

// VectorHit is one raw similarity hit from the vector index. Score is the
// metric distance as stored by the backend.
type VectorHit struct {
	ArchiveID string
	Title     string
	Score     float32
}

// VectorStore is the vector index port implemented by the Milvus adapter.
type VectorStore interface {
	// EnsureReady creates and loads the backing collection when missing.
	EnsureReady(ctx context.Context) error

	// Search returns the topK nearest hits for the query vector.
	Search(ctx context.Context, vector []float32, topK int) ([]*VectorHit, error)

	// Upsert replaces the stored embedding for an archive.
	Upsert(ctx context.Context, archiveID, title string, vector []float32) error

	// Remove deletes all embeddings of an archive.
	Remove(ctx context.Context, archiveID string) error
}
