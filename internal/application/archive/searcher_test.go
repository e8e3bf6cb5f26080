package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage-archive-api/internal/domain/entity"
	"heritage-archive-api/internal/domain/repository"
)

type fakeEmbedder struct {
	vectors [][]float64
	err     error
	texts   []string
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	f.texts = append(f.texts, texts...)
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

type fakeVectorStore struct {
	hits     []*VectorHit
	err      error
	topK     int
	upserted map[string][]float32
	removed  []string
}

func (f *fakeVectorStore) EnsureReady(ctx context.Context) error { return nil }

func (f *fakeVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]*VectorHit, error) {
	f.topK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func (f *fakeVectorStore) Upsert(ctx context.Context, archiveID, title string, vector []float32) error {
	if f.upserted == nil {
		f.upserted = make(map[string][]float32)
	}
	f.upserted[archiveID] = vector
	return f.err
}

func (f *fakeVectorStore) Remove(ctx context.Context, archiveID string) error {
	f.removed = append(f.removed, archiveID)
	return f.err
}

type fakeArchiveRepo struct {
	records map[string]*entity.Archive
}

func (f *fakeArchiveRepo) Create(ctx context.Context, archive *entity.Archive) error { return nil }
func (f *fakeArchiveRepo) GetByID(ctx context.Context, id string) (*entity.Archive, error) {
	return f.records[id], nil
}
func (f *fakeArchiveRepo) Update(ctx context.Context, archive *entity.Archive) error { return nil }
func (f *fakeArchiveRepo) Delete(ctx context.Context, id string) error               { return nil }
func (f *fakeArchiveRepo) List(ctx context.Context, filter *repository.ArchiveFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Archive], error) {
	return nil, nil
}

func (f *fakeArchiveRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Archive, error) {
	out := make([]*entity.Archive, 0, len(ids))
	for _, id := range ids {
		if record, ok := f.records[id]; ok {
			out = append(out, record)
		}
	}
	return out, nil
}

func testRecord(id, title string) *entity.Archive {
	record := entity.NewArchive(title, "desc for "+title)
	record.ID = id
	record.Tags = []string{"tag-" + id}
	record.StoragePaths = []string{"files/" + id + ".jpg"}
	return record
}

func newTestSearcher(embedder *fakeEmbedder, store *fakeVectorStore, repo *fakeArchiveRepo) *Searcher {
	return NewSearcher(embedder, store, repo, NewURIResolver("https://cdn.example.com", "heritage"))
}

func TestSearcherDisabledWithoutVectorStack(t *testing.T) {
	repo := &fakeArchiveRepo{}

	s := NewSearcher(nil, nil, repo, nil)
	assert.False(t, s.Enabled())

	_, err := s.Search(context.Background(), "batik", 0.3, 10)
	assert.ErrorIs(t, err, ErrVectorDisabled)

	s = NewSearcher(&fakeEmbedder{}, nil, repo, nil)
	assert.False(t, s.Enabled())
}

func TestSearcherConvertsAndFiltersScores(t *testing.T) {
	// Milvus returns COSINE distances; similarity is 1 - distance.
	store := &fakeVectorStore{hits: []*VectorHit{
		{ArchiveID: "a", Score: 0.1},  // similarity 0.9
		{ArchiveID: "b", Score: 0.65}, // similarity 0.35
		{ArchiveID: "c", Score: 0.8},  // similarity 0.2, below threshold
	}}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.1, 0.2, 0.3}}}
	repo := &fakeArchiveRepo{records: map[string]*entity.Archive{
		"a": testRecord("a", "Batik sarong"),
		"b": testRecord("b", "Batik stamp"),
		"c": testRecord("c", "Gamelan gong"),
	}}

	items, err := newTestSearcher(embedder, store, repo).Search(context.Background(), "batik", 0.3, 10)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.InDelta(t, 0.9, items[0].Similarity, 1e-6)
	assert.Equal(t, "b", items[1].ID)
	assert.InDelta(t, 0.35, items[1].Similarity, 1e-6)
	assert.Equal(t, []string{"batik"}, embedder.texts)
}

func TestSearcherKeepsBestHitPerArchive(t *testing.T) {
	store := &fakeVectorStore{hits: []*VectorHit{
		{ArchiveID: "a", Score: 0.4},
		{ArchiveID: "a", Score: 0.1},
		{ArchiveID: "a", Score: 0.3},
	}}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.5}}}
	repo := &fakeArchiveRepo{records: map[string]*entity.Archive{
		"a": testRecord("a", "Batik sarong"),
	}}

	items, err := newTestSearcher(embedder, store, repo).Search(context.Background(), "batik", 0.3, 10)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.InDelta(t, 0.9, items[0].Similarity, 1e-6)
}

func TestSearcherCapsAndOrdersResults(t *testing.T) {
	store := &fakeVectorStore{hits: []*VectorHit{
		{ArchiveID: "low", Score: 0.5},
		{ArchiveID: "high", Score: 0.05},
		{ArchiveID: "mid", Score: 0.3},
	}}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.5}}}
	repo := &fakeArchiveRepo{records: map[string]*entity.Archive{
		"low":  testRecord("low", "Low"),
		"mid":  testRecord("mid", "Mid"),
		"high": testRecord("high", "High"),
	}}

	items, err := newTestSearcher(embedder, store, repo).Search(context.Background(), "batik", 0.3, 2)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "high", items[0].ID)
	assert.Equal(t, "mid", items[1].ID)
	// Over-fetch so dedup and thresholding do not starve the cap.
	assert.Equal(t, 10, store.topK)
}

func TestSearcherOverFetchScalesWithLimit(t *testing.T) {
	store := &fakeVectorStore{}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.5}}}
	repo := &fakeArchiveRepo{}

	_, err := newTestSearcher(embedder, store, repo).Search(context.Background(), "batik", 0.3, 25)
	require.NoError(t, err)
	assert.Equal(t, 50, store.topK)
}

func TestSearcherClampsSimilarity(t *testing.T) {
	store := &fakeVectorStore{hits: []*VectorHit{
		{ArchiveID: "a", Score: -0.2}, // raw similarity 1.2
	}}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.5}}}
	repo := &fakeArchiveRepo{records: map[string]*entity.Archive{
		"a": testRecord("a", "Batik sarong"),
	}}

	items, err := newTestSearcher(embedder, store, repo).Search(context.Background(), "batik", 0.3, 10)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 1.0, items[0].Similarity)
}

func TestSearcherEmptyWhenNothingClearsThreshold(t *testing.T) {
	store := &fakeVectorStore{hits: []*VectorHit{
		{ArchiveID: "a", Score: 0.9},
	}}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.5}}}
	repo := &fakeArchiveRepo{records: map[string]*entity.Archive{
		"a": testRecord("a", "Batik sarong"),
	}}

	items, err := newTestSearcher(embedder, store, repo).Search(context.Background(), "batik", 0.3, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearcherPropagatesBackendErrors(t *testing.T) {
	t.Run("embedder failure", func(t *testing.T) {
		embedder := &fakeEmbedder{err: errors.New("embedding api down")}
		s := newTestSearcher(embedder, &fakeVectorStore{}, &fakeArchiveRepo{})

		_, err := s.Search(context.Background(), "batik", 0.3, 10)
		assert.Error(t, err)
	})

	t.Run("vector store failure", func(t *testing.T) {
		embedder := &fakeEmbedder{vectors: [][]float64{{0.5}}}
		store := &fakeVectorStore{err: errors.New("milvus down")}
		s := newTestSearcher(embedder, store, &fakeArchiveRepo{})

		_, err := s.Search(context.Background(), "batik", 0.3, 10)
		assert.Error(t, err)
	})

	t.Run("empty embedding vector", func(t *testing.T) {
		embedder := &fakeEmbedder{vectors: [][]float64{}}
		s := newTestSearcher(embedder, &fakeVectorStore{}, &fakeArchiveRepo{})

		_, err := s.Search(context.Background(), "batik", 0.3, 10)
		assert.Error(t, err)
	})
}

func TestSearcherResolvesFileURIs(t *testing.T) {
	store := &fakeVectorStore{hits: []*VectorHit{{ArchiveID: "a", Score: 0.1}}}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.5}}}
	repo := &fakeArchiveRepo{records: map[string]*entity.Archive{
		"a": testRecord("a", "Batik sarong"),
	}}

	items, err := newTestSearcher(embedder, store, repo).Search(context.Background(), "batik", 0.3, 10)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, []string{"https://cdn.example.com/heritage/files/a.jpg"}, items[0].FileURIs)
}
