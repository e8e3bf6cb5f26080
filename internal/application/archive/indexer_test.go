package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexerDisabledWithoutVectorStack(t *testing.T) {
	var nilIndexer *Indexer
	assert.False(t, nilIndexer.Enabled())
	assert.False(t, NewIndexer(nil, &fakeVectorStore{}).Enabled())
	assert.False(t, NewIndexer(&fakeEmbedder{}, nil).Enabled())

	err := NewIndexer(nil, nil).IndexArchive(context.Background(), testRecord("a", "Batik"))
	assert.ErrorIs(t, err, ErrVectorDisabled)
}

func TestIndexArchiveUpsertsEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{vectors: [][]float64{{0.25, 0.5}}}
	store := &fakeVectorStore{}
	indexer := NewIndexer(embedder, store)

	record := testRecord("a", "Batik sarong")
	require.NoError(t, indexer.IndexArchive(context.Background(), record))

	assert.Equal(t, []string{record.EmbeddingText()}, embedder.texts)
	assert.Equal(t, []float32{0.25, 0.5}, store.upserted["a"])
}

func TestIndexArchiveSkipsEmptyText(t *testing.T) {
	embedder := &fakeEmbedder{vectors: [][]float64{{0.5}}}
	store := &fakeVectorStore{}
	indexer := NewIndexer(embedder, store)

	record := testRecord("a", "")
	record.Description = ""
	record.Tags = nil

	require.NoError(t, indexer.IndexArchive(context.Background(), record))
	assert.Empty(t, embedder.texts, "empty archives must not be embedded")
	assert.Empty(t, store.upserted)
}

func TestIndexArchiveSurfacesFailures(t *testing.T) {
	t.Run("embedder failure", func(t *testing.T) {
		indexer := NewIndexer(&fakeEmbedder{err: errors.New("api down")}, &fakeVectorStore{})
		err := indexer.IndexArchive(context.Background(), testRecord("a", "Batik"))
		assert.Error(t, err)
	})

	t.Run("empty vector", func(t *testing.T) {
		indexer := NewIndexer(&fakeEmbedder{vectors: [][]float64{}}, &fakeVectorStore{})
		err := indexer.IndexArchive(context.Background(), testRecord("a", "Batik"))
		assert.Error(t, err)
	})

	t.Run("upsert failure", func(t *testing.T) {
		store := &fakeVectorStore{err: errors.New("milvus down")}
		indexer := NewIndexer(&fakeEmbedder{vectors: [][]float64{{0.5}}}, store)
		err := indexer.IndexArchive(context.Background(), testRecord("a", "Batik"))
		assert.Error(t, err)
	})
}

func TestRemoveArchive(t *testing.T) {
	store := &fakeVectorStore{}
	indexer := NewIndexer(&fakeEmbedder{vectors: [][]float64{{0.5}}}, store)

	require.NoError(t, indexer.RemoveArchive(context.Background(), "a"))
	assert.Equal(t, []string{"a"}, store.removed)

	err := NewIndexer(nil, nil).RemoveArchive(context.Background(), "a")
	assert.ErrorIs(t, err, ErrVectorDisabled)
}
