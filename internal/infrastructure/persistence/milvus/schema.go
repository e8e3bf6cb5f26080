// Package milvus provides the Milvus vector store access layer.
package milvus

import (
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionArchiveVectors holds one embedding per archive record.
	CollectionArchiveVectors = "archive_vectors"

	// DefaultVectorDimension matches the default embedding model.
	DefaultVectorDimension = 1536
)

// ArchiveVectorsSchema builds the archive_vectors collection schema for the
// given embedding dimension.
func ArchiveVectorsSchema(dim int) *entity.Schema {
	if dim <= 0 {
		dim = DefaultVectorDimension
	}
	return &entity.Schema{
		CollectionName: CollectionArchiveVectors,
		Description:    "Archive embeddings for similarity search",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", dim),
				},
			},
			{
				Name:     "archive_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
		},
	}
}

// ArchiveVector is one indexed archive embedding.
type ArchiveVector struct {
	ID        string    `json:"id"`
	Vector    []float32 `json:"vector"`
	ArchiveID string    `json:"archive_id"`
	Title     string    `json:"title"`
}
