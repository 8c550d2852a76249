// Package driven declares the interfaces core services consume; concrete
// adapters under internal/adapters/driven implement them.
package driven

import (
	"context"

	"github.com/localsearch/filesearch/internal/core/domain"
)

// MetadataStore is the durable relational store holding file records,
// extracted text, and vector-index backreferences. It owns schema
// lifecycle and cascade semantics.
type MetadataStore interface {
	// UpsertFile inserts by Path or updates the existing row, returning a
	// stable FileID. If an existing row has identical Hash and SizeBytes,
	// it returns the existing id untouched (no-op fast path) and reports
	// that via the second return value.
	UpsertFile(ctx context.Context, rec domain.FileRecord) (fileID int64, fastPath bool, err error)

	// UpsertContent replaces the ContentRecord for fileID and updates the
	// FTS mirror.
	UpsertContent(ctx context.Context, fileID int64, text string, wordCount int, language string) error

	// UpsertVector inserts or replaces a VectorRef for (fileID, vt, chunkIndex).
	UpsertVector(ctx context.Context, fileID int64, vt domain.VectorType, vectorID int, chunkIndex int) error

	// DeleteFile removes the FileRecord (cascading Content and VectorRef
	// rows) and returns the vector ids orphaned by the cascade.
	DeleteFile(ctx context.Context, fileID int64) (domain.OrphanedVectors, error)

	GetFile(ctx context.Context, fileID int64) (*domain.FileRecord, error)
	GetByPath(ctx context.Context, path string) (*domain.FileRecord, error)
	GetContent(ctx context.Context, fileID int64) (*domain.ContentRecord, error)
	ListAll(ctx context.Context) ([]domain.FileRecord, error)

	// ListUnderRoot returns every FileRecord whose Path is within root,
	// used by the reap/prune pass.
	ListUnderRoot(ctx context.Context, root string) ([]domain.FileRecord, error)

	// ListVectorIDs returns every vector id currently referenced for the
	// given vector type. No service calls it: the Ingestor runs no pass
	// that compares VectorRef rows against a loaded vector snapshot.
	ListVectorIDs(ctx context.Context, vt domain.VectorType) ([]int, error)

	// DeleteVectorRefsByVectorID removes the VectorRef rows of type vt that
	// point at vectorID. No service calls it.
	DeleteVectorRefsByVectorID(ctx context.Context, vt domain.VectorType, vectorID int) error

	Stats(ctx context.Context) (domain.Stats, error)
	Close() error
}
