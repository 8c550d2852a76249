package driven

import "context"

// InvertedIndex is the BM25 full-text engine over (path, filename, body)
// fields, keyed by file_id.
type InvertedIndex interface {
	// UpsertDocument performs delete-by-file_id then add, so the writer
	// is idempotent per file.
	UpsertDocument(ctx context.Context, fileID int64, path, filename, body string) error

	DeleteDocument(ctx context.Context, fileID int64) error

	// Commit flushes the writer; MUST be durable before returning.
	Commit(ctx context.Context) error

	// Search returns up to k results ordered by descending score. Never
	// errors on malformed query syntax — falls back to tokenized match.
	Search(ctx context.Context, query string, k int) ([]InvertedHit, error)

	Close() error
}

// InvertedHit is one ranked result from InvertedIndex.Search.
type InvertedHit struct {
	FileID int64
	Score  float64
}
