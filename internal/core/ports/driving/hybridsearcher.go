package driving

import (
	"context"

	"github.com/localsearch/filesearch/internal/core/domain"
)

// HybridSearcher accepts a query, dispatches to one or more backends, fuses
// rankings, and hydrates results via MetadataStore.
type HybridSearcher interface {
	KeywordSearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
	SemanticSearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
	HybridSearch(ctx context.Context, query string, k int, keywordWeight float64) ([]domain.SearchResult, error)
	ImageSearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}
