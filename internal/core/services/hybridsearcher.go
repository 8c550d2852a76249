package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
	"github.com/localsearch/filesearch/internal/core/ports/driving"
	"github.com/localsearch/filesearch/internal/logger"
)

var _ driving.HybridSearcher = (*Searcher)(nil)

// rrfConstant is the C in rrf_score(d) = w·1/(C+rank_k(d)) + (1-w)·1/(C+rank_s(d)).
const rrfConstant = 60

// oversampleFactor multiplies k when pre-fetching each ranking ahead of
// fusion, so a document ranked outside k in one list but inside it in the
// other still has a chance to surface once fused.
const oversampleFactor = 3

// TextEncoder is the subset of internal/embedder's TextEncoder the
// searcher needs to turn a query string into a text-space vector.
type TextEncoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// ImageTextEncoder is the subset of internal/embedder's CrossModalEncoder
// the searcher needs to embed a query string into the image embedding
// space.
type ImageTextEncoder interface {
	EncodeTextForImages(ctx context.Context, text string) ([]float32, error)
}

// Searcher implements driving.HybridSearcher over the three durable
// stores and the two encoder families. textVectors/imageVectors/
// textEncoder/imageEncoder may be nil when semantic mode is disabled;
// KeywordSearch alone still works.
type Searcher struct {
	metadata     driven.MetadataStore
	invertedIdx  driven.InvertedIndex
	textVectors  driven.VectorStore
	imageVectors driven.VectorStore
	textEncoder  TextEncoder
	imageEncoder ImageTextEncoder
}

// NewSearcher wires the collaborators. Pass nil for textVectors/
// imageVectors/textEncoder/imageEncoder to run keyword-only.
func NewSearcher(
	metadata driven.MetadataStore,
	invertedIdx driven.InvertedIndex,
	textVectors driven.VectorStore,
	imageVectors driven.VectorStore,
	textEncoder TextEncoder,
	imageEncoder ImageTextEncoder,
) *Searcher {
	return &Searcher{
		metadata:     metadata,
		invertedIdx:  invertedIdx,
		textVectors:  textVectors,
		imageVectors: imageVectors,
		textEncoder:  textEncoder,
		imageEncoder: imageEncoder,
	}
}

// KeywordSearch implements driving.HybridSearcher.
func (s *Searcher) KeywordSearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	hits, err := s.keywordHits(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, hits, domain.SourceKeyword)
}

// SemanticSearch implements driving.HybridSearcher.
func (s *Searcher) SemanticSearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	hits, err := s.semanticHits(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, hits, domain.SourceSemantic)
}

// HybridSearch implements driving.HybridSearcher: runs keyword and
// semantic rankings in parallel over an oversampled pool, fuses with
// weighted Reciprocal Rank Fusion, and returns the top k.
func (s *Searcher) HybridSearch(ctx context.Context, query string, k int, keywordWeight float64) ([]domain.SearchResult, error) {
	if keywordWeight < 0 || keywordWeight > 1 {
		return nil, fmt.Errorf("keyword_weight %v out of [0,1]: %w", keywordWeight, domain.ErrInvalidInput)
	}

	pool := k * oversampleFactor

	var keywordHits, semanticHits []domain.SearchHit
	var keywordErr, semanticErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		keywordHits, keywordErr = s.keywordHits(ctx, query, pool)
	}()
	go func() {
		defer wg.Done()
		semanticHits, semanticErr = s.semanticHits(ctx, query, pool)
	}()
	wg.Wait()

	if keywordErr != nil {
		logger.Debug("hybrid search: keyword ranking failed: %v", keywordErr)
		keywordHits = nil
	}
	if semanticErr != nil {
		logger.Debug("hybrid search: semantic ranking failed: %v", semanticErr)
		semanticHits = nil
	}
	if keywordHits == nil && semanticHits == nil {
		return nil, fmt.Errorf("hybrid search: keyword=%v, semantic=%v", keywordErr, semanticErr)
	}

	fused := fuseRRF(keywordHits, semanticHits, keywordWeight, rrfConstant)
	if len(fused) > k {
		fused = fused[:k]
	}
	return s.hydrate(ctx, fused, domain.SourceHybrid)
}

// ImageSearch implements driving.HybridSearcher: embeds query with the
// cross-modal text encoder and searches the image VectorStore.
func (s *Searcher) ImageSearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if s.imageEncoder == nil || s.imageVectors == nil {
		return nil, fmt.Errorf("image search: %w", domain.ErrModelLoad)
	}
	vec, err := s.imageEncoder.EncodeTextForImages(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("image search: encode query: %w", err)
	}
	vhits, err := s.imageVectors.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("image search: %w", err)
	}
	hits := make([]domain.SearchHit, len(vhits))
	for i, h := range vhits {
		hits[i] = domain.SearchHit{FileID: h.FileID, Score: h.Similarity, Source: domain.SourceImage}
	}
	return s.hydrate(ctx, hits, domain.SourceImage)
}

func (s *Searcher) keywordHits(ctx context.Context, query string, k int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	ihits, err := s.invertedIdx.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	hits := make([]domain.SearchHit, len(ihits))
	for i, h := range ihits {
		hits[i] = domain.SearchHit{FileID: h.FileID, Score: h.Score, Source: domain.SourceKeyword}
	}
	return hits, nil
}

func (s *Searcher) semanticHits(ctx context.Context, query string, k int) ([]domain.SearchHit, error) {
	if s.textEncoder == nil || s.textVectors == nil {
		return nil, fmt.Errorf("semantic search: %w", domain.ErrModelLoad)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	vec, err := s.textEncoder.Encode(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("semantic search: encode query: %w", err)
	}
	vhits, err := s.textVectors.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	hits := make([]domain.SearchHit, len(vhits))
	for i, h := range vhits {
		hits[i] = domain.SearchHit{FileID: h.FileID, Score: h.Similarity, Source: domain.SourceSemantic}
	}
	return hits, nil
}

// fuseRRF combines two rankings with weighted Reciprocal Rank Fusion. A
// document absent from a list contributes 0 for that list's term. Ties
// are broken by ascending file_id.
func fuseRRF(keyword, semantic []domain.SearchHit, w float64, c int) []domain.SearchHit {
	rankOf := func(hits []domain.SearchHit) map[int64]int {
		ranks := make(map[int64]int, len(hits))
		for i, h := range hits {
			ranks[h.FileID] = i
		}
		return ranks
	}
	keywordRank := rankOf(keyword)
	semanticRank := rankOf(semantic)

	ids := make(map[int64]struct{})
	for id := range keywordRank {
		ids[id] = struct{}{}
	}
	for id := range semanticRank {
		ids[id] = struct{}{}
	}

	fused := make([]domain.SearchHit, 0, len(ids))
	for id := range ids {
		var score float64
		if rank, ok := keywordRank[id]; ok {
			score += w * (1.0 / float64(c+rank+1))
		}
		if rank, ok := semanticRank[id]; ok {
			score += (1 - w) * (1.0 / float64(c+rank+1))
		}
		fused = append(fused, domain.SearchHit{FileID: id, Score: score, Source: domain.SourceHybrid})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].FileID < fused[j].FileID
	})
	return fused
}

// hydrate converts raw hits to SearchResults via MetadataStore, silently
// dropping rows the store no longer has (reconciliation drift).
func (s *Searcher) hydrate(ctx context.Context, hits []domain.SearchHit, source domain.SearchSource) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		rec, err := s.metadata.GetFile(ctx, h.FileID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("hydrate file %d: %w", h.FileID, err)
		}
		if rec == nil {
			continue
		}

		preview := ""
		if content, err := s.metadata.GetContent(ctx, h.FileID); err == nil && content != nil {
			preview = preview200(content.Text)
		}

		results = append(results, domain.SearchResult{
			FileID:   h.FileID,
			Score:    h.Score,
			Source:   source,
			Path:     rec.Path,
			Filename: rec.Filename,
			FileType: rec.FileType,
			Preview:  preview,
		})
	}
	return results, nil
}

func preview200(text string) string {
	const maxLen = 200
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen]
}
