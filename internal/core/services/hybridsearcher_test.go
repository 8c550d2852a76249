package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driven"
)

type fakeMetadataStore struct {
	files  map[int64]domain.FileRecord
	nextID int64
}

func newFakeMetadataStore() *fakeMetadataStore {
	return &fakeMetadataStore{files: make(map[int64]domain.FileRecord)}
}

func (f *fakeMetadataStore) UpsertFile(ctx context.Context, rec domain.FileRecord) (int64, bool, error) {
	for id, existing := range f.files {
		if existing.Path == rec.Path {
			if existing.Hash == rec.Hash && existing.SizeBytes == rec.SizeBytes {
				return id, true, nil
			}
			rec.FileID = id
			rec.CreatedAt = existing.CreatedAt // matches store.go: UPDATE never touches created_at
			f.files[id] = rec
			return id, false, nil
		}
	}
	f.nextID++
	rec.FileID = f.nextID
	f.files[rec.FileID] = rec
	return rec.FileID, false, nil
}
func (f *fakeMetadataStore) UpsertContent(ctx context.Context, fileID int64, text string, wordCount int, language string) error {
	return nil
}
func (f *fakeMetadataStore) UpsertVector(ctx context.Context, fileID int64, vt domain.VectorType, vectorID int, chunkIndex int) error {
	return nil
}
func (f *fakeMetadataStore) DeleteFile(ctx context.Context, fileID int64) (domain.OrphanedVectors, error) {
	delete(f.files, fileID)
	return domain.OrphanedVectors{}, nil
}
func (f *fakeMetadataStore) GetFile(ctx context.Context, fileID int64) (*domain.FileRecord, error) {
	rec, ok := f.files[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}
func (f *fakeMetadataStore) GetByPath(ctx context.Context, path string) (*domain.FileRecord, error) {
	for _, rec := range f.files {
		if rec.Path == path {
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (f *fakeMetadataStore) GetContent(ctx context.Context, fileID int64) (*domain.ContentRecord, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeMetadataStore) ListAll(ctx context.Context) ([]domain.FileRecord, error) {
	out := make([]domain.FileRecord, 0, len(f.files))
	for _, rec := range f.files {
		out = append(out, rec)
	}
	return out, nil
}
func (f *fakeMetadataStore) ListUnderRoot(ctx context.Context, root string) ([]domain.FileRecord, error) {
	out := make([]domain.FileRecord, 0, len(f.files))
	for _, rec := range f.files {
		if strings.HasPrefix(rec.Path, root) {
			out = append(out, rec)
		}
	}
	return out, nil
}
func (f *fakeMetadataStore) ListVectorIDs(ctx context.Context, vt domain.VectorType) ([]int, error) {
	return nil, nil
}
func (f *fakeMetadataStore) DeleteVectorRefsByVectorID(ctx context.Context, vt domain.VectorType, vectorID int) error {
	return nil
}
func (f *fakeMetadataStore) Stats(ctx context.Context) (domain.Stats, error) { return domain.Stats{}, nil }
func (f *fakeMetadataStore) Close() error                                    { return nil }

var _ driven.MetadataStore = (*fakeMetadataStore)(nil)

type fakeInvertedIndex struct {
	hits []driven.InvertedHit
}

func (f *fakeInvertedIndex) UpsertDocument(ctx context.Context, fileID int64, path, filename, body string) error {
	return nil
}
func (f *fakeInvertedIndex) DeleteDocument(ctx context.Context, fileID int64) error { return nil }
func (f *fakeInvertedIndex) Commit(ctx context.Context) error                       { return nil }
func (f *fakeInvertedIndex) Search(ctx context.Context, query string, k int) ([]driven.InvertedHit, error) {
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}
func (f *fakeInvertedIndex) Close() error { return nil }

var _ driven.InvertedIndex = (*fakeInvertedIndex)(nil)

type fakeVectorStore struct {
	hits []driven.VectorHit
}

func (f *fakeVectorStore) Dim() int                                           { return 4 }
func (f *fakeVectorStore) Upsert(fileID int64, vector []float32) (int, error) { return 0, nil }
func (f *fakeVectorStore) Remove(vectorID int) error                          { return nil }
func (f *fakeVectorStore) Search(queryVector []float32, k int) ([]driven.VectorHit, error) {
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}
func (f *fakeVectorStore) Save(path string) error { return nil }
func (f *fakeVectorStore) Load(path string) error { return nil }
func (f *fakeVectorStore) Len() int               { return len(f.hits) }
func (f *fakeVectorStore) VectorIDs() []int       { return nil }

var _ driven.VectorStore = (*fakeVectorStore)(nil)

type fakeTextEncoder struct{}

func (fakeTextEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

type fakeImageEncoder struct{}

func (fakeImageEncoder) EncodeTextForImages(ctx context.Context, text string) ([]float32, error) {
	return []float32{0, 1, 0, 0}, nil
}

func seedFile(m *fakeMetadataStore, id int64, path, filename string) {
	m.files[id] = domain.FileRecord{FileID: id, Path: path, Filename: filename, FileType: domain.FileTypeCode}
}

func TestKeywordSearchHydratesAndFiltersMissingRows(t *testing.T) {
	meta := newFakeMetadataStore()
	seedFile(meta, 1, "/root/code.rs", "code.rs")
	idx := &fakeInvertedIndex{hits: []driven.InvertedHit{
		{FileID: 1, Score: 0.9},
		{FileID: 99, Score: 0.5}, // not present in metadata -> dropped silently
	}}

	s := NewSearcher(meta, idx, nil, nil, nil, nil)
	results, err := s.KeywordSearch(context.Background(), "parse_json", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "code.rs", results[0].Filename)
	assert.Equal(t, domain.SourceKeyword, results[0].Source)
}

func TestHybridSearchWeightOneMatchesKeywordOrder(t *testing.T) {
	meta := newFakeMetadataStore()
	seedFile(meta, 1, "/root/code.rs", "code.rs")
	seedFile(meta, 2, "/root/notes.txt", "notes.txt")

	idx := &fakeInvertedIndex{hits: []driven.InvertedHit{
		{FileID: 1, Score: 2.0},
		{FileID: 2, Score: 1.0},
	}}
	vecs := &fakeVectorStore{hits: []driven.VectorHit{
		{FileID: 2, Similarity: 0.95},
		{FileID: 1, Similarity: 0.1},
	}}

	s := NewSearcher(meta, idx, vecs, nil, fakeTextEncoder{}, nil)
	results, err := s.HybridSearch(context.Background(), "json parser", 10, 1.0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "code.rs", results[0].Filename)
	assert.Equal(t, "notes.txt", results[1].Filename)
}

func TestHybridSearchWeightZeroMatchesSemanticOrder(t *testing.T) {
	meta := newFakeMetadataStore()
	seedFile(meta, 1, "/root/code.rs", "code.rs")
	seedFile(meta, 2, "/root/notes.txt", "notes.txt")

	idx := &fakeInvertedIndex{hits: []driven.InvertedHit{
		{FileID: 1, Score: 2.0},
		{FileID: 2, Score: 1.0},
	}}
	vecs := &fakeVectorStore{hits: []driven.VectorHit{
		{FileID: 2, Similarity: 0.95},
		{FileID: 1, Similarity: 0.1},
	}}

	s := NewSearcher(meta, idx, vecs, nil, fakeTextEncoder{}, nil)
	results, err := s.HybridSearch(context.Background(), "json parser", 10, 0.0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "notes.txt", results[0].Filename)
	assert.Equal(t, "code.rs", results[1].Filename)
}

func TestHybridSearchRejectsOutOfRangeWeight(t *testing.T) {
	s := NewSearcher(newFakeMetadataStore(), &fakeInvertedIndex{}, nil, nil, nil, nil)
	_, err := s.HybridSearch(context.Background(), "q", 10, 1.5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImageSearchRequiresEncoderAndVectorStore(t *testing.T) {
	s := NewSearcher(newFakeMetadataStore(), &fakeInvertedIndex{}, nil, nil, nil, nil)
	_, err := s.ImageSearch(context.Background(), "a cat", 10)
	assert.ErrorIs(t, err, domain.ErrModelLoad)
}

func TestImageSearchHydratesResults(t *testing.T) {
	meta := newFakeMetadataStore()
	seedFile(meta, 1, "/root/cat.png", "cat.png")
	imgVecs := &fakeVectorStore{hits: []driven.VectorHit{{FileID: 1, Similarity: 0.8}}}

	s := NewSearcher(meta, &fakeInvertedIndex{}, nil, imgVecs, nil, fakeImageEncoder{})
	results, err := s.ImageSearch(context.Background(), "a cat", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.SourceImage, results[0].Source)
}

func TestFuseRRFBreaksTiesByAscendingFileID(t *testing.T) {
	keyword := []domain.SearchHit{{FileID: 5, Score: 1}}
	semantic := []domain.SearchHit{{FileID: 3, Score: 1}}
	fused := fuseRRF(keyword, semantic, 0.5, rrfConstant)
	require.Len(t, fused, 2)
	assert.InDelta(t, fused[0].Score, fused[1].Score, 1e-12)
	assert.Equal(t, int64(3), fused[0].FileID)
	assert.Equal(t, int64(5), fused[1].FileID)
}
