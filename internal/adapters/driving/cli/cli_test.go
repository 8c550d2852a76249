package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localsearch/filesearch/internal/core/domain"
)

type fakeIngestor struct {
	report domain.IndexReport
	err    error

	clearCalled bool
	clearErr    error

	lastRoot string
	lastOpts domain.IndexOptions
}

func (f *fakeIngestor) Index(ctx context.Context, root string, opts domain.IndexOptions) (domain.IndexReport, error) {
	f.lastRoot = root
	f.lastOpts = opts
	return f.report, f.err
}

func (f *fakeIngestor) Clear(ctx context.Context) error {
	f.clearCalled = true
	return f.clearErr
}

type fakeSearcher struct {
	results []domain.SearchResult
	err     error

	lastMode   string
	lastWeight float64
}

func (f *fakeSearcher) KeywordSearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	f.lastMode = "keyword"
	return f.results, f.err
}
func (f *fakeSearcher) SemanticSearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	f.lastMode = "semantic"
	return f.results, f.err
}
func (f *fakeSearcher) HybridSearch(ctx context.Context, query string, k int, w float64) ([]domain.SearchResult, error) {
	f.lastMode = "hybrid"
	f.lastWeight = w
	return f.results, f.err
}
func (f *fakeSearcher) ImageSearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	f.lastMode = "image"
	return f.results, f.err
}

func resetCLIState(t *testing.T) {
	t.Helper()
	ingestor = nil
	searcher = nil
	statsFn = nil
	defaultMaxBytes = 0
	defaultWeight = 0
	defaultSemantic = false
	indexSemantic, indexPrune, indexMaxBytes = false, false, 0
	searchLimit, searchJSON, searchMode, searchWeight = 10, false, "hybrid", 0
	clearYes = false
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
}

func TestRunIndexUsesConfigDefaultsWhenFlagsUnset(t *testing.T) {
	resetCLIState(t)
	ing := &fakeIngestor{report: domain.IndexReport{Indexed: 3}}
	Init(ing, &fakeSearcher{}, nil, 1024, 0.5, true)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"index", "/tmp/somewhere"})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "/tmp/somewhere", ing.lastRoot)
	assert.True(t, ing.lastOpts.Semantic, "semantic should fall back to config default")
	assert.Equal(t, int64(1024), ing.lastOpts.MaxBytes)
	assert.Contains(t, buf.String(), "Indexed 3 files")
}

func TestRunIndexFlagsOverrideDefaults(t *testing.T) {
	resetCLIState(t)
	ing := &fakeIngestor{}
	Init(ing, &fakeSearcher{}, nil, 1024, 0.5, true)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"index", "/tmp/x", "--semantic=false", "--max-bytes=99"})

	require.NoError(t, rootCmd.Execute())
	assert.False(t, ing.lastOpts.Semantic)
	assert.Equal(t, int64(99), ing.lastOpts.MaxBytes)
}

func TestRunSearchDefaultsToHybridWithConfigWeight(t *testing.T) {
	resetCLIState(t)
	s := &fakeSearcher{results: []domain.SearchResult{{Path: "/a.txt", Score: 0.5}}}
	Init(&fakeIngestor{}, s, nil, 0, 0.7, false)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "hello"})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "hybrid", s.lastMode)
	assert.Equal(t, 0.7, s.lastWeight)
	assert.Contains(t, buf.String(), "/a.txt")
}

func TestRunSearchJSONOutput(t *testing.T) {
	resetCLIState(t)
	s := &fakeSearcher{results: []domain.SearchResult{{Path: "/a.txt", Score: 0.5}}}
	Init(&fakeIngestor{}, s, nil, 0, 0.5, false)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "hello", "--json"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), `"path": "/a.txt"`)
}

func TestRunSearchRejectsUnknownMode(t *testing.T) {
	resetCLIState(t)
	Init(&fakeIngestor{}, &fakeSearcher{}, nil, 0, 0.5, false)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"search", "hello", "--mode", "bogus"})

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunStatsReportsCounts(t *testing.T) {
	resetCLIState(t)
	Init(&fakeIngestor{}, &fakeSearcher{}, func(ctx context.Context) (domain.Stats, error) {
		return domain.Stats{TotalFiles: 5, IndexedFiles: 4, TotalBytes: 2048}, nil
	}, 0, 0.5, false)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Indexed files: 5")
}

func TestRunClearSkipsWithoutConfirmation(t *testing.T) {
	resetCLIState(t)
	ing := &fakeIngestor{}
	Init(ing, &fakeSearcher{}, nil, 0, 0.5, false)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"clear"})

	require.NoError(t, rootCmd.Execute())
	assert.False(t, ing.clearCalled, "non-interactive stdin without --yes must not clear")
}

func TestRunClearWithYesFlag(t *testing.T) {
	resetCLIState(t)
	ing := &fakeIngestor{}
	Init(ing, &fakeSearcher{}, nil, 0, 0.5, false)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"clear", "--yes"})

	require.NoError(t, rootCmd.Execute())
	assert.True(t, ing.clearCalled)
}
