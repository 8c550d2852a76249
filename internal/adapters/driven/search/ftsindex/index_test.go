package ftsindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestUpsertAndSearchReturnsOnlyMatchingDoc(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.UpsertDocument(ctx, 1, "/a/notes.txt", "notes.txt", "alpha beta gamma"))
	require.NoError(t, idx.UpsertDocument(ctx, 2, "/a/code.rs", "code.rs", "fn parse_json() { }"))
	require.NoError(t, idx.Commit(ctx))

	hits, err := idx.Search(ctx, "parse_json", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, int64(2), hits[0].FileID)
}

func TestUpsertIsIdempotentPerFile(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.UpsertDocument(ctx, 1, "/a/notes.txt", "notes.txt", "alpha beta gamma"))
	require.NoError(t, idx.UpsertDocument(ctx, 1, "/a/notes.txt", "notes.txt", "delta epsilon"))
	require.NoError(t, idx.Commit(ctx))

	hits, err := idx.Search(ctx, "alpha", 10)
	require.NoError(t, err)
	require.Empty(t, hits)

	hits, err = idx.Search(ctx, "delta", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.UpsertDocument(ctx, 1, "/a.txt", "a.txt", "alpha"))
	require.NoError(t, idx.DeleteDocument(ctx, 1))
	require.NoError(t, idx.Commit(ctx))

	hits, err := idx.Search(ctx, "alpha", 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestSearchNeverErrorsOnMalformedQuery(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	require.NoError(t, idx.UpsertDocument(ctx, 1, "/a.txt", "a.txt", "alpha beta"))
	require.NoError(t, idx.Commit(ctx))

	hits, err := idx.Search(ctx, `((unterminated "quote`, 10)
	require.NoError(t, err)
	_ = hits
}

func TestFilenameWeightedAboveBody(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.UpsertDocument(ctx, 1, "/a/report.txt", "report.txt", "this document mentions apples once"))
	require.NoError(t, idx.UpsertDocument(ctx, 2, "/a/apples.txt", "apples.txt", "an unrelated body"))
	require.NoError(t, idx.Commit(ctx))

	hits, err := idx.Search(ctx, "apples", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, int64(2), hits[0].FileID)
}
