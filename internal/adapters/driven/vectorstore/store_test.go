package vectorstore

import (
	"path/filepath"
	"testing"

	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestUpsertNormalizesAndSearchOrdersByDescendingSimilarity(t *testing.T) {
	s := New(3)

	id1, err := s.Upsert(1, []float32{1, 0, 0})
	require.NoError(t, err)
	id2, err := s.Upsert(2, []float32{0.9, 0.1, 0})
	require.NoError(t, err)

	hits, err := s.Search([]float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, id1, hits[0].VectorID)
	require.Equal(t, id2, hits[1].VectorID)
	require.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestUpsertReplacesExistingHandleForSameFile(t *testing.T) {
	s := New(3)
	id1, err := s.Upsert(1, []float32{1, 0, 0})
	require.NoError(t, err)
	id2, err := s.Upsert(1, []float32{0, 1, 0})
	require.NoError(t, err)
	require.Equal(t, id1, id2)
	require.Equal(t, 1, s.Len())
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	s := New(3)
	_, err := s.Upsert(1, []float32{1, 0})
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := New(3)
	id, err := s.Upsert(1, []float32{1, 0, 0})
	require.NoError(t, err)
	require.NoError(t, s.Remove(id))
	require.NoError(t, s.Remove(id))
	require.Equal(t, 0, s.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(3)
	_, err := s.Upsert(1, []float32{1, 0, 0})
	require.NoError(t, err)
	_, err = s.Upsert(2, []float32{0, 1, 0})
	require.NoError(t, err)

	p := filepath.Join(t.TempDir(), "vectors.json")
	require.NoError(t, s.Save(p))

	loaded := New(3)
	require.NoError(t, loaded.Load(p))
	require.Equal(t, s.Len(), loaded.Len())

	hits, err := loaded.Search([]float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, int64(1), hits[0].FileID)
}

func TestLoadRejectsDimensionMismatch(t *testing.T) {
	s := New(512)
	_, err := s.Upsert(1, make([]float32, 512))
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "image_vectors.json")
	require.NoError(t, s.Save(p))

	target := New(384)
	err = target.Load(p)
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)
	require.Equal(t, 0, target.Len())
}
