package file

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStoreDefaults(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	cfg := s.Config()
	require.Equal(t, 0.5, cfg.KeywordWeight)
	require.Contains(t, cfg.ExcludeGlobs, ".git")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	cfg := s.Config()
	cfg.Roots = []string{"/home/user/docs"}
	cfg.KeywordWeight = 0.7
	cfg.Semantic = true
	s.Set(cfg)
	require.NoError(t, s.Save())

	s2, err := NewStore(dir)
	require.NoError(t, err)
	got := s2.Config()
	require.Equal(t, []string{"/home/user/docs"}, got.Roots)
	require.Equal(t, 0.7, got.KeywordWeight)
	require.True(t, got.Semantic)
}
