package embedstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, model string) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache", "embeddings.db")
	s, err := Open(path, model)
	require.NoError(t, err)
	return s, path
}

func TestPutAndGet(t *testing.T) {
	s, _ := openTemp(t, "model-a")
	defer s.Close()

	require.NoError(t, s.PutMany(map[string][]float32{
		"hello":  {1, -2.5, 0},
		"வணக்கம்": {0.25},
	}))

	got, err := s.GetMany([]string{"hello", "absent", "வணக்கம்"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]float32{
		"hello":  {1, -2.5, 0},
		"வணக்கம்": {0.25},
	}, got)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPersistsAcrossReopen(t *testing.T) {
	s, path := openTemp(t, "model-a")
	require.NoError(t, s.PutMany(map[string][]float32{"x": {3, 4}}))
	require.NoError(t, s.Close())

	s, err := Open(path, "model-a")
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetMany([]string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, got["x"])
}

func TestModelsAreIsolated(t *testing.T) {
	s, path := openTemp(t, "model-a")
	require.NoError(t, s.PutMany(map[string][]float32{"x": {1}}))
	require.NoError(t, s.Close())

	other, err := Open(path, "model-b")
	require.NoError(t, err)
	defer other.Close()

	got, err := other.GetMany([]string{"x"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenRequiresModel(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "e.db"), "")
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedValue(t *testing.T) {
	_, err := decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCorruptValue)

	vec, err := decode(encode([]float32{1.5, -0.125}))
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -0.125}, vec)
}
