package pipeline

import (
	"errors"
	"testing"

	"github.com/mvp-joe/testforge/internal/analyzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for AnalysisCache:
// - Identical content is analyzed once and served from the cache afterwards
// - Different content misses
// - Failures are returned and never cached
// - Size zero disables caching but still analyzes

func TestAnalysisCache_HitsAndMisses(t *testing.T) {
	t.Parallel()

	cache, err := NewAnalysisCache(analyzer.New(), 16)
	require.NoError(t, err)
	defer cache.Close()

	src := []byte("def f(a, b):\n    return a or b\n")

	first, err := cache.Analyze(src)
	require.NoError(t, err)
	second, err := cache.Analyze(src)
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := cache.Analyze([]byte("x = 1\n"))
	require.NoError(t, err)
	assert.Empty(t, other.Functions)

	assert.Equal(t, CacheStats{Hits: 1, Misses: 2}, cache.Stats())
}

func TestAnalysisCache_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	cache, err := NewAnalysisCache(nil, 16)
	require.NoError(t, err)
	defer cache.Close()

	broken := []byte("def f(:\n")
	for i := 0; i < 2; i++ {
		rec, err := cache.Analyze(broken)
		assert.Nil(t, rec)
		assert.True(t, errors.Is(err, analyzer.ErrParse))
	}
	assert.Equal(t, CacheStats{Hits: 0, Misses: 2}, cache.Stats())
}

func TestAnalysisCache_Disabled(t *testing.T) {
	t.Parallel()

	cache, err := NewAnalysisCache(analyzer.New(), 0)
	require.NoError(t, err)
	defer cache.Close()

	src := []byte("class A:\n    pass\n")
	for i := 0; i < 2; i++ {
		rec, err := cache.Analyze(src)
		require.NoError(t, err)
		require.Len(t, rec.Classes, 1)
	}
	assert.Equal(t, CacheStats{Hits: 0, Misses: 2}, cache.Stats())
}
