package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/maypok86/otter"
	"github.com/mvp-joe/testforge/internal/analyzer"
)

// AnalysisCache memoizes analyzer results by content hash, so unchanged files are
// not reparsed in watch mode or repeated batch runs. Cached records are shared and
// must be treated as read-only.
type AnalysisCache struct {
	analyzer *analyzer.Analyzer
	cache    *otter.Cache[string, *analyzer.Record] // nil when caching is disabled

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits   int64
	Misses int64
}

// NewAnalysisCache creates a cache holding up to size records. A size of zero disables caching.
func NewAnalysisCache(a *analyzer.Analyzer, size int) (*AnalysisCache, error) {
	if a == nil {
		a = analyzer.New()
	}
	c := &AnalysisCache{analyzer: a}
	if size <= 0 {
		return c, nil
	}

	cache, err := otter.MustBuilder[string, *analyzer.Record](size).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis cache: %w", err)
	}
	c.cache = &cache
	return c, nil
}

// Analyze returns the record for source, reusing a previous result for identical content.
// Failures are never cached.
func (c *AnalysisCache) Analyze(source []byte) (*analyzer.Record, error) {
	if c.cache == nil {
		c.misses.Add(1)
		return c.analyzer.AnalyzeBytes(source)
	}

	key := contentKey(source)
	if rec, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return rec, nil
	}

	c.misses.Add(1)
	rec, err := c.analyzer.AnalyzeBytes(source)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, rec)
	return rec, nil
}

// Stats returns hit and miss counts.
func (c *AnalysisCache) Stats() CacheStats {
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close releases the cache's background resources.
func (c *AnalysisCache) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

func contentKey(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
