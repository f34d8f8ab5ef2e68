package dataset

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Cache memoizes normalized tables by absolute source path. An entry is reused
// while the file's modification time and size are unchanged; Invalidate, Clear
// and Watch drop entries explicitly.
type Cache struct {
	mu       sync.RWMutex
	opt      Options
	entries  map[string]*cacheEntry
	hits     int64
	misses   int64
	debounce time.Duration
	log      *logrus.Entry
}

type cacheEntry struct {
	table   *Table
	modTime time.Time
	size    int64
}

// CacheStats reports cache activity.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// NewCache creates an empty cache. A nil logger discards output.
func NewCache(opt Options, log *logrus.Entry) *Cache {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Cache{
		opt:      opt,
		entries:  make(map[string]*cacheEntry),
		debounce: 250 * time.Millisecond,
		log:      log.WithField("component", "dataset_cache"),
	}
}

// Load returns the cached table for path, reloading it when the file changed
// on disk or the entry was invalidated.
func (c *Cache) Load(path string) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &DataSourceError{Path: path, Op: "resolve path", Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &DataSourceError{Path: abs, Op: "stat", Err: err}
	}

	c.mu.RLock()
	e := c.entries[abs]
	c.mu.RUnlock()
	if e != nil && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.table, nil
	}

	start := time.Now()
	t, err := Load(abs, c.opt)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.misses++
	c.entries[abs] = &cacheEntry{table: t, modTime: t.ModTime, size: t.Size}
	c.mu.Unlock()
	c.log.WithField("path", abs).
		WithField("rows", t.Len()).
		WithField("elapsed", time.Since(start).String()).
		Debug("Loaded and normalized dataset")
	return t, nil
}

// Invalidate drops the entry for path.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.mu.Lock()
	delete(c.entries, abs)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
