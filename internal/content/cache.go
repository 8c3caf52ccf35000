package content

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"slidecraft/pkg/domain"
)

// Fingerprint computes the deterministic cache key for a generation request:
// an MD5 hex digest over the normalized topic, slide count and ordered layout
// preference. Any difference in those three changes the key.
func Fingerprint(topic string, slideCount int, layouts []domain.SlideLayout) string {
	if layouts == nil {
		layouts = []domain.SlideLayout{}
	}
	key := struct {
		LayoutPreference []domain.SlideLayout `json:"layout_preference"`
		NumSlides        int                  `json:"num_slides"`
		Topic            string               `json:"topic"`
	}{
		LayoutPreference: layouts,
		NumSlides:        slideCount,
		Topic:            strings.ToLower(strings.TrimSpace(topic)),
	}
	raw, _ := json.Marshal(key)
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

// Entry is the persisted cache value: the request parameters the slides were
// generated for, the slides themselves, and the creation timestamp.
type Entry struct {
	Topic            string               `json:"topic"`
	SlideCount       int                  `json:"num_slides"`
	LayoutPreference []domain.SlideLayout `json:"layout_preference"`
	Slides           []domain.Slide       `json:"slides"`
	CachedAt         time.Time            `json:"cached_at"`
}

// CacheStats summarizes the cache state.
type CacheStats struct {
	TotalEntries   int    `json:"total_cache_entries"`
	ValidEntries   int    `json:"valid_cache_entries"`
	TotalSizeBytes int64  `json:"total_cache_size_bytes"`
	Location       string `json:"cache_location"`
	MaxEntries     int    `json:"max_cache_size"`
	TTLHours       int    `json:"cache_ttl_hours"`
}

// Cache maps request fingerprints to previously produced slide sequences.
// Reads never trigger eviction; writes do. A corrupted entry is a miss.
type Cache interface {
	Get(fingerprint string) ([]domain.Slide, bool)
	Put(fingerprint string, entry Entry)
	Clear() error
	Stats() CacheStats
}

// FileCache stores one JSON file per fingerprint under a directory. Entries
// are individually disposable and the directory is scannable, so losing or
// hand-deleting files only ever costs a regeneration.
type FileCache struct {
	dir        string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewFileCache creates the cache directory if missing.
func NewFileCache(dir string, ttl time.Duration, maxEntries int) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{
		dir:        dir,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}, nil
}

func (c *FileCache) path(fingerprint string) string {
	return filepath.Join(c.dir, fingerprint+".json")
}

// Get returns the cached slides when an entry exists and is younger than the
// TTL. Unreadable or unparsable entries are treated as misses, not errors.
func (c *FileCache) Get(fingerprint string) ([]domain.Slide, bool) {
	path := c.path(fingerprint)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("skipping corrupt cache entry", "path", path, "err", err)
		return nil, false
	}
	cachedAt := entry.CachedAt
	if cachedAt.IsZero() {
		// Older entries without the embedded timestamp fall back to mtime.
		info, err := os.Stat(path)
		if err != nil {
			return nil, false
		}
		cachedAt = info.ModTime()
	}
	if c.now().Sub(cachedAt) >= c.ttl {
		return nil, false
	}
	return entry.Slides, true
}

// Put upserts an entry, refreshing its creation timestamp, then evicts down
// to capacity. Persistence failures are logged and swallowed.
func (c *FileCache) Put(fingerprint string, entry Entry) {
	entry.CachedAt = c.now()
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		slog.Warn("marshal cache entry", "fingerprint", fingerprint, "err", err)
		return
	}
	if err := os.WriteFile(c.path(fingerprint), data, 0o644); err != nil {
		slog.Warn("write cache entry", "fingerprint", fingerprint, "err", err)
		return
	}
	c.evictCapacity()
}

// evictCapacity deletes the oldest entries (by mtime) until the entry count
// is at or under the configured maximum.
func (c *FileCache) evictCapacity() {
	type cacheFile struct {
		path  string
		mtime time.Time
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		slog.Warn("scan cache dir", "dir", c.dir, "err", err)
		return
	}
	files := make([]cacheFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, cacheFile{path: filepath.Join(c.dir, e.Name()), mtime: info.ModTime()})
	}
	if len(files) <= c.maxEntries {
		return
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mtime.Before(files[j].mtime) })
	for _, f := range files[:len(files)-c.maxEntries] {
		if err := os.Remove(f.path); err != nil {
			slog.Warn("evict cache entry", "path", f.path, "err", err)
		}
	}
}

// Clear removes all entries unconditionally.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Stats reports entry counts, aggregate size of still-valid entries and the
// configured limits.
func (c *FileCache) Stats() CacheStats {
	stats := CacheStats{
		Location:   c.dir,
		MaxEntries: c.maxEntries,
		TTLHours:   int(c.ttl / time.Hour),
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return stats
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		stats.TotalEntries++
		info, err := e.Info()
		if err != nil {
			continue
		}
		if c.now().Sub(info.ModTime()) < c.ttl {
			stats.ValidEntries++
			stats.TotalSizeBytes += info.Size()
		}
	}
	return stats
}
