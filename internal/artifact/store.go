package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	filenameTimeLayout = "20060102_150405"

	// rescanInterval bounds how often the store re-reads the output directory
	// to reconcile the index with files added or removed out of band.
	rescanInterval = 30 * time.Second
)

var (
	ErrNotFound = errors.New("artifact not found")
	ErrExpired  = errors.New("artifact expired")
	ErrInactive = errors.New("artifact deleted")
)

// Record is the tracked metadata for one generated file.
type Record struct {
	ID               string    `json:"file_id" gorm:"primaryKey;column:file_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	Path             string    `json:"file_path"`
	SizeBytes        int64     `json:"file_size"`
	ContentType      string    `json:"content_type"`
	Topic            string    `json:"topic,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	DownloadCount    int       `json:"download_count"`
	Active           bool      `json:"is_active"`
}

// Stats summarizes the store state.
type Stats struct {
	TotalFiles     int    `json:"total_files"`
	ActiveFiles    int    `json:"active_files"`
	TotalSizeBytes int64  `json:"total_size_bytes"`
	TotalDownloads int    `json:"total_downloads"`
	Directory      string `json:"storage_directory"`
	RetentionDays  int    `json:"retention_days"`
}

// Store manages generated presentation files on disk: opaque ids, expiry,
// download accounting and logical deletion. Metadata lives in memory, is
// persisted through a pluggable Index, and can be rebuilt by scanning the
// output directory, so a lost index only costs download counts.
type Store struct {
	dir       string
	retention time.Duration
	index     Index
	mirror    ObjectStore

	mu       sync.RWMutex
	records  map[string]Record
	lastScan time.Time

	now   func() time.Time
	newID func() string
}

// NewStore creates the output directory, loads the index and reconciles it
// against the files actually on disk.
func NewStore(dir string, retention time.Duration, index Index, mirror ObjectStore) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	s := &Store{
		dir:       dir,
		retention: retention,
		index:     index,
		mirror:    mirror,
		records:   make(map[string]Record),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if index != nil {
		records, err := index.Load()
		if err != nil {
			return nil, fmt.Errorf("load artifact index: %w", err)
		}
		for _, rec := range records {
			s.records[rec.ID] = rec
		}
	}
	s.mu.Lock()
	s.rescanLocked(true)
	s.mu.Unlock()
	return s, nil
}

// Save writes the file under an opaque id and registers it. The stored name
// embeds the id and creation time so the directory stays scannable; the
// original name is kept on the record for download headers.
func (s *Store) Save(ctx context.Context, originalName string, data []byte, contentType, topic string) (Record, error) {
	now := s.now()
	id := s.newID()
	ext := filepath.Ext(originalName)
	filename := fmt.Sprintf("%s_%s%s", id, now.Format(filenameTimeLayout), ext)
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Record{}, fmt.Errorf("write artifact: %w", err)
	}
	rec := Record{
		ID:               id,
		Filename:         filename,
		OriginalFilename: originalName,
		Path:             path,
		SizeBytes:        int64(len(data)),
		ContentType:      contentType,
		Topic:            topic,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.retention),
		Active:           true,
	}

	s.mu.Lock()
	s.records[id] = rec
	s.persistLocked()
	s.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.Put(ctx, filename, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
			slog.Warn("mirror artifact upload failed", "id", id, "err", err)
		}
	}
	slog.Info("artifact saved", "id", id, "filename", filename, "size", rec.SizeBytes)
	return rec, nil
}

// Resolve returns the on-disk path for a download and increments the download
// counter. Deleted and expired artifacts resolve to errors, as do records
// whose file has gone missing.
func (s *Store) Resolve(id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rescanLocked(false)

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if !rec.Active {
		return Record{}, ErrInactive
	}
	if s.now().After(rec.ExpiresAt) {
		return Record{}, ErrExpired
	}
	if _, err := os.Stat(rec.Path); err != nil {
		delete(s.records, id)
		s.persistLocked()
		return Record{}, ErrNotFound
	}
	rec.DownloadCount++
	s.records[id] = rec
	s.persistLocked()
	return rec, nil
}

// Info returns the metadata for an artifact without counting a download.
func (s *Store) Info(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if !rec.Active {
		return Record{}, ErrInactive
	}
	return rec, nil
}

// List returns the active, unexpired artifacts, newest first.
func (s *Store) List() []Record {
	s.mu.Lock()
	s.rescanLocked(false)
	now := s.now()
	records := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Active && now.Before(rec.ExpiresAt) {
			records = append(records, rec)
		}
	}
	s.mu.Unlock()

	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })
	return records
}

// Delete removes the file and marks the record inactive. The record itself is
// kept so the id keeps resolving to "deleted" rather than "unknown". Deleting
// an already-deleted record is a no-op success; only unknown ids error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	if !rec.Active {
		return nil
	}
	if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	if s.mirror != nil {
		if err := s.mirror.Delete(ctx, rec.Filename); err != nil {
			slog.Warn("mirror artifact delete failed", "id", id, "err", err)
		}
	}
	rec.Active = false
	s.records[id] = rec
	s.persistLocked()
	slog.Info("artifact deleted", "id", id)
	return nil
}

// PurgeExpired removes expired files from disk and marks their records
// inactive. Returns the number of artifacts purged.
func (s *Store) PurgeExpired(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	purged := 0
	for id, rec := range s.records {
		if !rec.Active || now.Before(rec.ExpiresAt) {
			continue
		}
		if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
			slog.Warn("purge artifact failed", "id", id, "err", err)
			continue
		}
		if s.mirror != nil {
			if err := s.mirror.Delete(ctx, rec.Filename); err != nil {
				slog.Warn("mirror artifact delete failed", "id", id, "err", err)
			}
		}
		rec.Active = false
		s.records[id] = rec
		purged++
	}
	if purged > 0 {
		s.persistLocked()
		slog.Info("expired artifacts purged", "count", purged)
	}
	return purged
}

// MirrorURL returns a presigned download URL for the mirrored copy of an
// artifact, valid until the record expires. Empty when no mirror is
// configured.
func (s *Store) MirrorURL(ctx context.Context, id string) (string, error) {
	if s.mirror == nil {
		return "", nil
	}
	rec, err := s.Info(id)
	if err != nil {
		return "", err
	}
	expiry := rec.ExpiresAt.Sub(s.now())
	if expiry <= 0 {
		return "", ErrExpired
	}
	return s.mirror.PresignGet(ctx, rec.Filename, expiry)
}

// Stats reports aggregate numbers over the tracked records.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rescanLocked(false)

	stats := Stats{
		Directory:     s.dir,
		RetentionDays: int(s.retention / (24 * time.Hour)),
	}
	for _, rec := range s.records {
		stats.TotalFiles++
		stats.TotalDownloads += rec.DownloadCount
		if rec.Active {
			stats.ActiveFiles++
			stats.TotalSizeBytes += rec.SizeBytes
		}
	}
	return stats
}

// persistLocked writes the current records through the index. Failures are
// logged and swallowed: the in-memory state stays authoritative and the
// directory scan recovers metadata after a restart.
func (s *Store) persistLocked() {
	if s.index == nil {
		return
	}
	records := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	if err := s.index.Save(records); err != nil {
		slog.Warn("persist artifact index failed", "err", err)
	}
}

// rescanLocked reconciles records with the files on disk: untracked files are
// adopted (id and timestamp recovered from the filename), records for missing
// files are dropped. Scans are rate limited unless forced.
func (s *Store) rescanLocked(force bool) {
	now := s.now()
	if !force && now.Sub(s.lastScan) < rescanInterval {
		return
	}
	s.lastScan = now

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("scan output dir failed", "dir", s.dir, "err", err)
		return
	}
	onDisk := make(map[string]bool, len(entries))
	changed := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		onDisk[path] = true
		id, createdAt, ok := parseArtifactName(e.Name())
		if !ok {
			continue
		}
		if _, tracked := s.records[id]; tracked {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		s.records[id] = Record{
			ID:          id,
			Filename:    e.Name(),
			Path:        path,
			SizeBytes:   info.Size(),
			ContentType: contentTypeFor(e.Name()),
			CreatedAt:   createdAt,
			ExpiresAt:   createdAt.Add(s.retention),
			Active:      true,
		}
		changed = true
		slog.Info("adopted untracked artifact", "id", id, "filename", e.Name())
	}
	for id, rec := range s.records {
		if rec.Active && !onDisk[rec.Path] {
			delete(s.records, id)
			changed = true
		}
	}
	if changed {
		s.persistLocked()
	}
}

// parseArtifactName splits "{id}_{timestamp}{ext}" back into its parts.
func parseArtifactName(name string) (string, time.Time, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndex(base, "_")
	if i <= 0 {
		return "", time.Time{}, false
	}
	// The timestamp itself contains one underscore.
	j := strings.LastIndex(base[:i], "_")
	if j <= 0 {
		return "", time.Time{}, false
	}
	id, stamp := base[:j], base[j+1:]
	createdAt, err := time.ParseInLocation(filenameTimeLayout, stamp, time.Local)
	if err != nil {
		return "", time.Time{}, false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", time.Time{}, false
	}
	return id, createdAt, true
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
