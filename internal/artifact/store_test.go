package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T, retention time.Duration) *Store {
	t.Helper()
	dir := t.TempDir()
	index, err := NewFileIndex(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	store, err := NewStore(dir, retention, index, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestSaveAndResolve(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour)
	rec, err := store.Save(context.Background(), "deck.pptx", []byte("pptx-bytes"), "application/vnd.openxmlformats-officedocument.presentationml.presentation", "ai")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.ID == "" || rec.DownloadCount != 0 || !rec.Active {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if filepath.Ext(rec.Filename) != ".pptx" {
		t.Fatalf("stored name should keep the extension, got %q", rec.Filename)
	}
	if rec.OriginalFilename != "deck.pptx" {
		t.Fatalf("original filename = %q, want deck.pptx", rec.OriginalFilename)
	}

	resolved, err := store.Resolve(rec.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Path != rec.Path {
		t.Fatalf("resolved path = %q, want %q", resolved.Path, rec.Path)
	}
	if resolved.DownloadCount != 1 {
		t.Fatalf("download count = %d, want 1", resolved.DownloadCount)
	}
	if again, _ := store.Resolve(rec.ID); again.DownloadCount != 2 {
		t.Fatalf("download count = %d, want 2", again.DownloadCount)
	}
}

func TestResolveUnknownID(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour)
	if _, err := store.Resolve("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveExpired(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour)
	rec, err := store.Save(context.Background(), "deck.pptx", []byte("x"), "", "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	store.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	if _, err := store.Resolve(rec.ID); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestDeleteIsLogical(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour)
	rec, err := store.Save(context.Background(), "deck.pptx", []byte("x"), "", "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(context.Background(), rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(rec.Path); !os.IsNotExist(err) {
		t.Fatalf("file should be removed from disk")
	}
	if _, err := store.Resolve(rec.ID); !errors.Is(err, ErrInactive) {
		t.Fatalf("err = %v, want ErrInactive", err)
	}
	if err := store.Delete(context.Background(), rec.ID); err != nil {
		t.Fatalf("repeat delete should succeed, got %v", err)
	}
	if err := store.Delete(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete unknown id err = %v, want ErrNotFound", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour)
	old, err := store.Save(context.Background(), "old.pptx", []byte("x"), "", "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	store.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	fresh, err := store.Save(context.Background(), "fresh.pptx", []byte("y"), "", "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if purged := store.PurgeExpired(context.Background()); purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}
	if _, err := os.Stat(old.Path); !os.IsNotExist(err) {
		t.Fatalf("expired file should be removed")
	}
	if _, err := store.Resolve(fresh.ID); err != nil {
		t.Fatalf("fresh artifact should survive purge: %v", err)
	}
	if purged := store.PurgeExpired(context.Background()); purged != 0 {
		t.Fatalf("second purge = %d, want 0", purged)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour)
	base := time.Now()
	store.now = func() time.Time { return base }
	first, _ := store.Save(context.Background(), "a.pptx", []byte("a"), "", "")
	store.now = func() time.Time { return base.Add(time.Minute) }
	second, _ := store.Save(context.Background(), "b.pptx", []byte("b"), "", "")

	records := store.List()
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != second.ID || records[1].ID != first.ID {
		t.Fatalf("list should be newest first: %+v", records)
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour)
	rec, _ := store.Save(context.Background(), "a.pptx", []byte("abcde"), "", "")
	store.Save(context.Background(), "b.pptx", []byte("xy"), "", "")
	store.Resolve(rec.ID)
	store.Delete(context.Background(), rec.ID)

	stats := store.Stats()
	if stats.TotalFiles != 2 || stats.ActiveFiles != 1 {
		t.Fatalf("stats = %+v, want 2 total / 1 active", stats)
	}
	if stats.TotalSizeBytes != 2 {
		t.Fatalf("active size = %d, want 2", stats.TotalSizeBytes)
	}
	if stats.TotalDownloads != 1 {
		t.Fatalf("downloads = %d, want 1", stats.TotalDownloads)
	}
	if stats.RetentionDays != 7 {
		t.Fatalf("retention days = %d, want 7", stats.RetentionDays)
	}
}

func TestIndexSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	index, err := NewFileIndex(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	store, err := NewStore(dir, 7*24*time.Hour, index, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	rec, err := store.Save(context.Background(), "deck.pptx", []byte("x"), "", "ai")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	store.Resolve(rec.ID)

	reopened, err := NewStore(dir, 7*24*time.Hour, index, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	got, err := reopened.Info(rec.ID)
	if err != nil {
		t.Fatalf("info after restart: %v", err)
	}
	if got.DownloadCount != 1 || got.Topic != "ai" {
		t.Fatalf("metadata lost across restart: %+v", got)
	}
}

func TestRescanAdoptsUntrackedFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, 7*24*time.Hour, nil, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	rec, err := store.Save(context.Background(), "deck.pptx", []byte("x"), "", "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second store over the same directory has no index; it must recover
	// the id and creation time from the filename alone.
	other, err := NewStore(dir, 7*24*time.Hour, nil, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	adopted, err := other.Resolve(rec.ID)
	if err != nil {
		t.Fatalf("resolve adopted artifact: %v", err)
	}
	if adopted.Filename != rec.Filename {
		t.Fatalf("adopted filename = %q, want %q", adopted.Filename, rec.Filename)
	}
}

func TestRescanDropsMissingFiles(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour)
	rec, err := store.Save(context.Background(), "deck.pptx", []byte("x"), "", "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.Remove(rec.Path); err != nil {
		t.Fatalf("remove file: %v", err)
	}
	if _, err := store.Resolve(rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after file vanished", err)
	}
}

type stubMirror struct {
	puts    []string
	deletes []string
}

func (m *stubMirror) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	m.puts = append(m.puts, key)
	return nil
}

func (m *stubMirror) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://mirror.example/" + key, nil
}

func (m *stubMirror) Delete(_ context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	return nil
}

func TestMirrorLifecycle(t *testing.T) {
	dir := t.TempDir()
	index, err := NewFileIndex(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	mirror := &stubMirror{}
	store, err := NewStore(dir, 7*24*time.Hour, index, mirror)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	rec, err := store.Save(context.Background(), "deck.pptx", []byte("x"), "", "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(mirror.puts) != 1 || mirror.puts[0] != rec.Filename {
		t.Fatalf("mirror puts = %v, want [%s]", mirror.puts, rec.Filename)
	}

	url, err := store.MirrorURL(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("mirror url: %v", err)
	}
	if url != "https://mirror.example/"+rec.Filename {
		t.Fatalf("mirror url = %q", url)
	}

	if err := store.Delete(context.Background(), rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(mirror.deletes) != 1 || mirror.deletes[0] != rec.Filename {
		t.Fatalf("mirror deletes = %v, want [%s]", mirror.deletes, rec.Filename)
	}
}

func TestMirrorURLWithoutMirror(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour)
	rec, err := store.Save(context.Background(), "deck.pptx", []byte("x"), "", "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	url, err := store.MirrorURL(context.Background(), rec.ID)
	if err != nil || url != "" {
		t.Fatalf("url = %q, err = %v, want empty and nil", url, err)
	}
}

func TestParseArtifactName(t *testing.T) {
	id, createdAt, ok := parseArtifactName("0b1f07b6-52f6-4a3e-9b87-0f6f1a2b3c4d_20260115_093045.pptx")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if id != "0b1f07b6-52f6-4a3e-9b87-0f6f1a2b3c4d" {
		t.Fatalf("id = %q", id)
	}
	if createdAt.Year() != 2026 || createdAt.Month() != time.January || createdAt.Day() != 15 {
		t.Fatalf("createdAt = %v", createdAt)
	}
	for _, name := range []string{"index.json", "noseparator.pptx", "abc_20260101_120000.pptx"} {
		if _, _, ok := parseArtifactName(name); ok {
			t.Fatalf("expected parse to fail for %q", name)
		}
	}
}
