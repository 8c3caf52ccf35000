package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"slidecraft/internal/artifact"
	"slidecraft/internal/content"
	"slidecraft/internal/ratelimit"
)

func newTestServer(t *testing.T, limiter *ratelimit.FixedWindowLimiter) *Server {
	t.Helper()
	cache, err := content.NewFileCache(t.TempDir(), 24*time.Hour, 100)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	index, err := artifact.NewFileIndex(filepath.Join(t.TempDir(), "index.json"))
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	store, err := artifact.NewStore(t.TempDir(), 7*24*time.Hour, index, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return New(Config{
		Orchestrator: content.NewOrchestrator(content.Config{Cache: cache}),
		Cache:        cache,
		Artifacts:    store,
		Limiter:      limiter,
		MaxSlides:    20,
	})
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "healthy" || body["version"] == "" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestLayoutsAndThemes(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/layouts", nil)
	var layouts []string
	decodeBody(t, rec, &layouts)
	if len(layouts) != 4 || layouts[0] != "title" {
		t.Fatalf("layouts = %v", layouts)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/themes", nil)
	var themes []string
	decodeBody(t, rec, &themes)
	if len(themes) != 4 || themes[0] != "modern" {
		t.Fatalf("themes = %v", themes)
	}
}

func TestGenerateAndDownload(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/generate", map[string]any{
		"topic":      "Quantum Computing",
		"num_slides": 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp generateResponse
	decodeBody(t, rec, &resp)
	if resp.PresentationID == "" || resp.SlidesGenerated != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !strings.HasPrefix(resp.DownloadURL, "/api/v1/download/") {
		t.Fatalf("download url = %q", resp.DownloadURL)
	}

	dl := doRequest(t, s, http.MethodGet, resp.DownloadURL, nil)
	if dl.Code != http.StatusOK {
		t.Fatalf("download status = %d: %s", dl.Code, dl.Body.String())
	}
	if ct := dl.Header().Get("Content-Type"); ct != pptxMediaType {
		t.Fatalf("content type = %q", ct)
	}
	if cd := dl.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Quantum_Computing_presentation.pptx"`) {
		t.Fatalf("content disposition = %q, want the topic-derived filename", cd)
	}
	if !bytes.HasPrefix(dl.Body.Bytes(), []byte("PK")) {
		t.Fatalf("download is not a zip archive")
	}
}

func TestGenerateValidation(t *testing.T) {
	s := newTestServer(t, nil)
	cases := []map[string]any{
		{"topic": "", "num_slides": 3},
		{"topic": strings.Repeat("x", 201), "num_slides": 3},
		{"topic": "ok", "num_slides": 0},
		{"topic": "ok", "num_slides": 21},
		{"topic": "ok", "num_slides": 3, "layout_preference": []string{"sideways"}},
		{"topic": "ok", "num_slides": 3, "theme": "vaporwave"},
	}
	for i, body := range cases {
		rec := doRequest(t, s, http.MethodPost, "/api/v1/generate", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("case %d: status = %d, want 400: %s", i, rec.Code, rec.Body.String())
		}
	}
	if rec := doRequest(t, s, http.MethodGet, "/api/v1/generate", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET generate status = %d, want 405", rec.Code)
	}
}

func TestGenerateCustomContent(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/generate", map[string]any{
		"topic":      "Handmade Deck",
		"num_slides": 5,
		"custom_content": []map[string]any{
			{"title": "My Title", "layout": "title", "content": "sub"},
			{"title": "My Points", "layout": "bullet_points", "bullet_points": []string{"a", "b"}},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp generateResponse
	decodeBody(t, rec, &resp)
	if resp.SlidesGenerated != 2 {
		t.Fatalf("custom content should bypass generation: %+v", resp)
	}
}

func TestDownloadUnknownID(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/download/does-not-exist", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestFileInfoAndDownloadCount(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/generate", map[string]any{
		"topic":      "ai",
		"num_slides": 2,
	})
	var resp generateResponse
	decodeBody(t, rec, &resp)

	info := doRequest(t, s, http.MethodGet, "/api/v1/files/"+resp.PresentationID+"/info", nil)
	if info.Code != http.StatusOK {
		t.Fatalf("info status = %d", info.Code)
	}
	var before artifact.Record
	decodeBody(t, info, &before)
	if before.DownloadCount != 0 {
		t.Fatalf("download count before download = %d", before.DownloadCount)
	}

	doRequest(t, s, http.MethodGet, resp.DownloadURL, nil)
	info = doRequest(t, s, http.MethodGet, "/api/v1/files/"+resp.PresentationID+"/info", nil)
	var after artifact.Record
	decodeBody(t, info, &after)
	if after.DownloadCount != 1 {
		t.Fatalf("download count after download = %d, want 1", after.DownloadCount)
	}
}

type presignStub struct{}

func (presignStub) Put(_ context.Context, _ string, _ io.Reader, _ int64, _ string) error {
	return nil
}

func (presignStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://mirror.example/" + key, nil
}

func (presignStub) Delete(_ context.Context, _ string) error { return nil }

func TestFileInfoIncludesMirrorURL(t *testing.T) {
	cache, err := content.NewFileCache(t.TempDir(), 24*time.Hour, 100)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	store, err := artifact.NewStore(t.TempDir(), 7*24*time.Hour, nil, presignStub{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	s := New(Config{
		Orchestrator: content.NewOrchestrator(content.Config{Cache: cache}),
		Cache:        cache,
		Artifacts:    store,
		MaxSlides:    20,
	})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/generate", map[string]any{
		"topic":      "ai",
		"num_slides": 2,
	})
	var resp generateResponse
	decodeBody(t, rec, &resp)

	info := doRequest(t, s, http.MethodGet, "/api/v1/files/"+resp.PresentationID+"/info", nil)
	var body struct {
		MirrorURL string `json:"mirror_url"`
	}
	decodeBody(t, info, &body)
	if !strings.HasPrefix(body.MirrorURL, "https://mirror.example/") {
		t.Fatalf("mirror url = %q", body.MirrorURL)
	}
}

func TestSamplesListAndDelete(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/generate", map[string]any{
		"topic":      "cloud computing",
		"num_slides": 2,
	})
	var resp generateResponse
	decodeBody(t, rec, &resp)

	list := doRequest(t, s, http.MethodGet, "/api/v1/samples", nil)
	var samples struct {
		Files      []artifact.Record `json:"files"`
		TotalCount int               `json:"total_count"`
	}
	decodeBody(t, list, &samples)
	if samples.TotalCount != 1 || len(samples.Files) != 1 {
		t.Fatalf("samples = %+v", samples)
	}

	del := doRequest(t, s, http.MethodDelete, "/api/v1/samples/"+resp.PresentationID, nil)
	if del.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", del.Code, del.Body.String())
	}
	if dl := doRequest(t, s, http.MethodGet, resp.DownloadURL, nil); dl.Code != http.StatusNotFound {
		t.Fatalf("download after delete = %d, want 404", dl.Code)
	}
	if del := doRequest(t, s, http.MethodDelete, "/api/v1/samples/"+resp.PresentationID, nil); del.Code != http.StatusOK {
		t.Fatalf("repeat delete status = %d, want 200", del.Code)
	}
}

func TestCleanupAndStats(t *testing.T) {
	s := newTestServer(t, nil)
	doRequest(t, s, http.MethodPost, "/api/v1/generate", map[string]any{
		"topic":      "business strategy",
		"num_slides": 2,
	})

	clean := doRequest(t, s, http.MethodPost, "/api/v1/cleanup", nil)
	var cleanup struct {
		ExpiredCount int `json:"expired_count"`
	}
	decodeBody(t, clean, &cleanup)
	if cleanup.ExpiredCount != 0 {
		t.Fatalf("fresh file should not be cleaned, got %d", cleanup.ExpiredCount)
	}

	stats := doRequest(t, s, http.MethodGet, "/api/v1/storage/stats", nil)
	var storage artifact.Stats
	decodeBody(t, stats, &storage)
	if storage.TotalFiles != 1 || storage.ActiveFiles != 1 {
		t.Fatalf("storage stats = %+v", storage)
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	s := newTestServer(t, nil)
	doRequest(t, s, http.MethodPost, "/api/v1/generate", map[string]any{
		"topic":      "machine learning",
		"num_slides": 3,
	})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/cache/stats", nil)
	var stats content.CacheStats
	decodeBody(t, rec, &stats)
	if stats.TotalEntries != 1 {
		t.Fatalf("cache entries = %d, want 1", stats.TotalEntries)
	}

	if rec := doRequest(t, s, http.MethodPost, "/api/v1/cache/clear", nil); rec.Code != http.StatusOK {
		t.Fatalf("cache clear status = %d", rec.Code)
	}
	rec = doRequest(t, s, http.MethodGet, "/api/v1/cache/stats", nil)
	decodeBody(t, rec, &stats)
	if stats.TotalEntries != 0 {
		t.Fatalf("cache entries after clear = %d, want 0", stats.TotalEntries)
	}
}

func TestGenerateRateLimited(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 1, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	s := newTestServer(t, limiter)

	body := map[string]any{"topic": "ai", "num_slides": 2}
	if rec := doRequest(t, s, http.MethodPost, "/api/v1/generate", body); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(t, s, http.MethodPost, "/api/v1/generate", body); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}

func TestRootAndAPIIndex(t *testing.T) {
	s := newTestServer(t, nil)
	root := doRequest(t, s, http.MethodGet, "/", nil)
	var info map[string]string
	decodeBody(t, root, &info)
	if info["service"] != "slidecraft" {
		t.Fatalf("root body = %v", info)
	}

	api := doRequest(t, s, http.MethodGet, "/api", nil)
	var index struct {
		Endpoints []string `json:"endpoints"`
	}
	decodeBody(t, api, &index)
	found := false
	for _, e := range index.Endpoints {
		if e == "/api/v1/generate" {
			found = true
		}
	}
	if !found {
		t.Fatalf("api index missing generate endpoint: %v", index.Endpoints)
	}

	if rec := doRequest(t, s, http.MethodGet, "/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", rec.Code)
	}
}
