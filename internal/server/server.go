package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"slidecraft/internal/artifact"
	"slidecraft/internal/content"
	"slidecraft/internal/images"
	"slidecraft/internal/pptx"
	"slidecraft/internal/ratelimit"
	"slidecraft/internal/util"
	"slidecraft/pkg/domain"
)

const (
	apiVersion  = "1.0.0"
	apiBasePath = "/api/v1"

	maxTopicLength = 200
	pptxMediaType  = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	Orchestrator *content.Orchestrator
	Cache        content.Cache
	Artifacts    *artifact.Store
	Images       *images.Resolver
	Limiter      *ratelimit.FixedWindowLimiter
	MaxSlides    int
}

// Server exposes the presentation generation HTTP API.
type Server struct {
	orchestrator *content.Orchestrator
	cache        content.Cache
	artifacts    *artifact.Store
	images       *images.Resolver
	limiter      *ratelimit.FixedWindowLimiter
	maxSlides    int
	mux          *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	maxSlides := cfg.MaxSlides
	if maxSlides <= 0 {
		maxSlides = 20
	}
	s := &Server{
		orchestrator: cfg.Orchestrator,
		cache:        cfg.Cache,
		artifacts:    cfg.Artifacts,
		images:       cfg.Images,
		limiter:      cfg.Limiter,
		maxSlides:    maxSlides,
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler with the standard middleware chain.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/api", s.handleAPIIndex)
	s.mux.HandleFunc(apiBasePath+"/health", s.handleHealth)
	s.mux.HandleFunc(apiBasePath+"/layouts", s.handleLayouts)
	s.mux.HandleFunc(apiBasePath+"/themes", s.handleThemes)
	s.mux.HandleFunc(apiBasePath+"/generate", s.handleGenerate)
	s.mux.HandleFunc(apiBasePath+"/download/", s.handleDownload)
	s.mux.HandleFunc(apiBasePath+"/samples", s.handleSamples)
	s.mux.HandleFunc(apiBasePath+"/samples/", s.handleSampleByID)
	s.mux.HandleFunc(apiBasePath+"/files/", s.handleFileInfo)
	s.mux.HandleFunc(apiBasePath+"/cleanup", s.handleCleanup)
	s.mux.HandleFunc(apiBasePath+"/storage/stats", s.handleStorageStats)
	s.mux.HandleFunc(apiBasePath+"/cache/stats", s.handleCacheStats)
	s.mux.HandleFunc(apiBasePath+"/cache/clear", s.handleCacheClear)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		notFound(w, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "slidecraft",
		"version": apiVersion,
		"docs":    "/api",
	})
}

func (s *Server) handleAPIIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version": apiVersion,
		"endpoints": []string{
			apiBasePath + "/health",
			apiBasePath + "/layouts",
			apiBasePath + "/themes",
			apiBasePath + "/generate",
			apiBasePath + "/download/{id}",
			apiBasePath + "/samples",
			apiBasePath + "/files/{id}/info",
			apiBasePath + "/cleanup",
			apiBasePath + "/storage/stats",
			apiBasePath + "/cache/stats",
			apiBasePath + "/cache/clear",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"version":   apiVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, domain.Layouts())
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, domain.Themes())
}

type generateRequest struct {
	Topic            string               `json:"topic"`
	NumSlides        int                  `json:"num_slides"`
	LayoutPreference []string             `json:"layout_preference"`
	Theme            string               `json:"theme"`
	ColorScheme      *domain.ColorScheme  `json:"color_scheme"`
	FontSettings     *domain.FontSettings `json:"font_settings"`
	CustomContent    []domain.Slide       `json:"custom_content"`
	IncludeImages    bool                 `json:"include_image_suggestions"`
}

type generateResponse struct {
	PresentationID  string  `json:"presentation_id"`
	Filename        string  `json:"filename"`
	DownloadURL     string  `json:"download_url"`
	Message         string  `json:"message"`
	SlidesGenerated int     `json:"slides_generated"`
	ProcessingTime  float64 `json:"processing_time"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.limiter != nil && !s.limiter.Allow(util.ClientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	start := time.Now()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" || len(req.Topic) > maxTopicLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("topic must be 1-%d characters", maxTopicLength))
		return
	}
	if req.NumSlides < 1 || req.NumSlides > s.maxSlides {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("num_slides must be between 1 and %d", s.maxSlides))
		return
	}
	layouts := make([]domain.SlideLayout, 0, len(req.LayoutPreference))
	for _, raw := range req.LayoutPreference {
		layout := domain.SlideLayout(raw)
		known := false
		for _, l := range domain.Layouts() {
			if layout == l {
				known = true
				break
			}
		}
		if !known {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown layout %q", raw))
			return
		}
		layouts = append(layouts, layout)
	}
	theme, ok := domain.ParseTheme(req.Theme)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown theme %q", req.Theme))
		return
	}

	ctx := r.Context()
	var slides []domain.Slide
	if len(req.CustomContent) > 0 {
		slides = req.CustomContent
	} else {
		slides = s.orchestrator.Generate(ctx, content.Request{
			Topic:      req.Topic,
			SlideCount: req.NumSlides,
			Layouts:    layouts,
		})
	}
	if req.IncludeImages && s.images != nil {
		s.images.Resolve(ctx, slides)
	}

	renderer := pptx.NewRenderer(theme)
	if req.ColorScheme != nil || req.FontSettings != nil {
		colors := domain.ColorSchemeFor(theme)
		if req.ColorScheme != nil {
			colors = *req.ColorScheme
		}
		fonts := domain.DefaultFontSettings()
		if req.FontSettings != nil {
			fonts = *req.FontSettings
		}
		renderer = pptx.NewRendererWithStyle(theme, colors, fonts)
	}
	deck, err := renderer.Render(req.Topic, slides)
	if err != nil {
		util.LoggerFromContext(ctx).Error("render presentation failed", "topic", req.Topic, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to render presentation")
		return
	}

	originalName := sanitizeFilename(req.Topic) + "_presentation.pptx"
	rec, err := s.artifacts.Save(ctx, originalName, deck, pptxMediaType, req.Topic)
	if err != nil {
		util.LoggerFromContext(ctx).Error("store presentation failed", "topic", req.Topic, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store presentation")
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		PresentationID:  rec.ID,
		Filename:        rec.Filename,
		DownloadURL:     apiBasePath + "/download/" + rec.ID,
		Message:         "Presentation generated successfully",
		SlidesGenerated: len(slides),
		ProcessingTime:  time.Since(start).Seconds(),
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, apiBasePath+"/download/")
	if id == "" || strings.Contains(id, "/") {
		notFound(w, "not found")
		return
	}
	rec, err := s.artifacts.Resolve(id)
	if err != nil {
		writeArtifactError(w, err)
		return
	}
	// Adopted files recovered from a directory scan carry no original name.
	name := rec.OriginalFilename
	if name == "" {
		name = rec.Filename
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", rec.ContentType)
	http.ServeFile(w, r, rec.Path)
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	records := s.artifacts.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"files":         records,
		"total_count":   len(records),
		"storage_stats": s.artifacts.Stats(),
	})
}

func (s *Server) handleSampleByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, apiBasePath+"/samples/")
	if id == "" || strings.Contains(id, "/") {
		notFound(w, "not found")
		return
	}
	if err := s.artifacts.Delete(r.Context(), id); err != nil {
		writeArtifactError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Presentation %s deleted successfully", id),
	})
}

type fileInfoResponse struct {
	artifact.Record
	MirrorURL string `json:"mirror_url,omitempty"`
}

// /api/v1/files/{id}/info
func (s *Server) handleFileInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, apiBasePath+"/files/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "info" {
		notFound(w, "not found")
		return
	}
	rec, err := s.artifacts.Info(parts[0])
	if err != nil {
		writeArtifactError(w, err)
		return
	}
	resp := fileInfoResponse{Record: rec}
	if url, err := s.artifacts.MirrorURL(r.Context(), rec.ID); err == nil {
		resp.MirrorURL = url
	} else {
		util.LoggerFromContext(r.Context()).Warn("mirror presign failed", "id", rec.ID, "err", err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	count := s.artifacts.PurgeExpired(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       fmt.Sprintf("Cleaned up %d expired files", count),
		"expired_count": count,
	})
}

func (s *Server) handleStorageStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.artifacts.Stats())
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.cache.Clear(); err != nil {
		util.LoggerFromContext(r.Context()).Error("cache clear failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared"})
}

func writeArtifactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, artifact.ErrNotFound):
		notFound(w, "presentation file not found")
	case errors.Is(err, artifact.ErrExpired):
		writeError(w, http.StatusGone, "presentation file expired")
	case errors.Is(err, artifact.ErrInactive):
		notFound(w, "presentation file deleted")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// sanitizeFilename keeps topic-derived filenames shell and URL safe.
func sanitizeFilename(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			sb.WriteRune('_')
		}
	}
	name := strings.Trim(sb.String(), "_")
	if name == "" {
		return "presentation"
	}
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}
