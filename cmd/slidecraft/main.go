package main

import (
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"slidecraft/internal/artifact"
	"slidecraft/internal/config"
	"slidecraft/internal/content"
	"slidecraft/internal/images"
	"slidecraft/internal/ratelimit"
	"slidecraft/internal/server"
	"slidecraft/internal/util"
	"slidecraft/pkg/ai"
	"slidecraft/pkg/domain"
)

const (
	openAITemperature = 0.7
	openAIMaxTokens   = 2000
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	cache, err := buildCache(cfg)
	if err != nil {
		log.Fatalf("failed to init cache: %v", err)
	}

	var remote *ai.OpenAIGenerator
	if cfg.OpenAIAPIKey != "" {
		remote = ai.NewOpenAIGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, openAITemperature, openAIMaxTokens)
	}
	var local *ai.OllamaGenerator
	if cfg.OllamaBaseURL != "" {
		local = ai.NewOllamaGenerator(ai.NewOllamaClient(cfg.OllamaBaseURL), cfg.OllamaModel)
	}
	orchestrator := content.NewOrchestrator(content.Config{
		Cache:                cache,
		Remote:               remote,
		Local:                local,
		VariationProbability: *cfg.VariationProbability,
	})

	store, err := buildArtifactStore(cfg)
	if err != nil {
		log.Fatalf("failed to init artifact store: %v", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" && cfg.RateLimitPerMinute > 0 {
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "", cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
	}

	var providers []images.Provider
	if p := images.NewUnsplashProvider(cfg.UnsplashAccessKey); p != nil {
		providers = append(providers, p)
	}
	if p := images.NewPexelsProvider(cfg.PexelsAPIKey); p != nil {
		providers = append(providers, p)
	}
	resolver := images.NewResolver(domain.DefaultColorScheme(), providers...)

	httpServer := server.New(server.Config{
		Orchestrator: orchestrator,
		Cache:        cache,
		Artifacts:    store,
		Images:       resolver,
		Limiter:      limiter,
		MaxSlides:    cfg.MaxSlides,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("slidecraft server listening", "addr", addr, "cache", cfg.CacheBackend, "index", cfg.ArtifactIndex)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func buildCache(cfg config.FileConfig) (content.Cache, error) {
	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	if cfg.CacheBackend == "redis" {
		return content.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, "", ttl, cfg.CacheMaxEntries), nil
	}
	cache, err := content.NewFileCache(cfg.CacheDir, ttl, cfg.CacheMaxEntries)
	if err != nil {
		return nil, err
	}
	return cache, nil
}

func buildArtifactStore(cfg config.FileConfig) (*artifact.Store, error) {
	var index artifact.Index
	var err error
	if cfg.ArtifactIndex == "postgres" {
		index, err = artifact.NewGormIndex(cfg.DatabaseURL)
	} else {
		index, err = artifact.NewFileIndex(filepath.Join(cfg.OutputDir, "index.json"))
	}
	if err != nil {
		return nil, err
	}
	var mirror artifact.ObjectStore
	if cfg.MinioEndpoint != "" {
		mirror, err = artifact.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
	}
	return artifact.NewStore(cfg.OutputDir, time.Duration(cfg.RetentionDays)*24*time.Hour, index, mirror)
}
