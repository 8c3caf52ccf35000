package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	// Remote (primary) generator.
	OpenAIAPIKey  string `yaml:"openAIAPIKey"`
	OpenAIBaseURL string `yaml:"openAIBaseURL"`
	OpenAIModel   string `yaml:"openAIModel"`

	// Local (secondary) generator.
	OllamaBaseURL string `yaml:"ollamaBaseURL"`
	OllamaModel   string `yaml:"ollamaModel"`

	// Content cache.
	CacheBackend    string `yaml:"cacheBackend"` // file (default) or redis
	CacheDir        string `yaml:"cacheDir"`
	CacheTTLHours   int    `yaml:"cacheTTLHours"`
	CacheMaxEntries int    `yaml:"cacheMaxEntries"`

	// VariationProbability is a pointer so an explicit 0 (variation off)
	// is distinguishable from the key being absent (default 0.3).
	VariationProbability *float64 `yaml:"variationProbability"`

	// Artifact storage.
	OutputDir     string `yaml:"outputDir"`
	RetentionDays int    `yaml:"retentionDays"`
	ArtifactIndex string `yaml:"artifactIndex"` // file (default) or postgres
	DatabaseURL   string `yaml:"databaseURL"`

	// Optional object-storage mirror.
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	// Rate limiting (disabled when redisAddr or the limit is empty).
	RedisAddr          string `yaml:"redisAddr"`
	RedisPassword      string `yaml:"redisPassword"`
	RateLimitPerMinute int    `yaml:"rateLimitPerMinute"`

	// Image search providers.
	UnsplashAccessKey string `yaml:"unsplashAccessKey"`
	PexelsAPIKey      string `yaml:"pexelsAPIKey"`

	// Request bounds.
	MaxSlides int `yaml:"maxSlides"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.OllamaBaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("UNSPLASH_ACCESS_KEY"); v != "" {
		cfg.UnsplashAccessKey = v
	}
	if v := os.Getenv("PEXELS_API_KEY"); v != "" {
		cfg.PexelsAPIKey = v
	}
	if v := os.Getenv("SLIDECRAFT_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = n
		}
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-3.5-turbo"
	}
	if cfg.OllamaModel == "" {
		cfg.OllamaModel = "llama3.2"
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "file"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = "cache"
	}
	if cfg.CacheTTLHours <= 0 {
		cfg.CacheTTLHours = 24
	}
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = 1000
	}
	if cfg.VariationProbability == nil {
		p := 0.3
		cfg.VariationProbability = &p
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "samples"
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 7
	}
	if cfg.ArtifactIndex == "" {
		cfg.ArtifactIndex = "file"
	}
	if cfg.MaxSlides <= 0 {
		cfg.MaxSlides = 20
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	switch cfg.CacheBackend {
	case "file", "redis":
	default:
		return fmt.Errorf("config: unknown cacheBackend %q (want file or redis)", cfg.CacheBackend)
	}
	if cfg.CacheBackend == "redis" && cfg.RedisAddr == "" {
		return errors.New("config: redisAddr is required for the redis cache backend")
	}
	switch cfg.ArtifactIndex {
	case "file", "postgres":
	default:
		return fmt.Errorf("config: unknown artifactIndex %q (want file or postgres)", cfg.ArtifactIndex)
	}
	if cfg.ArtifactIndex == "postgres" && cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required for the postgres artifact index (set in config.yaml or DATABASE_URL)")
	}
	if p := *cfg.VariationProbability; p < 0 || p > 1 {
		return errors.New("config: variationProbability must be between 0 and 1")
	}
	return nil
}
