package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoadDefaults(t *testing.T) {
	cfgPath := writeConfig(t, `
port: "8000"
logLevel: "info"
`)
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CacheTTLHours != 24 {
		t.Fatalf("cacheTTLHours = %d, want 24", cfg.CacheTTLHours)
	}
	if cfg.CacheMaxEntries != 1000 {
		t.Fatalf("cacheMaxEntries = %d, want 1000", cfg.CacheMaxEntries)
	}
	if cfg.RetentionDays != 7 {
		t.Fatalf("retentionDays = %d, want 7", cfg.RetentionDays)
	}
	if *cfg.VariationProbability != 0.3 {
		t.Fatalf("variationProbability = %v, want 0.3", *cfg.VariationProbability)
	}
	if cfg.MaxSlides != 20 {
		t.Fatalf("maxSlides = %d, want 20", cfg.MaxSlides)
	}
	if cfg.OpenAIModel != "gpt-3.5-turbo" {
		t.Fatalf("openAIModel = %q, want gpt-3.5-turbo", cfg.OpenAIModel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("REDIS_ADDR", "localhost:6380")
	t.Setenv("SLIDECRAFT_RATE_LIMIT_PER_MINUTE", "120")

	cfgPath := writeConfig(t, `
port: "8000"
openAIAPIKey: "sk-file"
rateLimitPerMinute: 60
`)
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-env" {
		t.Fatalf("openAIAPIKey = %q, want env value", cfg.OpenAIAPIKey)
	}
	if cfg.RedisAddr != "localhost:6380" {
		t.Fatalf("redisAddr = %q, want env value", cfg.RedisAddr)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("rateLimitPerMinute = %d, want 120", cfg.RateLimitPerMinute)
	}
}

func TestLoadVariationProbabilityZeroStaysZero(t *testing.T) {
	cfgPath := writeConfig(t, `
port: "8000"
variationProbability: 0
`)
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if *cfg.VariationProbability != 0 {
		t.Fatalf("variationProbability = %v, want explicit 0 kept", *cfg.VariationProbability)
	}
}

func TestLoadRejectsVariationProbabilityOutOfRange(t *testing.T) {
	for _, raw := range []string{"-0.1", "1.5"} {
		cfgPath := writeConfig(t, "port: \"8000\"\nvariationProbability: "+raw+"\n")
		if _, err := Load(cfgPath); err == nil {
			t.Fatalf("expected error for variationProbability %s", raw)
		}
	}
}

func TestLoadRejectsMissingPort(t *testing.T) {
	cfgPath := writeConfig(t, `logLevel: "info"`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error for missing port")
	}
}

func TestLoadRejectsRedisCacheWithoutAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	cfgPath := writeConfig(t, `
port: "8000"
cacheBackend: "redis"
`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error for redis cache backend without redisAddr")
	}
}

func TestLoadRejectsUnknownArtifactIndex(t *testing.T) {
	cfgPath := writeConfig(t, `
port: "8000"
artifactIndex: "mysql"
`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error for unknown artifact index")
	}
}
