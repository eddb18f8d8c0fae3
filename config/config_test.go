package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
environment:
  name: production
http_server:
  port: 9090
llm:
  fallback_enabled: true
  providers:
    - name: openai
      enabled: true
      priority: 1
      api_key: ${TEST_OPENAI_KEY}
      model: gpt-4o
      timeout: 25s
    - name: gemini
      enabled: false
      priority: 2
      api_key: g-key
      model: gemini-2.5-flash
extraction:
  default_timezone: Europe/Berlin
  rate_limit_backoff: ["1s", "2s"]
database:
  driver: sqlite3
  dsn: "file::memory:"
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Environment.Name != "production" || cfg.HTTPServer.Port != 9090 {
		t.Errorf("server config not read: %+v %+v", cfg.Environment, cfg.HTTPServer)
	}
	if len(cfg.LLM.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(cfg.LLM.Providers))
	}
	if p := cfg.LLM.Providers[0]; p.APIKey != "sk-test" || p.Priority != 1 || p.Timeout != "25s" {
		t.Errorf("provider 0 = %+v", p)
	}
	if cfg.Extraction.DefaultTimezone != "Europe/Berlin" {
		t.Errorf("DefaultTimezone = %q", cfg.Extraction.DefaultTimezone)
	}
	if got := cfg.Extraction.RateLimitBackoff; len(got) != 2 || got[1] != 2*time.Second {
		t.Errorf("RateLimitBackoff = %v", got)
	}
	if cfg.Extraction.CallTimeout != 30*time.Second {
		t.Errorf("CallTimeout default = %s", cfg.Extraction.CallTimeout)
	}
	if cfg.Google.RequiredScope != "https://www.googleapis.com/auth/calendar.app.created" {
		t.Errorf("RequiredScope default = %q", cfg.Google.RequiredScope)
	}
	if cfg.Database.Driver != "sqlite3" || cfg.RateLimit.PerMin != 30 {
		t.Errorf("database/rate limit = %+v %+v", cfg.Database, cfg.RateLimit)
	}
}

func TestValidateLLMConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LLMConfig
		wantErr bool
	}{
		{"valid", LLMConfig{Providers: []ProviderConfig{{Name: "openai", Model: "gpt-4o", Enabled: true, Priority: 1}}}, false},
		{"empty", LLMConfig{}, true},
		{"missing model", LLMConfig{Providers: []ProviderConfig{{Name: "openai", Enabled: true, Priority: 1}}}, true},
		{"none enabled", LLMConfig{Providers: []ProviderConfig{{Name: "openai", Model: "m", Priority: 1}}}, true},
		{"duplicate priority", LLMConfig{Providers: []ProviderConfig{
			{Name: "a", Model: "m", Enabled: true, Priority: 1},
			{Name: "b", Model: "m", Enabled: true, Priority: 1},
		}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateLLMConfig(&tt.cfg); (err != nil) != tt.wantErr {
				t.Errorf("validateLLMConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDurations(t *testing.T) {
	got, err := parseDurations([]string{"5s", " 10s", "20s"})
	if err != nil || len(got) != 3 || got[2] != 20*time.Second {
		t.Errorf("parseDurations() = %v, %v", got, err)
	}
	if _, err := parseDurations([]string{"soon"}); err == nil {
		t.Error("expected error for bad duration")
	}
}
