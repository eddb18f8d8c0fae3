package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Extraction
	LLM        LLMConfig
	Extraction ExtractionConfig

	// Calendar sync
	Google        GoogleConfig
	CalendarCache CalendarCacheConfig

	// Infrastructure
	Database      DatabaseConfig
	Redis         RedisConfig
	Jobs          JobsConfig
	RateLimit     RateLimitConfig
	ErrorTracking ErrorTrackingConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

// LLMConfig holds configuration for the LLM provider abstraction layer
type LLMConfig struct {
	Providers       []ProviderConfig `yaml:"providers"`
	FallbackEnabled bool             `yaml:"fallback_enabled"`
	RetryAttempts   int              `yaml:"retry_attempts"`
	RetryDelay      string           `yaml:"retry_delay"`
	MaxTotalTimeout string           `yaml:"max_total_timeout"`
}

// ProviderConfig holds configuration for a single LLM provider
type ProviderConfig struct {
	Name     string `yaml:"name"`
	Enabled  bool   `yaml:"enabled"`
	Priority int    `yaml:"priority"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

type ExtractionConfig struct {
	DefaultTimezone  string
	CallTimeout      time.Duration
	RateLimitBackoff []time.Duration
}

type GoogleConfig struct {
	ClientID            string
	ClientSecret        string
	TokenURL            string
	TokenInfoURL        string
	RequiredScope       string
	CalendarSummary     string
	CalendarDescription string
	ProbeTimeout        time.Duration
	RequestTimeout      time.Duration
}

type CalendarCacheConfig struct {
	Size int
	TTL  time.Duration
}

type DatabaseConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JobsConfig struct {
	Enabled     bool
	Concurrency int
	Queue       string
}

type RateLimitConfig struct {
	PerMin int
}

type ErrorTrackingConfig struct {
	WebhookURL string
	Service    string
}

// Load loads configuration using Viper.
// Config file name: config.yaml, searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// LLM Provider Abstraction
	cfg.LLM.FallbackEnabled = viper.GetBool("llm.fallback_enabled")
	cfg.LLM.RetryAttempts = viper.GetInt("llm.retry_attempts")
	cfg.LLM.RetryDelay = viper.GetString("llm.retry_delay")
	cfg.LLM.MaxTotalTimeout = viper.GetString("llm.max_total_timeout")

	if viper.IsSet("llm.providers") {
		if providersList, ok := viper.Get("llm.providers").([]interface{}); ok {
			for _, p := range providersList {
				if providerMap, ok := p.(map[string]interface{}); ok {
					cfg.LLM.Providers = append(cfg.LLM.Providers, ProviderConfig{
						Name:     getStringFromMap(providerMap, "name"),
						Enabled:  getBoolFromMap(providerMap, "enabled"),
						Priority: getIntFromMap(providerMap, "priority"),
						APIKey:   expandEnvVar(getStringFromMap(providerMap, "api_key")),
						BaseURL:  getStringFromMap(providerMap, "base_url"),
						Model:    getStringFromMap(providerMap, "model"),
						Timeout:  getStringFromMap(providerMap, "timeout"),
					})
				}
			}
		}
	}

	// No providers means offline-only extraction; a broken list is still an error.
	if len(cfg.LLM.Providers) > 0 {
		if err := validateLLMConfig(&cfg.LLM); err != nil {
			return nil, err
		}
	}

	// Extraction
	cfg.Extraction.DefaultTimezone = viper.GetString("extraction.default_timezone")
	cfg.Extraction.CallTimeout = viper.GetDuration("extraction.call_timeout")
	backoff, err := parseDurations(viper.GetStringSlice("extraction.rate_limit_backoff"))
	if err != nil {
		return nil, fmt.Errorf("extraction.rate_limit_backoff: %w", err)
	}
	cfg.Extraction.RateLimitBackoff = backoff

	// Google
	cfg.Google.ClientID = viper.GetString("google.client_id")
	cfg.Google.ClientSecret = viper.GetString("google.client_secret")
	if id := viper.GetString("google_client_id"); id != "" {
		cfg.Google.ClientID = id
	}
	if secret := viper.GetString("google_client_secret"); secret != "" {
		cfg.Google.ClientSecret = secret
	}
	cfg.Google.TokenURL = viper.GetString("google.token_url")
	cfg.Google.TokenInfoURL = viper.GetString("google.tokeninfo_url")
	cfg.Google.RequiredScope = viper.GetString("google.required_scope")
	cfg.Google.CalendarSummary = viper.GetString("google.calendar_summary")
	cfg.Google.CalendarDescription = viper.GetString("google.calendar_description")
	cfg.Google.ProbeTimeout = viper.GetDuration("google.probe_timeout")
	cfg.Google.RequestTimeout = viper.GetDuration("google.request_timeout")

	cfg.CalendarCache.Size = viper.GetInt("calendar_cache.size")
	cfg.CalendarCache.TTL = viper.GetDuration("calendar_cache.ttl")

	// Infrastructure
	cfg.Database.Driver = viper.GetString("database.driver")
	cfg.Database.DSN = viper.GetString("database.dsn")
	if dsn := viper.GetString("database_url"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	cfg.Database.MaxOpenConns = viper.GetInt("database.max_open_conns")
	cfg.Database.MaxIdleConns = viper.GetInt("database.max_idle_conns")

	cfg.Redis.Addr = viper.GetString("redis.addr")
	cfg.Redis.Password = viper.GetString("redis.password")
	cfg.Redis.DB = viper.GetInt("redis.db")

	cfg.Jobs.Enabled = viper.GetBool("jobs.enabled")
	cfg.Jobs.Concurrency = viper.GetInt("jobs.concurrency")
	cfg.Jobs.Queue = viper.GetString("jobs.queue")

	cfg.RateLimit.PerMin = viper.GetInt("rate_limit.per_min")

	cfg.ErrorTracking.WebhookURL = viper.GetString("error_tracking.webhook_url")
	cfg.ErrorTracking.Service = viper.GetString("error_tracking.service")

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	// LLM defaults
	viper.SetDefault("llm.fallback_enabled", true)
	viper.SetDefault("llm.retry_attempts", 2)
	viper.SetDefault("llm.retry_delay", "1s")
	viper.SetDefault("llm.max_total_timeout", "60s")

	viper.SetDefault("extraction.default_timezone", "UTC")
	viper.SetDefault("extraction.call_timeout", "30s")
	viper.SetDefault("extraction.rate_limit_backoff", []string{"5s", "10s", "20s"})

	viper.SetDefault("google.token_url", "https://oauth2.googleapis.com/token")
	viper.SetDefault("google.tokeninfo_url", "https://oauth2.googleapis.com/tokeninfo")
	viper.SetDefault("google.required_scope", "https://www.googleapis.com/auth/calendar.app.created")
	viper.SetDefault("google.calendar_summary", "Calendar Autobot")
	viper.SetDefault("google.calendar_description", "Events extracted automatically from your text and email.")
	viper.SetDefault("google.probe_timeout", "10s")
	viper.SetDefault("google.request_timeout", "30s")

	viper.SetDefault("calendar_cache.size", 1000)
	viper.SetDefault("calendar_cache.ttl", "24h")

	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 5)

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("jobs.enabled", false)
	viper.SetDefault("jobs.concurrency", 1)
	viper.SetDefault("jobs.queue", "calendar")

	viper.SetDefault("rate_limit.per_min", 30)
	viper.SetDefault("error_tracking.service", "calendar-autobot")
}

func parseDurations(raw []string) ([]time.Duration, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]time.Duration, 0, len(raw))
	for _, s := range raw {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// expandEnvVar expands environment variables in the format ${VAR_NAME}
func expandEnvVar(value string) string {
	if value == "" {
		return value
	}

	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := value[2 : len(value)-1]
		if envValue := viper.GetString(envVar); envValue != "" {
			return envValue
		}
		if envValue := viper.GetString(strings.ToLower(envVar)); envValue != "" {
			return envValue
		}
		if envValue := os.Getenv(envVar); envValue != "" {
			return envValue
		}
	}

	return value
}

// validateLLMConfig validates the LLM configuration
func validateLLMConfig(cfg *LLMConfig) error {
	if len(cfg.Providers) == 0 {
		return fmt.Errorf("no LLM providers configured")
	}

	enabledCount := 0
	priorityMap := make(map[int]bool)

	for i, provider := range cfg.Providers {
		if provider.Name == "" {
			return fmt.Errorf("provider %d: name is required", i)
		}
		if provider.Model == "" {
			return fmt.Errorf("provider %s: model is required", provider.Name)
		}
		if !provider.Enabled {
			continue
		}
		enabledCount++

		if provider.Priority <= 0 {
			return fmt.Errorf("provider %s: priority must be positive", provider.Name)
		}
		if priorityMap[provider.Priority] {
			return fmt.Errorf("provider %s: duplicate priority %d", provider.Name, provider.Priority)
		}
		priorityMap[provider.Priority] = true
	}

	if enabledCount == 0 {
		return fmt.Errorf("no enabled LLM providers")
	}

	return nil
}

// Helper functions to safely extract values from map[string]interface{}
func getStringFromMap(m map[string]interface{}, key string) string {
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getBoolFromMap(m map[string]interface{}, key string) bool {
	if val, ok := m[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

func getIntFromMap(m map[string]interface{}, key string) int {
	if val, ok := m[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
		if f, ok := val.(float64); ok {
			return int(f)
		}
	}
	return 0
}
