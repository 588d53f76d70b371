// Package config provides application configuration with multi-source priority.
//
// Sources (highest to lowest): environment variables, config file
// (./config.yaml), defaults. The Config struct is built once at process
// start and passed into component constructors; nothing reads ambient
// configuration at request time.
//
// Sensitive fields (API keys, database URL) are masked in MarshalJSON
// and String so a logged Config never leaks credentials.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel errors for fail-fast validation.
var (
	ErrMissingGeminiKey   = errors.New("missing GEMINI_API_KEY")
	ErrMissingDatabaseURL = errors.New("missing DATABASE_URL")
	ErrInvalidLimit       = errors.New("invalid daily request limit")
	ErrInvalidCaps        = errors.New("invalid context caps")
	ErrInvalidThreshold   = errors.New("invalid similarity threshold")
)

// Default model identifiers. The fallback model is a cheaper tier used
// only when the primary model reports quota exhaustion.
const (
	DefaultChatModel     = "gemini-2.5-flash"
	DefaultFallbackModel = "gemini-2.5-flash-lite"
	DefaultEmbedderModel = "gemini-embedding-001"
)

// Config stores the full application configuration.
type Config struct {
	// Server
	Addr        string   `mapstructure:"addr" json:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"`

	// Caller credential. When set, requests must carry it in X-API-Token.
	APIToken string `mapstructure:"api_token" json:"api_token"` // SENSITIVE

	// Generation backend
	GeminiAPIKey  string `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE
	ChatModel     string `mapstructure:"chat_model" json:"chat_model"`
	FallbackModel string `mapstructure:"fallback_model" json:"fallback_model"`
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`

	// Datastore
	DatabaseURL string `mapstructure:"database_url" json:"database_url"` // SENSITIVE

	// Request policy
	DailyRequestLimit int `mapstructure:"daily_request_limit" json:"daily_request_limit"`
	MaxMessageChars   int `mapstructure:"max_message_chars" json:"max_message_chars"`

	// Retrieval and context assembly. These bound model token cost and
	// must never be hardcoded at the call sites.
	ResultsPerCategory int     `mapstructure:"results_per_category" json:"results_per_category"`
	MaxContextChars    int     `mapstructure:"max_context_chars" json:"max_context_chars"`
	ContextLineChars   int     `mapstructure:"context_line_chars" json:"context_line_chars"`
	MinSimilarity      float64 `mapstructure:"min_similarity" json:"min_similarity"`
	StrictDomain       bool    `mapstructure:"strict_domain" json:"strict_domain"`

	// External lookups (soft dependencies; empty key degrades gracefully)
	RoutingAPIKey string `mapstructure:"routing_api_key" json:"routing_api_key"` // SENSITIVE
	SearchAPIKey  string `mapstructure:"search_api_key" json:"search_api_key"`   // SENSITIVE

	// Timeouts per suspension point
	EmbedTimeout     time.Duration `mapstructure:"embed_timeout" json:"embed_timeout"`
	RetrievalTimeout time.Duration `mapstructure:"retrieval_timeout" json:"retrieval_timeout"`
	GenerateTimeout  time.Duration `mapstructure:"generate_timeout" json:"generate_timeout"`
	LookupTimeout    time.Duration `mapstructure:"lookup_timeout" json:"lookup_timeout"`

	// Delay before the fallback generation attempt when the backend does
	// not suggest one.
	QuotaRetryDelay time.Duration `mapstructure:"quota_retry_delay" json:"quota_retry_delay"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load builds the configuration from defaults, an optional config.yaml in
// the working directory, and environment variables. Validation is applied
// immediately so a misconfigured process fails at startup, not on first use.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("cors_origins", []string{"http://localhost:4200"})
	v.SetDefault("trust_proxy", false)

	v.SetDefault("chat_model", DefaultChatModel)
	v.SetDefault("fallback_model", DefaultFallbackModel)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	v.SetDefault("daily_request_limit", 200)
	v.SetDefault("max_message_chars", 1200)

	v.SetDefault("results_per_category", 5)
	v.SetDefault("max_context_chars", 3000)
	v.SetDefault("context_line_chars", 220)
	v.SetDefault("min_similarity", 0.22)
	v.SetDefault("strict_domain", false)

	v.SetDefault("embed_timeout", 10*time.Second)
	v.SetDefault("retrieval_timeout", 5*time.Second)
	v.SetDefault("generate_timeout", 30*time.Second)
	v.SetDefault("lookup_timeout", 8*time.Second)
	v.SetDefault("quota_retry_delay", 2*time.Second)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnv binds environment variables explicitly. Secrets come only from
// the environment, never from the config file checked into deployments.
func bindEnv(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("gemini_api_key", "GEMINI_API_KEY")
	mustBind("database_url", "DATABASE_URL")
	mustBind("api_token", "MEDINA_API_TOKEN")
	mustBind("routing_api_key", "ROUTING_API_KEY")
	mustBind("search_api_key", "SEARCH_API_KEY")

	mustBind("addr", "MEDINA_ADDR")
	mustBind("cors_origins", "MEDINA_CORS_ORIGINS")
	mustBind("trust_proxy", "MEDINA_TRUST_PROXY")
	mustBind("chat_model", "MEDINA_CHAT_MODEL")
	mustBind("fallback_model", "MEDINA_FALLBACK_MODEL")
	mustBind("embedder_model", "MEDINA_EMBEDDER_MODEL")
	mustBind("daily_request_limit", "MEDINA_DAILY_REQUEST_LIMIT")
	mustBind("strict_domain", "MEDINA_STRICT_DOMAIN")
	mustBind("min_similarity", "MEDINA_MIN_SIMILARITY")
	mustBind("log_level", "MEDINA_LOG_LEVEL")
	mustBind("log_json", "MEDINA_LOG_JSON")
}

// Validate applies fail-fast range checks.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return ErrMissingGeminiKey
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}
	if c.DailyRequestLimit < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, c.DailyRequestLimit)
	}
	if c.MaxMessageChars < 1 || c.MaxContextChars < 1 || c.ContextLineChars < 1 {
		return fmt.Errorf("%w: message=%d context=%d line=%d",
			ErrInvalidCaps, c.MaxMessageChars, c.MaxContextChars, c.ContextLineChars)
	}
	if c.ContextLineChars > c.MaxContextChars {
		return fmt.Errorf("%w: line cap %d exceeds total cap %d",
			ErrInvalidCaps, c.ContextLineChars, c.MaxContextChars)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("%w: %f", ErrInvalidThreshold, c.MinSimilarity)
	}
	if c.ResultsPerCategory < 1 || c.ResultsPerCategory > 20 {
		return fmt.Errorf("results_per_category must be between 1 and 20, got %d", c.ResultsPerCategory)
	}
	return nil
}

const maskedValue = "████████"

// maskSecret hides a secret for safe logging. Short secrets are fully
// masked; longer ones keep the first and last two characters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON masks sensitive fields. Update when adding secrets.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.GeminiAPIKey = maskSecret(a.GeminiAPIKey)
	a.DatabaseURL = maskSecret(a.DatabaseURL)
	a.APIToken = maskSecret(a.APIToken)
	a.RoutingAPIKey = maskSecret(a.RoutingAPIKey)
	a.SearchAPIKey = maskSecret(a.SearchAPIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
