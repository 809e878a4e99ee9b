package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv                   string
	Port                     string
	ReplicateAPIToken        string
	ReplicateBaseURL         string
	ReplicateModelVersion    string
	EditorTimeout            time.Duration
	EditorPollInterval       time.Duration
	TemplateDir              string
	FontDir                  string
	UploadDir                string
	MaxUploadBytes           int64
	HTTPReadTimeout          time.Duration
	HTTPWriteTimeout         time.Duration
	HTTPIdleTimeout          time.Duration
	RateLimitPerMin          int
	MaxConcurrentGenerations int
	CORSAllowedOrigins       []string
	PreferIPv4               bool
}

// DefaultReplicateModelVersion pins the expression-editor model version.
const DefaultReplicateModelVersion = "bf913bc90e1c44ba288ba3942a538693b72e8cc7df576f3beebe56adc0a92b86"

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := LoadLocalConfig()
	if cfg.ReplicateAPIToken == "" {
		return nil, fmt.Errorf("REPLICATE_API_TOKEN is required")
	}
	return cfg, nil
}

// LoadLocalConfig is LoadConfig without the token requirement, for tools
// that can run without the expression editor.
func LoadLocalConfig() *Config {
	cfg := &Config{
		AppEnv:                   getEnv("APP_ENV", "development"),
		Port:                     getEnv("PORT", "8080"),
		ReplicateAPIToken:        strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN")),
		ReplicateBaseURL:         getEnv("REPLICATE_BASE_URL", "https://api.replicate.com"),
		ReplicateModelVersion:    getEnv("REPLICATE_MODEL_VERSION", DefaultReplicateModelVersion),
		EditorTimeout:            time.Second * time.Duration(getEnvInt("EDITOR_TIMEOUT_SECONDS", 60)),
		EditorPollInterval:       time.Millisecond * time.Duration(getEnvInt("EDITOR_POLL_INTERVAL_MS", 1000)),
		TemplateDir:              os.Getenv("TEMPLATE_DIR"),
		FontDir:                  os.Getenv("FONT_DIR"),
		UploadDir:                os.Getenv("UPLOAD_DIR"),
		MaxUploadBytes:           int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),
		HTTPReadTimeout:          time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:         time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:          time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:          getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		MaxConcurrentGenerations: getEnvInt("MAX_CONCURRENT_GENERATIONS", 8),
		CORSAllowedOrigins:       splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		PreferIPv4:               getEnvBool("PREFER_IPV4", false),
	}

	if cfg.EditorTimeout <= 0 {
		cfg.EditorTimeout = 60 * time.Second
	}
	if cfg.EditorPollInterval <= 0 {
		cfg.EditorPollInterval = time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 << 20
	}
	if cfg.MaxConcurrentGenerations < 1 {
		cfg.MaxConcurrentGenerations = 1
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
