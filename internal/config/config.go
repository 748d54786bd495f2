package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/router-for-me/DynamicUIGenerator/internal/settings"
	"gopkg.in/yaml.v3"
)

// Config holds resolved application configuration values.
type Config struct {
	ConfigPath  string           `yaml:"-"`
	Port        int              `yaml:"port" validate:"min=1,max=65535"`
	Host        string           `yaml:"host"`
	RedisURL    string           `yaml:"redis-url"`
	DatabaseURL string           `yaml:"database-url"`
	LogLevel    string           `yaml:"log-level" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFile     string           `yaml:"log-file"`
	RateLimit   RateLimitConfig  `yaml:"rate-limit"`
	Completion  CompletionConfig `yaml:"completion"`
}

// RateLimitConfig configures the request limiter.
type RateLimitConfig struct {
	Requests          int           `yaml:"requests" validate:"min=1"`
	WindowSeconds     int           `yaml:"window-seconds" validate:"min=1"`
	BackendTimeout    time.Duration `yaml:"backend-timeout" validate:"gt=0"`
	RedisPrefix       string        `yaml:"redis-prefix" validate:"required"`
	RepromoteInterval time.Duration `yaml:"repromote-interval" validate:"gte=0"`
	DBConcurrency     int           `yaml:"db-concurrency" validate:"min=1"`
}

// Window returns the window length as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// CompletionConfig configures the upstream text-generation service.
type CompletionConfig struct {
	APIKey  string        `yaml:"api-key"`
	BaseURL string        `yaml:"base-url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", strings.TrimSpace(c.Host), c.Port)
}

// Default returns the configuration used when neither file nor env set a value.
func Default() Config {
	return Config{
		Port:     settings.DefaultPort,
		LogLevel: settings.DefaultLogLevel,
		RateLimit: RateLimitConfig{
			Requests:       settings.DefaultRateLimitRequests,
			WindowSeconds:  settings.DefaultRateLimitWindowSeconds,
			BackendTimeout: settings.DefaultRateLimitBackendTimeout,
			RedisPrefix:    settings.DefaultRateLimitRedisPrefix,
			DBConcurrency:  settings.DefaultRateLimitDBConcurrency,
		},
		Completion: CompletionConfig{
			BaseURL: settings.DefaultCompletionBaseURL,
			Timeout: settings.DefaultCompletionTimeout,
		},
	}
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv(settings.ConfigPathKey))
	}
	if trimmed == "" {
		trimmed = settings.DefaultConfigPath
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// LoadDotEnv loads variables from a .env file when present. Variables already
// set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if errLoad := godotenv.Load(p); errLoad != nil {
			if errors.Is(errLoad, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, errLoad)
		}
	}
	return nil
}

// Load resolves configuration from defaults, the optional YAML file at
// configPath and the environment, in increasing precedence.
func Load(configPath string) (Config, error) {
	cfg := Default()
	cfg.ConfigPath = ResolveConfigPath(configPath)

	data, errRead := os.ReadFile(cfg.ConfigPath)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", cfg.ConfigPath, errUnmarshal)
		}
	case errors.Is(errRead, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", cfg.ConfigPath, errRead)
	}

	if errEnv := applyEnv(&cfg); errEnv != nil {
		return Config{}, errEnv
	}
	normalize(&cfg)
	if errValidate := Validate(cfg); errValidate != nil {
		return Config{}, errValidate
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func Validate(cfg Config) error {
	if errStruct := validate.Struct(cfg); errStruct != nil {
		return fmt.Errorf("config: validate: %w", errStruct)
	}
	return nil
}

func normalize(cfg *Config) {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.RedisURL = strings.TrimSpace(cfg.RedisURL)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = settings.DefaultLogLevel
	}
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)
	cfg.RateLimit.RedisPrefix = strings.TrimSpace(cfg.RateLimit.RedisPrefix)
	if cfg.RateLimit.RedisPrefix == "" {
		cfg.RateLimit.RedisPrefix = settings.DefaultRateLimitRedisPrefix
	}
	cfg.Completion.APIKey = strings.TrimSpace(cfg.Completion.APIKey)
	cfg.Completion.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Completion.BaseURL), "/")
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Host, settings.HostKey)
	setString(&cfg.RedisURL, settings.RedisURLKey)
	setString(&cfg.DatabaseURL, settings.DatabaseURLKey)
	setString(&cfg.LogLevel, settings.LogLevelKey)
	setString(&cfg.LogFile, settings.LogFileKey)
	setString(&cfg.RateLimit.RedisPrefix, settings.RateLimitRedisPrefixKey)
	setString(&cfg.Completion.APIKey, settings.CompletionAPIKeyKey)
	setString(&cfg.Completion.BaseURL, settings.CompletionBaseURLKey)

	ints := []struct {
		key string
		dst *int
	}{
		{settings.PortKey, &cfg.Port},
		{settings.RateLimitRequestsKey, &cfg.RateLimit.Requests},
		{settings.RateLimitWindowKey, &cfg.RateLimit.WindowSeconds},
		{settings.RateLimitDBConcurrencyKey, &cfg.RateLimit.DBConcurrency},
	}
	for _, item := range ints {
		if errSet := setInt(item.dst, item.key); errSet != nil {
			return errSet
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{settings.RateLimitBackendTimeoutKey, &cfg.RateLimit.BackendTimeout},
		{settings.RateLimitRepromoteIntervalKey, &cfg.RateLimit.RepromoteInterval},
		{settings.CompletionTimeoutKey, &cfg.Completion.Timeout},
	}
	for _, item := range durations {
		if errSet := setDuration(item.dst, item.key); errSet != nil {
			return errSet
		}
	}
	return nil
}

func lookup(key string) (string, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func setString(dst *string, key string) {
	if raw, ok := lookup(key); ok {
		*dst = raw
	}
}

func setInt(dst *int, key string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, errParse := strconv.Atoi(raw)
	if errParse != nil {
		return fmt.Errorf("config: %s: invalid integer %q", key, raw)
	}
	*dst = parsed
	return nil
}

// setDuration accepts Go duration strings or a bare number of seconds.
func setDuration(dst *time.Duration, key string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	if seconds, errFloat := strconv.ParseFloat(raw, 64); errFloat == nil {
		*dst = time.Duration(seconds * float64(time.Second))
		return nil
	}
	parsed, errParse := time.ParseDuration(raw)
	if errParse != nil {
		return fmt.Errorf("config: %s: invalid duration %q", key, raw)
	}
	*dst = parsed
	return nil
}
