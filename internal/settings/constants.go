package settings

import "time"

// Environment keys and defaults for the server.
const (
	// PortKey is the env key for the listen port.
	PortKey = "PORT"
	// HostKey is the env key for the listen host.
	HostKey = "HOST"
	// ConfigPathKey points at the optional YAML config file.
	ConfigPathKey = "CONFIG_PATH"
	// CompletionAPIKeyKey is the env key for the completion service API key.
	CompletionAPIKeyKey = "CEREBRAS_API_KEY"
	// CompletionBaseURLKey overrides the completion service base URL.
	CompletionBaseURLKey = "COMPLETION_BASE_URL"
	// CompletionTimeoutKey bounds a single completion request.
	CompletionTimeoutKey = "COMPLETION_TIMEOUT"
	// RateLimitRequestsKey controls the requests allowed per window.
	RateLimitRequestsKey = "RATE_LIMIT_REQUESTS"
	// RateLimitWindowKey controls the window length in seconds.
	RateLimitWindowKey = "RATE_LIMIT_WINDOW"
	// RateLimitBackendTimeoutKey bounds a single store call.
	RateLimitBackendTimeoutKey = "RATE_LIMIT_BACKEND_TIMEOUT"
	// RateLimitRedisPrefixKey defines the Redis key prefix for rate limiting.
	RateLimitRedisPrefixKey = "RATE_LIMIT_REDIS_PREFIX"
	// RateLimitRepromoteIntervalKey enables re-promotion of recovered stores.
	RateLimitRepromoteIntervalKey = "RATE_LIMIT_REPROMOTE_INTERVAL"
	// RateLimitDBConcurrencyKey bounds concurrent rate limit transactions.
	RateLimitDBConcurrencyKey = "RATE_LIMIT_DB_CONCURRENCY"
	// RedisURLKey is the env key for the shared store URL.
	RedisURLKey = "REDIS_URL"
	// DatabaseURLKey is the env key for the relational store DSN.
	DatabaseURLKey = "DATABASE_URL"
	// LogLevelKey sets the logrus level.
	LogLevelKey = "LOG_LEVEL"
	// LogFileKey enables rotated file logging.
	LogFileKey = "LOG_FILE"

	// DefaultPort is the fallback listen port.
	DefaultPort = 8000
	// DefaultConfigPath is the fallback YAML config location.
	DefaultConfigPath = "config.yaml"
	// DefaultCompletionBaseURL is the Cerebras OpenAI-compatible endpoint.
	DefaultCompletionBaseURL = "https://api.cerebras.ai/v1"
	// DefaultCompletionTimeout bounds a single completion request.
	DefaultCompletionTimeout = 60 * time.Second
	// DefaultRateLimitRequests is the fallback requests per window.
	DefaultRateLimitRequests = 5
	// DefaultRateLimitWindowSeconds is the fallback window length.
	DefaultRateLimitWindowSeconds = 60
	// DefaultRateLimitBackendTimeout bounds a single store call.
	DefaultRateLimitBackendTimeout = 500 * time.Millisecond
	// DefaultRateLimitRedisPrefix is the fallback Redis key prefix.
	DefaultRateLimitRedisPrefix = "uigen:rl"
	// DefaultRateLimitDBConcurrency is the fallback transaction concurrency.
	DefaultRateLimitDBConcurrency = 16
	// DefaultLogLevel is the fallback logrus level.
	DefaultLogLevel = "info"
)
