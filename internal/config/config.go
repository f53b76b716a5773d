package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ModelFile         string        // path to the tree-ensemble artifact (JSON)
	ModelMetadataFile string        // path to the companion metadata document
	PolicyFile        string        // path to popular-domains yaml (optional, empty = built-in list)
	PolicyInterval    time.Duration // interval to reload the policy file (default: 24h)

	CacheSize       int           // prediction cache capacity (default: 1000)
	CacheTTL        time.Duration // prediction cache entry TTL (default: 1h)
	CleanupInterval time.Duration // expired-entry sweep cadence (default: 10m)
	PersistInterval time.Duration // whitelist/counter persistence cadence (default: 5m)

	ThresholdProfile string // initial profile when none is persisted (empty = model recommendation, then balanced)

	// Redis (optional: empty addr = in-memory state, lost on restart)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("PHISHGUARD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("PHISHGUARD_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("PHISHGUARD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PHISHGUARD_PRETTY_LOG", true),

		// Model artifact
		ModelFile:         requireEnv("PHISHGUARD_MODEL_FILE"),
		ModelMetadataFile: requireEnv("PHISHGUARD_MODEL_METADATA_FILE"),
		PolicyFile:        getenv("PHISHGUARD_POLICY_FILE", ""),
		PolicyInterval:    mustDuration("PHISHGUARD_POLICY_RELOAD_INTERVAL", 24*time.Hour),

		// Decision pipeline
		CacheSize:        getenvInt("PHISHGUARD_CACHE_SIZE", 1000),
		CacheTTL:         mustDuration("PHISHGUARD_CACHE_TTL", time.Hour),
		CleanupInterval:  mustDuration("PHISHGUARD_CLEANUP_INTERVAL", 10*time.Minute),
		PersistInterval:  mustDuration("PHISHGUARD_PERSIST_INTERVAL", 5*time.Minute),
		ThresholdProfile: getenv("PHISHGUARD_THRESHOLD_PROFILE", ""),

		// Redis settings
		RedisAddr:           getenv("PHISHGUARD_REDIS_ADDR", ""),
		RedisUser:           getenv("PHISHGUARD_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("PHISHGUARD_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("PHISHGUARD_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
	}

	if cfg.CacheSize <= 0 {
		panic(fmt.Sprintf("❌ FATAL: PHISHGUARD_CACHE_SIZE must be positive, got %d", cfg.CacheSize))
	}
	if cfg.CacheTTL <= 0 {
		panic(fmt.Sprintf("❌ FATAL: PHISHGUARD_CACHE_TTL must be positive, got %v", cfg.CacheTTL))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
