package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	SupabaseKey     string // Service role key, only used by the seed command
	CORSOrigins     string
	TablePrefix     string
	// Snapshot cache
	RedisURL     string        // Empty means in-process cache
	TreeCacheTTL time.Duration // Lifetime of a cached company hierarchy
	// Editor
	IndentationWidth int // Pixels per tree level used by drag projection
	// Authorization
	AuthzPolicyPath string // Optional casbin policy CSV; embedded defaults otherwise
	AuthzMode       string // enforce, shadow or disabled
	// Logging
	LogDir      string // Tee logs to timestamped files here when set
	LogMaxFiles int
	// Debug flags
	Debug bool // Enables the plain-text tree render endpoint
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Construct JWKS URL from Supabase URL
	jwksURL := supabaseURL + "/auth/v1/.well-known/jwks.json"

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		SupabaseURL:      supabaseURL,
		SupabaseDBURL:    getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL:  jwksURL,
		SupabaseKey:      getEnv("SUPABASE_KEY", ""),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:      tablePrefix,
		RedisURL:         getEnv("REDIS_URL", ""),
		TreeCacheTTL:     getDuration("TREE_CACHE_TTL", DefaultTreeCacheTTL),
		IndentationWidth: getInt("INDENTATION_WIDTH", DefaultIndentationWidth),
		AuthzPolicyPath:  getEnv("AUTHZ_POLICY", ""),
		AuthzMode:        getEnv("AUTHZ_MODE", "enforce"),
		LogDir:           getEnv("LOG_DIR", ""),
		LogMaxFiles:      getInt("LOG_MAX_FILES", DefaultLogMaxFiles),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getInt falls back to the default for missing, malformed or non-positive values
func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
