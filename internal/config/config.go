package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Store backends
const (
	BackendFS       = "fs"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Host store
	StoreBackend string
	VaultRoot    string // fs backend
	DatabaseURL  string // postgres backend
	TablePrefix  string
	// Tree index
	CountPunctuation bool
	CollationLocale  string
	MaxTreeDepth     int
	// Auth, disabled when empty
	AuthJWKSURL string
	// Log file sink, disabled when LogDir is empty
	LogDir      string
	LogMaxFiles int
	// Writer profile
	WriterName  string
	AvatarPath  string
	BooksPerRow int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", BackendFS)),
		VaultRoot:        getEnv("VAULT_ROOT", "./vault"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		TablePrefix:      getTablePrefix(env),
		CountPunctuation: getEnvBool("COUNT_PUNCTUATION", false),
		CollationLocale:  getEnv("COLLATION_LOCALE", "zh"),
		MaxTreeDepth:     getEnvInt("MAX_TREE_DEPTH", DefaultMaxTreeDepth),
		AuthJWKSURL:      getEnv("AUTH_JWKS_URL", ""),
		LogDir:           getEnv("LOG_DIR", ""),
		LogMaxFiles:      getEnvInt("LOG_MAX_FILES", 10),
		WriterName:       getEnv("WRITER_NAME", ""),
		AvatarPath:       getEnv("AVATAR_PATH", ""),
		BooksPerRow:      getEnvInt("BOOKS_PER_ROW", DefaultBooksPerRow),
	}
}

// Validate reports configuration that cannot start a server
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFS:
		if c.VaultRoot == "" {
			return fmt.Errorf("VAULT_ROOT is required for the %s backend", BackendFS)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %s, %s or %s)", c.StoreBackend, BackendFS, BackendPostgres, BackendMemory)
	}
	if _, err := language.Parse(c.CollationLocale); err != nil {
		return fmt.Errorf("invalid COLLATION_LOCALE %q: %w", c.CollationLocale, err)
	}
	if c.MaxTreeDepth <= 0 {
		return fmt.Errorf("MAX_TREE_DEPTH must be positive, got %d", c.MaxTreeDepth)
	}
	if c.BooksPerRow < 1 || c.BooksPerRow > MaxBooksPerRow {
		return fmt.Errorf("BOOKS_PER_ROW must be between 1 and %d, got %d", MaxBooksPerRow, c.BooksPerRow)
	}
	return nil
}

// Locale returns the collation locale, Chinese if it does not parse
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.CollationLocale)
	if err != nil {
		return language.Chinese
	}
	return tag
}

// AuthEnabled reports whether bearer tokens are required
func (c *Config) AuthEnabled() bool {
	return c.AuthJWKSURL != ""
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

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
