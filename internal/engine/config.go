package engine

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults applied by ConfigFromEnv and NewEngine when a field is unset.
const (
	DefaultRetentionDays = 7
	DefaultFlushDelay    = 2 * time.Second
	DefaultCacheSize     = 128
)

// Config carries the engine settings.
type Config struct {
	// DBPath is the SQLite database file; empty means the per-user default.
	DBPath string
	// RetentionDays is the age threshold for pruning stale catalog items.
	RetentionDays int
	// FlushDelay is the quiet period of the debounced usage writer.
	FlushDelay time.Duration
	// CacheSize is the number of query results kept in the LRU cache.
	CacheSize int
}

// ConfigFromEnv builds a Config from the LUMINA_* environment variables,
// falling back to defaults for anything unset or unparsable.
func ConfigFromEnv() Config {
	cfg := Config{
		DBPath:        os.Getenv("LUMINA_DB_PATH"),
		RetentionDays: DefaultRetentionDays,
		FlushDelay:    DefaultFlushDelay,
		CacheSize:     DefaultCacheSize,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	if v := os.Getenv("LUMINA_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RetentionDays = n
		}
	}
	if v := os.Getenv("LUMINA_FLUSH_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FlushDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("LUMINA_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheSize = n
		}
	}
	return cfg
}

// withDefaults fills unset fields so a zero Config is usable in tests.
func (c Config) withDefaults() Config {
	if c.DBPath == "" {
		c.DBPath = defaultDBPath()
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = DefaultRetentionDays
	}
	if c.FlushDelay <= 0 {
		c.FlushDelay = DefaultFlushDelay
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	return c
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lumina.db"
	}
	return filepath.Join(home, ".lumina", "lumina.db")
}
