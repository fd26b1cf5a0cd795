// Package config loads and validates application configuration from an
// optional YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Storage backends accepted in STORAGE_BACKEND.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration values for the API server.
// Values are populated by Load: defaults first, then the YAML file named
// by CONFIG_FILE (if any), then environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string `yaml:"cors_origins"`

	// StorageBackend selects where the event slot lives: file, postgres or memory.
	// Defaults to "file".
	StorageBackend string `yaml:"storage_backend"`

	// DataDir is the directory used by the file backend. Defaults to "./data".
	DataDir string `yaml:"data_dir"`

	// DatabaseURL is the Postgres connection string.
	// Required when StorageBackend is "postgres".
	DatabaseURL string `yaml:"database_url"`

	// SlotKey names the persistence slot holding the event collection.
	// Defaults to "qalakaar_events".
	SlotKey string `yaml:"slot_key"`

	// CollateLang is the BCP 47 language tag used to order titles.
	// Defaults to "en".
	CollateLang string `yaml:"collate_lang"`

	// MaxBodyBytes caps request body size. Defaults to 1 MiB; 0 disables the cap.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// defaults returns the configuration used when nothing is set.
func defaults() Config {
	return Config{
		Port:           "8080",
		LogLevel:       "info",
		CORSOrigins:    []string{"http://localhost:5173"},
		StorageBackend: BackendFile,
		DataDir:        "./data",
		SlotKey:        "qalakaar_events",
		CollateLang:    "en",
		MaxBodyBytes:   1 << 20,
	}
}

// Load builds the Config and validates it.
// Returns an error listing every problem found, e.g. a missing DATABASE_URL
// for the postgres backend or an unknown storage backend.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	var problems []string

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	cfg.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", cfg.StorageBackend))
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SlotKey = getEnv("SLOT_KEY", cfg.SlotKey)
	cfg.CollateLang = getEnv("COLLATE_LANG", cfg.CollateLang)
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			problems = append(problems, "MAX_BODY_BYTES must be a non-negative integer")
		} else {
			cfg.MaxBodyBytes = n
		}
	}

	switch cfg.StorageBackend {
	case BackendFile, BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORAGE_BACKEND %q is not one of file, postgres, memory", cfg.StorageBackend))
	}
	if _, err := language.Parse(cfg.CollateLang); err != nil {
		problems = append(problems, fmt.Sprintf("COLLATE_LANG %q is not a valid language tag", cfg.CollateLang))
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

// Language returns the parsed collation language. Load has already
// validated the tag, so failures fall back to English.
func (c Config) Language() language.Tag {
	tag, err := language.Parse(c.CollateLang)
	if err != nil {
		return language.English
	}
	return tag
}

// loadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
