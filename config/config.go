// Package config loads and validates fluentdb configuration from defaults,
// YAML files, and environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The YAML configuration file at path (optional; skipped when empty or missing)
// 3. Default values (lowest priority)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		// The YAML file is optional; missing files are not an error.
		_ = k.Load(file.Provider(path), yaml.Parser())
	}

	if err := loadEnv(k); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return unmarshal(k)
}

// LoadFromBytes loads configuration from raw YAML bytes layered over defaults.
// It is primarily useful in tests and embedded setups.
func LoadFromBytes(raw []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnv(k *koanf.Koanf) error {
	// FLUENTDB_DATABASE_DRIVER=sqlite becomes database.driver=sqlite.
	return k.Load(envprovider.Provider("FLUENTDB_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "FLUENTDB_")
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}), nil)
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"database.driver":   SQLite,
		"database.database": "",
		"database.charset":  "utf8mb4",

		"database.pool.maxconns":        25,
		"database.pool.maxidleconns":    2,
		"database.pool.connmaxlifetime": "30m",
		"database.pool.connmaxidletime": "5m",

		"database.query.slow.threshold": "200ms",
		"database.query.log.parameters": false,
		"database.query.log.maxlength":  1000,

		"log.level":  "info",
		"log.pretty": false,

		"cache.enabled":         false,
		"cache.defaultttl":      "1m",
		"cache.cleanupinterval": "5m",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
