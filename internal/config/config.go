package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quillsafe/quillsafe/internal/crypto"
	"github.com/quillsafe/quillsafe/internal/store"
)

// Config holds all application configuration.
type Config struct {
	// Vault behavior
	Vault VaultConfig `json:"vault"`

	// Storage paths and driver
	Storage StorageConfig `json:"storage"`

	// Logging
	Log LogConfig `json:"log"`
}

// VaultConfig for key-derivation policy.
type VaultConfig struct {
	// KDFIterations applies to newly created vaults only. Existing
	// vaults always unlock with the iteration count recorded in their
	// own KDF params.
	KDFIterations int `json:"kdf_iterations"`

	// User identifies the single local profile.
	User string `json:"user"`
}

// StorageConfig for local persistence.
type StorageConfig struct {
	Driver   string `json:"driver"`   // sqlite, json
	DataDir  string `json:"data_dir"` // base directory for all data
	Database string `json:"database"` // sqlite file name inside DataDir
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text, json
	File   string `json:"file"`   // log file path (empty = stderr)
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	dataDir := ".quillsafe"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".quillsafe")
	}

	return &Config{
		Vault: VaultConfig{
			KDFIterations: crypto.DefaultIterations,
			User:          "default",
		},
		Storage: StorageConfig{
			Driver:   store.DriverSQLite,
			DataDir:  dataDir,
			Database: "journal.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Vault.KDFIterations <= 0 {
		return errors.New("vault.kdf_iterations must be positive")
	}

	if c.Vault.User == "" {
		return errors.New("vault.user is required")
	}

	switch c.Storage.Driver {
	case store.DriverSQLite, store.DriverJSON:
	default:
		return fmt.Errorf("invalid storage driver: %s", c.Storage.Driver)
	}

	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Storage.DataDir}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DatabasePath returns the sqlite file location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.Database)
}
