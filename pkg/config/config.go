// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all canvascheck configuration.
type Config struct {
	Version int `yaml:"version"`

	Analysis  AnalysisConfig  `yaml:"analysis"`
	Checks    ChecksConfig    `yaml:"checks"`
	Cache     CacheConfig     `yaml:"cache"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Watch     WatchConfig     `yaml:"watch"`
}

// AnalysisConfig controls how logs are read and replayed.
type AnalysisConfig struct {
	Dialect     string `yaml:"dialect"`      // tagged | legacy | auto
	ClassScheme string `yaml:"class_scheme"` // tag | threshold
	MainBelow   int64  `yaml:"main_below"`   // threshold scheme: ids below this are main
}

// ChecksConfig sets the expectations the checks test against.
type ChecksConfig struct {
	MainArtists     int64 `yaml:"main_artists"`
	RookieArtists   int64 `yaml:"rookie_artists"`
	MinPixels       int64 `yaml:"min_pixels"`
	PixelsPerArtist int64 `yaml:"pixels_per_artist"` // 0 = no per-artist quota
	StrictPixels    bool  `yaml:"strict_pixels"`
	Islands         bool  `yaml:"islands"`
}

// CacheConfig controls the verdict cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Redis   string `yaml:"redis"` // host:port; empty = local files only
}

// StorageConfig for run history persistence.
type StorageConfig struct {
	Database string `yaml:"database"`
}

// TelemetryConfig for optional tracing.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// WatchConfig for the file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	ccDir := filepath.Join(homeDir, ".canvascheck")

	return &Config{
		Version: 1,
		Analysis: AnalysisConfig{
			Dialect:     "auto",
			ClassScheme: "tag",
			MainBelow:   4,
		},
		Checks: ChecksConfig{
			MainArtists:   4,
			RookieArtists: 50,
			MinPixels:     1,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     filepath.Join(ccDir, "cache"),
		},
		Storage: StorageConfig{
			Database: filepath.Join(ccDir, "canvascheck.db"),
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // Paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Start with defaults
	m.config = Default()
	m.paths = nil

	// Load from paths in order (later overrides earlier)
	paths := m.getConfigPaths()
	for _, path := range paths {
		if err := m.loadFile(path); err != nil {
			// Ignore missing files, but report errors for existing files
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	// Override with environment variables
	m.loadEnv()

	return nil
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	// System config
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/canvascheck/config.yaml")
	}

	// User config
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".canvascheck", "config.yaml"))
	}

	// Project config (current directory)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".canvascheck.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}

	// Merge non-zero values
	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config. Boolean toggles
// merge on, never off; use flags to disable.
func (m *Manager) merge(src *Config) {
	// Analysis
	if src.Analysis.Dialect != "" {
		m.config.Analysis.Dialect = src.Analysis.Dialect
	}
	if src.Analysis.ClassScheme != "" {
		m.config.Analysis.ClassScheme = src.Analysis.ClassScheme
	}
	if src.Analysis.MainBelow != 0 {
		m.config.Analysis.MainBelow = src.Analysis.MainBelow
	}

	// Checks
	if src.Checks.MainArtists != 0 {
		m.config.Checks.MainArtists = src.Checks.MainArtists
	}
	if src.Checks.RookieArtists != 0 {
		m.config.Checks.RookieArtists = src.Checks.RookieArtists
	}
	if src.Checks.MinPixels != 0 {
		m.config.Checks.MinPixels = src.Checks.MinPixels
	}
	if src.Checks.PixelsPerArtist != 0 {
		m.config.Checks.PixelsPerArtist = src.Checks.PixelsPerArtist
	}
	if src.Checks.StrictPixels {
		m.config.Checks.StrictPixels = true
	}
	if src.Checks.Islands {
		m.config.Checks.Islands = true
	}

	// Cache
	if src.Cache.Enabled {
		m.config.Cache.Enabled = true
	}
	if src.Cache.Dir != "" {
		m.config.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.Redis != "" {
		m.config.Cache.Redis = src.Cache.Redis
	}

	// Storage
	if src.Storage.Database != "" {
		m.config.Storage.Database = src.Storage.Database
	}

	// Telemetry
	if src.Telemetry.Enabled {
		m.config.Telemetry.Enabled = true
	}
	if src.Telemetry.Endpoint != "" {
		m.config.Telemetry.Endpoint = src.Telemetry.Endpoint
	}

	// Watch
	if src.Watch.Debounce != 0 {
		m.config.Watch.Debounce = src.Watch.Debounce
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	// CANVASCHECK_DIALECT
	if v := os.Getenv("CANVASCHECK_DIALECT"); v != "" {
		m.config.Analysis.Dialect = v
	}

	// CANVASCHECK_MAIN_ARTISTS
	if v := os.Getenv("CANVASCHECK_MAIN_ARTISTS"); v != "" {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			m.config.Checks.MainArtists = n
		}
	}

	// CANVASCHECK_ROOKIE_ARTISTS
	if v := os.Getenv("CANVASCHECK_ROOKIE_ARTISTS"); v != "" {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			m.config.Checks.RookieArtists = n
		}
	}

	// CANVASCHECK_DATABASE
	if v := os.Getenv("CANVASCHECK_DATABASE"); v != "" {
		m.config.Storage.Database = v
	}

	// CANVASCHECK_REDIS
	if v := os.Getenv("CANVASCHECK_REDIS"); v != "" {
		m.config.Cache.Redis = v
	}

	// CANVASCHECK_TELEMETRY_ENDPOINT
	if v := os.Getenv("CANVASCHECK_TELEMETRY_ENDPOINT"); v != "" {
		m.config.Telemetry.Endpoint = v
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".canvascheck")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalManager.Load()
	})
	return globalManager
}
