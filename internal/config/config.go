package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/genesys-companion/internal/genesys/breakdown"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GENESYS_"

// Config represents the application configuration.
type Config struct {
	// Genesys ruleset and point list
	Genesys GenesysConfig `toml:"genesys"`

	// Remote card database
	Cards CardsConfig `toml:"cards"`

	// Local sqlite database
	Storage StorageConfig `toml:"storage"`

	// REST API server
	API APIConfig `toml:"api"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// GenesysConfig contains the point budget and point list settings.
type GenesysConfig struct {
	PointCap   int    `toml:"point_cap"`   // Deck point budget (0 disables the check)
	PointsPath string `toml:"points_path"` // Path to the point list JSON
	Watch      bool   `toml:"watch"`       // Reload the point list when it changes
	MainSort   string `toml:"main_sort"`   // "structural" or "points"
	ExtraSort  string `toml:"extra_sort"`
	SideSort   string `toml:"side_sort"`
}

// CardsConfig contains remote card database settings.
type CardsConfig struct {
	BaseURL           string  `toml:"base_url"`            // YGOPRODeck API base URL
	RequestsPerSecond float64 `toml:"requests_per_second"` // Client rate limit
	Timeout           string  `toml:"timeout"`             // Per-request timeout (e.g., "30s")
	StaleAfter        string  `toml:"stale_after"`         // Cache refresh age (e.g., "720h")
	Offline           bool    `toml:"offline"`             // Never contact the remote database
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path string `toml:"path"` // SQLite database file
}

// APIConfig contains REST API settings.
type APIConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool   `toml:"debug_mode"` // Enable debug logging
	LogLevel  string `toml:"log_level"`  // debug, info, warn, error
	LogFormat string `toml:"log_format"` // json or console
}

// DefaultConfig returns the default configuration. Files live under
// ~/.genesys-companion.
func DefaultConfig() *Config {
	dir := dataDir()
	return &Config{
		Genesys: GenesysConfig{
			PointCap:   100,
			PointsPath: filepath.Join(dir, "genesys_points.json"),
			Watch:      true,
			MainSort:   breakdown.SortStructural.String(),
			ExtraSort:  breakdown.SortStructural.String(),
			SideSort:   breakdown.SortStructural.String(),
		},
		Cards: CardsConfig{
			BaseURL:           "https://db.ygoprodeck.com/api/v7",
			RequestsPerSecond: 10,
			Timeout:           "30s",
			StaleAfter:        "720h",
		},
		Storage: StorageConfig{
			Path: filepath.Join(dir, "genesys.db"),
		},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
		App: AppConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

func dataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".genesys-companion"
	}
	return filepath.Join(homeDir, ".genesys-companion")
}

// Path returns the default configuration file path.
func Path() string {
	return filepath.Join(dataDir(), "config.toml")
}

// Load loads the configuration from the default path. Returns the default
// config if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads the configuration from path. Keys missing from the file
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// SaveTo writes the configuration to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings from GENESYS_* environment variables.
// Malformed numeric or boolean values are reported, not ignored.
func (c *Config) ApplyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	integer("POINT_CAP", &c.Genesys.PointCap)
	str("POINTS_PATH", &c.Genesys.PointsPath)
	boolean("WATCH", &c.Genesys.Watch)
	str("CARDS_BASE_URL", &c.Cards.BaseURL)
	boolean("OFFLINE", &c.Cards.Offline)
	str("DB_PATH", &c.Storage.Path)
	integer("API_PORT", &c.API.Port)
	boolean("DEBUG", &c.App.DebugMode)
	str("LOG_LEVEL", &c.App.LogLevel)
	str("LOG_FORMAT", &c.App.LogFormat)

	if v, ok := os.LookupEnv(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		c.API.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.API.AllowedOrigins = append(c.API.AllowedOrigins, origin)
			}
		}
	}

	return errors.Join(errs...)
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Genesys.PointCap < 0 {
		return fmt.Errorf("point cap cannot be negative: %d", c.Genesys.PointCap)
	}
	if c.Genesys.PointsPath == "" {
		return fmt.Errorf("points path cannot be empty")
	}
	if _, err := c.BreakdownOptions(); err != nil {
		return err
	}

	if c.Cards.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive: %v", c.Cards.RequestsPerSecond)
	}
	if _, err := c.CardTimeout(); err != nil {
		return fmt.Errorf("invalid card timeout %q: %w", c.Cards.Timeout, err)
	}
	if _, err := c.StaleThreshold(); err != nil {
		return fmt.Errorf("invalid stale threshold %q: %w", c.Cards.StaleAfter, err)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage path cannot be empty")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port: %d", c.API.Port)
	}

	switch strings.ToLower(c.App.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q: want json or console", c.App.LogFormat)
	}

	return nil
}

// BreakdownOptions returns the aggregation options for the configured
// ruleset.
func (c *Config) BreakdownOptions() (breakdown.Options, error) {
	opts := breakdown.Options{PointCap: c.Genesys.PointCap}
	var err error
	if opts.MainSort, err = breakdown.ParseSortMode(c.Genesys.MainSort); err != nil {
		return opts, fmt.Errorf("main sort: %w", err)
	}
	if opts.ExtraSort, err = breakdown.ParseSortMode(c.Genesys.ExtraSort); err != nil {
		return opts, fmt.Errorf("extra sort: %w", err)
	}
	if opts.SideSort, err = breakdown.ParseSortMode(c.Genesys.SideSort); err != nil {
		return opts, fmt.Errorf("side sort: %w", err)
	}
	return opts, nil
}

// CardTimeout returns the remote request timeout as a duration.
func (c *Config) CardTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Cards.Timeout)
}

// StaleThreshold returns the cache refresh age as a duration.
func (c *Config) StaleThreshold() (time.Duration, error) {
	return time.ParseDuration(c.Cards.StaleAfter)
}
