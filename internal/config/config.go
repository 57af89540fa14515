package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/yegors/spotten/internal/spot"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server     ServerConfig     `toml:"server"`     // HTTP server settings
	Logging    LoggingConfig    `toml:"logging"`    // Application logging settings
	Storage    StorageConfig    `toml:"storage"`    // Form settings persistence
	Calculator CalculatorConfig `toml:"calculator"` // Aircraft and canopy performance
	Dropzones  []DropzoneConfig `toml:"dropzones"`  // Known dropzones, the first one is the default
	RateLimit  RateLimitConfig  `toml:"rate_limit"` // Throttling of the calculation endpoints
	Preview    PreviewConfig    `toml:"preview"`    // Live preview websocket feed
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // Primary HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
	AdditionalPorts    []int    `toml:"additional_ports"`      // Additional HTTP ports to listen on (useful for multiple interfaces)
	StaticFilesDir     string   `toml:"static_files_dir"`      // Directory to serve the preview UI from (empty = API only)
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	Type       string `toml:"type"`        // Storage backend type (currently only "sqlite" is supported)
	SQLitePath string `toml:"sqlite_path"` // Path of the SQLite database holding saved form settings
}

// CalculatorConfig overrides the calculator defaults. Omitted values keep the default, an
// explicit 0 is kept. Altitudes are meters above the DZ, speeds m/s and times seconds.
type CalculatorConfig struct {
	ExitAltitude          *float64 `toml:"exit_altitude"`           // Altitude where the jumpers leave the aircraft
	DeplAltitude          *float64 `toml:"depl_altitude"`           // Altitude where canopies are fully open
	FinalAltitude         *float64 `toml:"final_altitude"`          // Altitude where the final approach starts
	JumpRunTAS            *float64 `toml:"jump_run_tas"`            // True airspeed of the aircraft on jump run
	RedLightTime          *float64 `toml:"red_light_time"`          // Time from green light to red light
	GreenLightTime        *float64 `toml:"green_light_time"`        // Time between green light and the first exit
	HorizontalCanopySpeed *float64 `toml:"horizontal_canopy_speed"` // Canopy forward speed
	VerticalCanopySpeed   *float64 `toml:"vertical_canopy_speed"`   // Canopy sink rate
	MetersBetweenGroups   *float64 `toml:"meters_between_groups"`   // Wanted ground separation between groups
	MinTimeBetweenGroups  *float64 `toml:"min_time_between_groups"` // Lower bound on the time between groups
}

// DropzoneConfig describes one dropzone
type DropzoneConfig struct {
	ID                     string    `toml:"id"`                       // Unique identifier, used in API paths
	Name                   string    `toml:"name"`                     // Human-readable name
	Latitude               float64   `toml:"latitude"`                 // Latitude in decimal degrees, used for magnetic variation
	Longitude              float64   `toml:"longitude"`                // Longitude in decimal degrees
	ElevationFt            float64   `toml:"elevation_ft"`             // Field elevation in feet
	FixedLandingDirections []float64 `toml:"fixed_landing_directions"` // Allowed landing directions in degrees (empty = into the wind)
	MapPath                string    `toml:"map_path"`                 // Path of the map image, relative to the static files directory
	MetersPerPixel         float64   `toml:"meters_per_pixel"`         // Map scale
	MapWidth               int       `toml:"map_width"`                // Map width in pixels
	MapHeight              int       `toml:"map_height"`               // Map height in pixels
}

// RateLimitConfig contains settings for throttling calculation requests per client
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`             // Enable per-client rate limiting
	RequestsPerSecond float64 `toml:"requests_per_second"` // Sustained request rate per client
	Burst             int     `toml:"burst"`               // Requests allowed in a burst
}

// PreviewConfig contains settings for the live preview websocket
type PreviewConfig struct {
	Enabled         bool  `toml:"enabled"`           // Serve the /ws endpoint
	SendBufferSize  int   `toml:"send_buffer_size"`  // Messages queued per client before it is dropped
	MaxMessageBytes int64 `toml:"max_message_bytes"` // Largest accepted client message
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	// List of paths to check in order of preference
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // Default location in configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	portsSeen := make(map[int]bool)
	portsSeen[c.Server.Port] = true
	for _, p := range c.Server.AdditionalPorts {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("invalid additional server port: %d", p)
		}
		if portsSeen[p] {
			return fmt.Errorf("duplicate port configured: %d (primary or additional)", p)
		}
		portsSeen[p] = true
	}
	if c.Server.StaticFilesDir != "" {
		if _, err := os.Stat(c.Server.StaticFilesDir); os.IsNotExist(err) {
			return fmt.Errorf("static files directory does not exist: %s", c.Server.StaticFilesDir)
		}
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Format {
	case "":
		c.Logging.Format = "console"
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s (must be json or console)", c.Logging.Format)
	}

	// Storage
	if c.Storage.Type == "" {
		c.Storage.Type = "sqlite"
	}
	if c.Storage.Type != "sqlite" {
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/spotten.db"
	}

	if err := c.ValidateCalculator(); err != nil {
		return err
	}
	if err := c.ValidateDropzones(); err != nil {
		return err
	}

	// Rate limiting
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("invalid requests_per_second: %f (must be > 0)", c.RateLimit.RequestsPerSecond)
		}
		if c.RateLimit.Burst <= 0 {
			c.RateLimit.Burst = 1
		}
	}

	// Preview
	if c.Preview.SendBufferSize <= 0 {
		c.Preview.SendBufferSize = 256
	}
	if c.Preview.MaxMessageBytes <= 0 {
		c.Preview.MaxMessageBytes = 4096
	}

	return nil
}

// ValidateCalculator checks the calculator configuration the overrides resolve to
func (c *Config) ValidateCalculator() error {
	if err := c.Calculator.SpotConfig().Validate(); err != nil {
		return fmt.Errorf("invalid calculator configuration: %w", err)
	}
	return nil
}

// ValidateDropzones validates the dropzone catalog
func (c *Config) ValidateDropzones() error {
	if len(c.Dropzones) == 0 {
		return fmt.Errorf("at least one dropzone must be configured")
	}

	seen := make(map[string]bool)
	for i := range c.Dropzones {
		dz := &c.Dropzones[i]
		dz.ID = strings.TrimSpace(dz.ID)
		if dz.ID == "" {
			return fmt.Errorf("dropzone %d has no id", i)
		}
		if seen[dz.ID] {
			return fmt.Errorf("duplicate dropzone id: %s", dz.ID)
		}
		seen[dz.ID] = true

		if dz.Name == "" {
			dz.Name = dz.ID
		}
		if dz.Latitude < -90 || dz.Latitude > 90 {
			return fmt.Errorf("invalid latitude for dropzone %s: %f", dz.ID, dz.Latitude)
		}
		if dz.Longitude < -180 || dz.Longitude > 180 {
			return fmt.Errorf("invalid longitude for dropzone %s: %f", dz.ID, dz.Longitude)
		}
		for _, ld := range dz.FixedLandingDirections {
			if ld < 0 || ld > 360 {
				return fmt.Errorf("invalid landing direction for dropzone %s: %f", dz.ID, ld)
			}
		}
		if dz.MetersPerPixel < 0 {
			return fmt.Errorf("invalid meters_per_pixel for dropzone %s: %f", dz.ID, dz.MetersPerPixel)
		}
	}
	return nil
}

// SpotConfig returns the calculator configuration with the defaults filled in
func (c CalculatorConfig) SpotConfig() spot.Config {
	return spot.BuildConfig(c.Overrides())
}

// Overrides returns the configured values as overrides on top of spot.DefaultConfig
func (c CalculatorConfig) Overrides() spot.ConfigOverrides {
	return spot.ConfigOverrides{
		ExitAltitude:          c.ExitAltitude,
		DeplAltitude:          c.DeplAltitude,
		FinalAltitude:         c.FinalAltitude,
		JumpRunTAS:            c.JumpRunTAS,
		RedLightTime:          c.RedLightTime,
		GreenLightTime:        c.GreenLightTime,
		HorizontalCanopySpeed: c.HorizontalCanopySpeed,
		VerticalCanopySpeed:   c.VerticalCanopySpeed,
		MetersBetweenGroups:   c.MetersBetweenGroups,
		MinTimeBetweenGroups:  c.MinTimeBetweenGroups,
	}
}
