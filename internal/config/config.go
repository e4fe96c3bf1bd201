package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server   ServerConfig   `toml:"server"`   // HTTP server settings
	Logging  LoggingConfig  `toml:"logging"`  // Application logging settings
	Storage  StorageConfig  `toml:"storage"`  // Query history persistence settings
	Airports AirportsConfig `toml:"airports"` // Airport directory settings
	Weather  WeatherConfig  `toml:"wx"`       // Weather data fetching and caching settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains query history persistence configuration
type StorageConfig struct {
	Type       string `toml:"type"`        // Storage backend type (currently only "sqlite" is supported)
	SQLitePath string `toml:"sqlite_path"` // Path to the SQLite database file
}

// AirportsConfig contains airport directory configuration
type AirportsConfig struct {
	CSVPath            string  `toml:"csv_path"`             // Path to airport database CSV file (OurAirports format)
	DefaultSearchLimit int     `toml:"default_search_limit"` // Maximum results returned by a directory search
	NearbyRadiusKm     float64 `toml:"nearby_radius_km"`     // Default search radius for nearest-airport queries in km
	NearbyLimit        int     `toml:"nearby_limit"`         // Maximum results returned by a nearest-airport query
}

// WeatherConfig contains weather data fetching and caching configuration
type WeatherConfig struct {
	APIBaseURL            string `toml:"api_base_url"`            // Base URL for the aviation weather API (e.g., https://aviationweather.gov/api/data)
	NOTAMsBaseURL         string `toml:"notams_api_base_url"`     // Base URL for the NOTAM API
	NOTAMsAPIKey          string `toml:"notams_api_key"`          // API key for the NOTAM API (can also be set via AEROBOT_NOTAMS_API_KEY)
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"` // HTTP request timeout in seconds
	MaxRetries            int    `toml:"max_retries"`             // Maximum number of retry attempts for failed requests
	CacheTTLSeconds       int    `toml:"cache_ttl_seconds"`       // How long fetched payloads stay cached in seconds
	FetchNOTAMs           bool   `toml:"fetch_notams"`            // Whether to fetch NOTAM data
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()

	// Environment wins over the file for the NOTAM credential.
	if key := os.Getenv("AEROBOT_NOTAMS_API_KEY"); key != "" {
		config.Weather.NOTAMsAPIKey = key
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
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

// applyDefaults fills in unset fields with working values
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "sqlite"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "aerobot.db"
	}

	if c.Airports.DefaultSearchLimit == 0 {
		c.Airports.DefaultSearchLimit = 8
	}
	if c.Airports.NearbyRadiusKm == 0 {
		c.Airports.NearbyRadiusKm = 200
	}
	if c.Airports.NearbyLimit == 0 {
		c.Airports.NearbyLimit = 5
	}

	if c.Weather.APIBaseURL == "" {
		c.Weather.APIBaseURL = "https://aviationweather.gov/api/data"
	}
	if c.Weather.NOTAMsBaseURL == "" {
		c.Weather.NOTAMsBaseURL = "https://external-api.faa.gov/notamapi/v1/notams"
	}
	if c.Weather.RequestTimeoutSeconds == 0 {
		c.Weather.RequestTimeoutSeconds = 10
	}
	if c.Weather.CacheTTLSeconds == 0 {
		c.Weather.CacheTTLSeconds = 300
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid log level
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
		// Valid log format
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Storage.Type != "sqlite" {
		return fmt.Errorf("invalid storage type: %s (only 'sqlite' is supported)", c.Storage.Type)
	}
	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite_path is required when storage type is sqlite")
	}

	if err := c.validateAirports(); err != nil {
		return err
	}

	return c.validateWeather()
}

func (c *Config) validateAirports() error {
	if c.Airports.CSVPath == "" {
		return fmt.Errorf("airports csv_path is required")
	}
	if c.Airports.DefaultSearchLimit <= 0 {
		return fmt.Errorf("airports default_search_limit must be greater than 0: %d", c.Airports.DefaultSearchLimit)
	}
	if c.Airports.NearbyRadiusKm <= 0 {
		return fmt.Errorf("airports nearby_radius_km must be greater than 0: %f", c.Airports.NearbyRadiusKm)
	}
	if c.Airports.NearbyLimit <= 0 {
		return fmt.Errorf("airports nearby_limit must be greater than 0: %d", c.Airports.NearbyLimit)
	}
	return nil
}

func (c *Config) validateWeather() error {
	if c.Weather.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("weather request_timeout_seconds must be greater than 0: %d", c.Weather.RequestTimeoutSeconds)
	}
	if c.Weather.MaxRetries < 0 {
		return fmt.Errorf("weather max_retries must be 0 or greater: %d", c.Weather.MaxRetries)
	}
	if c.Weather.CacheTTLSeconds <= 0 {
		return fmt.Errorf("weather cache_ttl_seconds must be greater than 0: %d", c.Weather.CacheTTLSeconds)
	}
	if c.Weather.APIBaseURL == "" {
		return fmt.Errorf("weather api_base_url cannot be empty")
	}
	if c.Weather.FetchNOTAMs && c.Weather.NOTAMsBaseURL == "" {
		return fmt.Errorf("weather notams_api_base_url is required when fetch_notams is enabled")
	}
	return nil
}
