package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Matching  MatchingConfig
	Trips     TripsConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds the destination catalog source paths. The continents
// file is optional.
type CatalogConfig struct {
	RegionsPath    string `mapstructure:"regions_path"`
	CitiesPath     string `mapstructure:"cities_path"`
	ContinentsPath string `mapstructure:"continents_path"`
}

// MatchingConfig holds matcher tuning
type MatchingConfig struct {
	RegionLimit        int  `mapstructure:"region_limit"`
	CityLimit          int  `mapstructure:"city_limit"`
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// TripsConfig holds trip store settings
type TripsConfig struct {
	Retention time.Duration `mapstructure:"retention"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/tripmatch/")

	// Environment variable settings
	v.SetEnvPrefix("TRIPMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Catalog defaults
	v.SetDefault("catalog.regions_path", "data/regions.json")
	v.SetDefault("catalog.cities_path", "data/cities.json")
	v.SetDefault("catalog.continents_path", "data/continents.json")

	// Matching defaults
	v.SetDefault("matching.region_limit", 10)
	v.SetDefault("matching.city_limit", 5)
	v.SetDefault("matching.enable_debug_logging", false)

	// Trip store defaults
	v.SetDefault("trips.retention", "168h") // 7 days

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.RegionsPath == "" {
		return fmt.Errorf("regions catalog path is required (set TRIPMATCH_CATALOG_REGIONS_PATH)")
	}

	if config.Catalog.CitiesPath == "" {
		return fmt.Errorf("cities catalog path is required (set TRIPMATCH_CATALOG_CITIES_PATH)")
	}

	if config.Matching.RegionLimit < 0 || config.Matching.CityLimit < 0 {
		return fmt.Errorf("matching limits must not be negative")
	}

	return nil
}
