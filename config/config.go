package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	Cache    CacheConfig
	Catalog  CatalogConfig
	Matching MatchingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds the text generator configuration. APIKey may be empty:
// the client then serves deterministic canned responses instead of calling out.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// CatalogConfig holds the brand catalog location
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// MatchingConfig holds the match scoring knobs
type MatchingConfig struct {
	ExactScore     int     `mapstructure:"exact_score"`
	ContainsScore  int     `mapstructure:"contains_score"`
	FuzzyWeight    int     `mapstructure:"fuzzy_weight"`
	CategoryScore  int     `mapstructure:"category_score"`
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"`
	DebugLogging   bool    `mapstructure:"debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/boycottwatch/")

	// Environment variable settings
	v.SetEnvPrefix("BOYCOTT")
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
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Gemini defaults. The API key defaults to empty (registered so viper binds
	// the env var); without one the enrichment client serves canned responses.
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.max_attempts", 3)
	v.SetDefault("gemini.base_delay", "1s")

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")

	// Catalog defaults
	v.SetDefault("catalog.path", "data/boycott_brands.json")

	// Matching defaults
	v.SetDefault("matching.exact_score", 100)
	v.SetDefault("matching.contains_score", 85)
	v.SetDefault("matching.fuzzy_weight", 80)
	v.SetDefault("matching.category_score", 60)
	v.SetDefault("matching.fuzzy_threshold", 0.8)
	v.SetDefault("matching.debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required (set BOYCOTT_SERVER_PORT)")
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %v", config.Cache.TTL)
	}

	if config.Gemini.MaxAttempts < 1 {
		return fmt.Errorf("gemini max attempts must be at least 1, got: %d", config.Gemini.MaxAttempts)
	}

	if config.Matching.FuzzyThreshold <= 0 || config.Matching.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in (0, 1], got: %v", config.Matching.FuzzyThreshold)
	}

	if config.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required (set BOYCOTT_CATALOG_PATH)")
	}

	return nil
}

// loadEnvFile loads KEY=VALUE pairs from a .env file in the working directory
// into the process environment. Missing file is not an error; existing
// environment variables are never overridden.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}
