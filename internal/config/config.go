package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for FraudSight
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"`
	JWTSecret   string `yaml:"jwt_secret"`
}

// StorageConfig holds embedded storage configuration
type StorageConfig struct {
	DataPath string `yaml:"data_path"`
}

// RedisConfig holds optional Redis configuration. When URL is set, Redis
// replaces the embedded store for persisted state.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// DashboardConfig holds analytics engine configuration
type DashboardConfig struct {
	RiskThreshold float64       `yaml:"risk_threshold"`
	TimeRange     string        `yaml:"time_range"`
	PageSize      int           `yaml:"page_size"`
	DebounceDelay time.Duration `yaml:"debounce_delay"`
	SampleRows    int           `yaml:"sample_rows"`
	MaxTableRows  int           `yaml:"max_table_rows"`
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvInt("PORT", 3007),
			Environment: getEnv("ENVIRONMENT", "development"),
			JWTSecret:   getEnv("JWT_SECRET", ""),
		},
		Storage: StorageConfig{
			DataPath: getEnv("DATA_PATH", "./data"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Dashboard: DashboardConfig{
			RiskThreshold: getEnvFloat("RISK_THRESHOLD", 0.6),
			TimeRange:     getEnv("TIME_RANGE", "all"),
			PageSize:      getEnvInt("TABLE_PAGE_SIZE", 10),
			DebounceDelay: getEnvDuration("DEBOUNCE_DELAY", 300*time.Millisecond),
			SampleRows:    getEnvInt("SAMPLE_ROWS", 5),
			MaxTableRows:  getEnvInt("MAX_TABLE_ROWS", 200),
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3007
	}
	if c.Storage.DataPath == "" {
		c.Storage.DataPath = "./data"
	}
	if c.Dashboard.RiskThreshold == 0 {
		c.Dashboard.RiskThreshold = 0.6
	}
	if c.Dashboard.TimeRange == "" {
		c.Dashboard.TimeRange = "all"
	}
	if c.Dashboard.PageSize == 0 {
		c.Dashboard.PageSize = 10
	}
	if c.Dashboard.DebounceDelay == 0 {
		c.Dashboard.DebounceDelay = 300 * time.Millisecond
	}
	if c.Dashboard.SampleRows == 0 {
		c.Dashboard.SampleRows = 5
	}
	if c.Dashboard.MaxTableRows == 0 {
		c.Dashboard.MaxTableRows = 200
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
