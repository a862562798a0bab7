package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Catalog sources.
const (
	SourceFile  = "file"
	SourceStore = "store"
)

// Config holds the casematch service configuration.
type Config struct {
	HTTP       HTTPConfig        `yaml:"http"`
	Auth       AuthConfig        `yaml:"auth"`
	Logging    LoggingConfig     `yaml:"logging"`
	Catalog    CatalogConfig     `yaml:"catalog"`
	Database   DatabaseConfig    `yaml:"database"`
	Ranking    RankingConfig     `yaml:"ranking"`
	Attributes []AttributeConfig `yaml:"attributes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig says where the catalog comes from.
type CatalogConfig struct {
	Source string `yaml:"source"` // file, store (default: file)
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // csv, yaml (default: by extension)
}

// DatabaseConfig holds database connection settings. Only used when catalog.source is "store".
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// RankingConfig holds ranking limits and parallelism.
type RankingConfig struct {
	DefaultLimit      int `yaml:"default_limit"`
	MaxLimit          int `yaml:"max_limit"`
	Workers           int `yaml:"workers"`
	ParallelThreshold int `yaml:"parallel_threshold"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadDotEnv loads variables from .env files into the process environment.
// Variables already set win. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = SourceFile
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "casematch:"
	}
	if c.Ranking.DefaultLimit <= 0 {
		c.Ranking.DefaultLimit = 20
	}
	if c.Ranking.MaxLimit <= 0 {
		c.Ranking.MaxLimit = 1000
	}
	if c.Ranking.Workers <= 0 {
		c.Ranking.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Ranking.ParallelThreshold <= 0 {
		c.Ranking.ParallelThreshold = 2048
	}
	if len(c.Attributes) == 0 {
		c.Attributes = DefaultAttributes()
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for source %q", SourceFile)
		}
	case SourceStore:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for catalog source %q", SourceStore)
		}
	default:
		return fmt.Errorf("catalog.source must be %q or %q, got %q", SourceFile, SourceStore, c.Catalog.Source)
	}
	switch c.Catalog.Format {
	case "", "csv", "yaml":
	default:
		return fmt.Errorf("catalog.format must be \"csv\" or \"yaml\", got %q", c.Catalog.Format)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if c.Ranking.DefaultLimit > c.Ranking.MaxLimit {
		return fmt.Errorf("ranking.default_limit (%d) exceeds ranking.max_limit (%d)",
			c.Ranking.DefaultLimit, c.Ranking.MaxLimit)
	}
	if _, err := c.BuildSchema(); err != nil {
		return err
	}
	if _, err := c.DefaultWeights(); err != nil {
		return err
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
