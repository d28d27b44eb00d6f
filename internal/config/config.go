package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pastlight/recollect/internal/isolation"
)

// Config holds the recollect server configuration.
type Config struct {
	OpsHTTP   OpsHTTPConfig   `yaml:"ops_http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Memory    MemoryConfig    `yaml:"memory"`
	Decay     DecayConfig     `yaml:"decay"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// OpsHTTPConfig holds settings for the operational HTTP endpoint
// (health and metrics). The main protocol surface is stdio, so this
// server is optional: port 0 disables it.
type OpsHTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings. An empty provider
// starts the server in degraded lexical mode.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // voyage, openai, or empty for none
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// MemoryConfig holds collection naming and retrieval settings.
type MemoryConfig struct {
	CollectionPrefix        string  `yaml:"collection_prefix"`
	ModelSuffix             string  `yaml:"model_suffix"`
	Project                 string  `yaml:"project"` // default: base name of the working directory
	IsolationMode           string  `yaml:"isolation_mode"` // isolated, shared, hybrid
	AllowCrossProject       bool    `yaml:"allow_cross_project"`
	DefaultLimit            int     `yaml:"default_limit"`
	DefaultMinScore         float64 `yaml:"default_min_score"`
	PerCollectionTimeoutSec int     `yaml:"per_collection_timeout_sec"`
	HNSWM                   int     `yaml:"hnsw_m"`
	HNSWEFConstruct         int     `yaml:"hnsw_ef_construction"`
}

// DecayConfig holds time-decay scoring settings.
type DecayConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Weight    float64 `yaml:"weight"`
	ScaleDays float64 `yaml:"scale_days"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.OpsHTTP.ReadTimeoutSec <= 0 {
		c.OpsHTTP.ReadTimeoutSec = 10
	}
	if c.OpsHTTP.WriteTimeoutSec <= 0 {
		c.OpsHTTP.WriteTimeoutSec = 10
	}
	if c.OpsHTTP.ShutdownSec <= 0 {
		c.OpsHTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1024
	}
	if c.Memory.CollectionPrefix == "" {
		c.Memory.CollectionPrefix = "conv_"
	}
	if c.Memory.ModelSuffix == "" {
		c.Memory.ModelSuffix = "voyage"
	}
	if c.Memory.Project == "" {
		if wd, err := os.Getwd(); err == nil {
			c.Memory.Project = filepath.Base(wd)
		}
	}
	if c.Memory.IsolationMode == "" {
		c.Memory.IsolationMode = string(isolation.Isolated)
	}
	if c.Memory.DefaultLimit <= 0 {
		c.Memory.DefaultLimit = 5
	}
	if c.Memory.DefaultMinScore <= 0 {
		c.Memory.DefaultMinScore = 0.7
	}
	if c.Memory.PerCollectionTimeoutSec <= 0 {
		c.Memory.PerCollectionTimeoutSec = 5
	}
	if c.Memory.HNSWM <= 0 {
		c.Memory.HNSWM = 16
	}
	if c.Memory.HNSWEFConstruct <= 0 {
		c.Memory.HNSWEFConstruct = 200
	}
	if c.Decay.Weight == 0 {
		c.Decay.Weight = 0.3
	}
	if c.Decay.ScaleDays <= 0 {
		c.Decay.ScaleDays = 90
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.OpsHTTP.Port < 0 || c.OpsHTTP.Port > 65535 {
		return fmt.Errorf("ops_http.port must be between 0 and 65535, got %d", c.OpsHTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Embedding.Provider {
	case "", "voyage", "openai":
		// ok
	default:
		return fmt.Errorf(
			"embedding.provider must be \"voyage\", \"openai\", or empty, got %q",
			c.Embedding.Provider,
		)
	}
	if c.Embedding.Provider != "" && c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required when a provider is set")
	}
	if c.Memory.Project == "" {
		return fmt.Errorf("memory.project is required")
	}
	if !isolation.Mode(c.Memory.IsolationMode).IsValid() {
		return fmt.Errorf(
			"memory.isolation_mode must be \"isolated\", \"shared\", or \"hybrid\", got %q",
			c.Memory.IsolationMode,
		)
	}
	if c.Memory.DefaultMinScore < 0 || c.Memory.DefaultMinScore > 1 {
		return fmt.Errorf("memory.default_min_score must be within [0, 1], got %g", c.Memory.DefaultMinScore)
	}
	if c.Decay.Weight < 0 {
		return fmt.Errorf("decay.weight must be non-negative, got %g", c.Decay.Weight)
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
