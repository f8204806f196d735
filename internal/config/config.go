package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/sitesearch/internal/domain/search/options"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/weights"
)

// Source types.
const (
	SourceFile  = "file"
	SourceRedis = "redis"
	SourceSQL   = "sql"
)

// Config holds the sitesearch server configuration.
type Config struct {
	HTTP    HTTPConfig     `yaml:"http"`
	Auth    AuthConfig     `yaml:"auth"`
	Logging LoggingConfig  `yaml:"logging"`
	Search  SearchConfig   `yaml:"search"`
	Sources []SourceConfig `yaml:"sources"`
	Loader  LoaderConfig   `yaml:"loader"`
	Refresh RefreshConfig  `yaml:"refresh"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds admin API authentication settings.
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

// SearchConfig holds ranking tunables and request limits.
// Zero is a valid weight, so unset fields keep the values from Default.
type SearchConfig struct {
	TitleExact          float64 `yaml:"title_exact"`
	TitleToken          float64 `yaml:"title_token"`
	DescriptionExact    float64 `yaml:"description_exact"`
	DescriptionToken    float64 `yaml:"description_token"`
	KeywordExact        float64 `yaml:"keyword_exact"`
	KeywordToken        float64 `yaml:"keyword_token"`
	ContentExact        float64 `yaml:"content_exact"`
	ContentToken        float64 `yaml:"content_token"`
	Fuzzy               float64 `yaml:"fuzzy"`
	FuzzyThreshold      float64 `yaml:"fuzzy_threshold"`
	MinTokenLength      int     `yaml:"min_token_length"`
	FuzzyMinLength      int     `yaml:"fuzzy_min_length"`
	SuggestPrefixLength int     `yaml:"suggest_prefix_length"`
	SuggestMinLength    int     `yaml:"suggest_min_length"`

	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	SuggestLimit int `yaml:"suggest_limit"`
}

// SourceConfig describes one content source. Fields apply per type.
type SourceConfig struct {
	Type string `yaml:"type"` // file, redis, sql

	// file
	Path string `yaml:"path"`

	// redis
	Addrs      []string `yaml:"addrs"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	KeyPrefix  string   `yaml:"key_prefix"`
	VersionKey string   `yaml:"version_key"`

	// sql
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`

	ReadinessTimeout int `yaml:"readiness_timeout_sec"`
}

// LoaderConfig holds corpus loading settings.
type LoaderConfig struct {
	PoolSize int `yaml:"pool_size"`
}

// RefreshConfig holds background corpus refresh settings.
type RefreshConfig struct {
	IntervalSec int `yaml:"interval_sec"` // 0 = disabled
}

// Defaults returns a Config with every tunable set to its stock value.
func Defaults() Config {
	w := weights.Default()
	return Config{
		Search: SearchConfig{
			TitleExact:          w.TitleExact,
			TitleToken:          w.TitleToken,
			DescriptionExact:    w.DescriptionExact,
			DescriptionToken:    w.DescriptionToken,
			KeywordExact:        w.KeywordExact,
			KeywordToken:        w.KeywordToken,
			ContentExact:        w.ContentExact,
			ContentToken:        w.ContentToken,
			Fuzzy:               w.Fuzzy,
			FuzzyThreshold:      w.FuzzyThreshold,
			MinTokenLength:      w.MinTokenLength,
			FuzzyMinLength:      w.FuzzyMinLength,
			SuggestPrefixLength: w.SuggestPrefixLength,
			SuggestMinLength:    w.SuggestMinLength,
		},
	}
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML configuration document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	cfg := Defaults()
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = options.DefaultLimit
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = options.MaxLimit
	}
	if c.Search.SuggestLimit <= 0 {
		c.Search.SuggestLimit = 5
	}
	if c.Loader.PoolSize <= 0 {
		c.Loader.PoolSize = 4
	}
	for i := range c.Sources {
		s := &c.Sources[i]
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		if s.Type == SourceSQL && s.Driver == "" {
			s.Driver = "sqlite3"
		}
		if s.ReadinessTimeout <= 0 {
			s.ReadinessTimeout = 10
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if err := c.Search.Weights().Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit %d exceeds search.max_limit %d",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Refresh.IntervalSec < 0 {
		return fmt.Errorf("refresh.interval_sec must be non-negative, got %d", c.Refresh.IntervalSec)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	for i, s := range c.Sources {
		switch s.Type {
		case SourceFile:
			if s.Path == "" {
				return fmt.Errorf("sources[%d].path is required for file sources", i)
			}
		case SourceRedis:
			if len(s.Addrs) == 0 {
				return fmt.Errorf("sources[%d].addrs is required for redis sources", i)
			}
		case SourceSQL:
			if s.DSN == "" {
				return fmt.Errorf("sources[%d].dsn is required for sql sources", i)
			}
		default:
			return fmt.Errorf("sources[%d].type must be %q, %q or %q, got %q",
				i, SourceFile, SourceRedis, SourceSQL, s.Type)
		}
	}
	return nil
}

// Weights converts the search section into engine tunables.
func (s SearchConfig) Weights() weights.Weights {
	return weights.Weights{
		TitleExact:          s.TitleExact,
		TitleToken:          s.TitleToken,
		DescriptionExact:    s.DescriptionExact,
		DescriptionToken:    s.DescriptionToken,
		KeywordExact:        s.KeywordExact,
		KeywordToken:        s.KeywordToken,
		ContentExact:        s.ContentExact,
		ContentToken:        s.ContentToken,
		Fuzzy:               s.Fuzzy,
		FuzzyThreshold:      s.FuzzyThreshold,
		MinTokenLength:      s.MinTokenLength,
		FuzzyMinLength:      s.FuzzyMinLength,
		SuggestPrefixLength: s.SuggestPrefixLength,
		SuggestMinLength:    s.SuggestMinLength,
	}
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
