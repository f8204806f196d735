package config

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/sitesearch/internal/domain/search/weights"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.HTTP.Port = 8080
	cfg.Sources = []SourceConfig{{Type: SourceFile, Path: "config/content"}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Sources(t *testing.T) {
	tests := []struct {
		name    string
		sources []SourceConfig
		wantErr string
	}{
		{"none", nil, "at least one source"},
		{"file without path", []SourceConfig{{Type: SourceFile}}, "sources[0].path"},
		{"redis without addrs", []SourceConfig{{Type: SourceRedis}}, "sources[0].addrs"},
		{"sql without dsn", []SourceConfig{{Type: SourceSQL}}, "sources[0].dsn"},
		{"unknown type", []SourceConfig{{Type: "ftp"}}, `got "ftp"`},
		{"second invalid", []SourceConfig{{Type: SourceFile, Path: "a"}, {Type: SourceRedis}}, "sources[1].addrs"},
		{"all valid", []SourceConfig{
			{Type: SourceFile, Path: "a"},
			{Type: SourceRedis, Addrs: []string{"localhost:6379"}},
			{Type: SourceSQL, DSN: "file:cms.db"},
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Sources = tt.sources
			cfg.ApplyDefaults()

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_InvalidWeights(t *testing.T) {
	cfg := validConfig()
	cfg.Search.FuzzyThreshold = 1.5

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "fuzzy_threshold") {
		t.Fatalf("expected fuzzy_threshold error, got %v", err)
	}
}

func TestValidate_DefaultLimitAboveMax(t *testing.T) {
	cfg := validConfig()
	cfg.Search.DefaultLimit = 50
	cfg.Search.MaxLimit = 10

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default_limit > max_limit")
	}
}

func TestValidate_NegativeRefresh(t *testing.T) {
	cfg := validConfig()
	cfg.Refresh.IntervalSec = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative refresh interval")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Sources: []SourceConfig{{Type: " SQL ", DSN: "x"}}}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Search.DefaultLimit != 20 {
		t.Errorf("expected DefaultLimit=20, got %d", cfg.Search.DefaultLimit)
	}
	if cfg.Search.MaxLimit != 100 {
		t.Errorf("expected MaxLimit=100, got %d", cfg.Search.MaxLimit)
	}
	if cfg.Search.SuggestLimit != 5 {
		t.Errorf("expected SuggestLimit=5, got %d", cfg.Search.SuggestLimit)
	}
	if cfg.Loader.PoolSize != 4 {
		t.Errorf("expected PoolSize=4, got %d", cfg.Loader.PoolSize)
	}
	if cfg.Sources[0].Type != SourceSQL {
		t.Errorf("expected normalized type %q, got %q", SourceSQL, cfg.Sources[0].Type)
	}
	if cfg.Sources[0].Driver != "sqlite3" {
		t.Errorf("expected Driver=sqlite3, got %q", cfg.Sources[0].Driver)
	}
	if cfg.Sources[0].ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Sources[0].ReadinessTimeout)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Search:  SearchConfig{DefaultLimit: 10, MaxLimit: 50, SuggestLimit: 8},
		Loader:  LoaderConfig{PoolSize: 2},
		Sources: []SourceConfig{{Type: SourceSQL, Driver: "postgres", DSN: "x"}},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.MaxLimit != 50 {
		t.Errorf("expected MaxLimit=50, got %d", cfg.Search.MaxLimit)
	}
	if cfg.Loader.PoolSize != 2 {
		t.Errorf("expected PoolSize=2, got %d", cfg.Loader.PoolSize)
	}
	if cfg.Sources[0].Driver != "postgres" {
		t.Errorf("expected Driver=postgres, got %q", cfg.Sources[0].Driver)
	}
}

func TestSearchConfig_Weights(t *testing.T) {
	if got := Defaults().Search.Weights(); got != weights.Default() {
		t.Errorf("default search config must map to weights.Default(), got %+v", got)
	}
}

func TestParse(t *testing.T) {
	t.Setenv("SITESEARCH_TEST_PORT", "9090")

	data := []byte(`
http:
  port: ${SITESEARCH_TEST_PORT}
auth:
  api_keys: ["${SITESEARCH_TEST_KEY:-secret}"]
search:
  title_exact: 12
  description_token: 0
  max_limit: 40
sources:
  - type: file
    path: config/content
refresh:
  interval_sec: 30
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "secret" {
		t.Errorf("expected default api key, got %v", cfg.Auth.APIKeys)
	}

	w := cfg.Search.Weights()
	if w.TitleExact != 12 {
		t.Errorf("expected TitleExact=12, got %g", w.TitleExact)
	}
	if w.DescriptionToken != 0 {
		t.Errorf("explicit zero must be kept, got %g", w.DescriptionToken)
	}
	if w.TitleToken != weights.Default().TitleToken {
		t.Errorf("unset weight must keep default, got %g", w.TitleToken)
	}
	if cfg.Search.MaxLimit != 40 {
		t.Errorf("expected MaxLimit=40, got %d", cfg.Search.MaxLimit)
	}
	if cfg.Refresh.IntervalSec != 30 {
		t.Errorf("expected IntervalSec=30, got %d", cfg.Refresh.IntervalSec)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Error("expected validation error for missing sources")
	}
}

func TestLoad_Local(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Sources) == 0 {
		t.Fatal("expected at least one source in local config")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SITESEARCH_SET", "value")

	tests := []struct {
		in, want string
	}{
		{"a: ${SITESEARCH_SET}", "a: value"},
		{"a: ${SITESEARCH_UNSET:-fallback}", "a: fallback"},
		{"a: ${SITESEARCH_SET:-fallback}", "a: value"},
		{"a: ${SITESEARCH_UNSET}", "a: "},
		{"a: plain", "a: plain"},
	}
	for _, tt := range tests {
		if got := string(expandEnvVars([]byte(tt.in))); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
