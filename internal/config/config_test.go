package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FRED_API_KEY", "")
	t.Setenv("OPENSTRESS_DATA_FRED_API_KEY", "")
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Data defaults
	if cfg.Data.CacheDir != "data" {
		t.Errorf("Data.CacheDir: got %q, want %q", cfg.Data.CacheDir, "data")
	}
	if cfg.Data.FredBaseURL != "https://api.stlouisfed.org/fred" {
		t.Errorf("Data.FredBaseURL: got %q", cfg.Data.FredBaseURL)
	}
	if cfg.Data.FetchTimeoutSec != 30 {
		t.Errorf("Data.FetchTimeoutSec: got %d, want 30", cfg.Data.FetchTimeoutSec)
	}
	if cfg.Data.RateLimitPerMin != 120 {
		t.Errorf("Data.RateLimitPerMin: got %d, want 120", cfg.Data.RateLimitPerMin)
	}
	if cfg.Data.FredAPIKey != "" {
		t.Errorf("Data.FredAPIKey: got %q, want empty", cfg.Data.FredAPIKey)
	}

	// Stress defaults
	if cfg.Stress.OutDir != "out" {
		t.Errorf("Stress.OutDir: got %q, want %q", cfg.Stress.OutDir, "out")
	}
	if cfg.Stress.UstBP != 150 || cfg.Stress.IgBP != 200 || cfg.Stress.HyBP != 400 {
		t.Errorf("Stress shock defaults: got %v/%v/%v, want 150/200/400",
			cfg.Stress.UstBP, cfg.Stress.IgBP, cfg.Stress.HyBP)
	}
	if cfg.Stress.ScalePerYear != 252 {
		t.Errorf("Stress.ScalePerYear: got %d, want 252", cfg.Stress.ScalePerYear)
	}
	if cfg.Stress.TopN != 5 {
		t.Errorf("Stress.TopN: got %d, want 5", cfg.Stress.TopN)
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.API.Addr() != "0.0.0.0:8080" {
		t.Errorf("API.Addr: got %q", cfg.API.Addr())
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENSTRESS_STRESS_OUT_DIR", "/tmp/reports")
	t.Setenv("OPENSTRESS_API_PORT", "9191")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Stress.OutDir != "/tmp/reports" {
		t.Errorf("Stress.OutDir: got %q, want %q", cfg.Stress.OutDir, "/tmp/reports")
	}
	if cfg.API.Port != 9191 {
		t.Errorf("API.Port: got %d, want 9191", cfg.API.Port)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	clearKeyEnv(t)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
data:
  cache_dir: "/var/cache/openstress"
  fred_api_key: "fred_key_from_file_123"
  rate_limit_per_min: 60
stress:
  out_dir: "reports"
  ig_bp: 250
  top_n: 10
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Data.CacheDir != "/var/cache/openstress" {
		t.Errorf("Data.CacheDir: got %q", cfg.Data.CacheDir)
	}
	if cfg.Data.FredAPIKey != "fred_key_from_file_123" {
		t.Errorf("Data.FredAPIKey: got %q", cfg.Data.FredAPIKey)
	}
	if cfg.Data.RateLimitPerMin != 60 {
		t.Errorf("Data.RateLimitPerMin: got %d, want 60", cfg.Data.RateLimitPerMin)
	}
	if cfg.Stress.OutDir != "reports" {
		t.Errorf("Stress.OutDir: got %q, want %q", cfg.Stress.OutDir, "reports")
	}
	if cfg.Stress.IgBP != 250 {
		t.Errorf("Stress.IgBP: got %v, want 250", cfg.Stress.IgBP)
	}
	// Unset keys keep their defaults.
	if cfg.Stress.HyBP != 400 {
		t.Errorf("Stress.HyBP: got %v, want 400", cfg.Stress.HyBP)
	}
	if cfg.Stress.TopN != 10 {
		t.Errorf("Stress.TopN: got %d, want 10", cfg.Stress.TopN)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

// ── .env ──

func TestLoadDotEnv(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("OPENSTRESS_TEST_DOTENV=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("OPENSTRESS_TEST_DOTENV") })

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("OPENSTRESS_TEST_DOTENV"); got != "from-dotenv" {
		t.Errorf("OPENSTRESS_TEST_DOTENV: got %q, want %q", got, "from-dotenv")
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("FRED_API_KEY", "bare-fred-key")

	cfg := &Config{}
	overrideFromEnv(cfg)
	if cfg.Data.FredAPIKey != "bare-fred-key" {
		t.Errorf("FredAPIKey: got %q", cfg.Data.FredAPIKey)
	}

	// The prefixed variable wins over the bare one.
	t.Setenv("OPENSTRESS_DATA_FRED_API_KEY", "prefixed-fred-key")
	overrideFromEnv(cfg)
	if cfg.Data.FredAPIKey != "prefixed-fred-key" {
		t.Errorf("FredAPIKey: got %q", cfg.Data.FredAPIKey)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	clearKeyEnv(t)

	cfg := &Config{Data: DataConfig{FredAPIKey: "from-config"}}
	overrideFromEnv(cfg)

	if cfg.Data.FredAPIKey != "from-config" {
		t.Errorf("FredAPIKey should stay as 'from-config' when env is unset, got %q", cfg.Data.FredAPIKey)
	}
}

// ── maskKey ──

func TestMaskKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
		{"123456789", "123...789"},
		{"abcdef1234567890abcdef1234567890", "abc...890"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

// ── CheckAPIKeys / checkKey ──

func TestCheckAPIKeysEmpty(t *testing.T) {
	clearKeyEnv(t)

	statuses := CheckAPIKeys(&Config{})
	if len(statuses) != 1 {
		t.Fatalf("CheckAPIKeys: got %d statuses, want 1", len(statuses))
	}
	s := statuses[0]
	if s.IsSet {
		t.Errorf("Key %q should not be set", s.Name)
	}
	if s.Source != KeySourceNone {
		t.Errorf("Key %q source: got %q, want %q", s.Name, s.Source, KeySourceNone)
	}
}

func TestCheckAPIKeysFromConfig(t *testing.T) {
	clearKeyEnv(t)

	cfg := &Config{Data: DataConfig{FredAPIKey: "fredkey-very-long-value"}}
	s := CheckAPIKeys(cfg)[0]
	if !s.IsSet {
		t.Error("FRED key should be set")
	}
	if s.Source != KeySourceConfig {
		t.Errorf("Source: got %q, want %q", s.Source, KeySourceConfig)
	}
	if s.Masked != "fre...lue" {
		t.Errorf("Masked: got %q, want %q", s.Masked, "fre...lue")
	}
}

func TestCheckKeySourceDetection(t *testing.T) {
	t.Setenv("TEST_VAR_A", "")
	t.Setenv("TEST_VAR_B", "")

	s := checkKey("Test", "", "TEST_VAR_A")
	if s.Source != KeySourceNone || s.IsSet {
		t.Errorf("empty value: got %+v", s)
	}

	s = checkKey("Test", "config-value-long-enough", "TEST_VAR_A", "TEST_VAR_B")
	if s.Source != KeySourceConfig {
		t.Errorf("config value: got source %q, want %q", s.Source, KeySourceConfig)
	}

	t.Setenv("TEST_VAR_B", "env-value-long-enough")
	s = checkKey("Test", "env-value-long-enough", "TEST_VAR_A", "TEST_VAR_B")
	if s.Source != KeySourceEnv {
		t.Errorf("env value: got source %q, want %q", s.Source, KeySourceEnv)
	}
}
