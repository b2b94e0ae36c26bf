package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dosimetry/internal/config"
	"github.com/goliatone/go-dosimetry/pkg/submit"
)

var variables = []string{
	"ENV", "API_URL", "DEV_URL", "ORIGIN", "STRATEGY", "RETRY_ATTEMPTS",
	"RETRY_BASE_DELAY", "REQUEST_TIMEOUT", "STRICT_CONTRACT", "LOG_LEVEL",
	"LOG_FORMAT", "METRICS_FILE",
}

// cleanEnv unsets every DOSIMETRY_ variable for the duration of the test and
// moves into an empty directory so no stray .env is picked up.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, name := range variables {
		key := config.Prefix + "_" + name
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := &config.Config{
		Env:            "development",
		DevURL:         "http://localhost:8000",
		Origin:         "http://localhost",
		Strategy:       "atomic",
		RetryAttempts:  3,
		RetryBaseDelay: time.Second,
		LogLevel:       "info",
		LogFormat:      "console",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.BaseURL(); got != "http://localhost:8000" {
		t.Fatalf("base url = %q", got)
	}
	if diff := cmp.Diff(submit.DefaultPolicy(), cfg.Policy()); diff != "" {
		t.Fatalf("policy mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "dosimetry.env")
	content := "DOSIMETRY_STRATEGY=decomposed\nDOSIMETRY_RETRY_BASE_DELAY=250ms\nDOSIMETRY_DEV_URL=http://127.0.0.1:9000/\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DOSIMETRY_RETRY_ATTEMPTS", "5")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StrategyValue() != submit.Decomposed {
		t.Fatalf("strategy = %s", cfg.StrategyValue())
	}
	want := submit.Policy{MaxAttempts: 5, BaseDelay: 250 * time.Millisecond}
	if diff := cmp.Diff(want, cfg.Policy()); diff != "" {
		t.Fatalf("policy mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.BaseURL(); got != "http://127.0.0.1:9000" {
		t.Fatalf("base url = %q", got)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	cleanEnv(t)
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for a missing env file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"DOSIMETRY_STRATEGY":        "parallel",
		"DOSIMETRY_RETRY_ATTEMPTS":  "0",
		"DOSIMETRY_REQUEST_TIMEOUT": "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(key, value)
			if _, err := config.Load(); err == nil {
				t.Fatalf("expected %s=%s to be rejected", key, value)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"development", config.Config{DevURL: "http://localhost:8000"}, "http://localhost:8000"},
		{"production", config.Config{Env: "Production", Origin: "https://dosimetry.example.org/"}, "https://dosimetry.example.org/api"},
		{"explicit wins", config.Config{Env: "production", APIURL: "https://api.example.org/", Origin: "https://x"}, "https://api.example.org"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BaseURL(); got != tt.want {
				t.Fatalf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
