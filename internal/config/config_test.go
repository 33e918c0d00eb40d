package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"labeld/internal/config"
)

// chdir replicates testing.T.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoadDefaultsWhenNoFileExists(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "labeld")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7712" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Lease.TimeoutMinutes != 15 {
		t.Fatalf("expected default lease timeout of 15 minutes, got %d", cfg.Lease.TimeoutMinutes)
	}
	if cfg.Uploads.BasePath != "/uploads" {
		t.Fatalf("unexpected uploads base path: %q", cfg.Uploads.BasePath)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "images.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadReadsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
data_dir = "` + dir + `/data"
log_dir = "` + dir + `/logs"
api_bind = "127.0.0.1:9000"

[lease]
timeout_minutes = 30

[uploads]
base_path = "files/"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config loaded from %q, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Lease.TimeoutMinutes != 30 {
		t.Fatalf("expected lease timeout 30, got %d", cfg.Lease.TimeoutMinutes)
	}
	if cfg.Uploads.BasePath != "/files" {
		t.Fatalf("expected normalized base path /files, got %q", cfg.Uploads.BasePath)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
}

func TestLoadUsesTokenFromEnvironment(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, tempHome)
	t.Setenv("LABELD_API_TOKEN", "secret-token")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "secret-token" {
		t.Fatalf("expected token from env, got %q", cfg.Paths.APIToken)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero lease timeout", func(c *config.Config) { c.Lease.TimeoutMinutes = -1 }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"empty data dir", func(c *config.Config) { c.Paths.DataDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Lease.TimeoutMinutes != 15 {
		t.Fatalf("sample should carry default lease timeout, got %d", cfg.Lease.TimeoutMinutes)
	}
}
