package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/hwplan.db")
	if cfg.Database.Path != "/tmp/hwplan.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if cfg.Schedule.DayBoundaryCron != DefaultDayBoundaryCron || cfg.Schedule.UpcomingDays != 7 {
		t.Fatalf("unexpected schedule defaults %#v", cfg.Schedule)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("expected local timezone, got %v %v", loc, err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/hwplan.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/hwplan.db"

[logging]
level = "debug"

[logging.dev_file]
enabled = false

[schedule]
timezone = "UTC"
day_boundary_cron = "5 0 * * *"
upcoming_days = 3

[serve]
http_bind = "127.0.0.1:9000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/hwplan.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.DevFile.Enabled {
		t.Fatalf("unexpected logging %#v", cfg.Logging)
	}
	if cfg.Logging.DevFile.Dir != ".hwplan/log" {
		t.Fatalf("expected untouched nested default, got %q", cfg.Logging.DevFile.Dir)
	}
	if cfg.Schedule.UpcomingDays != 3 || cfg.Schedule.DayBoundaryCron != "5 0 * * *" {
		t.Fatalf("unexpected schedule %#v", cfg.Schedule)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("unexpected location %v %v", loc, err)
	}
	if cfg.Serve.HTTPBind != "127.0.0.1:9000" || cfg.Serve.MCPEndpoint != DefaultMCPEndpoint {
		t.Fatalf("unexpected serve %#v", cfg.Serve)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"level":    "[logging]\nlevel = \"loud\"\n",
		"timezone": "[schedule]\ntimezone = \"Mars/Olympus\"\n",
		"cron":     "[schedule]\nday_boundary_cron = \"every midnight\"\n",
		"upcoming": "[schedule]\nupcoming_days = -1\n",
		"no days":  "[schedule]\nupcoming_days = 0\n",
		"endpoint": "[serve]\napi_endpoint = \"api\"\n",
		"same":     "[serve]\napi_endpoint = \"/x\"\nmcp_endpoint = \"/x\"\n",
		"syntax":   "[schedule\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default("/tmp/hwplan.db")); err == nil {
				t.Fatal("expected Load() error")
			}
		})
	}
}

func TestValidateRequiresDatabasePath(t *testing.T) {
	err := Default("  ").Validate()
	if err == nil || !strings.Contains(err.Error(), "database path") {
		t.Fatalf("expected database path error, got %v", err)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(path); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Fatalf("expected config dir, got %v", err)
	}
	if err := EnsureConfigDir("config.toml"); err != nil {
		t.Fatalf("EnsureConfigDir(relative) error = %v", err)
	}
}
