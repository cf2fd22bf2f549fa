package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestPathsForLinuxWithXDG verifies behavior for the covered scenario.
func TestPathsForLinuxWithXDG(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{
		"XDG_CONFIG_HOME": "/xdg/config",
		"XDG_DATA_HOME":   "/xdg/data",
	}, "/fallback/config", "/fallback/data", "hwplan")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	wantConfig := filepath.Join("/xdg/config", "hwplan", "config.toml")
	wantDB := filepath.Join("/xdg/data", "hwplan", "hwplan.db")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
}

// TestPathsForWindowsUsesAppData verifies behavior for the covered scenario.
func TestPathsForWindowsUsesAppData(t *testing.T) {
	p, err := PathsFor("windows", map[string]string{
		"APPDATA":      `C:\Users\me\AppData\Roaming`,
		"LOCALAPPDATA": `C:\Users\me\AppData\Local`,
	}, `C:\fallback\config`, `C:\fallback\data`, "hwplan")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}

	wantConfig := filepath.Join(`C:\Users\me\AppData\Roaming`, "hwplan", "config.toml")
	wantDB := filepath.Join(`C:\Users\me\AppData\Local`, "hwplan", "hwplan.db")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
}

// TestPathsForEmptyDirsFails verifies behavior for the covered scenario.
func TestPathsForEmptyDirsFails(t *testing.T) {
	_, err := PathsFor("darwin", nil, "", "/tmp/data", "hwplan")
	if err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := PathsFor("linux", nil, "/cfg", "/data", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

// TestPathsForDarwinFallback verifies behavior for the covered scenario.
func TestPathsForDarwinFallback(t *testing.T) {
	p, err := PathsFor("darwin", map[string]string{
		"XDG_CONFIG_HOME": "/ignored",
		"XDG_DATA_HOME":   "/ignored",
	}, "/Users/me/Library/Application Support", "/Users/me/Library/Application Support", "hwplan")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	wantConfig := filepath.Join("/Users/me/Library/Application Support", "hwplan", "config.toml")
	wantDB := filepath.Join("/Users/me/Library/Application Support", "hwplan", "hwplan.db")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
}

// TestPathsForUnknownFallback verifies behavior for the covered scenario.
func TestPathsForUnknownFallback(t *testing.T) {
	p, err := PathsFor("freebsd", map[string]string{}, "/cfg", "/data", "hwplan")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	wantConfig := filepath.Join("/cfg", "hwplan", "config.toml")
	wantData := filepath.Join("/data", "hwplan")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DataDir != wantData {
		t.Fatalf("unexpected data dir %q", p.DataDir)
	}
	if p.BackupDir != filepath.Join(wantData, "backups") {
		t.Fatalf("unexpected backup dir %q", p.BackupDir)
	}
}

// TestPathsForLinuxFallbackWithoutXDG verifies behavior for the covered scenario.
func TestPathsForLinuxFallbackWithoutXDG(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{}, "/home/me/.config", "/home/me/.local/share", "hwplan")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	wantConfig := filepath.Join("/home/me/.config", "hwplan", "config.toml")
	wantDB := filepath.Join("/home/me/.local/share", "hwplan", "hwplan.db")
	if p.ConfigPath != wantConfig {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if p.DBPath != wantDB {
		t.Fatalf("unexpected db path %q", p.DBPath)
	}
}

// TestDefaultPathsSmoke verifies behavior for the covered scenario.
func TestDefaultPathsSmoke(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if filepath.Base(p.DBPath) != DefaultAppName+".db" {
		t.Fatalf("unexpected default db name %q", p.DBPath)
	}
	if p.ConfigPath == "" || p.DBPath == "" || p.DataDir == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
}

// TestDefaultPathsWithOptionsDevMode verifies behavior for the covered scenario.
func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "hwplan", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "hwplan-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "hwplan-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}

// TestEnsureDataDirs verifies behavior for the covered scenario.
func TestEnsureDataDirs(t *testing.T) {
	root := t.TempDir()
	p, err := PathsFor("linux", map[string]string{"XDG_DATA_HOME": root}, "/cfg", "/data", "hwplan")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if err := p.EnsureDataDirs(); err != nil {
		t.Fatalf("EnsureDataDirs() error = %v", err)
	}
	if info, err := os.Stat(p.BackupDir); err != nil || !info.IsDir() {
		t.Fatalf("expected backup dir, got %v", err)
	}
}

func TestBackupPathStampsUTC(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{}, "/cfg", "/data", "hwplan-dev")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	now := time.Date(2024, 3, 1, 9, 30, 5, 0, time.FixedZone("EST", -5*3600))
	if got, want := p.BackupPath("", now), filepath.Join("/data", "hwplan-dev", "backups", "hwplan-20240301-143005.json"); got != want {
		t.Fatalf("BackupPath() = %q, want %q", got, want)
	}
	if got, want := p.BackupPath(" /tmp/bk ", now), filepath.Join("/tmp/bk", "hwplan-20240301-143005.json"); got != want {
		t.Fatalf("BackupPath(dir) = %q, want %q", got, want)
	}
}
