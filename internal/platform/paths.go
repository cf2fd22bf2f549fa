package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultAppName names the config and data directories.
const DefaultAppName = "hwplan"

// backupLayout stamps backup snapshots in UTC so names sort chronologically.
const backupLayout = "20060102-150405"

// Paths locates the files hwplan reads and writes.
//
// Config lives at <config>/<app>/config.toml. The SQLite planner store is
// <data>/<app>/<app>.db, and JSON snapshot backups land in <data>/<app>/backups.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	BackupDir  string
}

// Options selects the app directory name. DevMode keeps a separate "-dev" store
// so local runs never touch the real planner database.
type Options struct {
	AppName string
	DevMode bool
}

// DefaultPaths resolves the layout for the production app directory.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves the layout from the current OS and environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir, err := userDataDir(runtime.GOOS, configDir)
	if err != nil {
		return Paths{}, err
	}
	env := map[string]string{}
	for _, key := range []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "APPDATA", "LOCALAPPDATA"} {
		env[key] = os.Getenv(key)
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appDirName(opts))
}

func appDirName(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if opts.DevMode {
		return name + "-dev"
	}
	return name
}

// userDataDir picks the per-user base for the database and backups.
// Linux keeps data under ~/.local/share; elsewhere it sits next to config.
func userDataDir(goos, configDir string) (string, error) {
	switch goos {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("user home dir: %w", err)
		}
		return filepath.Join(home, ".local", "share"), nil
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			return v, nil
		}
	}
	return configDir, nil
}

// PathsFor builds the hwplan layout for goos from explicit base directories.
// On linux XDG_CONFIG_HOME and XDG_DATA_HOME win; on windows APPDATA holds config
// and LOCALAPPDATA holds the database. Other platforms use the bases as given.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configKey, dataKey := "", ""
	switch goos {
	case "linux":
		configKey, dataKey = "XDG_CONFIG_HOME", "XDG_DATA_HOME"
	case "windows":
		configKey, dataKey = "APPDATA", "LOCALAPPDATA"
	}
	configBase := override(env, configKey, userConfigDir)
	dataBase := override(env, dataKey, userDataDir)

	appData := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    appData,
		DBPath:     filepath.Join(appData, appName+".db"),
		BackupDir:  filepath.Join(appData, "backups"),
	}, nil
}

func override(env map[string]string, key, fallback string) string {
	if key == "" {
		return fallback
	}
	if v := env[key]; v != "" {
		return v
	}
	return fallback
}

// BackupPath names a timestamped snapshot file in dir, or in BackupDir when dir is blank.
func (p Paths) BackupPath(dir string, now time.Time) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = p.BackupDir
	}
	return filepath.Join(dir, DefaultAppName+"-"+now.UTC().Format(backupLayout)+".json")
}

// EnsureDataDirs creates the database and backup directories.
func (p Paths) EnsureDataDirs() error {
	for _, dir := range []string{p.DataDir, p.BackupDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
