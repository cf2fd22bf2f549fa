package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Defaults shared with the service layer.
const (
	DefaultDayBoundaryCron = "0 0 * * *"
	DefaultUpcomingDays    = 7
	DefaultHTTPBind        = "127.0.0.1:7420"
	DefaultAPIEndpoint     = "/api/v1"
	DefaultMCPEndpoint     = "/mcp"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Schedule ScheduleConfig `toml:"schedule"`
	Serve    ServeConfig    `toml:"serve"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ScheduleConfig struct {
	// Timezone is an IANA name or "Local".
	Timezone        string `toml:"timezone"`
	DayBoundaryCron string `toml:"day_boundary_cron"`
	UpcomingDays    int    `toml:"upcoming_days"`
}

type ServeConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".hwplan/log",
			},
		},
		Schedule: ScheduleConfig{
			Timezone:        "Local",
			DayBoundaryCron: DefaultDayBoundaryCron,
			UpcomingDays:    DefaultUpcomingDays,
		},
		Serve: ServeConfig{
			HTTPBind:    DefaultHTTPBind,
			APIEndpoint: DefaultAPIEndpoint,
			MCPEndpoint: DefaultMCPEndpoint,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if !slices.Contains(validLogLevels, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("invalid schedule.timezone: %w", err)
	}
	if _, err := cron.ParseStandard(c.Schedule.DayBoundaryCron); err != nil {
		return fmt.Errorf("invalid schedule.day_boundary_cron %q: %w", c.Schedule.DayBoundaryCron, err)
	}
	if c.Schedule.UpcomingDays < 1 {
		return errors.New("schedule.upcoming_days must be > 0")
	}

	if strings.TrimSpace(c.Serve.HTTPBind) == "" {
		return errors.New("serve.http_bind is required")
	}
	for name, endpoint := range map[string]string{
		"serve.api_endpoint": c.Serve.APIEndpoint,
		"serve.mcp_endpoint": c.Serve.MCPEndpoint,
	} {
		if !strings.HasPrefix(strings.TrimSpace(endpoint), "/") {
			return fmt.Errorf("%s must start with '/': %q", name, endpoint)
		}
	}
	if strings.TrimSpace(c.Serve.APIEndpoint) == strings.TrimSpace(c.Serve.MCPEndpoint) {
		return errors.New("serve.api_endpoint and serve.mcp_endpoint must differ")
	}

	return nil
}

// Location resolves the configured timezone. Empty and "Local" mean the host zone.
func (s ScheduleConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
