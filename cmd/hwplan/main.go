package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/hwplan/internal/adapters/storage/sqlite"
	"github.com/evanschultz/hwplan/internal/app"
	"github.com/evanschultz/hwplan/internal/config"
	"github.com/evanschultz/hwplan/internal/platform"
	"github.com/evanschultz/hwplan/internal/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

type program interface {
	Run() (tea.Model, error)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// clock and newID are swapped by tests.
var (
	clock = time.Now
	newID = uuid.NewString
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()
	if err := fang.Execute(ctx, root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// run executes one command line against the given streams.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{appName: "hwplan"}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("HWPLAN_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("HWPLAN_APP_NAME")); envApp != "" {
		flags.appName = envApp
	}

	root := &cobra.Command{
		Use:   "hwplan",
		Short: "Plan homework across the days you can actually work",
		Long: `hwplan splits each assignment into equal daily shares between today and its
target date, skipping blocked days, and folds missed work into the days that remain.

Run without a subcommand to open the interactive today view.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, flags)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config TOML")
	pf.StringVar(&flags.dbPath, "db", "", "path to sqlite database")
	pf.StringVar(&flags.appName, "app", flags.appName, "application name for config/data path resolution")
	pf.BoolVar(&flags.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddGroup(
		&cobra.Group{ID: "homework", Title: "Homework"},
		&cobra.Group{ID: "plan", Title: "Planning"},
		&cobra.Group{ID: "data", Title: "Data"},
	)
	root.AddCommand(
		newAddCommand(flags),
		newEditCommand(flags),
		newRemoveCommand(flags),
		newListCommand(flags),
		newShowCommand(flags),
		newDoneCommand(flags),
		newCompleteCommand(flags),
		newTodayCommand(flags),
		newCalendarCommand(flags),
		newRemindCommand(flags),
		newReportCommand(flags),
		newScheduleCommand(flags),
		newSettingsCommand(flags),
		newExportCommand(flags),
		newImportCommand(flags),
		newBackupCommand(flags),
		newServeCommand(flags),
		newTUICommand(flags),
		newPathsCommand(flags),
	)
	return root
}

// env is the opened runtime one command works against.
type env struct {
	command    string
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	repo       *sqlite.Repository
	svc        *app.Service
}

// resolvePaths applies flag and environment overrides to the platform defaults.
func (f *rootFlags) resolvePaths() (platform.Paths, string, string, bool, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: f.appName,
		DevMode: f.devMode,
	})
	if err != nil {
		return platform.Paths{}, "", "", false, err
	}
	configPath := strings.TrimSpace(f.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("HWPLAN_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(f.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("HWPLAN_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}
	return paths, configPath, dbPath, dbOverridden, nil
}

// open loads config, starts logging, opens storage, and runs the session reschedule.
// A quiet env keeps the console sink muted so the TUI owns the terminal.
func (f *rootFlags) open(cmd *cobra.Command, quiet bool) (*env, error) {
	paths, configPath, dbPath, dbOverridden, err := f.resolvePaths()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve timezone: %w", err)
	}

	logger, err := newRuntimeLogger(cmd.ErrOrStderr(), f.appName, f.devMode, cfg.Logging, clock)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if quiet {
		logger.SetConsoleEnabled(false)
	}
	e := &env{
		command:    cmd.Name(),
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}

	logger.Debug("startup configuration resolved", "app", f.appName, "dev_mode", f.devMode, "command", e.command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}

	logger.Debug("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	e.repo = repo
	e.svc = app.NewService(repo, newID, clock, app.ServiceConfig{
		Location:     loc,
		UpcomingDays: cfg.Schedule.UpcomingDays,
	})

	changed, err := e.svc.StartSession(cmd.Context())
	if err != nil {
		logger.Error("session reschedule failed", "err", err)
		e.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}
	if changed > 0 {
		logger.Info("session rescheduled homework", "changed", changed, "today", e.svc.Today())
	}
	return e, nil
}

// Close releases storage and the log file.
func (e *env) Close() {
	if e == nil {
		return
	}
	if e.repo != nil {
		if err := e.repo.Close(); err != nil {
			e.logger.Warn("sqlite close failed", "db_path", e.cfg.Database.Path, "err", err)
		}
	}
	_ = e.logger.Close()
}

// withEnv opens a runtime, runs fn, and logs the flow outcome.
func withEnv(cmd *cobra.Command, flags *rootFlags, fn func(context.Context, *env) error) error {
	e, err := flags.open(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	e.logger.Debug("command flow start", "command", e.command)
	if err := fn(cmd.Context(), e); err != nil {
		e.logger.Debug("command flow failed", "command", e.command, "err", err)
		return err
	}
	e.logger.Debug("command flow complete", "command", e.command)
	return nil
}

func newTUICommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "tui",
		Short:   "Open the interactive today view",
		GroupID: "plan",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, flags)
		},
	}
}

func runTUI(cmd *cobra.Command, flags *rootFlags) error {
	e, err := flags.open(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	m := tui.NewModel(e.svc, tui.WithTitle(flags.appName))
	e.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		e.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	e.logger.Info("command flow complete", "command", "tui")
	return nil
}

func newPathsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "paths",
		Short:   "Print resolved config and data paths",
		GroupID: "data",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, configPath, dbPath, _, err := flags.resolvePaths()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", flags.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", flags.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", dbPath)
			_, _ = fmt.Fprintf(out, "backups: %s\n", paths.BackupDir)
			return nil
		},
	}
}

// parseBoolEnv reads a boolean env var. The second result is false when unset or malformed.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// errUsage marks argument errors the command itself detects.
var errUsage = errors.New("usage")
