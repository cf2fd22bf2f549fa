package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/hwplan/internal/config"
)

func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/hwplan.db").Logging

	logger, err := newRuntimeLogger(&console, "hwplan", false, cfg, func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Warn("after")
	logger.Debug("hidden below info")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected console log to include 'before' and 'after', got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
	if strings.Contains(out, "hidden below info") {
		t.Fatalf("expected debug line filtered at info level, got %q", out)
	}
	if logger.DevLogPath() != "" {
		t.Fatalf("expected no dev log outside dev mode, got %q", logger.DevLogPath())
	}
}

func TestRuntimeLoggerRejectsUnknownLevel(t *testing.T) {
	cfg := config.Default("/tmp/hwplan.db").Logging
	cfg.Level = "chatty"
	if _, err := newRuntimeLogger(io.Discard, "hwplan", false, cfg, nil); err == nil {
		t.Fatal("expected parse level error")
	}
}

func TestRunDevModeCreatesWorkspaceLogFile(t *testing.T) {
	workspace := t.TempDir()
	t.Chdir(workspace)
	dbPath, cfgPath := testCLI(t)

	var stdout bytes.Buffer
	args := []string{"--dev", "--db", dbPath, "--config", cfgPath, "list"}
	if err := run(context.Background(), args, nil, &stdout, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	logPath := filepath.Join(workspace, ".hwplan", "log", "hwplan-20240301.log")
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("expected dev log file %s: %v", logPath, err)
	}
}

func TestRunTUIModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	workspace := t.TempDir()
	t.Chdir(workspace)
	dbPath, cfgPath := testCLI(t)

	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--dev", "--db", dbPath, "--config", cfgPath}, nil, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	content, err := os.ReadFile(filepath.Join(workspace, ".hwplan", "log", "hwplan-20240301.log"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "starting tui program loop") {
		t.Fatalf("expected tui lifecycle entries in log file, got %q", string(content))
	}
}

func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "hwplan")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

func TestDevLogFilePathResolvesAgainstWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	nested := filepath.Join(root, "internal", "app")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(nested)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got, err := devLogFilePath("", "my app", now)
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	want := filepath.Join(root, ".hwplan", "log", "my-app-20240301.log")
	if got != want {
		t.Fatalf("devLogFilePath() = %q, want %q", got, want)
	}

	abs := filepath.Join(t.TempDir(), "logs")
	got, err = devLogFilePath(abs, "", now)
	if err != nil {
		t.Fatalf("devLogFilePath(abs) error = %v", err)
	}
	if got != filepath.Join(abs, "hwplan-20240301.log") {
		t.Fatalf("unexpected absolute log path %q", got)
	}
}
