package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanschultz/hwplan/internal/app"
	"github.com/evanschultz/hwplan/internal/report"
	"github.com/spf13/cobra"
)

func newExportCommand(flags *rootFlags) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Write a JSON snapshot of all planner state",
		GroupID: "data",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				encoded, err := encodeSnapshot(ctx, e.svc)
				if err != nil {
					return err
				}
				if outPath == "-" {
					if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
						return fmt.Errorf("write snapshot to stdout: %w", err)
					}
					return nil
				}
				if err := writeFile(outPath, encoded); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				e.logger.Info("snapshot exported", "path", outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file path ('-' for stdout)")
	return cmd
}

func newImportCommand(flags *rootFlags) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:     "import",
		Short:   "Replace all planner state with a JSON snapshot",
		GroupID: "data",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return fmt.Errorf("%w: --in is required", errUsage)
			}
			var (
				content []byte
				err     error
			)
			if inPath == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(inPath)
			}
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var snap app.Snapshot
			if err := json.Unmarshal(content, &snap); err != nil {
				return fmt.Errorf("decode snapshot json: %w", err)
			}
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				if err := e.svc.ImportSnapshot(ctx, snap); err != nil {
					return fmt.Errorf("import snapshot: %w", err)
				}
				// imported plans may predate today
				changed, err := e.svc.StartSession(ctx)
				if err != nil {
					return fmt.Errorf("reschedule imported homework: %w", err)
				}
				e.logger.Info("snapshot imported", "homework", len(snap.Homework), "rescheduled", changed)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d homework items\n", len(snap.Homework))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "input snapshot JSON file ('-' for stdin)")
	return cmd
}

func newBackupCommand(flags *rootFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:     "backup",
		Short:   "Write a timestamped snapshot into the backup directory",
		GroupID: "data",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				encoded, err := encodeSnapshot(ctx, e.svc)
				if err != nil {
					return err
				}
				path := e.paths.BackupPath(dir, clock())
				if err := writeFile(path, encoded); err != nil {
					return fmt.Errorf("write backup: %w", err)
				}
				e.logger.Info("backup written", "path", path)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "backup directory (defaults to the data dir backups folder)")
	return cmd
}

func newReportCommand(flags *rootFlags) *cobra.Command {
	var (
		style string
		width int
		raw   bool
	)
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Render a markdown summary of today, deadlines, and all homework",
		GroupID: "plan",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				tasks, err := e.svc.TodayTasks(ctx)
				if err != nil {
					return fmt.Errorf("today tasks: %w", err)
				}
				deadlines, err := e.svc.UpcomingDeadlines(ctx)
				if err != nil {
					return fmt.Errorf("upcoming deadlines: %w", err)
				}
				items, err := e.svc.ListHomework(ctx)
				if err != nil {
					return fmt.Errorf("list homework: %w", err)
				}
				md := report.Markdown(report.Summary{
					Today:     e.svc.Today(),
					Tasks:     tasks,
					Deadlines: deadlines,
					Homework:  items,
				})
				out := md
				if !raw {
					out = report.NewRenderer(style).Render(md, width) + "\n"
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&style, "style", "dark", "glamour style (dark, light, notty, ascii, ...)")
	cmd.Flags().IntVarP(&width, "width", "w", 80, "wrap width")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	return cmd
}

func encodeSnapshot(ctx context.Context, svc *app.Service) ([]byte, error) {
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := snap.MarshalIndent()
	if err != nil {
		return nil, fmt.Errorf("encode snapshot json: %w", err)
	}
	return append(encoded, '\n'), nil
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}
