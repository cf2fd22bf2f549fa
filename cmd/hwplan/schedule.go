package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/hwplan/internal/domain"
	"github.com/spf13/cobra"
)

func newScheduleCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedule",
		Short:   "Show or change the days no homework is planned on",
		GroupID: "plan",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				return printSchedule(ctx, cmd.OutOrStdout(), e)
			})
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print blocked dates and weekdays",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
					return printSchedule(ctx, cmd.OutOrStdout(), e)
				})
			},
		},
		&cobra.Command{
			Use:     "block <date|weekday>...",
			Short:   "Block dates (YYYY-MM-DD) or weekdays (mon..sun) for every item",
			Example: "  hwplan schedule block sat sun 2024-03-15",
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return updateSchedule(cmd, flags, args, true)
			},
		},
		&cobra.Command{
			Use:   "unblock <date|weekday>...",
			Short: "Remove dates or weekdays from the global schedule",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return updateSchedule(cmd, flags, args, false)
			},
		},
	)
	return cmd
}

func updateSchedule(cmd *cobra.Command, flags *rootFlags, args []string, block bool) error {
	dates, weekdays, err := parseScheduleArgs(args)
	if err != nil {
		return err
	}
	return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
		schedule, err := e.svc.GetGlobalSchedule(ctx)
		if err != nil {
			return fmt.Errorf("get schedule: %w", err)
		}
		if block {
			schedule, err = schedule.Block(dates...)
			if err != nil {
				return fmt.Errorf("block dates: %w", err)
			}
			for _, wd := range weekdays {
				if !schedule.BlocksWeekday(wd) {
					schedule.BlockedWeekdays = append(schedule.BlockedWeekdays, wd)
				}
			}
		} else {
			schedule = schedule.Unblock(dates...)
			schedule.BlockedWeekdays = slices.DeleteFunc(schedule.BlockedWeekdays, func(wd time.Weekday) bool {
				return slices.Contains(weekdays, wd)
			})
		}
		if _, err := e.svc.UpdateGlobalSchedule(ctx, schedule); err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}
		e.logger.Info("global schedule updated", "block", block, "dates", len(dates), "weekdays", len(weekdays))
		return printSchedule(ctx, cmd.OutOrStdout(), e)
	})
}

func printSchedule(ctx context.Context, w io.Writer, e *env) error {
	schedule, err := e.svc.GetGlobalSchedule(ctx)
	if err != nil {
		return fmt.Errorf("get schedule: %w", err)
	}
	dates := "none"
	if len(schedule.BlockedDates) > 0 {
		dates = joinDays(schedule.BlockedDates)
	}
	weekdays := "none"
	if len(schedule.BlockedWeekdays) > 0 {
		names := make([]string, 0, len(schedule.BlockedWeekdays))
		for _, wd := range schedule.BlockedWeekdays {
			names = append(names, wd.String())
		}
		weekdays = strings.Join(names, ", ")
	}
	_, _ = fmt.Fprintf(w, "blocked dates: %s\n", dates)
	_, _ = fmt.Fprintf(w, "blocked weekdays: %s\n", weekdays)
	return nil
}

// parseScheduleArgs splits arguments into dates and weekday names.
func parseScheduleArgs(args []string) ([]domain.Day, []time.Weekday, error) {
	var (
		dates    []domain.Day
		weekdays []time.Weekday
	)
	for _, raw := range args {
		if wd, ok := parseWeekday(raw); ok {
			weekdays = append(weekdays, wd)
			continue
		}
		d, err := domain.ParseDay(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q is neither a date nor a weekday", errUsage, raw)
		}
		dates = append(dates, d)
	}
	return dates, weekdays, nil
}

// parseWeekday accepts full names and three-letter prefixes in any case.
func parseWeekday(raw string) (time.Weekday, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if len(name) < 3 {
		return 0, false
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		if name == full || name == full[:3] {
			return wd, true
		}
	}
	return 0, false
}

func newSettingsCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		Short:   "Show or change reminder settings",
		GroupID: "plan",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				return printSettings(ctx, cmd.OutOrStdout(), e)
			})
		},
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print reminder settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				return printSettings(ctx, cmd.OutOrStdout(), e)
			})
		},
	}

	var (
		enabled, daily bool
		at             string
		days           []int
	)
	set := &cobra.Command{
		Use:     "set",
		Short:   "Change reminder settings; unset flags keep their value",
		Example: "  hwplan settings set --enabled --days 1,3 --time 19:30",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				settings, err := e.svc.GetNotificationSettings(ctx)
				if err != nil {
					return fmt.Errorf("get settings: %w", err)
				}
				changed := cmd.Flags().Changed
				if changed("enabled") {
					settings.Enabled = enabled
				}
				if changed("daily") {
					settings.DailyReminder = daily
				}
				if changed("time") {
					settings.ReminderTime = at
				}
				if changed("days") {
					settings.ReminderDays = days
				}
				if _, err := e.svc.UpdateNotificationSettings(ctx, settings); err != nil {
					return fmt.Errorf("update settings: %w", err)
				}
				e.logger.Info("notification settings updated")
				return printSettings(ctx, cmd.OutOrStdout(), e)
			})
		},
	}
	set.Flags().BoolVar(&enabled, "enabled", false, "compute reminders at all")
	set.Flags().BoolVar(&daily, "daily", false, "add a daily reminder for today's work")
	set.Flags().StringVar(&at, "time", "", "daily reminder time (HH:MM)")
	set.Flags().IntSliceVar(&days, "days", nil, "days before the due date to remind on")

	cmd.AddCommand(show, set)
	return cmd
}

func printSettings(ctx context.Context, w io.Writer, e *env) error {
	s, err := e.svc.GetNotificationSettings(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}
	days := "none"
	if len(s.ReminderDays) > 0 {
		days = formatInts(s.ReminderDays)
	}
	_, _ = fmt.Fprintf(w, "enabled: %t\n", s.Enabled)
	_, _ = fmt.Fprintf(w, "reminder days: %s\n", days)
	_, _ = fmt.Fprintf(w, "daily reminder: %t at %s\n", s.DailyReminder, s.ReminderTime)
	return nil
}
