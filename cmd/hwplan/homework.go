package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/evanschultz/hwplan/internal/app"
	"github.com/evanschultz/hwplan/internal/domain"
	"github.com/evanschultz/hwplan/internal/tui"
	"github.com/spf13/cobra"
)

// homeworkFlags are the editable fields shared by add and edit.
type homeworkFlags struct {
	subject string
	title   string
	content string
	due     string
	target  string
	pages   int
	minutes int
	blocked []string
}

func (f *homeworkFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.subject, "subject", "s", "", "subject name")
	fl.StringVarP(&f.title, "title", "t", "", "assignment title")
	fl.StringVar(&f.content, "content", "", "free-form notes")
	fl.StringVar(&f.due, "due", "", "due date (YYYY-MM-DD)")
	fl.StringVar(&f.target, "target", "", "date to finish by (YYYY-MM-DD, defaults to the due date)")
	fl.IntVarP(&f.pages, "pages", "p", 0, "total pages")
	fl.IntVarP(&f.minutes, "minutes", "m", 0, "estimated total minutes")
	fl.StringSliceVar(&f.blocked, "blocked", nil, "dates this item cannot be worked on (repeatable, comma separated)")
}

// apply overlays the flags the user actually set onto in.
func (f *homeworkFlags) apply(cmd *cobra.Command, in *app.CreateHomeworkInput) error {
	changed := cmd.Flags().Changed
	if changed("subject") {
		in.Subject = f.subject
	}
	if changed("title") {
		in.Title = f.title
	}
	if changed("content") {
		in.Content = f.content
	}
	if changed("due") {
		d, err := parseDayArg("due", f.due)
		if err != nil {
			return err
		}
		in.DueDate = d
	}
	if changed("target") {
		in.TargetDate = ""
		if strings.TrimSpace(f.target) != "" {
			d, err := parseDayArg("target", f.target)
			if err != nil {
				return err
			}
			in.TargetDate = d
		}
	}
	if changed("pages") {
		in.Pages = f.pages
	}
	if changed("minutes") {
		in.EstimatedMinutes = f.minutes
	}
	if changed("blocked") {
		days, err := parseDayArgs("blocked", f.blocked)
		if err != nil {
			return err
		}
		in.BlockedDates = days
	}
	return nil
}

func newAddCommand(flags *rootFlags) *cobra.Command {
	var hf homeworkFlags
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a homework item and plan it from today",
		GroupID: "homework",
		Example: "  hwplan add -s Math -t \"Exercises 4.1\" --due 2024-03-08 -p 12 -m 90",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in app.CreateHomeworkInput
			if err := hf.apply(cmd, &in); err != nil {
				return err
			}
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				h, err := e.svc.CreateHomework(ctx, in)
				if err != nil {
					return fmt.Errorf("create homework: %w", err)
				}
				e.logger.Info("homework created", "id", h.ID, "days", len(h.DailyTasks))
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", h.ID)
				printPlan(cmd.OutOrStdout(), h, e.svc.Today())
				return nil
			})
		},
	}
	hf.register(cmd)
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newEditCommand(flags *rootFlags) *cobra.Command {
	var hf homeworkFlags
	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Change a homework item; scheduling edits regenerate its plan",
		GroupID: "homework",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				h, err := e.svc.GetHomework(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get homework %q: %w", args[0], err)
				}
				current := h.Input()
				in := app.UpdateHomeworkInput{
					ID: h.ID,
					CreateHomeworkInput: app.CreateHomeworkInput{
						Subject:          current.Subject,
						Title:            current.Title,
						Content:          current.Content,
						DueDate:          current.DueDate,
						TargetDate:       current.TargetDate,
						Pages:            current.Pages,
						EstimatedMinutes: current.EstimatedMinutes,
						BlockedDates:     current.BlockedDates,
					},
				}
				if err := hf.apply(cmd, &in.CreateHomeworkInput); err != nil {
					return err
				}
				updated, err := e.svc.UpdateHomework(ctx, in)
				if err != nil {
					return fmt.Errorf("update homework: %w", err)
				}
				e.logger.Info("homework updated", "id", updated.ID)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", updated.ID)
				printPlan(cmd.OutOrStdout(), updated, e.svc.Today())
				return nil
			})
		},
	}
	hf.register(cmd)
	return cmd
}

func newRemoveCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete homework items",
		GroupID: "homework",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				for _, id := range args {
					if err := e.svc.DeleteHomework(ctx, id); err != nil {
						return fmt.Errorf("delete homework %q: %w", id, err)
					}
					e.logger.Info("homework deleted", "id", id)
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				}
				return nil
			})
		},
	}
}

func newListCommand(flags *rootFlags) *cobra.Command {
	var showCompleted bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List homework with progress",
		GroupID: "homework",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				items, err := e.svc.ListHomework(ctx)
				if err != nil {
					return fmt.Errorf("list homework: %w", err)
				}
				active, completed := domain.Split(items)
				rows := active
				if showCompleted {
					rows = append(rows, completed...)
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					_, _ = fmt.Fprintln(out, "no homework")
				} else {
					_, _ = fmt.Fprintln(out, homeworkTable(rows, e.svc.Today()))
				}
				if !showCompleted && len(completed) > 0 {
					_, _ = fmt.Fprintf(out, "%d completed hidden (use --all)\n", len(completed))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&showCompleted, "all", "a", false, "include completed homework")
	return cmd
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	overdueStyle = cellStyle.Foreground(lipgloss.Color("204"))
	doneStyle    = cellStyle.Foreground(lipgloss.Color("244"))
)

// homeworkTable renders items as a bordered table.
func homeworkTable(items []domain.Homework, today domain.Day) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("ID", "SUBJECT", "TITLE", "DUE", "TARGET", "PROGRESS", "STATUS")
	for _, h := range items {
		t.Row(
			h.ID,
			h.Subject,
			h.Title,
			h.DueDate.String(),
			h.TargetDate.String(),
			fmt.Sprintf("%.0f%%", domain.Progress(h)),
			status(h, today),
		)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row < 0 || row >= len(items) {
			return cellStyle
		}
		h := items[row]
		switch {
		case h.Completed:
			return doneStyle
		case domain.IsOverdue(h, today):
			return overdueStyle
		}
		return cellStyle
	})
	return t.Render()
}

func status(h domain.Homework, today domain.Day) string {
	switch {
	case h.Completed:
		return "done"
	case domain.IsOverdue(h, today):
		return "overdue"
	}
	left := today.DaysUntil(h.DueDate)
	switch left {
	case 0:
		return "due today"
	case 1:
		return "due tomorrow"
	}
	return fmt.Sprintf("%d days left", left)
}

func newShowCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Short:   "Show one homework item and its daily plan",
		GroupID: "homework",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				h, err := e.svc.GetHomework(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get homework %q: %w", args[0], err)
				}
				out := cmd.OutOrStdout()
				today := e.svc.Today()
				_, _ = fmt.Fprintf(out, "%s: %s\n", h.Subject, h.Title)
				_, _ = fmt.Fprintf(out, "id: %s\n", h.ID)
				_, _ = fmt.Fprintf(out, "due: %s (target %s)\n", h.DueDate, h.TargetDate)
				_, _ = fmt.Fprintf(out, "work: %d pages, %d min\n", h.Pages, h.EstimatedMinutes)
				if len(h.BlockedDates) > 0 {
					_, _ = fmt.Fprintf(out, "blocked: %s\n", joinDays(h.BlockedDates))
				}
				_, _ = fmt.Fprintf(out, "status: %s, %.0f%% done\n", status(h, today), domain.Progress(h))
				if strings.TrimSpace(h.Content) != "" {
					_, _ = fmt.Fprintf(out, "\n%s\n", strings.TrimSpace(h.Content))
				}
				_, _ = fmt.Fprintln(out)
				printPlan(out, h, today)
				return nil
			})
		},
	}
}

// printPlan writes one line per allocation, marking today.
func printPlan(w io.Writer, h domain.Homework, today domain.Day) {
	if len(h.DailyTasks) == 0 {
		_, _ = fmt.Fprintln(w, "no open days before the target date")
		return
	}
	for _, t := range h.DailyTasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		suffix := ""
		if t.Date == today {
			suffix = "  <- today"
		}
		_, _ = fmt.Fprintf(w, "  [%s] %s %s  %s%s\n", mark, t.Date, t.Date.Weekday().String()[:3], tui.WorkLabel(t), suffix)
	}
}

func newDoneCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id> [date]",
		Short:   "Toggle one day of a plan (today by default)",
		GroupID: "plan",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				day := e.svc.Today()
				if len(args) == 2 && args[1] != "today" {
					d, err := parseDayArg("date", args[1])
					if err != nil {
						return err
					}
					day = d
				}
				h, err := e.svc.ToggleDayTask(ctx, args[0], day)
				if err != nil {
					return fmt.Errorf("toggle day: %w", err)
				}
				t, _ := h.Task(day)
				state := "open"
				if t.Completed {
					state = "done"
				}
				e.logger.Info("day task toggled", "id", h.ID, "date", day, "completed", t.Completed)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s on %s is %s (%.0f%% done)\n", h.Subject, h.Title, day, state, domain.Progress(h))
				return nil
			})
		},
	}
}

func newCompleteCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "complete <id>",
		Short:   "Toggle a whole homework item done or open",
		GroupID: "plan",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				h, err := e.svc.ToggleHomeworkComplete(ctx, args[0])
				if err != nil {
					return fmt.Errorf("toggle homework: %w", err)
				}
				state := "reopened"
				if h.Completed {
					state = "completed"
				}
				e.logger.Info("homework toggled", "id", h.ID, "completed", h.Completed)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", state, h.Subject, h.Title)
				return nil
			})
		},
	}
}

// copyToClipboard is replaced in tests.
var copyToClipboard tui.CopyFunc = clipboard.WriteAll

func newTodayCommand(flags *rootFlags) *cobra.Command {
	var copyPlan bool
	cmd := &cobra.Command{
		Use:     "today",
		Short:   "Print today's plan",
		GroupID: "plan",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				entries, err := e.svc.TodayTasks(ctx)
				if err != nil {
					return fmt.Errorf("today tasks: %w", err)
				}
				text := tui.PlanText(e.svc.Today(), entries)
				_, _ = fmt.Fprint(cmd.OutOrStdout(), text)
				if !copyPlan {
					return nil
				}
				if err := copyToClipboard(text); err != nil {
					return fmt.Errorf("copy plan: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "copied to clipboard")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&copyPlan, "copy", false, "also copy the plan to the clipboard")
	return cmd
}

func newCalendarCommand(flags *rootFlags) *cobra.Command {
	var (
		from string
		days int
	)
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Print planned work and deadlines day by day",
		GroupID: "plan",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var start domain.Day
			if strings.TrimSpace(from) != "" && from != "today" {
				d, err := parseDayArg("from", from)
				if err != nil {
					return err
				}
				start = d
			}
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				cal, err := e.svc.Calendar(ctx, start, days)
				if err != nil {
					return fmt.Errorf("calendar: %w", err)
				}
				out := cmd.OutOrStdout()
				for _, day := range cal {
					_, _ = fmt.Fprintf(out, "%s %s\n", day.Day, day.Day.Weekday().String()[:3])
					for _, h := range day.Deadlines {
						_, _ = fmt.Fprintf(out, "  ! due %s: %s\n", h.Subject, h.Title)
					}
					for _, entry := range day.Tasks {
						mark := " "
						if entry.Task.Completed {
							mark = "x"
						}
						_, _ = fmt.Fprintf(out, "  [%s] %s: %s (%s)\n", mark, entry.Homework.Subject, entry.Homework.Title, tui.WorkLabel(entry.Task))
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVarP(&days, "days", "n", 7, "number of days")
	return cmd
}

func newRemindCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "remind",
		Short:   "Print reminders that apply today",
		GroupID: "plan",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, flags, func(ctx context.Context, e *env) error {
				reminders, err := e.svc.Reminders(ctx)
				if err != nil {
					return fmt.Errorf("reminders: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(reminders) == 0 {
					_, _ = fmt.Fprintln(out, "no reminders")
					return nil
				}
				for _, r := range reminders {
					_, _ = fmt.Fprintln(out, r.Message)
				}
				return nil
			})
		},
	}
}

func parseDayArg(name, raw string) (domain.Day, error) {
	d, err := domain.ParseDay(raw)
	if err != nil {
		return "", fmt.Errorf("%w: --%s %q: %w", errUsage, name, raw, err)
	}
	return d, nil
}

func parseDayArgs(name string, raw []string) ([]domain.Day, error) {
	out := make([]domain.Day, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		d, err := parseDayArg(name, r)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func joinDays(days []domain.Day) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, ", ")
}

func formatInts(in []int) string {
	parts := make([]string, 0, len(in))
	for _, v := range in {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ", ")
}
