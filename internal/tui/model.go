// Package tui renders today's homework plan as an interactive terminal view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/hwplan/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	Today() domain.Day
	TodayTasks(context.Context) ([]domain.DayEntry, error)
	UpcomingDeadlines(context.Context) ([]domain.Homework, error)
	ToggleDayTask(context.Context, string, domain.Day) (domain.Homework, error)
	ToggleHomeworkComplete(context.Context, string) (domain.Homework, error)
}

// Model is the bubbletea model for the today view.
type Model struct {
	svc   Service
	keys  keyMap
	help  help.Model
	copy  CopyFunc
	title string

	ready  bool
	width  int
	height int

	today         domain.Day
	entries       []domain.DayEntry
	deadlines     []domain.Homework
	selected      int
	showDeadlines bool

	status string
	err    error
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	today     domain.Day
	entries   []domain.DayEntry
	deadlines []domain.Homework
	err       error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err    error
	status string
	reload bool
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:           svc,
		keys:          newKeyMap(),
		help:          h,
		copy:          defaultCopy,
		title:         "hwplan",
		status:        "loading...",
		showDeadlines: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.today = msg.today
		m.entries = msg.entries
		m.deadlines = msg.deadlines
		m.selected = clamp(m.selected, 0, len(m.entries)-1)
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	default:
		return m, nil
	}
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		m.err = nil
		return m, m.loadData
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.deadlines):
		m.showDeadlines = !m.showDeadlines
		return m, nil
	}
	if m.err != nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.moveUp):
		m.selected = clamp(m.selected-1, 0, len(m.entries)-1)
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selected = clamp(m.selected+1, 0, len(m.entries)-1)
		return m, nil
	case key.Matches(msg, m.keys.toggleDay):
		entry, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		return m, m.toggleDayCmd(entry)
	case key.Matches(msg, m.keys.toggleItem):
		entry, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		return m, m.toggleItemCmd(entry)
	case key.Matches(msg, m.keys.copyPlan):
		return m, m.copyCmd()
	}
	return m, nil
}

func (m Model) selectedEntry() (domain.DayEntry, bool) {
	if len(m.entries) == 0 {
		return domain.DayEntry{}, false
	}
	return m.entries[clamp(m.selected, 0, len(m.entries)-1)], true
}

func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	entries, err := m.svc.TodayTasks(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	deadlines, err := m.svc.UpcomingDeadlines(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{
		today:     m.svc.Today(),
		entries:   entries,
		deadlines: deadlines,
	}
}

func (m Model) toggleDayCmd(entry domain.DayEntry) tea.Cmd {
	return func() tea.Msg {
		h, err := m.svc.ToggleDayTask(context.Background(), entry.Homework.ID, entry.Task.Date)
		if err != nil {
			return actionMsg{err: err}
		}
		state := "open"
		if t, ok := h.Task(entry.Task.Date); ok && t.Completed {
			state = "done"
		}
		return actionMsg{
			status: fmt.Sprintf("%s %s: %s", h.Subject, h.Title, state),
			reload: true,
		}
	}
}

func (m Model) toggleItemCmd(entry domain.DayEntry) tea.Cmd {
	return func() tea.Msg {
		h, err := m.svc.ToggleHomeworkComplete(context.Background(), entry.Homework.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		state := "reopened"
		if h.Completed {
			state = "completed"
		}
		return actionMsg{
			status: fmt.Sprintf("%s %s %s", h.Subject, h.Title, state),
			reload: true,
		}
	}
}

func (m Model) copyCmd() tea.Cmd {
	text := PlanText(m.today, m.entries)
	copyFn := m.copy
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			return actionMsg{err: fmt.Errorf("copy plan: %w", err)}
		}
		return actionMsg{status: "plan copied"}
	}
}

// PlanText renders one day's plan as plain text.
func PlanText(day domain.Day, entries []domain.DayEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Homework for %s\n", day)
	if len(entries) == 0 {
		b.WriteString("- nothing planned\n")
		return b.String()
	}
	for _, e := range entries {
		mark := " "
		if e.Task.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s: %s (%s)\n", mark, e.Homework.Subject, e.Homework.Title, WorkLabel(e.Task))
	}
	return b.String()
}

// WorkLabel describes one allocation as pages and minutes.
func WorkLabel(t domain.DayTask) string {
	parts := make([]string, 0, 2)
	if t.Pages > 0 {
		parts = append(parts, fmt.Sprintf("%d pages", t.Pages))
	}
	if t.Minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d min", t.Minutes))
	}
	if len(parts) == 0 {
		return "review"
	}
	return strings.Join(parts, ", ")
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render builds the plain frame string shown by View.
func (m Model) render() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}

	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	accent := lipgloss.Color("62")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle := lipgloss.NewStyle().Foreground(muted).Strikethrough(true)
	subStyle := lipgloss.NewStyle().Foreground(muted)
	warningStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))

	sections := []string{titleStyle.Render(m.title) + statusStyle.Render("  "+string(m.today))}

	sections = append(sections, "", sectionStyle.Render("Today"))
	if len(m.entries) == 0 {
		sections = append(sections, subStyle.Render("  nothing planned"))
	}
	for idx, e := range m.entries {
		mark := "[ ]"
		if e.Task.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s · %s", mark, e.Homework.Subject, e.Homework.Title)
		switch {
		case idx == m.selected:
			line = selectedStyle.Render("> " + line)
		case e.Task.Completed:
			line = "  " + doneStyle.Render(line)
		default:
			line = "  " + line
		}
		detail := fmt.Sprintf("  %s  %3.0f%%  due %s", WorkLabel(e.Task), domain.Progress(e.Homework), e.Homework.DueDate)
		sections = append(sections, line+subStyle.Render(detail))
	}

	if m.showDeadlines {
		sections = append(sections, "", sectionStyle.Render("Deadlines"))
		if len(m.deadlines) == 0 {
			sections = append(sections, subStyle.Render("  none upcoming"))
		}
		for _, h := range m.deadlines {
			days := m.today.DaysUntil(h.DueDate)
			label := fmt.Sprintf("  %s  %s · %s", h.DueDate, h.Subject, h.Title)
			switch {
			case domain.IsOverdue(h, m.today):
				sections = append(sections, warningStyle.Render(label+fmt.Sprintf("  overdue %dd", -days)))
			case days == 0:
				sections = append(sections, warningStyle.Render(label+"  due today"))
			default:
				sections = append(sections, label+subStyle.Render(fmt.Sprintf("  in %dd", days)))
			}
		}
	}

	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, "", statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}

	return content + "\n" + helpLine
}

// fitLines pads or truncates content to exactly height lines.
func fitLines(content string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
