// Package report renders a markdown summary of the homework plan.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/evanschultz/hwplan/internal/domain"
)

// minWrapWidth keeps narrow terminals readable.
const minWrapWidth = 24

// Summary is the data rendered by Markdown.
type Summary struct {
	Today     domain.Day
	Tasks     []domain.DayEntry
	Deadlines []domain.Homework
	Homework  []domain.Homework
}

// Markdown builds the summary document.
func Markdown(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Homework plan for %s\n\n", s.Today)

	b.WriteString("## Today\n\n")
	if len(s.Tasks) == 0 {
		b.WriteString("Nothing planned today.\n\n")
	} else {
		b.WriteString("| Done | Subject | Title | Pages | Minutes |\n")
		b.WriteString("| --- | --- | --- | ---: | ---: |\n")
		for _, e := range s.Tasks {
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %d |\n",
				check(e.Task.Completed), cell(e.Homework.Subject), cell(e.Homework.Title), e.Task.Pages, e.Task.Minutes)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Deadlines\n\n")
	if len(s.Deadlines) == 0 {
		b.WriteString("No upcoming deadlines.\n\n")
	} else {
		for _, h := range s.Deadlines {
			fmt.Fprintf(&b, "- **%s** %s: %s (%s)\n", h.DueDate, h.Subject, h.Title, deadlineLabel(h, s.Today))
		}
		b.WriteString("\n")
	}

	b.WriteString("## All homework\n\n")
	if len(s.Homework) == 0 {
		b.WriteString("No homework recorded.\n")
		return b.String()
	}
	b.WriteString("| Subject | Title | Due | Target | Progress |\n")
	b.WriteString("| --- | --- | --- | --- | ---: |\n")
	for _, h := range s.Homework {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %.0f%% |\n",
			cell(h.Subject), cell(h.Title), h.DueDate, h.TargetDate, domain.Progress(h))
	}
	return b.String()
}

func deadlineLabel(h domain.Homework, today domain.Day) string {
	days := today.DaysUntil(h.DueDate)
	switch {
	case domain.IsOverdue(h, today):
		return fmt.Sprintf("overdue by %d days", -days)
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

func check(done bool) string {
	if done {
		return "✓"
	}
	return " "
}

// cell escapes table separators.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Renderer converts markdown to styled terminal text and recreates the renderer when wrap width changes.
type Renderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewRenderer builds a renderer for a glamour standard style such as "dark", "light" or "notty".
func NewRenderer(style string) *Renderer {
	if strings.TrimSpace(style) == "" {
		style = "dark"
	}
	return &Renderer{style: style}
}

// Render returns styled output. Renderer failures fall back to the raw markdown.
func (r *Renderer) Render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, minWrapWidth)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
