package tui

import "github.com/atotto/clipboard"

// Option configures a Model.
type Option func(*Model)

// CopyFunc writes text to the system clipboard.
type CopyFunc func(string) error

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn CopyFunc) Option {
	return func(m *Model) {
		if fn != nil {
			m.copy = fn
		}
	}
}

// WithTitle sets the header label.
func WithTitle(title string) Option {
	return func(m *Model) {
		if title != "" {
			m.title = title
		}
	}
}

func defaultCopy(text string) error {
	return clipboard.WriteAll(text)
}
