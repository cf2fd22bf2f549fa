package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/key"
)

// TestKeyMapBindings verifies the default key bindings match their key presses.
func TestKeyMapBindings(t *testing.T) {
	k := newKeyMap()
	cases := []struct {
		name    string
		msg     tea.KeyPressMsg
		binding key.Binding
	}{
		{"space toggles day", tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}, k.toggleDay},
		{"enter toggles day", tea.KeyPressMsg{Code: tea.KeyEnter}, k.toggleDay},
		{"x toggles item", keyRune('x'), k.toggleItem},
		{"c copies", keyRune('c'), k.copyPlan},
		{"j moves down", keyRune('j'), k.moveDown},
		{"k moves up", keyRune('k'), k.moveUp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !key.Matches(tc.msg, tc.binding) {
				t.Fatalf("key %q did not match %v", tc.msg.String(), tc.binding.Keys())
			}
		})
	}
}

// TestKeyMapHelp verifies short and full help expose the primary actions.
func TestKeyMapHelp(t *testing.T) {
	k := newKeyMap()
	if got := len(k.ShortHelp()); got != 5 {
		t.Fatalf("ShortHelp() = %d bindings, want 5", got)
	}
	total := 0
	for _, group := range k.FullHelp() {
		total += len(group)
	}
	if total != 9 {
		t.Fatalf("FullHelp() = %d bindings, want 9", total)
	}
}
