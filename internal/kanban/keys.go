package kanban

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the card-level keyboard bindings. Browser key names
// (ArrowLeft, Enter) and terminal names (left, enter) are both accepted.
type KeyMap struct {
	MovePrev key.Binding
	MoveNext key.Binding
	Open     key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	MovePrev: key.NewBinding(
		key.WithKeys("left", "ArrowLeft", "h"),
		key.WithHelp("←", "move to previous state"),
	),
	MoveNext: key.NewBinding(
		key.WithKeys("right", "ArrowRight", "l"),
		key.WithHelp("→", "move to next state"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", "Enter", " ", "space", "Space"),
		key.WithHelp("enter/space", "open details"),
	),
}

// keyName adapts a raw key string to key.Matches.
type keyName string

func (k keyName) String() string { return string(k) }

// KeyAction is what a key press resolved to.
type KeyAction string

const (
	ActionNone     KeyAction = "none"
	ActionMovePrev KeyAction = "move_prev"
	ActionMoveNext KeyAction = "move_next"
	ActionOpen     KeyAction = "open"
)

func (m KeyMap) action(raw string) KeyAction {
	k := keyName(raw)
	switch {
	case key.Matches(k, m.MovePrev):
		return ActionMovePrev
	case key.Matches(k, m.MoveNext):
		return ActionMoveNext
	case key.Matches(k, m.Open):
		return ActionOpen
	}
	return ActionNone
}

// Hint lists the keyboard actions available on a card.
func (m KeyMap) Hint() string {
	var parts []string
	for _, b := range []key.Binding{m.MovePrev, m.MoveNext, m.Open} {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return strings.Join(parts, ", ")
}
