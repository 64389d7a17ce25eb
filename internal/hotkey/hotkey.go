// Package hotkey provides the global push-to-talk key.
package hotkey

import (
	"fmt"
	"strings"
)

// Listener delivers global key events for one registered binding.
// Keydown and Keyup carry at most one pending event each; a consumer
// that falls behind loses repeats, not the latest edge.
type Listener interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

// ModeHold treats the key as push-to-talk; ModeToggle taps to start and
// taps again to stop.
const (
	ModeHold   = "hold"
	ModeToggle = "toggle"
)

// New builds the listener for a binding spec and mode from config.
func New(spec, mode string) (Listener, error) {
	binding, err := ParseBinding(spec)
	if err != nil {
		return nil, err
	}
	var listener Listener = NewGlobal(binding)
	if mode == ModeToggle {
		listener = NewToggle(listener)
	}
	return listener, nil
}

// Binding is a parsed hotkey combination such as "ctrl+shift+space".
type Binding struct {
	Modifiers []string
	Key       string
}

// String renders the binding back in config syntax.
func (b Binding) String() string {
	parts := append(append([]string(nil), b.Modifiers...), b.Key)
	return strings.Join(parts, "+")
}

// ParseBinding splits a config hotkey string into modifiers and a final
// key. Every part before the last must be a known modifier and the last
// part must be a known key.
func ParseBinding(spec string) (Binding, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(spec)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Binding{}, fmt.Errorf("empty hotkey")
	}

	b := Binding{Key: parts[len(parts)-1]}
	for _, part := range parts[:len(parts)-1] {
		if _, ok := modifierMap[part]; !ok {
			return Binding{}, fmt.Errorf("unknown modifier %q in hotkey %q", part, spec)
		}
		b.Modifiers = append(b.Modifiers, part)
	}
	if _, ok := keyMap[b.Key]; !ok {
		return Binding{}, fmt.Errorf("unknown key %q in hotkey %q", b.Key, spec)
	}
	return b, nil
}
