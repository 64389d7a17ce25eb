package hotkey

import (
	"fmt"
	"sync"
	"time"

	"golang.design/x/hotkey"
)

// debounceInterval suppresses OS key-repeat keydown storms while the
// key is held.
const debounceInterval = 300 * time.Millisecond

// Global registers a system-wide hotkey via the display server.
type Global struct {
	binding Binding

	mu      sync.Mutex
	hk      *hotkey.Hotkey
	stop    chan struct{}
	keydown chan struct{}
	keyup   chan struct{}
}

// NewGlobal builds a listener for the given binding.
func NewGlobal(binding Binding) *Global {
	return &Global{
		binding: binding,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

// Register claims the binding with the OS and starts event forwarding.
func (g *Global) Register() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hk != nil {
		return fmt.Errorf("hotkey %s already registered", g.binding)
	}

	mods := make([]hotkey.Modifier, 0, len(g.binding.Modifiers))
	for _, name := range g.binding.Modifiers {
		mods = append(mods, modifierMap[name])
	}

	hk := hotkey.New(mods, keyMap[g.binding.Key])
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register hotkey %s: %w", g.binding, err)
	}

	g.hk = hk
	g.stop = make(chan struct{})
	go g.forward(hk, g.stop)
	return nil
}

// forward converts the library's event stream into edge notifications,
// dropping an event when the consumer has not drained the previous one.
func (g *Global) forward(hk *hotkey.Hotkey, stop chan struct{}) {
	var lastDown time.Time
	for {
		select {
		case <-stop:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			now := time.Now()
			if now.Sub(lastDown) < debounceInterval {
				continue
			}
			lastDown = now
			select {
			case g.keydown <- struct{}{}:
			default:
			}
		case _, ok := <-hk.Keyup():
			if !ok {
				return
			}
			lastDown = time.Time{}
			select {
			case g.keyup <- struct{}{}:
			default:
			}
		}
	}
}

// Unregister releases the binding. Safe to call when not registered.
func (g *Global) Unregister() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stop != nil {
		close(g.stop)
		g.stop = nil
	}
	if g.hk != nil {
		g.hk.Unregister()
		g.hk = nil
	}
}

func (g *Global) Keydown() <-chan struct{} { return g.keydown }
func (g *Global) Keyup() <-chan struct{}   { return g.keyup }
