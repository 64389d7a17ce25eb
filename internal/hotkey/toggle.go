package hotkey

import "sync"

// Toggle adapts a hold-style listener to tap-to-start, tap-to-stop
// operation. Every keydown of the inner listener alternates between a
// synthesized press and a synthesized release; inner keyups are ignored.
type Toggle struct {
	inner Listener

	mu      sync.Mutex
	stop    chan struct{}
	keydown chan struct{}
	keyup   chan struct{}
}

func NewToggle(inner Listener) *Toggle {
	return &Toggle{
		inner:   inner,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (t *Toggle) Register() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return nil
	}
	if err := t.inner.Register(); err != nil {
		return err
	}
	t.stop = make(chan struct{})
	go t.alternate(t.stop)
	return nil
}

func (t *Toggle) alternate(stop chan struct{}) {
	active := false
	for {
		select {
		case <-stop:
			return
		case <-t.inner.Keyup():
			// Release edges carry no meaning in toggle operation.
		case <-t.inner.Keydown():
			if active {
				active = false
				select {
				case t.keyup <- struct{}{}:
				default:
				}
			} else {
				active = true
				select {
				case t.keydown <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (t *Toggle) Unregister() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.inner.Unregister()
}

func (t *Toggle) Keydown() <-chan struct{} { return t.keydown }
func (t *Toggle) Keyup() <-chan struct{}   { return t.keyup }
