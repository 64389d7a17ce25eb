package hotkey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseBinding(t *testing.T) {
	b, err := ParseBinding("ctrl+space")
	require.NoError(t, err)
	require.Equal(t, []string{"ctrl"}, b.Modifiers)
	require.Equal(t, "space", b.Key)

	b, err = ParseBinding("Ctrl+Shift+P")
	require.NoError(t, err)
	require.Equal(t, []string{"ctrl", "shift"}, b.Modifiers)
	require.Equal(t, "p", b.Key)
	require.Equal(t, "ctrl+shift+p", b.String())

	b, err = ParseBinding("f9")
	require.NoError(t, err)
	require.Empty(t, b.Modifiers)
	require.Equal(t, "f9", b.Key)
}

func TestParseBindingRejectsUnknown(t *testing.T) {
	_, err := ParseBinding("hyper+space")
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown modifier "hyper"`)

	_, err = ParseBinding("ctrl+kp_enter")
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown key "kp_enter"`)

	_, err = ParseBinding("")
	require.Error(t, err)
}

func awaitEdge(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for key edge")
	}
}

func requireNoEdge(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("unexpected key edge")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestToggleAlternatesOnKeydown(t *testing.T) {
	fake := NewFake()
	toggle := NewToggle(fake)
	require.NoError(t, toggle.Register())
	defer toggle.Unregister()

	fake.SimPress()
	awaitEdge(t, toggle.Keydown())

	fake.SimPress()
	awaitEdge(t, toggle.Keyup())

	fake.SimPress()
	awaitEdge(t, toggle.Keydown())
}

func TestToggleIgnoresReleases(t *testing.T) {
	fake := NewFake()
	toggle := NewToggle(fake)
	require.NoError(t, toggle.Register())
	defer toggle.Unregister()

	fake.SimRelease()
	requireNoEdge(t, toggle.Keyup())
	requireNoEdge(t, toggle.Keydown())

	fake.SimPress()
	awaitEdge(t, toggle.Keydown())
	fake.SimRelease()
	requireNoEdge(t, toggle.Keyup())
}
