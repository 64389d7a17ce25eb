//go:build linux

package hotkey

import "golang.design/x/hotkey"

// Alt is Mod1 and Super is Mod4 under X11.
var modifierMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"super": hotkey.Mod4,
}
