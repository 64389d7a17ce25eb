// Package soundpad speaks SoundPad's remote-control pipe protocol and routes
// synthesized clips into the device.
package soundpad

import (
	"fmt"
	"strings"
)

// SoundPad's remote control accepts single call-style requests and answers
// with HTTP-like status strings ("R-200/OK") or a bare value for getters.

const responseOK = "R-200"

func cmdAddSound(path string) string {
	return fmt.Sprintf("DoAddSound(%q)", path)
}

func cmdPlaySound(index int, speakers bool, microphone bool) string {
	return fmt.Sprintf("DoPlaySound(%d, %t, %t)", index, speakers, microphone)
}

func cmdStopSound() string {
	return "DoStopSound()"
}

func cmdSelectIndex(index int) string {
	return fmt.Sprintf("DoSelectIndex(%d)", index)
}

func cmdRemoveSelectedEntries(removeFromDisk bool) string {
	return fmt.Sprintf("DoRemoveSelectedEntries(%t)", removeFromDisk)
}

func cmdSoundFileCount() string {
	return "GetSoundFileCount()"
}

// isOK reports whether a response is a success status.
func isOK(response string) bool {
	return strings.HasPrefix(strings.TrimSpace(response), responseOK)
}
