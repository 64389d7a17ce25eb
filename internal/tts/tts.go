// Package tts wraps text-to-speech capability behind a narrow adapter contract.
package tts

import (
	"context"
	"fmt"

	"github.com/akorchak/lingopad/internal/audio"
)

// Request carries per-call synthesis parameters.
type Request struct {
	Lang   string // target language, used for default voice selection
	Voice  string // empty selects the language default deterministically
	Rate   string // signed percent speed adjustment, e.g. "-20%"
	Volume string // signed percent gain adjustment, e.g. "+30%"
}

// Synthesizer converts translated text into a finite audio clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, req Request) (audio.Clip, error)
}

// VoiceNotFoundError reports a voice the synthesis engine rejected. The
// adapter never substitutes a different language's voice in its place.
type VoiceNotFoundError struct {
	Voice string
	Lang  string
}

func (e *VoiceNotFoundError) Error() string {
	if e.Voice == "" {
		return fmt.Sprintf("no default voice is known for language %q", e.Lang)
	}
	return fmt.Sprintf("synthesis voice %q was rejected by the engine", e.Voice)
}
