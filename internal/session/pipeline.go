package session

import (
	"context"
	"time"

	"github.com/akorchak/lingopad/internal/asr"
	"github.com/akorchak/lingopad/internal/audio"
	"github.com/akorchak/lingopad/internal/translate"
	"github.com/akorchak/lingopad/internal/tts"
)

// Recorder is the session-facing subset of microphone capture.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (audio.Clip, error)
	Abort()
}

// Player routes a synthesized WAV file to the output device and blocks
// until playback completes.
type Player interface {
	Play(ctx context.Context, path string, duration time.Duration) error
}

// Pipeline bundles the five stage adapters a session runs through.
type Pipeline struct {
	Recorder    Recorder
	Recognizer  asr.Recognizer
	Translator  translate.Translator
	Synthesizer tts.Synthesizer
	Player      Player
}
