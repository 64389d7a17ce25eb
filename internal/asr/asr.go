// Package asr wraps speech-to-text capability behind a narrow adapter contract.
package asr

import (
	"context"

	"github.com/akorchak/lingopad/internal/audio"
)

// Recognizer converts a finite clip plus a source-language hint into text.
// An empty string is a valid result meaning no speech was detected; it is
// not an error.
type Recognizer interface {
	Recognize(ctx context.Context, clip audio.Clip, lang string) (string, error)
	Close() error
}
