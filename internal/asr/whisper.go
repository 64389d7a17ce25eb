package asr

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/akorchak/lingopad/internal/audio"
)

// Whisper recognizes speech with a local whisper.cpp model. The model is
// loaded lazily on the first Recognize call and cached for the process
// lifetime; the first call pays the load latency.
type Whisper struct {
	modelsDir string
	size      string

	mu    sync.Mutex
	model whisper.Model
}

// NewWhisper builds a recognizer for one model size without loading it.
func NewWhisper(modelsDir string, size string) *Whisper {
	return &Whisper{modelsDir: modelsDir, size: size}
}

// ModelPath returns the on-disk ggml model file for this recognizer.
func (w *Whisper) ModelPath() string {
	return filepath.Join(w.modelsDir, fmt.Sprintf("ggml-%s.bin", w.size))
}

// Recognize transcribes the clip in the hinted language. Silence or
// unintelligible audio yields an empty string, not an error.
func (w *Whisper) Recognize(ctx context.Context, clip audio.Clip, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureModelLocked(); err != nil {
		return "", err
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("create whisper context: %w", err)
	}

	// Transcription only; translation is a separate pipeline stage.
	wctx.SetTranslate(false)
	if lang != "" {
		if err := wctx.SetLanguage(lang); err != nil {
			return "", fmt.Errorf("set whisper language %q: %w", lang, err)
		}
	}

	if err := wctx.Process(clip.Samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var result strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read whisper segment: %w", err)
		}
		result.WriteString(segment.Text)
	}

	return strings.TrimSpace(result.String()), nil
}

// Close releases the cached model.
func (w *Whisper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model != nil {
		err := w.model.Close()
		w.model = nil
		return err
	}
	return nil
}

// ensureModelLocked performs the lazy one-time model load.
func (w *Whisper) ensureModelLocked() error {
	if w.model != nil {
		return nil
	}

	path := w.ModelPath()
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("whisper model %q not found: download ggml-%s.bin into %q", path, w.size, w.modelsDir)
	}

	model, err := whisper.New(path)
	if err != nil {
		return fmt.Errorf("load whisper model %q: %w", path, err)
	}
	w.model = model
	return nil
}
