package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
// A missing file is not an error: defaults are used and a starter config is
// written so the user has something to edit.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	base := Default()
	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			warnings := []Warning{{
				Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
			}}
			if writeErr := writeStarterConfig(resolvedPath); writeErr != nil {
				warnings = append(warnings, Warning{
					Message: fmt.Sprintf("unable to write starter config: %v", writeErr),
				})
			} else {
				warnings = append(warnings, Warning{
					Message: fmt.Sprintf("starter config written to %q", resolvedPath),
				})
			}
			validated, verr := Validate(base)
			if verr != nil {
				return Loaded{}, verr
			}
			return Loaded{
				Path:     resolvedPath,
				Config:   base,
				Warnings: append(warnings, validated...),
				Exists:   false,
			}, nil
		}
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	cfg, warnings, err := Parse(string(content), base)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}

const starterConfig = `{
  // lingopad configuration. Unset keys fall back to built-in defaults.
  "app": {
    "log_level": "info",
    "hotkey": "ctrl+space",
    "hotkey_mode": "hold"
  },
  "translation": {
    "source_lang": "ru",
    "target_lang": "zh",
    "whisper_model": "small"
  },
  "tts": {
    // Leave voice empty to pick the default voice for the target language.
    "voice": "",
    "rate": "-20%",
    "volume": "+30%"
  },
  "soundpad": {
    "play_in_speakers": true,
    "play_in_microphone": true
  }
}
`

func writeStarterConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(starterConfig), 0o600)
}
