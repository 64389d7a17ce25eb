package config

import (
	"fmt"
	"strconv"
	"strings"
)

var knownWhisperModels = map[string]struct{}{
	"tiny": {}, "tiny.en": {},
	"base": {}, "base.en": {},
	"small": {}, "small.en": {},
	"medium": {}, "medium.en": {},
	"large": {}, "large-v2": {}, "large-v3": {},
}

// Validate enforces config invariants and returns non-fatal warnings.
// A returned error is a startup configuration failure and aborts the process.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	level := strings.ToLower(strings.TrimSpace(cfg.App.LogLevel))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("app.log_level must be one of: debug, info, warn, error")
	}

	if strings.TrimSpace(cfg.App.Hotkey) == "" {
		return nil, fmt.Errorf("app.hotkey must not be empty")
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.App.HotkeyMode))
	if mode != "hold" && mode != "toggle" {
		return nil, fmt.Errorf("app.hotkey_mode must be one of: hold, toggle")
	}

	source := strings.TrimSpace(cfg.Translation.SourceLang)
	target := strings.TrimSpace(cfg.Translation.TargetLang)
	if source == "" {
		return nil, fmt.Errorf("translation.source_lang must not be empty")
	}
	if target == "" {
		return nil, fmt.Errorf("translation.target_lang must not be empty")
	}
	if source == target {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("translation.source_lang and target_lang are both %q; translation is a pass-through", source),
		})
	}

	model := strings.TrimSpace(cfg.Translation.WhisperModel)
	if _, ok := knownWhisperModels[model]; !ok {
		return nil, fmt.Errorf("translation.whisper_model %q is not a known whisper model size", model)
	}
	if strings.TrimSpace(cfg.Translation.ModelsDir) == "" {
		return nil, fmt.Errorf("translation.models_dir must not be empty")
	}
	if strings.TrimSpace(cfg.Translation.BackendURL) == "" {
		return nil, fmt.Errorf("translation.backend_url must not be empty")
	}
	for pair := range cfg.Translation.ModelPairs {
		if _, _, err := SplitPair(pair); err != nil {
			return nil, fmt.Errorf("translation.model_pairs: %w", err)
		}
	}

	if _, err := ParsePercent(cfg.TTS.Rate); err != nil {
		return nil, fmt.Errorf("tts.rate: %w", err)
	}
	if _, err := ParsePercent(cfg.TTS.Volume); err != nil {
		return nil, fmt.Errorf("tts.volume: %w", err)
	}
	if strings.TrimSpace(cfg.TTS.BackendURL) == "" {
		return nil, fmt.Errorf("tts.backend_url must not be empty")
	}
	if strings.TrimSpace(cfg.TTS.Model) == "" {
		return nil, fmt.Errorf("tts.model must not be empty")
	}

	// Routing misconfiguration is caught here, never at play time.
	if !cfg.SoundPad.PlayInSpeakers && !cfg.SoundPad.PlayInMicrophone {
		return nil, fmt.Errorf("soundpad: at least one of play_in_speakers and play_in_microphone must be true")
	}
	if strings.TrimSpace(cfg.SoundPad.PipePath) == "" {
		return nil, fmt.Errorf("soundpad.pipe_path must not be empty")
	}
	if cfg.SoundPad.PlaybackTimeoutMS <= 0 {
		return nil, fmt.Errorf("soundpad.playback_timeout_ms must be > 0")
	}
	if cfg.SoundPad.PlaybackDelayMS < 0 {
		return nil, fmt.Errorf("soundpad.playback_delay_ms must be >= 0")
	}

	if cfg.Audio.MinDurationMS < 0 {
		return nil, fmt.Errorf("audio.min_duration_ms must be >= 0")
	}
	if cfg.Audio.MaxDurationS <= 0 {
		return nil, fmt.Errorf("audio.max_duration_s must be > 0")
	}

	return warnings, nil
}

// SplitPair parses a "src>tgt" model-pair key into its language codes.
func SplitPair(pair string) (string, string, error) {
	parts := strings.Split(pair, ">")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("pair key %q is not of the form \"src>tgt\"", pair)
	}
	source := strings.TrimSpace(parts[0])
	target := strings.TrimSpace(parts[1])
	if source == "" || target == "" {
		return "", "", fmt.Errorf("pair key %q has an empty language code", pair)
	}
	return source, target, nil
}

// ParsePercent converts a signed percent string such as "-20%" or "+30%"
// into a multiplier (0.8 and 1.3 respectively). The empty string is 1.0.
func ParsePercent(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 1.0, nil
	}
	if !strings.HasSuffix(trimmed, "%") {
		return 0, fmt.Errorf("percent value %q must end with %%", raw)
	}
	number := strings.TrimSuffix(trimmed, "%")
	number = strings.TrimPrefix(number, "+")
	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("percent value %q is not numeric", raw)
	}
	multiplier := 1.0 + value/100.0
	if multiplier <= 0 {
		return 0, fmt.Errorf("percent value %q reduces below zero", raw)
	}
	return multiplier, nil
}
