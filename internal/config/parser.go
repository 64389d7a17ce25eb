package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	App         *jsoncApp         `json:"app"`
	Translation *jsoncTranslation `json:"translation"`
	TTS         *jsoncTTS         `json:"tts"`
	SoundPad    *jsoncSoundPad    `json:"soundpad"`
	Audio       *jsoncAudio       `json:"audio"`
}

type jsoncApp struct {
	LogLevel   *string `json:"log_level"`
	Hotkey     *string `json:"hotkey"`
	HotkeyMode *string `json:"hotkey_mode"`
}

type jsoncTranslation struct {
	SourceLang    *string           `json:"source_lang"`
	TargetLang    *string           `json:"target_lang"`
	WhisperModel  *string           `json:"whisper_model"`
	ModelsDir     *string           `json:"models_dir"`
	BackendURL    *string           `json:"backend_url"`
	ModelPairs    map[string]string `json:"model_pairs"`
	FallbackModel *string           `json:"fallback_model"`
}

type jsoncTTS struct {
	Voice      *string `json:"voice"`
	Rate       *string `json:"rate"`
	Volume     *string `json:"volume"`
	BackendURL *string `json:"backend_url"`
	Model      *string `json:"model"`
}

type jsoncSoundPad struct {
	PipePath            *string `json:"pipe_path"`
	PlayInSpeakers      *bool   `json:"play_in_speakers"`
	PlayInMicrophone    *bool   `json:"play_in_microphone"`
	AutoStart           *bool   `json:"auto_start"`
	ExecutablePath      *string `json:"executable_path"`
	PlaybackTimeoutMS   *int    `json:"playback_timeout_ms"`
	PlaybackDelayMS     *int    `json:"playback_delay_ms"`
	ForceStopBeforePlay *bool   `json:"force_stop_before_play"`
}

type jsoncAudio struct {
	Input         *string `json:"input"`
	Fallback      *string `json:"fallback"`
	MinDurationMS *int    `json:"min_duration_ms"`
	MaxDurationS  *int    `json:"max_duration_s"`
}

// Parse reads configuration content as JSONC layered over base defaults.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		validatedWarnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, validatedWarnings, nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		return Config{}, nil, errors.New("config must be a JSONC object")
	}

	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	payload.applyTo(&cfg)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) {
	if payload.App != nil {
		if payload.App.LogLevel != nil {
			cfg.App.LogLevel = strings.TrimSpace(*payload.App.LogLevel)
		}
		if payload.App.Hotkey != nil {
			cfg.App.Hotkey = strings.TrimSpace(*payload.App.Hotkey)
		}
		if payload.App.HotkeyMode != nil {
			cfg.App.HotkeyMode = strings.TrimSpace(*payload.App.HotkeyMode)
		}
	}

	if payload.Translation != nil {
		if payload.Translation.SourceLang != nil {
			cfg.Translation.SourceLang = strings.TrimSpace(*payload.Translation.SourceLang)
		}
		if payload.Translation.TargetLang != nil {
			cfg.Translation.TargetLang = strings.TrimSpace(*payload.Translation.TargetLang)
		}
		if payload.Translation.WhisperModel != nil {
			cfg.Translation.WhisperModel = strings.TrimSpace(*payload.Translation.WhisperModel)
		}
		if payload.Translation.ModelsDir != nil {
			cfg.Translation.ModelsDir = strings.TrimSpace(*payload.Translation.ModelsDir)
		}
		if payload.Translation.BackendURL != nil {
			cfg.Translation.BackendURL = strings.TrimSpace(*payload.Translation.BackendURL)
		}
		if payload.Translation.ModelPairs != nil {
			pairs := make(map[string]string, len(payload.Translation.ModelPairs))
			for key, value := range payload.Translation.ModelPairs {
				pairs[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
			cfg.Translation.ModelPairs = pairs
		}
		if payload.Translation.FallbackModel != nil {
			cfg.Translation.FallbackModel = strings.TrimSpace(*payload.Translation.FallbackModel)
		}
	}

	if payload.TTS != nil {
		if payload.TTS.Voice != nil {
			cfg.TTS.Voice = strings.TrimSpace(*payload.TTS.Voice)
		}
		if payload.TTS.Rate != nil {
			cfg.TTS.Rate = strings.TrimSpace(*payload.TTS.Rate)
		}
		if payload.TTS.Volume != nil {
			cfg.TTS.Volume = strings.TrimSpace(*payload.TTS.Volume)
		}
		if payload.TTS.BackendURL != nil {
			cfg.TTS.BackendURL = strings.TrimSpace(*payload.TTS.BackendURL)
		}
		if payload.TTS.Model != nil {
			cfg.TTS.Model = strings.TrimSpace(*payload.TTS.Model)
		}
	}

	if payload.SoundPad != nil {
		if payload.SoundPad.PipePath != nil {
			cfg.SoundPad.PipePath = strings.TrimSpace(*payload.SoundPad.PipePath)
		}
		if payload.SoundPad.PlayInSpeakers != nil {
			cfg.SoundPad.PlayInSpeakers = *payload.SoundPad.PlayInSpeakers
		}
		if payload.SoundPad.PlayInMicrophone != nil {
			cfg.SoundPad.PlayInMicrophone = *payload.SoundPad.PlayInMicrophone
		}
		if payload.SoundPad.AutoStart != nil {
			cfg.SoundPad.AutoStart = *payload.SoundPad.AutoStart
		}
		if payload.SoundPad.ExecutablePath != nil {
			cfg.SoundPad.ExecutablePath = strings.TrimSpace(*payload.SoundPad.ExecutablePath)
		}
		if payload.SoundPad.PlaybackTimeoutMS != nil {
			cfg.SoundPad.PlaybackTimeoutMS = *payload.SoundPad.PlaybackTimeoutMS
		}
		if payload.SoundPad.PlaybackDelayMS != nil {
			cfg.SoundPad.PlaybackDelayMS = *payload.SoundPad.PlaybackDelayMS
		}
		if payload.SoundPad.ForceStopBeforePlay != nil {
			cfg.SoundPad.ForceStopBeforePlay = *payload.SoundPad.ForceStopBeforePlay
		}
	}

	if payload.Audio != nil {
		if payload.Audio.Input != nil {
			cfg.Audio.Input = strings.TrimSpace(*payload.Audio.Input)
		}
		if payload.Audio.Fallback != nil {
			cfg.Audio.Fallback = strings.TrimSpace(*payload.Audio.Fallback)
		}
		if payload.Audio.MinDurationMS != nil {
			cfg.Audio.MinDurationMS = *payload.Audio.MinDurationMS
		}
		if payload.Audio.MaxDurationS != nil {
			cfg.Audio.MaxDurationS = *payload.Audio.MaxDurationS
		}
	}
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' || ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
