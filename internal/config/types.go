// Package config resolves, parses, validates, and defaults lingopad configuration.
package config

// Config is the fully materialized runtime configuration used by lingopad.
type Config struct {
	App         AppConfig
	Translation TranslationConfig
	TTS         TTSConfig
	SoundPad    SoundPadConfig
	Audio       AudioConfig
}

// AppConfig controls process-level behavior.
type AppConfig struct {
	LogLevel   string
	Hotkey     string
	HotkeyMode string // "hold" (press=start, release=stop) or "toggle"
}

// TranslationConfig controls source/target languages and both engines that
// consume them: the whisper recognizer and the translation backend.
type TranslationConfig struct {
	SourceLang    string
	TargetLang    string
	WhisperModel  string
	ModelsDir     string
	BackendURL    string
	ModelPairs    map[string]string // "src>tgt" -> backend model name
	FallbackModel string
}

// TTSConfig controls voice selection and the synthesis backend.
type TTSConfig struct {
	Voice      string // empty selects the per-language default deterministically
	Rate       string // signed percent, e.g. "-20%"
	Volume     string // signed percent, e.g. "+30%"
	BackendURL string
	Model      string
}

// SoundPadConfig controls the playback device connection and routing flags.
type SoundPadConfig struct {
	PipePath            string
	PlayInSpeakers      bool
	PlayInMicrophone    bool
	AutoStart           bool
	ExecutablePath      string
	PlaybackTimeoutMS   int
	PlaybackDelayMS     int
	ForceStopBeforePlay bool
}

// AudioConfig controls input-source selection and clip duration bounds.
type AudioConfig struct {
	Input         string
	Fallback      string
	MinDurationMS int
	MaxDurationS  int
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
