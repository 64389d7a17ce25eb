package config

import "runtime"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		App: AppConfig{
			LogLevel:   "info",
			Hotkey:     "ctrl+space",
			HotkeyMode: "hold",
		},
		Translation: TranslationConfig{
			SourceLang:    "ru",
			TargetLang:    "zh",
			WhisperModel:  "small",
			ModelsDir:     "models",
			BackendURL:    "http://127.0.0.1:11434/v1",
			ModelPairs:    map[string]string{},
			FallbackModel: "qwen2.5:3b",
		},
		TTS: TTSConfig{
			Voice:      "",
			Rate:       "-20%",
			Volume:     "+30%",
			BackendURL: "http://127.0.0.1:8880/v1",
			Model:      "tts-1",
		},
		SoundPad: SoundPadConfig{
			PipePath:            defaultPipePath(),
			PlayInSpeakers:      true,
			PlayInMicrophone:    true,
			AutoStart:           true,
			ExecutablePath:      "",
			PlaybackTimeoutMS:   10000,
			PlaybackDelayMS:     200,
			ForceStopBeforePlay: true,
		},
		Audio: AudioConfig{
			Input:         "default",
			Fallback:      "default",
			MinDurationMS: 800,
			MaxDurationS:  60,
		},
	}
}

// defaultPipePath points at SoundPad's remote-control pipe on Windows and a
// bridge socket elsewhere.
func defaultPipePath() string {
	if runtime.GOOS == "windows" {
		return `\\.\pipe\sp_remote_control`
	}
	return "/tmp/sp_remote_control.sock"
}
