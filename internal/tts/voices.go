package tts

// defaultVoices maps a target language code to its default neural voice.
// Selection is keyed only by language so the same language always yields the
// same voice within a process run.
var defaultVoices = map[string]string{
	"ru": "ru-RU-SvetlanaNeural",
	"zh": "zh-CN-YunxiNeural",
	"en": "en-US-ChristopherNeural",
	"ja": "ja-JP-KeitaNeural",
	"ko": "ko-KR-InJoonNeural",
	"es": "es-ES-AlvaroNeural",
	"fr": "fr-FR-HenriNeural",
	"de": "de-DE-ConradNeural",
	"it": "it-IT-DiegoNeural",
	"pt": "pt-BR-AntonioNeural",
	"ar": "ar-SA-HamedNeural",
}

// DefaultVoice resolves the deterministic default voice for a language.
func DefaultVoice(lang string) (string, error) {
	voice, ok := defaultVoices[lang]
	if !ok {
		return "", &VoiceNotFoundError{Lang: lang}
	}
	return voice, nil
}

// KnownLanguages lists every language with a default voice, for CLI output.
func KnownLanguages() map[string]string {
	out := make(map[string]string, len(defaultVoices))
	for lang, voice := range defaultVoices {
		out[lang] = voice
	}
	return out
}
