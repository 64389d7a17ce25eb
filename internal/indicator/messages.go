package indicator

const (
	msgRecording  = "Recording…"
	msgProcessing = "Translating…"
	msgNoSpeech   = "Nothing to translate"
)

// failureText maps a pipeline stage name to the message shown to the
// user. The text distinguishes hard failures from the benign no-speech
// outcome, which never goes through this path.
func failureText(stage string) string {
	switch stage {
	case "recording":
		return "Microphone capture failed"
	case "transcribing":
		return "Speech recognition failed"
	case "translating":
		return "Translation failed"
	case "synthesizing":
		return "Speech synthesis failed"
	case "playing":
		return "Playback failed"
	default:
		return "Translation error"
	}
}
