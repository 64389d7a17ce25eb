package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/akorchak/lingopad/internal/audio"
	"github.com/akorchak/lingopad/internal/config"
)

// pcmSampleRate is the raw PCM rate produced by OpenAI-compatible speech
// endpoints (16-bit mono little-endian).
const pcmSampleRate = 24000

// Engine synthesizes speech through an OpenAI-compatible speech endpoint.
type Engine struct {
	client *openai.Client
	model  string
}

// NewEngine builds a synthesis engine from runtime config.
func NewEngine(cfg config.TTSConfig) *Engine {
	clientCfg := openai.DefaultConfig("lingopad")
	clientCfg.BaseURL = strings.TrimRight(cfg.BackendURL, "/")

	return &Engine{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Synthesize converts text into a clip with the request's voice, rate, and
// volume applied. An empty voice hint resolves the language default; a
// non-empty hint is used verbatim and surfaces VoiceNotFoundError when the
// engine rejects it.
func (e *Engine) Synthesize(ctx context.Context, text string, req Request) (audio.Clip, error) {
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		resolved, err := DefaultVoice(req.Lang)
		if err != nil {
			return audio.Clip{}, err
		}
		voice = resolved
	}

	speed, err := config.ParsePercent(req.Rate)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("tts rate: %w", err)
	}
	gain, err := config.ParsePercent(req.Volume)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("tts volume: %w", err)
	}

	resp, err := e.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(e.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
		Speed:          speed,
	})
	if err != nil {
		if isVoiceRejected(err) {
			return audio.Clip{}, &VoiceNotFoundError{Voice: voice, Lang: req.Lang}
		}
		return audio.Clip{}, fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Close()

	raw, err := io.ReadAll(resp)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("read synthesized audio: %w", err)
	}
	if len(raw) < 2 {
		return audio.Clip{}, errors.New("synthesis returned no audio")
	}

	clip := audio.ClipFromPCM16(raw, pcmSampleRate, 1)
	applyGain(clip.Samples, float32(gain))
	return clip, nil
}

// applyGain scales samples in place, clamping to the valid range.
func applyGain(samples []float32, gain float32) {
	if gain == 1.0 {
		return
	}
	for i, s := range samples {
		v := s * gain
		if v > 1.0 {
			v = 1.0
		}
		if v < -1.0 {
			v = -1.0
		}
		samples[i] = v
	}
}

// isVoiceRejected classifies engine errors that mean the voice is unknown.
func isVoiceRejected(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := strings.ToLower(apiErr.Message)
		return strings.Contains(message, "voice")
	}
	return false
}
