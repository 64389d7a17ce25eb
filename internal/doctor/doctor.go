// Package doctor runs readiness diagnostics for config, audio, models,
// backends, and the playback device.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/akorchak/lingopad/internal/asr"
	"github.com/akorchak/lingopad/internal/audio"
	"github.com/akorchak/lingopad/internal/config"
	"github.com/akorchak/lingopad/internal/hotkey"
	"github.com/akorchak/lingopad/internal/soundpad"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment, config, and backend checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{
		{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", cfg.Path)},
		checkHotkey(cfg.Config),
		checkAudioSelection(ctx, cfg.Config),
		checkWhisperModel(cfg.Config),
		checkBackend(ctx, "translation.backend", cfg.Config.Translation.BackendURL),
		checkBackend(ctx, "tts.backend", cfg.Config.TTS.BackendURL),
		checkSoundPad(ctx, cfg.Config),
	}
	return Report{Checks: checks}
}

// checkHotkey parses the configured binding without registering it, so
// doctor can run next to a live daemon.
func checkHotkey(cfg config.Config) Check {
	binding, err := hotkey.ParseBinding(cfg.App.Hotkey)
	if err != nil {
		return Check{Name: "hotkey", Pass: false, Message: err.Error()}
	}
	return Check{Name: "hotkey", Pass: true, Message: fmt.Sprintf("binding %s parses (%s mode)", binding, cfg.App.HotkeyMode)}
}

// checkAudioSelection runs live device selection to surface fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkWhisperModel verifies the recognition model file is on disk.
func checkWhisperModel(cfg config.Config) Check {
	path := asr.NewWhisper(cfg.Translation.ModelsDir, cfg.Translation.WhisperModel).ModelPath()
	info, err := os.Stat(path)
	if err != nil {
		return Check{Name: "whisper.model", Pass: false, Message: fmt.Sprintf("model file %s is missing; download it first", path)}
	}
	return Check{Name: "whisper.model", Pass: true, Message: fmt.Sprintf("%s (%d MiB)", path, info.Size()/(1<<20))}
}

// checkBackend probes an OpenAI-compatible backend's model listing.
func checkBackend(ctx context.Context, name string, baseURL string) Check {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return Check{Name: name, Pass: false, Message: "backend URL is empty"}
	}

	url := strings.TrimRight(base, "/") + "/models"
	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("bad URL %q: %v", url, err)}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("reachable at %s", base)}
}

// checkSoundPad probes the playback pipe, honoring auto-start config.
func checkSoundPad(ctx context.Context, cfg config.Config) Check {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	router := soundpad.NewRouter(cfg.SoundPad, nil)
	defer router.Close()

	if err := router.Probe(probeCtx); err != nil {
		return Check{Name: "soundpad", Pass: false, Message: err.Error()}
	}
	return Check{Name: "soundpad", Pass: true, Message: fmt.Sprintf("answering on %s", cfg.SoundPad.PipePath)}
}
