// Package session coordinates one hotkey-to-playback translation
// lifecycle and the resident loop that runs them.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/akorchak/lingopad/internal/audio"
	"github.com/akorchak/lingopad/internal/fsm"
	"github.com/akorchak/lingopad/internal/tts"
)

type action int

const (
	actionStop action = iota + 1
	actionCancel
)

// noSpeechPeak is the absolute sample amplitude below which a clip is
// treated as silence without invoking recognition.
const noSpeechPeak = 0.01

// Config carries the per-session parameters resolved from app config.
type Config struct {
	SourceLang string
	TargetLang string

	MinClipDuration time.Duration
	MaxClipDuration time.Duration

	Voice  string
	Rate   string
	Volume string

	// TempDir receives the synthesized WAV for the playback handoff;
	// empty means the OS temp directory.
	TempDir string
}

// Result is the complete lifecycle output of one Run invocation.
type Result struct {
	State          fsm.State
	SourceText     string
	TranslatedText string
	NoSpeech       bool
	Cancelled      bool
	Err            error
	ClipDuration   time.Duration
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Indicator is the session-facing subset of indicator behavior.
type Indicator interface {
	ShowRecording(context.Context)
	ShowProcessing(context.Context)
	ShowNoSpeech(context.Context)
	ShowFailure(ctx context.Context, stage string)
	CueStop(context.Context)
	CueComplete(context.Context)
	CueCancel(context.Context)
}

// noopIndicator preserves session flow when no indicator is wired.
type noopIndicator struct{}

func (noopIndicator) ShowRecording(context.Context)       {}
func (noopIndicator) ShowProcessing(context.Context)      {}
func (noopIndicator) ShowNoSpeech(context.Context)        {}
func (noopIndicator) ShowFailure(context.Context, string) {}
func (noopIndicator) CueStop(context.Context)             {}
func (noopIndicator) CueComplete(context.Context)         {}
func (noopIndicator) CueCancel(context.Context)           {}

// Controller orchestrates session state transitions and side effects.
type Controller struct {
	cfg       Config
	logger    *slog.Logger
	pipeline  Pipeline
	indicator Indicator

	mu    sync.RWMutex
	state fsm.State

	actions chan action
}

// NewController constructs a session controller.
func NewController(cfg Config, logger *slog.Logger, pipeline Pipeline, ind Indicator) *Controller {
	if ind == nil {
		ind = noopIndicator{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		cfg:       cfg,
		logger:    logger,
		pipeline:  pipeline,
		indicator: ind,
		state:     fsm.StateIdle,
		actions:   make(chan action, 1),
	}
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// transition applies one FSM event to the controller state.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// RequestStop enqueues a stop for the active recording. It reports
// whether the current state accepted the request.
func (c *Controller) RequestStop() bool {
	if c.State() != fsm.StateRecording {
		return false
	}
	select {
	case c.actions <- actionStop:
	default:
	}
	return true
}

// RequestCancel enqueues a cancel for the active recording. Later
// stages are cancelled through the session context instead.
func (c *Controller) RequestCancel() bool {
	if c.State() != fsm.StateRecording {
		return false
	}
	select {
	case c.actions <- actionCancel:
	default:
	}
	return true
}

// Run executes one lifecycle from hotkey press to playback completion.
// The context governs the whole session; cancelling it aborts whichever
// stage is active and releases the microphone and playback resources.
func (c *Controller) Run(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}
	finish := func() Result {
		result.State = c.State()
		result.FinishedAt = time.Now()
		return result
	}

	if err := c.transition(fsm.EventStart); err != nil {
		result.Err = err
		return finish()
	}

	c.indicator.ShowRecording(ctx)

	if err := c.pipeline.Recorder.Start(ctx); err != nil {
		return c.fail(&result, finish, fsm.StateRecording, err)
	}

	clip, proceed := c.awaitStop(ctx, &result, finish)
	if !proceed {
		return finish()
	}
	result.ClipDuration = clip.Duration()

	// A too-short or silent clip means the key was tapped by accident.
	if clip.Duration() < c.cfg.MinClipDuration || clip.Peak() < noSpeechPeak {
		return c.quietFinish(&result, finish, fsm.EventEmpty)
	}

	c.indicator.ShowProcessing(ctx)

	text, err := c.pipeline.Recognizer.Recognize(ctx, clip, c.cfg.SourceLang)
	if err != nil {
		if ctx.Err() != nil {
			return c.cancelFinish(&result, finish)
		}
		return c.fail(&result, finish, fsm.StateTranscribing, err)
	}
	result.SourceText = text
	if strings.TrimSpace(text) == "" {
		return c.quietFinish(&result, finish, fsm.EventEmpty)
	}
	if err := c.transition(fsm.EventTranscribed); err != nil {
		result.Err = err
		return finish()
	}

	translated, err := c.pipeline.Translator.Translate(ctx, text, c.cfg.SourceLang, c.cfg.TargetLang)
	if err != nil {
		if ctx.Err() != nil {
			return c.cancelFinish(&result, finish)
		}
		return c.fail(&result, finish, fsm.StateTranslating, err)
	}
	result.TranslatedText = translated
	if err := c.transition(fsm.EventTranslated); err != nil {
		result.Err = err
		return finish()
	}

	voiced, err := c.pipeline.Synthesizer.Synthesize(ctx, translated, tts.Request{
		Lang:   c.cfg.TargetLang,
		Voice:  c.cfg.Voice,
		Rate:   c.cfg.Rate,
		Volume: c.cfg.Volume,
	})
	if err != nil {
		if ctx.Err() != nil {
			return c.cancelFinish(&result, finish)
		}
		return c.fail(&result, finish, fsm.StateSynthesizing, err)
	}
	if err := c.transition(fsm.EventSynthesized); err != nil {
		result.Err = err
		return finish()
	}

	wavPath, err := c.writeClip(voiced)
	if err != nil {
		return c.fail(&result, finish, fsm.StatePlaying, err)
	}
	defer os.Remove(wavPath)

	if err := c.pipeline.Player.Play(ctx, wavPath, voiced.Duration()); err != nil {
		if ctx.Err() != nil {
			return c.cancelFinish(&result, finish)
		}
		return c.fail(&result, finish, fsm.StatePlaying, err)
	}

	c.indicator.CueComplete(context.Background())
	if err := c.transition(fsm.EventPlayed); err != nil {
		result.Err = err
		return finish()
	}
	return finish()
}

// awaitStop blocks while recording until a stop or cancel arrives. The
// second return is false when the session is already finished.
func (c *Controller) awaitStop(ctx context.Context, result *Result, finish func() Result) (clip audio.Clip, proceed bool) {
	var maxTimer <-chan time.Time
	if c.cfg.MaxClipDuration > 0 {
		timer := time.NewTimer(c.cfg.MaxClipDuration)
		defer timer.Stop()
		maxTimer = timer.C
	}

	stop := func() (audio.Clip, bool) {
		if err := c.transition(fsm.EventStop); err != nil {
			result.Err = err
			return audio.Clip{}, false
		}
		c.indicator.CueStop(context.Background())
		clip, err := c.pipeline.Recorder.Stop()
		if err != nil {
			c.fail(result, finish, fsm.StateRecording, err)
			return audio.Clip{}, false
		}
		return clip, true
	}

	select {
	case <-ctx.Done():
		c.pipeline.Recorder.Abort()
		c.cancelFinish(result, finish)
		return audio.Clip{}, false
	case <-maxTimer:
		// The cap bounds runaway recordings when the release is missed.
		c.logger.Warn("recording hit maximum duration, stopping", "max", c.cfg.MaxClipDuration)
		return stop()
	case a := <-c.actions:
		switch a {
		case actionCancel:
			c.pipeline.Recorder.Abort()
			c.cancelFinish(result, finish)
			return audio.Clip{}, false
		case actionStop:
			return stop()
		default:
			c.pipeline.Recorder.Abort()
			result.Err = fmt.Errorf("unknown action %d", a)
			c.toErrorAndReset()
			return audio.Clip{}, false
		}
	}
}

// fail records a stage failure, shows it, and resets the machine.
func (c *Controller) fail(result *Result, finish func() Result, stage fsm.State, err error) Result {
	result.Err = failAt(stage, err)
	c.indicator.ShowFailure(context.Background(), string(stage))
	c.logger.Error("session failed", "stage", string(stage), "error", err.Error())
	c.toErrorAndReset()
	return finish()
}

// quietFinish completes a session that produced nothing to translate.
func (c *Controller) quietFinish(result *Result, finish func() Result, event fsm.Event) Result {
	result.NoSpeech = true
	c.indicator.ShowNoSpeech(context.Background())
	if err := c.transition(event); err != nil {
		result.Err = err
	}
	return finish()
}

// cancelFinish completes a cancelled session back to idle.
func (c *Controller) cancelFinish(result *Result, finish func() Result) Result {
	result.Cancelled = true
	c.indicator.CueCancel(context.Background())
	_ = c.transition(fsm.EventCancel)
	return finish()
}

// toErrorAndReset transitions to error and back to idle best-effort.
func (c *Controller) toErrorAndReset() {
	_ = c.transition(fsm.EventFail)
	_ = c.transition(fsm.EventReset)
}

// writeClip lands the synthesized audio as a temp WAV for the playback
// device, which only accepts files.
func (c *Controller) writeClip(clip audio.Clip) (string, error) {
	dir := c.cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "lingopad-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := tts.WriteWAVFile(path, clip); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
