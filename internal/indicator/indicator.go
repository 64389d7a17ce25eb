// Package indicator surfaces session state through desktop notifications
// and short audio cues.
package indicator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
)

// Controller is the session-facing indicator contract.
type Controller interface {
	ShowRecording(context.Context)
	ShowProcessing(context.Context)
	ShowNoSpeech(context.Context)
	ShowFailure(ctx context.Context, stage string)
	CueStop(context.Context)
	CueComplete(context.Context)
	CueCancel(context.Context)
}

// Desktop notifies through the freedesktop notification daemon and plays
// synthesized cues through the default output device.
type Desktop struct {
	logger *slog.Logger

	soundMu sync.Mutex
}

const appTitle = "LingoPad"

// NewDesktop creates the runtime indicator.
func NewDesktop(logger *slog.Logger) *Desktop {
	return &Desktop{logger: logger}
}

// ShowRecording signals capture start and emits the start cue.
func (d *Desktop) ShowRecording(ctx context.Context) {
	d.playCue(cueStart)
	d.notify(ctx, msgRecording)
}

// ShowProcessing signals that a captured clip is moving through the
// recognition and translation stages.
func (d *Desktop) ShowProcessing(ctx context.Context) {
	d.notify(ctx, msgProcessing)
}

// ShowNoSpeech signals that the clip contained nothing to translate.
func (d *Desktop) ShowNoSpeech(ctx context.Context) {
	d.notify(ctx, msgNoSpeech)
}

// ShowFailure displays the stage-specific failure message and emits the
// failure cue.
func (d *Desktop) ShowFailure(ctx context.Context, stage string) {
	d.playCue(cueFail)
	d.notify(ctx, failureText(stage))
}

// CueStop emits the capture-stopped cue.
func (d *Desktop) CueStop(context.Context) {
	d.playCue(cueStop)
}

// CueComplete emits the played-through cue.
func (d *Desktop) CueComplete(context.Context) {
	d.playCue(cueComplete)
}

// CueCancel emits the cancel cue.
func (d *Desktop) CueCancel(context.Context) {
	d.playCue(cueCancel)
}

// notify dispatches a notification without blocking the session; daemon
// hiccups are logged, never surfaced.
func (d *Desktop) notify(ctx context.Context, text string) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := beeep.Notify(appTitle, text, ""); err != nil {
			d.log("desktop notification failed", err)
		}
	}()
	select {
	case <-done:
	case <-ctx.Done():
	case <-time.After(400 * time.Millisecond):
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (d *Desktop) playCue(kind cueKind) {
	go func() {
		d.soundMu.Lock()
		defer d.soundMu.Unlock()
		if err := emitCue(kind); err != nil {
			d.log("audio cue failed", err)
		}
	}()
}

func (d *Desktop) log(message string, err error) {
	if d.logger == nil || err == nil {
		return
	}
	d.logger.Debug(message, "error", err.Error())
}
