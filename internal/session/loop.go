package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/akorchak/lingopad/internal/fsm"
	"github.com/akorchak/lingopad/internal/hotkey"
	"github.com/akorchak/lingopad/internal/ipc"
)

// Loop is the resident runner: it consumes hotkey edges, runs sessions
// one at a time, and serves the control socket commands. A press that
// lands while a session is still active is coalesced into at most one
// pending start.
type Loop struct {
	logger     *slog.Logger
	controller *Controller
	listener   hotkey.Listener

	mu            sync.Mutex
	cancelSession context.CancelFunc
	shutdown      chan struct{}
	shutdownOnce  sync.Once
}

// NewLoop wires the resident runner.
func NewLoop(logger *slog.Logger, controller *Controller, listener hotkey.Listener) *Loop {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		logger:     logger,
		controller: controller,
		listener:   listener,
		shutdown:   make(chan struct{}),
	}
}

// Run blocks until the context is cancelled or Shutdown is called. An
// active session is cancelled and drained before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.listener.Register(); err != nil {
		return fmt.Errorf("register hotkey: %w", err)
	}
	defer l.listener.Unregister()

	var (
		active  chan Result
		pending bool
	)

	drain := func() {
		if active == nil {
			return
		}
		l.cancelActive()
		<-active
		active = nil
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			return nil
		case <-l.shutdown:
			drain()
			return nil
		case <-l.listener.Keydown():
			if active != nil {
				pending = true
				continue
			}
			active = l.startSession(ctx)
		case <-l.listener.Keyup():
			if l.controller.RequestStop() {
				continue
			}
			// Released before the queued start could run.
			pending = false
		case result := <-active:
			active = nil
			l.logResult(result)
			if pending {
				pending = false
				active = l.startSession(ctx)
			}
		}
	}
}

// startSession launches one controller run on its own cancellable
// context and returns the completion channel.
func (l *Loop) startSession(ctx context.Context) chan Result {
	sessionCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.cancelSession = cancel
	l.mu.Unlock()

	done := make(chan Result, 1)
	go func() {
		defer cancel()
		done <- l.controller.Run(sessionCtx)

		l.mu.Lock()
		l.cancelSession = nil
		l.mu.Unlock()
	}()
	return done
}

// cancelActive aborts the in-flight session, whichever stage it is in.
func (l *Loop) cancelActive() bool {
	// A recording session honors the cancel action directly; later
	// stages unwind through context cancellation.
	if l.controller.RequestCancel() {
		return true
	}

	l.mu.Lock()
	cancel := l.cancelSession
	l.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// Shutdown asks Run to stop after draining the active session.
func (l *Loop) Shutdown() {
	l.shutdownOnce.Do(func() { close(l.shutdown) })
}

// Handle serves control socket commands against the running loop.
func (l *Loop) Handle(_ context.Context, req ipc.Request) ipc.Response {
	state := string(l.controller.State())
	switch req.Command {
	case "status":
		return ipc.Response{OK: true, State: state, Message: "status"}
	case "stop":
		if l.controller.RequestStop() {
			return ipc.Response{OK: true, State: state, Message: "stop requested"}
		}
		return ipc.Response{OK: false, State: state, Error: fmt.Sprintf("cannot stop from state %s", state)}
	case "cancel":
		if l.controller.State() == fsm.StateIdle {
			return ipc.Response{OK: false, State: state, Error: "no active session"}
		}
		if l.cancelActive() {
			return ipc.Response{OK: true, State: state, Message: "cancel requested"}
		}
		return ipc.Response{OK: false, State: state, Error: "no active session"}
	case "shutdown":
		l.Shutdown()
		return ipc.Response{OK: true, State: state, Message: "shutting down"}
	default:
		return ipc.Response{OK: false, State: state, Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// logResult records one completed session at a level matching its outcome.
func (l *Loop) logResult(result Result) {
	attrs := []any{
		"state", string(result.State),
		"duration", result.FinishedAt.Sub(result.StartedAt).String(),
		"clip", result.ClipDuration.String(),
	}
	switch {
	case result.Err != nil:
		l.logger.Error("session failed", append(attrs, "stage", string(FailedStage(result.Err)), "error", result.Err.Error())...)
	case result.Cancelled:
		l.logger.Info("session cancelled", attrs...)
	case result.NoSpeech:
		l.logger.Info("session ended with nothing to translate", attrs...)
	default:
		l.logger.Info("session complete", append(attrs,
			"source_text_len", len(result.SourceText),
			"translated_text_len", len(result.TranslatedText),
		)...)
	}
}
