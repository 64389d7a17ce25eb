package soundpad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/akorchak/lingopad/internal/config"
)

// ErrUnavailable reports that SoundPad could not be reached even after a
// reconnect attempt. Sessions surface it as a playback-stage failure.
var ErrUnavailable = errors.New("soundpad unavailable")

// playbackTailPad absorbs SoundPad's start latency so short clips are not
// cut off by the post-playback cleanup.
const playbackTailPad = 500 * time.Millisecond

// autoStartPollInterval paces readiness probes after launching SoundPad.
const (
	autoStartPollInterval = 500 * time.Millisecond
	autoStartWait         = 15 * time.Second
)

type dialFunc func(path string) (io.ReadWriteCloser, error)

// Router owns the SoundPad connection and runs the add, play, wait,
// remove lifecycle for each synthesized clip. All methods are safe for
// concurrent use, though sessions call Play sequentially.
type Router struct {
	cfg    config.SoundPadConfig
	logger *slog.Logger
	dial   dialFunc

	mu     sync.Mutex
	client *Client
}

// NewRouter builds a router that dials the configured pipe on demand.
func NewRouter(cfg config.SoundPadConfig, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Router{cfg: cfg, logger: logger, dial: dialPipe}
}

// newRouterWithDial is the test seam for substituting the pipe dialer.
func newRouterWithDial(cfg config.SoundPadConfig, logger *slog.Logger, dial dialFunc) *Router {
	return &Router{cfg: cfg, logger: logger, dial: dial}
}

// EnsureConnected verifies the pipe is live, dialing or redialing as
// needed. When auto-start is enabled and the dial fails, the configured
// executable is launched and the dial retried until SoundPad answers.
func (r *Router) EnsureConnected(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureConnectedLocked(ctx)
}

func (r *Router) ensureConnectedLocked(ctx context.Context) error {
	if r.client != nil {
		if _, err := r.client.SoundFileCount(); err == nil {
			return nil
		}
		r.logger.Warn("soundpad connection went stale, redialing")
		r.client.Close()
		r.client = nil
	}

	if err := r.connectLocked(); err == nil {
		return nil
	} else if !r.cfg.AutoStart || r.cfg.ExecutablePath == "" {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	r.logger.Info("launching soundpad", "path", r.cfg.ExecutablePath)
	cmd := exec.Command(r.cfg.ExecutablePath)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start %s: %v", ErrUnavailable, r.cfg.ExecutablePath, err)
	}
	go cmd.Wait()

	deadline := time.Now().Add(autoStartWait)
	for {
		if err := r.connectLocked(); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: no response within %s of launch", ErrUnavailable, autoStartWait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(autoStartPollInterval):
		}
	}
}

func (r *Router) connectLocked() error {
	conn, err := r.dial(r.cfg.PipePath)
	if err != nil {
		return err
	}
	client := NewClient(conn)
	if _, err := client.SoundFileCount(); err != nil {
		client.Close()
		return err
	}
	r.client = client
	return nil
}

// Play routes the WAV file at path through SoundPad and blocks until the
// clip has had time to finish. The entry is removed from the sound list
// afterward so the list does not accumulate temp files. A mid-sequence
// pipe failure gets exactly one reconnect and retry of the full
// sequence before ErrUnavailable.
func (r *Router) Play(ctx context.Context, path string, duration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureConnectedLocked(ctx); err != nil {
		return err
	}

	if delay := time.Duration(r.cfg.PlaybackDelayMS) * time.Millisecond; delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	err := r.playLocked(ctx, path, duration)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	r.logger.Warn("playback sequence failed, reconnecting once", "error", err)
	if r.client != nil {
		r.client.Close()
		r.client = nil
	}
	if connErr := r.ensureConnectedLocked(ctx); connErr != nil {
		return connErr
	}
	if err := r.playLocked(ctx, path, duration); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Router) playLocked(ctx context.Context, path string, duration time.Duration) error {
	if r.cfg.ForceStopBeforePlay {
		if err := r.client.StopSound(); err != nil {
			return err
		}
	}

	if err := r.client.AddSound(path); err != nil {
		return err
	}

	// The freshly added entry sits at the tail of the list, so the
	// current count is its 1-based index.
	index, err := r.client.SoundFileCount()
	if err != nil {
		return err
	}
	if index < 1 {
		return fmt.Errorf("sound list empty after add")
	}

	if err := r.client.PlaySound(index, r.cfg.PlayInSpeakers, r.cfg.PlayInMicrophone); err != nil {
		return err
	}

	wait := duration + playbackTailPad
	if limit := time.Duration(r.cfg.PlaybackTimeoutMS) * time.Millisecond; limit > 0 && wait > limit {
		wait = limit
	}
	select {
	case <-ctx.Done():
		r.client.StopSound()
		r.removeLocked(index)
		return ctx.Err()
	case <-time.After(wait):
	}

	return r.removeLocked(index)
}

func (r *Router) removeLocked(index int) error {
	if err := r.client.SelectIndex(index); err != nil {
		return err
	}
	return r.client.RemoveSelectedEntries(false)
}

// Probe reports whether SoundPad currently answers on the pipe without
// mutating router state beyond establishing the connection.
func (r *Router) Probe(ctx context.Context) error {
	return r.EnsureConnected(ctx)
}

// Close drops the pipe connection.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}
