package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const captureSampleRate = 16000

var (
	// ErrAlreadyRecording rejects Start while a capture owns the microphone.
	ErrAlreadyRecording = errors.New("audio capture already in progress")
	// ErrNotRecording rejects Stop when no capture is active.
	ErrNotRecording = errors.New("no audio capture in progress")
)

// Recorder owns the microphone for at most one capture at a time and turns
// each capture into a finite Clip. The device handle is released on every
// exit path, including Abort.
type Recorder struct {
	input    string
	fallback string

	mu        sync.Mutex
	active    *capture
	selection Selection
}

// NewRecorder builds a recorder with the configured input preferences.
func NewRecorder(input string, fallback string) *Recorder {
	return &Recorder{input: input, fallback: fallback}
}

// Start resolves the capture device and begins accumulating samples.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.active != nil {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	r.mu.Unlock()

	selection, err := SelectDevice(ctx, r.input, r.fallback)
	if err != nil {
		return err
	}

	cap, err := startCapture(selection.Device)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		// Lost a race with a concurrent Start; give the mic back.
		cap.close()
		return ErrAlreadyRecording
	}
	r.active = cap
	r.selection = selection
	return nil
}

// Stop ends the capture, releases the microphone, and returns the clip.
func (r *Recorder) Stop() (Clip, error) {
	r.mu.Lock()
	cap := r.active
	r.active = nil
	r.mu.Unlock()

	if cap == nil {
		return Clip{}, ErrNotRecording
	}

	raw := cap.close()
	return ClipFromPCM16(raw, captureSampleRate, 1), nil
}

// Abort discards any in-progress capture and releases the microphone.
// Aborting an idle recorder is a no-op.
func (r *Recorder) Abort() {
	r.mu.Lock()
	cap := r.active
	r.active = nil
	r.mu.Unlock()

	if cap != nil {
		cap.close()
	}
}

// Recording reports whether a capture currently owns the microphone.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Selection returns the device resolved by the most recent Start.
func (r *Recorder) Selection() Selection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selection
}

// capture accumulates raw s16 PCM from one Pulse record stream.
type capture struct {
	client *pulse.Client
	stream *pulse.RecordStream

	mu      sync.Mutex
	rawPCM  []byte
	stopped bool
}

// startCapture opens a 16kHz mono s16 record stream on the selected device.
func startCapture(device Device) (*capture, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("lingopad"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}

	source, err := client.SourceByID(device.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", device.ID, err)
	}

	cap := &capture{client: client}
	writer := pulse.NewWriter(writerFunc(cap.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(captureSampleRate),
		pulse.RecordMediaName("lingopad capture"),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	cap.stream = stream
	stream.Start()
	return cap, nil
}

// onPCM appends raw Pulse frames until the capture is stopped.
func (c *capture) onPCM(buffer []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return 0, io.EOF
	}
	c.rawPCM = append(c.rawPCM, buffer...)
	return len(buffer), nil
}

// close stops the stream, releases the Pulse client, and returns the PCM.
func (c *capture) close() []byte {
	c.mu.Lock()
	if c.stopped {
		raw := c.rawPCM
		c.mu.Unlock()
		return raw
	}
	c.stopped = true
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rawPCM
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
