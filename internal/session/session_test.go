package session

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akorchak/lingopad/internal/audio"
	"github.com/akorchak/lingopad/internal/fsm"
	"github.com/akorchak/lingopad/internal/translate"
	"github.com/akorchak/lingopad/internal/tts"
)

// speechClip returns a one-second clip loud enough to pass the silence
// gate.
func speechClip() audio.Clip {
	samples := make([]float32, 16000)
	for i := range samples {
		samples[i] = 0.5
	}
	return audio.Clip{Samples: samples, SampleRate: 16000, Channels: 1}
}

func silentClip() audio.Clip {
	return audio.Clip{Samples: make([]float32, 16000), SampleRate: 16000, Channels: 1}
}

func shortClip() audio.Clip {
	return audio.Clip{Samples: make([]float32, 160), SampleRate: 16000, Channels: 1}
}

type fakeRecorder struct {
	mu       sync.Mutex
	clip     audio.Clip
	startErr error
	stopErr  error
	started  bool
	stopped  bool
	aborted  bool
}

func (f *fakeRecorder) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeRecorder) Stop() (audio.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return f.clip, f.stopErr
}

func (f *fakeRecorder) Abort() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = true
}

func (f *fakeRecorder) wasAborted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.aborted
}

type fakeRecognizer struct {
	mu      sync.Mutex
	text    string
	err     error
	called  bool
	gotLang string
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ audio.Clip, lang string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = true
	f.gotLang = lang
	return f.text, f.err
}

func (f *fakeRecognizer) Close() error { return nil }

func (f *fakeRecognizer) wasCalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.called
}

type fakeTranslator struct {
	mu      sync.Mutex
	out     string
	err     error
	called  bool
	gotText string
	gotPair [2]string
}

func (f *fakeTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = true
	f.gotText = text
	f.gotPair = [2]string{source, target}
	return f.out, f.err
}

func (f *fakeTranslator) wasCalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.called
}

type fakeSynthesizer struct {
	mu     sync.Mutex
	clip   audio.Clip
	err    error
	gotReq tts.Request
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _ string, req tts.Request) (audio.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotReq = req
	return f.clip, f.err
}

type fakePlayer struct {
	mu     sync.Mutex
	err    error
	block  chan struct{}
	played []string
}

func (f *fakePlayer) Play(ctx context.Context, path string, _ time.Duration) error {
	f.mu.Lock()
	f.played = append(f.played, path)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func (f *fakePlayer) playedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

type fakeIndicator struct {
	mu            sync.Mutex
	failures      []string
	noSpeech      atomic.Int32
	stopCues      atomic.Int32
	completeCues  atomic.Int32
	cancelCues    atomic.Int32
	recordingSeen atomic.Int32
}

func (f *fakeIndicator) ShowRecording(context.Context)  { f.recordingSeen.Add(1) }
func (f *fakeIndicator) ShowProcessing(context.Context) {}
func (f *fakeIndicator) ShowNoSpeech(context.Context)   { f.noSpeech.Add(1) }
func (f *fakeIndicator) ShowFailure(_ context.Context, stage string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, stage)
}
func (f *fakeIndicator) CueStop(context.Context)     { f.stopCues.Add(1) }
func (f *fakeIndicator) CueComplete(context.Context) { f.completeCues.Add(1) }
func (f *fakeIndicator) CueCancel(context.Context)   { f.cancelCues.Add(1) }

func (f *fakeIndicator) failedStages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.failures...)
}

type fixture struct {
	ctrl        *Controller
	recorder    *fakeRecorder
	recognizer  *fakeRecognizer
	translator  *fakeTranslator
	synthesizer *fakeSynthesizer
	player      *fakePlayer
	indicator   *fakeIndicator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		recorder:    &fakeRecorder{clip: speechClip()},
		recognizer:  &fakeRecognizer{text: "привет мир"},
		translator:  &fakeTranslator{out: "你好世界"},
		synthesizer: &fakeSynthesizer{clip: speechClip()},
		player:      &fakePlayer{},
		indicator:   &fakeIndicator{},
	}
	cfg := Config{
		SourceLang:      "ru",
		TargetLang:      "zh",
		MinClipDuration: 800 * time.Millisecond,
		MaxClipDuration: time.Minute,
		Rate:            "-20%",
		Volume:          "+30%",
		TempDir:         t.TempDir(),
	}
	f.ctrl = NewController(cfg, nil, Pipeline{
		Recorder:    f.recorder,
		Recognizer:  f.recognizer,
		Translator:  f.translator,
		Synthesizer: f.synthesizer,
		Player:      f.player,
	}, f.indicator)
	return f
}

func waitForState(t *testing.T, ctrl *Controller, want fsm.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ctrl.State() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("controller never reached state %s (stuck at %s)", want, ctrl.State())
}

func runAndStop(t *testing.T, f *fixture) Result {
	t.Helper()

	resultCh := make(chan Result, 1)
	go func() { resultCh <- f.ctrl.Run(context.Background()) }()

	waitForState(t, f.ctrl, fsm.StateRecording)
	require.True(t, f.ctrl.RequestStop())

	select {
	case result := <-resultCh:
		return result
	case <-time.After(5 * time.Second):
		t.Fatal("session never finished")
		return Result{}
	}
}

func TestRunFullPipeline(t *testing.T) {
	f := newFixture(t)
	result := runAndStop(t, f)

	require.NoError(t, result.Err)
	require.Equal(t, fsm.StateIdle, result.State)
	require.Equal(t, "привет мир", result.SourceText)
	require.Equal(t, "你好世界", result.TranslatedText)
	require.False(t, result.NoSpeech)
	require.False(t, result.Cancelled)

	require.Equal(t, "ru", f.recognizer.gotLang)
	require.Equal(t, [2]string{"ru", "zh"}, f.translator.gotPair)
	require.Equal(t, "привет мир", f.translator.gotText)
	require.Equal(t, tts.Request{Lang: "zh", Rate: "-20%", Volume: "+30%"}, f.synthesizer.gotReq)

	played := f.player.playedPaths()
	require.Len(t, played, 1)
	// The temp WAV is gone once playback finishes.
	_, statErr := os.Stat(played[0])
	require.True(t, os.IsNotExist(statErr))

	require.Equal(t, int32(1), f.indicator.stopCues.Load())
	require.Equal(t, int32(1), f.indicator.completeCues.Load())
	require.Equal(t, int32(0), f.indicator.cancelCues.Load())
}

func TestRunShortClipSkipsPipeline(t *testing.T) {
	f := newFixture(t)
	f.recorder.clip = shortClip()

	result := runAndStop(t, f)
	require.NoError(t, result.Err)
	require.True(t, result.NoSpeech)
	require.Equal(t, fsm.StateIdle, result.State)
	require.False(t, f.recognizer.wasCalled())
	require.Equal(t, int32(1), f.indicator.noSpeech.Load())
}

func TestRunSilentClipSkipsPipeline(t *testing.T) {
	f := newFixture(t)
	f.recorder.clip = silentClip()

	result := runAndStop(t, f)
	require.NoError(t, result.Err)
	require.True(t, result.NoSpeech)
	require.False(t, f.recognizer.wasCalled())
}

func TestRunEmptyTranscriptSkipsTranslation(t *testing.T) {
	f := newFixture(t)
	f.recognizer.text = "   "

	result := runAndStop(t, f)
	require.NoError(t, result.Err)
	require.True(t, result.NoSpeech)
	require.Equal(t, fsm.StateIdle, result.State)
	require.False(t, f.translator.wasCalled())
	require.Equal(t, int32(1), f.indicator.noSpeech.Load())
}

func TestRunStartFailure(t *testing.T) {
	f := newFixture(t)
	f.recorder.startErr = errors.New("no usable source")

	result := f.ctrl.Run(context.Background())
	require.Error(t, result.Err)
	require.Equal(t, fsm.StateRecording, FailedStage(result.Err))
	require.Equal(t, fsm.StateIdle, result.State)
	require.Equal(t, []string{"recording"}, f.indicator.failedStages())
}

func TestRunTranslationModelMissing(t *testing.T) {
	f := newFixture(t)
	f.translator.err = &translate.ModelNotFoundError{Source: "ru", Target: "zh", Model: "qwen2.5:3b"}

	result := runAndStop(t, f)
	require.Error(t, result.Err)
	require.Equal(t, fsm.StateTranslating, FailedStage(result.Err))

	var modelErr *translate.ModelNotFoundError
	require.ErrorAs(t, result.Err, &modelErr)

	// The machine recovers so the next press can start cleanly.
	require.Equal(t, fsm.StateIdle, result.State)
	require.Equal(t, []string{"translating"}, f.indicator.failedStages())
	require.Empty(t, f.player.playedPaths())
}

func TestRunSynthesisFailure(t *testing.T) {
	f := newFixture(t)
	f.synthesizer.err = errors.New("backend down")

	result := runAndStop(t, f)
	require.Error(t, result.Err)
	require.Equal(t, fsm.StateSynthesizing, FailedStage(result.Err))
	require.Equal(t, fsm.StateIdle, result.State)
}

func TestRunPlaybackFailure(t *testing.T) {
	f := newFixture(t)
	f.player.err = errors.New("pipe broken")

	result := runAndStop(t, f)
	require.Error(t, result.Err)
	require.Equal(t, fsm.StatePlaying, FailedStage(result.Err))
	require.Equal(t, fsm.StateIdle, result.State)
	require.Equal(t, int32(0), f.indicator.completeCues.Load())

	// Failed playback still cleans up the temp WAV.
	played := f.player.playedPaths()
	require.Len(t, played, 1)
	_, statErr := os.Stat(played[0])
	require.True(t, os.IsNotExist(statErr))
}

func TestRunCancelDuringRecording(t *testing.T) {
	f := newFixture(t)

	resultCh := make(chan Result, 1)
	go func() { resultCh <- f.ctrl.Run(context.Background()) }()

	waitForState(t, f.ctrl, fsm.StateRecording)
	require.True(t, f.ctrl.RequestCancel())

	result := <-resultCh
	require.NoError(t, result.Err)
	require.True(t, result.Cancelled)
	require.Equal(t, fsm.StateIdle, result.State)
	require.True(t, f.recorder.wasAborted())
	require.False(t, f.recognizer.wasCalled())
	require.Equal(t, int32(1), f.indicator.cancelCues.Load())
}

func TestRunContextCancelDuringPlayback(t *testing.T) {
	f := newFixture(t)
	f.player.block = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	resultCh := make(chan Result, 1)
	go func() { resultCh <- f.ctrl.Run(ctx) }()

	waitForState(t, f.ctrl, fsm.StateRecording)
	require.True(t, f.ctrl.RequestStop())
	waitForState(t, f.ctrl, fsm.StatePlaying)
	cancel()

	result := <-resultCh
	require.True(t, result.Cancelled)
	require.Equal(t, fsm.StateIdle, result.State)

	played := f.player.playedPaths()
	require.Len(t, played, 1)
	_, statErr := os.Stat(played[0])
	require.True(t, os.IsNotExist(statErr))
}

func TestRunRejectsConcurrentStart(t *testing.T) {
	f := newFixture(t)

	resultCh := make(chan Result, 1)
	go func() { resultCh <- f.ctrl.Run(context.Background()) }()
	waitForState(t, f.ctrl, fsm.StateRecording)

	second := f.ctrl.Run(context.Background())
	require.Error(t, second.Err)
	require.Contains(t, second.Err.Error(), "invalid transition")

	require.True(t, f.ctrl.RequestStop())
	first := <-resultCh
	require.NoError(t, first.Err)
}

func TestRunMaxDurationForcesStop(t *testing.T) {
	f := newFixture(t)
	f.ctrl.cfg.MaxClipDuration = 30 * time.Millisecond

	result := f.ctrl.Run(context.Background())
	require.NoError(t, result.Err)
	require.Equal(t, fsm.StateIdle, result.State)
	require.Equal(t, "你好世界", result.TranslatedText)
}

func TestRequestStopGuards(t *testing.T) {
	f := newFixture(t)
	require.False(t, f.ctrl.RequestStop())
	require.False(t, f.ctrl.RequestCancel())
}
