package tts

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akorchak/lingopad/internal/audio"
	"github.com/akorchak/lingopad/internal/config"
)

func TestDefaultVoiceDeterministic(t *testing.T) {
	first, err := DefaultVoice("zh")
	require.NoError(t, err)
	require.Equal(t, "zh-CN-YunxiNeural", first)

	// Repeated lookups within a process must always agree.
	for i := 0; i < 5; i++ {
		again, err := DefaultVoice("zh")
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestDefaultVoiceUnknownLanguage(t *testing.T) {
	_, err := DefaultVoice("tlh")
	var notFound *VoiceNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Contains(t, err.Error(), "tlh")
}

func newTestEngine(t *testing.T, handler http.HandlerFunc) *Engine {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewEngine(config.TTSConfig{
		BackendURL: server.URL + "/v1",
		Model:      "tts-1",
	})
}

// pcm16 renders sample values as the little-endian byte payload a speech
// backend would return.
func pcm16(values ...int16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func TestSynthesizeDefaultVoiceAndSpeed(t *testing.T) {
	var gotVoice string
	var gotSpeed float64
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Voice string  `json:"voice"`
			Speed float64 `json:"speed"`
			Input string  `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotVoice = req.Voice
		gotSpeed = req.Speed
		require.Equal(t, "你好", req.Input)

		_, _ = w.Write(pcm16(8192, -8192))
	})

	clip, err := engine.Synthesize(context.Background(), "你好", Request{
		Lang: "zh", Rate: "-20%", Volume: "",
	})
	require.NoError(t, err)
	require.Equal(t, "zh-CN-YunxiNeural", gotVoice)
	require.InDelta(t, 0.8, gotSpeed, 1e-9)
	require.Len(t, clip.Samples, 2)
	require.Equal(t, pcmSampleRate, clip.SampleRate)
}

func TestSynthesizeExplicitVoiceUsedVerbatim(t *testing.T) {
	var gotVoice string
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Voice string `json:"voice"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotVoice = req.Voice
		_, _ = w.Write(pcm16(100))
	})

	_, err := engine.Synthesize(context.Background(), "hi", Request{
		Lang: "zh", Voice: "zh-CN-XiaoxiaoNeural",
	})
	require.NoError(t, err)
	require.Equal(t, "zh-CN-XiaoxiaoNeural", gotVoice)
}

func TestSynthesizeRejectedVoice(t *testing.T) {
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "unknown voice: nope", "type": "invalid_request_error"}}`))
	})

	_, err := engine.Synthesize(context.Background(), "hi", Request{Lang: "zh", Voice: "nope"})
	var notFound *VoiceNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "nope", notFound.Voice)
}

func TestSynthesizeAppliesVolumeGain(t *testing.T) {
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pcm16(16384, math.MaxInt16))
	})

	clip, err := engine.Synthesize(context.Background(), "hi", Request{
		Lang: "zh", Volume: "+30%",
	})
	require.NoError(t, err)
	require.Len(t, clip.Samples, 2)
	require.InDelta(t, 0.65, clip.Samples[0], 0.01)
	// Gain clamps instead of wrapping.
	require.InDelta(t, 1.0, clip.Samples[1], 1e-6)
}

func TestSynthesizeEmptyAudioIsError(t *testing.T) {
	engine := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := engine.Synthesize(context.Background(), "hi", Request{Lang: "zh"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no audio")
}

func TestEncodeWAVRoundTrip(t *testing.T) {
	clip := audio.Clip{
		Samples:    []float32{0, 0.5, -0.5, 1.0},
		SampleRate: 24000,
		Channels:   1,
	}

	encoded := EncodeWAV(clip)
	require.Len(t, encoded, 44+len(clip.Samples)*2)
	require.Equal(t, "RIFF", string(encoded[0:4]))
	require.Equal(t, "WAVE", string(encoded[8:12]))
	require.Equal(t, uint32(24000), binary.LittleEndian.Uint32(encoded[24:28]))
	require.Equal(t, uint32(len(clip.Samples)*2), binary.LittleEndian.Uint32(encoded[40:44]))

	decoded := audio.ClipFromPCM16(encoded[44:], 24000, 1)
	require.InDelta(t, 0.0, decoded.Samples[0], 1e-4)
	require.InDelta(t, 0.5, decoded.Samples[1], 1e-4)
	require.InDelta(t, -0.5, decoded.Samples[2], 1e-4)
	require.InDelta(t, 1.0, decoded.Samples[3], 1e-4)
}

func TestWriteWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	clip := audio.Clip{Samples: []float32{0.1}, SampleRate: 24000, Channels: 1}

	require.NoError(t, WriteWAVFile(path, clip))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, EncodeWAV(clip), content)
}
