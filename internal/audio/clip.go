package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Clip is one finite, in-memory recording: float32 samples with a known
// sample rate and channel count. A clip is owned by exactly one session.
type Clip struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Duration reports the clip length in wall time.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return time.Duration(float64(frames) / float64(c.SampleRate) * float64(time.Second))
}

// Peak reports the maximum absolute sample amplitude.
func (c Clip) Peak() float32 {
	var peak float32
	for _, s := range c.Samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// Empty reports whether the clip holds no audio at all.
func (c Clip) Empty() bool {
	return len(c.Samples) == 0
}

// ClipFromPCM16 converts raw little-endian s16 PCM into a float32 clip.
func ClipFromPCM16(raw []byte, sampleRate int, channels int) Clip {
	samples := make([]float32, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		v := int16(binary.LittleEndian.Uint16(raw[i : i+2]))
		samples = append(samples, float32(v)/float32(math.MaxInt16))
	}
	return Clip{Samples: samples, SampleRate: sampleRate, Channels: channels}
}
