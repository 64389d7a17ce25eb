package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClipDurationAndPeak(t *testing.T) {
	clip := Clip{
		Samples:    make([]float32, 16000),
		SampleRate: 16000,
		Channels:   1,
	}
	clip.Samples[100] = -0.75
	clip.Samples[200] = 0.5

	require.Equal(t, time.Second, clip.Duration())
	require.InDelta(t, 0.75, clip.Peak(), 1e-6)
	require.False(t, clip.Empty())
}

func TestClipZeroValues(t *testing.T) {
	var clip Clip
	require.Equal(t, time.Duration(0), clip.Duration())
	require.Equal(t, float32(0), clip.Peak())
	require.True(t, clip.Empty())
}

func TestClipFromPCM16(t *testing.T) {
	raw := make([]byte, 6)
	binary.LittleEndian.PutUint16(raw[0:2], uint16(int16(math.MaxInt16)))
	minPlusOne := int16(math.MinInt16 + 1)
	binary.LittleEndian.PutUint16(raw[2:4], uint16(minPlusOne))
	binary.LittleEndian.PutUint16(raw[4:6], 0)

	clip := ClipFromPCM16(raw, 16000, 1)
	require.Len(t, clip.Samples, 3)
	require.InDelta(t, 1.0, clip.Samples[0], 1e-4)
	require.InDelta(t, -1.0, clip.Samples[1], 1e-4)
	require.InDelta(t, 0.0, clip.Samples[2], 1e-6)
	require.Equal(t, 16000, clip.SampleRate)
}

func TestSelectDeviceFromListPrefersInputMatch(t *testing.T) {
	devices := []Device{
		{ID: "alsa_input.internal", Description: "Internal Microphone", Available: true, Default: true},
		{ID: "alsa_input.usb-headset", Description: "USB Headset", Available: true},
	}

	sel, err := selectDeviceFromList(devices, "headset", "default")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.usb-headset", sel.Device.ID)
	require.Empty(t, sel.Warning)
}

func TestSelectDeviceFromListFallsBackWhenMuted(t *testing.T) {
	devices := []Device{
		{ID: "alsa_input.internal", Description: "Internal Microphone", Available: true, Default: true},
		{ID: "alsa_input.usb-headset", Description: "USB Headset", Available: true, Muted: true},
	}

	sel, err := selectDeviceFromList(devices, "headset", "default")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.internal", sel.Device.ID)
	require.True(t, sel.Fallback)
	require.Contains(t, sel.Warning, "muted")
}

func TestSelectDeviceFromListErrors(t *testing.T) {
	_, err := selectDeviceFromList(nil, "default", "default")
	require.Error(t, err)

	devices := []Device{
		{ID: "alsa_input.internal", Description: "Internal Microphone", Available: true, Default: true},
	}
	_, err = selectDeviceFromList(devices, "nonexistent", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not match")

	muted := []Device{
		{ID: "a", Description: "A", Available: true, Muted: true, Default: true},
	}
	_, err = selectDeviceFromList(muted, "default", "default")
	require.Error(t, err)
}

func TestRecorderStopWithoutStart(t *testing.T) {
	recorder := NewRecorder("default", "default")
	_, err := recorder.Stop()
	require.ErrorIs(t, err, ErrNotRecording)
	require.False(t, recorder.Recording())

	// Aborting an idle recorder is a safe no-op.
	recorder.Abort()
}

func TestDescribeDevice(t *testing.T) {
	require.Equal(t, "USB Headset (usb-1)", DescribeDevice(Device{ID: "usb-1", Description: "USB Headset"}))
	require.Equal(t, "usb-1", DescribeDevice(Device{ID: "usb-1"}))
	require.Equal(t, "USB Headset", DescribeDevice(Device{Description: "USB Headset"}))
}
