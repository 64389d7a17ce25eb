package tts

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"

	"github.com/akorchak/lingopad/internal/audio"
)

// EncodeWAV renders a clip as a 16-bit PCM WAV payload for upload to the
// playback device.
func EncodeWAV(clip audio.Clip) []byte {
	channels := clip.Channels
	if channels <= 0 {
		channels = 1
	}
	const bitsPerSample = 16
	byteRate := clip.SampleRate * channels * (bitsPerSample / 8)
	blockAlign := channels * (bitsPerSample / 8)

	pcm := make([]byte, len(clip.Samples)*2)
	for i, sample := range clip.Samples {
		if sample > 1.0 {
			sample = 1.0
		}
		if sample < -1.0 {
			sample = -1.0
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(sample*math.MaxInt16)))
	}

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	header := make([]byte, 44)
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], []byte("WAVE"))
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(clip.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	buf.Write(header)
	buf.Write(pcm)
	return buf.Bytes()
}

// WriteWAVFile writes the encoded clip to path with owner-only permissions.
func WriteWAVFile(path string, clip audio.Clip) error {
	return os.WriteFile(path, EncodeWAV(clip), 0o600)
}
