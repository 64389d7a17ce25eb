package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/jfreymuth/pulse"
)

type cueKind int

const (
	cueStart cueKind = iota + 1
	cueStop
	cueComplete
	cueCancel
	cueFail
)

const cueSampleRate = 16000

type tone struct {
	hz       float64
	duration time.Duration
}

const cueVolume = 0.18

// Cue tones are synthesized once at init; each cue is a short one- or
// two-note motif so states are distinguishable by ear.
var cuePCM = map[cueKind][]int16{
	cueStart:    renderTones(tone{hz: 880, duration: 70 * time.Millisecond}, tone{hz: 1175, duration: 70 * time.Millisecond}),
	cueStop:     renderTones(tone{hz: 620, duration: 120 * time.Millisecond}),
	cueComplete: renderTones(tone{hz: 740, duration: 65 * time.Millisecond}, tone{hz: 988, duration: 90 * time.Millisecond}),
	cueCancel:   renderTones(tone{hz: 480, duration: 75 * time.Millisecond}, tone{hz: 360, duration: 90 * time.Millisecond}),
	cueFail:     renderTones(tone{hz: 330, duration: 110 * time.Millisecond}, tone{hz: 262, duration: 140 * time.Millisecond}),
}

func emitCue(kind cueKind) error {
	samples := cuePCM[kind]
	if len(samples) == 0 {
		return nil
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("lingopad"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if cursor >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueSampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("lingopad cue"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue stream: %w", err)
	}
	return nil
}

// renderTones concatenates the tones with a short silence between them.
func renderTones(tones ...tone) []int16 {
	gap := durationSamples(22 * time.Millisecond)

	var pcm []int16
	for i, t := range tones {
		pcm = append(pcm, renderTone(t)...)
		if i < len(tones)-1 {
			pcm = append(pcm, make([]int16, gap)...)
		}
	}
	return pcm
}

// renderTone synthesizes a sine burst with a short attack and release
// ramp so the cue does not click.
func renderTone(t tone) []int16 {
	n := durationSamples(t.duration)
	if n <= 0 || t.hz <= 0 {
		return nil
	}

	ramp := n / 10
	if limit := cueSampleRate / 200; ramp > limit {
		ramp = limit
	}
	if ramp < 1 {
		ramp = 1
	}

	pcm := make([]int16, n)
	for i := range pcm {
		envelope := 1.0
		if i < ramp {
			envelope = float64(i) / float64(ramp)
		}
		if tail := n - i - 1; tail < ramp {
			if release := float64(tail) / float64(ramp); release < envelope {
				envelope = release
			}
		}
		phase := 2 * math.Pi * t.hz * float64(i) / cueSampleRate
		pcm[i] = int16(math.Round(math.Sin(phase) * cueVolume * envelope * 32767))
	}
	return pcm
}

func durationSamples(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
