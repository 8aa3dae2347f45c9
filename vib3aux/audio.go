package vib3aux

import (
	"math"
	"sync"

	"github.com/gopxl/beep"

	"github.com/soypat/vib3"
)

// Band edges of the audio tap in Hz.
const (
	BassCutoff = 250
	HighCutoff = 4000
)

// AudioTap is a [beep.Streamer] that passes its source through unchanged and
// measures the bass, mid and high energy of the samples streamed. Place it
// between the source and the speaker and poll [AudioTap.Levels] each frame.
type AudioTap struct {
	Source beep.Streamer
	// Gain scales band RMS into levels. Zero uses 2.
	Gain float64
	// Release is the per-buffer smoothing of falling levels in [0,1). Zero uses 0.8.
	Release float64

	aLow, aHigh float64

	mu     sync.RWMutex
	low    float64 // Lowpass filter states.
	lowMid float64
	levels [3]float64
}

// NewAudioTap returns a tap for source sampled at sr.
func NewAudioTap(source beep.Streamer, sr beep.SampleRate) *AudioTap {
	return &AudioTap{
		Source: source,
		aLow:   onePole(BassCutoff, sr),
		aHigh:  onePole(HighCutoff, sr),
	}
}

func onePole(cutoff float64, sr beep.SampleRate) float64 {
	return 1 - math.Exp(-2*math.Pi*cutoff/float64(sr))
}

// Stream implements [beep.Streamer].
func (t *AudioTap) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = t.Source.Stream(samples)
	if n > 0 {
		t.measure(samples[:n])
	}
	return n, ok
}

// Err implements [beep.Streamer].
func (t *AudioTap) Err() error { return t.Source.Err() }

func (t *AudioTap) measure(samples [][2]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sum [3]float64
	low, lowMid := t.low, t.lowMid
	for _, s := range samples {
		mono := (s[0] + s[1]) / 2
		low += t.aLow * (mono - low)
		lowMid += t.aHigh * (mono - lowMid)
		bass, mid, high := low, lowMid-low, mono-lowMid
		sum[0] += bass * bass
		sum[1] += mid * mid
		sum[2] += high * high
	}
	t.low, t.lowMid = low, lowMid
	gain := t.Gain
	if gain == 0 {
		gain = 2
	}
	release := t.Release
	if release == 0 {
		release = 0.8
	}
	inv := 1 / float64(len(samples))
	for i := range sum {
		lvl := gain * math.Sqrt(sum[i]*inv)
		if lvl < t.levels[i] {
			lvl = release*t.levels[i] + (1-release)*lvl
		}
		t.levels[i] = lvl
	}
}

// Levels returns the latest band levels. Values are clamped by the parameter store.
func (t *AudioTap) Levels() vib3.AudioLevels {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return vib3.AudioLevels{
		Bass: float32(t.levels[0]),
		Mid:  float32(t.levels[1]),
		High: float32(t.levels[2]),
	}
}

// Reset clears the filter state and levels.
func (t *AudioTap) Reset() {
	t.mu.Lock()
	t.low, t.lowMid = 0, 0
	t.levels = [3]float64{}
	t.mu.Unlock()
}
