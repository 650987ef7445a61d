// Package audio measures the loudness of a playing stream.
package audio

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

// Tap wraps a beep.Streamer and records the last N samples into a ring buffer
// so the frame loop can read how loud the ambient track currently is.
type Tap struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	filled    int
	mu        sync.RWMutex
}

// NewTap returns a tap over src keeping ringSize stereo samples.
func NewTap(src beep.Streamer, ringSize int) *Tap {
	if ringSize < 1 {
		ringSize = 1
	}
	return &Tap{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Source.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		for i := 0; i < n; i++ {
			t.buffer[t.nextIndex] = samples[i]
			t.nextIndex++
			if t.nextIndex >= len(t.buffer) {
				t.nextIndex = 0
			}
		}
		t.filled = min(t.filled+n, len(t.buffer))
		t.mu.Unlock()
	}
	return n, ok
}

func (t *Tap) Err() error { return t.Source.Err() }

// Snapshot returns up to the last n samples, most recent last.
func (t *Tap) Snapshot(n int) [][2]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > t.filled {
		n = t.filled
	}
	out := make([][2]float64, n)
	idx := t.nextIndex - n
	if idx < 0 {
		idx += len(t.buffer)
	}
	for i := 0; i < n; i++ {
		out[i] = t.buffer[idx]
		idx++
		if idx >= len(t.buffer) {
			idx = 0
		}
	}
	return out
}

// RMS returns the mono root-mean-square of the last n samples, 0 if none
// have played yet.
func (t *Tap) RMS(n int) float64 {
	samples := t.Snapshot(n)
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		mono := (s[0] + s[1]) * 0.5
		sumSquares += mono * mono
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// Meter smooths successive loudness readings.
type Meter struct {
	Smoothing float64 // weight kept from the previous reading, in [0, 1)
	level     float64
}

// Update folds a new reading in and returns the smoothed level.
func (m *Meter) Update(rms float64) float64 {
	m.level = m.Smoothing*m.level + (1-m.Smoothing)*rms
	return m.level
}

// Level returns the current smoothed level.
func (m *Meter) Level() float64 { return m.level }

// Reset drops the history.
func (m *Meter) Reset() { m.level = 0 }

// Boost scales the current level by gain and caps it into [0, limit]. A
// negative limit yields 0.
func (m *Meter) Boost(gain, limit float64) float64 {
	b := m.Level() * gain
	if b > limit {
		b = limit
	}
	if b < 0 {
		return 0
	}
	return b
}
