package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/petalfield/internal/audio"
)

// ambientTrack is a looping audio file whose loudness stirs the wind.
type ambientTrack struct {
	name     string
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	tap      *audio.Tap
	ctrl     *beep.Ctrl
}

var speakerRate beep.SampleRate

// ambientBoost converts the track's current loudness into a gust boost.
func (g *Game) ambientBoost() float64 {
	if g.track == nil || g.paused {
		return 0
	}
	g.meter.Update(g.track.tap.RMS(g.cfg.Audio.Window))
	return g.meter.Boost(g.cfg.Audio.Gain, g.cfg.Audio.MaxBoost)
}

func (g *Game) openTrackDialog() error {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Ambient Track"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return fmt.Errorf("selecting track: %w", err)
	}
	return g.LoadTrack(filename)
}

// LoadTrack starts looping the audio file at path, replacing any current
// track. Its loudness feeds the wind boost every frame.
func (g *Game) LoadTrack(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening track: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return fmt.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	if err := initSpeaker(format.SampleRate); err != nil {
		_ = streamer.Close()
		_ = f.Close()
		return err
	}
	g.stopTrack()

	tap := audio.NewTap(beep.Loop(-1, streamer), g.cfg.Audio.RingSize)
	ctrl := &beep.Ctrl{Streamer: tap, Paused: g.paused}

	g.track = &ambientTrack{
		name:     filepath.Base(path),
		file:     f,
		streamer: streamer,
		format:   format,
		tap:      tap,
		ctrl:     ctrl,
	}
	// the previous track's loudness must not leak into the new one
	g.meter.Reset()
	speaker.Play(ctrl)

	g.lastErr = nil
	g.log.Info("ambient track loaded",
		"file", g.track.name,
		"sample_rate", int(format.SampleRate),
		"duration", format.SampleRate.D(streamer.Len()).Round(time.Second),
	)
	return nil
}

// initSpeaker (re)initializes the speaker when the sample rate changes.
func initSpeaker(rate beep.SampleRate) error {
	if speakerRate == rate {
		return nil
	}
	if speakerRate != 0 {
		speaker.Lock()
		speaker.Clear()
		speaker.Unlock()
	}
	if err := speaker.Init(rate, rate.N(time.Second/20)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speakerRate = rate
	return nil
}

func (g *Game) pauseTrack(paused bool) {
	if g.track == nil {
		return
	}
	speaker.Lock()
	g.track.ctrl.Paused = paused
	speaker.Unlock()
}

func (g *Game) stopTrack() {
	if g.track == nil {
		return
	}
	speaker.Lock()
	speaker.Clear()
	speaker.Unlock()
	_ = g.track.streamer.Close()
	_ = g.track.file.Close()
	g.track = nil
}
