// Package sdl implements an interactive window frontend with sound output.
// It uses the renderer and audio device that are registered in the gui and
// audio packages by importing their SDL2 implementations.
package sdl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/render"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/audio"
	"github.com/retroenv/retrogolib/gui"
	"github.com/retroenv/retrogolib/input"
	"github.com/retroenv/retrogolib/log"
)

const (
	windowTitle = "retrochip8"

	sampleRate    = 44100
	toneFrequency = 440
	toneAmplitude = 3000
	// samples per half period of the square wave
	halfPeriod = sampleRate / toneFrequency / 2
)

// ErrNoRenderer is returned when no GUI renderer was registered.
var ErrNoRenderer = errors.New("no GUI renderer available")

// Window presents frames in a scaled window and plays a square wave while
// the sound timer is active. Key events and rendering happen on the
// goroutine that calls Run, the audio callback runs on a worker goroutine.
type Window struct {
	logger *log.Logger
	keys   *keymap.Keymap
	runner *runner.Runner

	scale float64
	color int
	image *image.RGBA
	rows  display.Rows

	tone  atomic.Bool
	phase int // owned by the audio callback
}

// New returns a window frontend using the display settings.
func New(logger *log.Logger, keys *keymap.Keymap, settings config.Display) *Window {
	index, _ := render.ColorIndex(settings.Color)
	w := &Window{
		logger: logger,
		keys:   keys,
		scale:  float64(max(settings.Scale, 1)),
		color:  index,
	}
	w.paint()
	return w
}

// Run opens the window and runs one frame per 60Hz tick until the window
// is closed or Escape is pressed. A cancelled context stops the loop and
// its error is returned. It has to be called from the main goroutine.
func (w *Window) Run(ctx context.Context, r *runner.Runner) error {
	if gui.Setup == nil {
		return ErrNoRenderer
	}
	w.runner = r

	renderFrame, cleanup, err := gui.Setup(w)
	if err != nil {
		return fmt.Errorf("setting up GUI: %w", err)
	}
	defer cleanup()

	stopAudio := w.startAudio()
	defer stopAudio()

	ticker := time.NewTicker(runner.FrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("running window at frame %d: %w", r.FrameCount(), ctx.Err())
		case <-ticker.C:
		}

		// a halted machine keeps presenting its last frame until it is
		// restarted with F5
		if err := r.Frame(); err != nil {
			w.logger.Debug("Machine halted, press F5 to restart", log.Err(err))
		}

		running, err := renderFrame()
		if err != nil {
			return fmt.Errorf("rendering frame: %w", err)
		}
		if !running {
			return nil
		}
	}
}

// startAudio starts the playback if an audio device is available. Sound
// is optional, failures are only logged.
func (w *Window) startAudio() func() {
	if audio.Setup == nil {
		return func() {}
	}

	playback, err := audio.Setup(w)
	if err != nil {
		w.logger.Warn("Audio output disabled", log.Err(err))
		return func() {}
	}
	if err := playback.Start(); err != nil {
		w.logger.Warn("Starting audio playback failed", log.Err(err))
	}

	go func() {
		for err := range playback.Errors {
			w.logger.Warn("Audio playback stopped", log.Err(err))
		}
	}()
	return playback.Stop
}

// Present paints the frame into the window image.
func (w *Window) Present(rows display.Rows) {
	w.rows = rows
	w.paint()
}

// Tone switches the square wave on or off.
func (w *Window) Tone(on bool) {
	w.tone.Store(on)
}

func (w *Window) paint() {
	w.image = render.Image(w.rows, render.Palette[w.color].RGBA)
}

// Image returns the window content.
func (w *Window) Image() *image.RGBA {
	return w.image
}

// Dimensions returns the display size and the scale of the window.
func (w *Window) Dimensions() gui.Dimensions {
	return gui.Dimensions{
		ScaleFactor: w.scale,
		Width:       display.Width,
		Height:      display.Height,
	}
}

// WindowTitle returns the title of the window.
func (w *Window) WindowTitle() string {
	return windowTitle
}

// KeyDown handles emulator controls and presses bound keypad keys.
func (w *Window) KeyDown(key input.Key) {
	if w.runner == nil {
		return
	}

	switch key {
	case input.Space:
		w.runner.TogglePause()
	case input.Minus:
		w.runner.SpeedDown()
	case input.Equal:
		w.runner.SpeedUp()
	case input.F5:
		w.runner.Restart()
	case input.Tab:
		w.color = render.NextColor(w.color)
		w.paint()
	default:
		if k, ok := w.keys.Input(key); ok {
			w.runner.KeyDown(k)
		}
	}
}

// KeyUp releases bound keypad keys.
func (w *Window) KeyUp(key input.Key) {
	if w.runner == nil {
		return
	}
	if k, ok := w.keys.Input(key); ok {
		w.runner.KeyUp(k)
	}
}

// AudioFormat returns 16 bit mono samples.
func (w *Window) AudioFormat() audio.Format {
	return audio.Format{
		SampleRate: sampleRate,
		Channels:   1,
		Samples:    512,
		Format:     audio.FormatS16,
	}
}

// AudioCallback fills the buffer with the square wave or silence.
func (w *Window) AudioCallback(buffer []byte) {
	if !w.tone.Load() {
		clear(buffer)
		w.phase = 0
		return
	}

	for i := 0; i+1 < len(buffer); i += 2 {
		sample := int16(toneAmplitude)
		if (w.phase/halfPeriod)%2 == 1 {
			sample = -toneAmplitude
		}
		binary.LittleEndian.PutUint16(buffer[i:], uint16(sample))
		w.phase = (w.phase + 1) % (2 * halfPeriod)
	}
}

// AudioPaused returns false, silence is produced by the callback.
func (w *Window) AudioPaused() bool {
	return false
}
