// Package termloop implements an interactive terminal frontend using the
// termloop game engine.
//
// The display takes two terminal columns per pixel. Next to it a panel shows
// the registers, timers and the stack. Terminals only report key presses,
// so every keypad key press is held for a few frames before it is released.
package termloop

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tl "github.com/JoelOtter/termloop"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/render"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

const (
	cellsPerPixel = 2
	panelColumn   = display.Width*cellsPerPixel + 2
	statusRow     = display.Height + 1
	helpRow       = display.Height + 2

	helpText = "space pause  ctrl+w/e speed  ctrl+r restart  ctrl+t color  ctrl+c quit"
)

var colors = map[string]tl.Attr{
	"white":   tl.ColorWhite,
	"green":   tl.ColorGreen,
	"yellow":  tl.ColorYellow,
	"cyan":    tl.ColorCyan,
	"magenta": tl.ColorMagenta,
	"red":     tl.ColorRed,
	"blue":    tl.ColorBlue,
}

// Frontend presents frames in the terminal and forwards key presses to the
// runner. It is a frame sink and a termloop entity.
type Frontend struct {
	logger *log.Logger
	keys   *keymap.Keymap
	ctx    context.Context
	runner *runner.Runner

	on    rune
	off   rune
	color int

	rows    display.Rows
	tone    bool
	message string

	status    *tl.Text
	registers *tl.Text
	pointers  *tl.Text
	stack     []*tl.Text
}

// New returns a terminal frontend using the display settings.
func New(logger *log.Logger, keys *keymap.Keymap, settings config.Display) *Frontend {
	color, _ := render.ColorIndex(settings.Color)
	f := &Frontend{
		logger: logger,
		keys:   keys,
		ctx:    context.Background(),
		on:     firstRune(settings.PixelOn, render.PixelOn),
		off:    firstRune(settings.PixelOff, render.PixelOff),
		color:  color,

		status:    tl.NewText(0, statusRow, "", tl.ColorDefault, tl.ColorDefault),
		registers: tl.NewText(panelColumn, 0, "", tl.ColorDefault, tl.ColorDefault),
		pointers:  tl.NewText(panelColumn, 1, "", tl.ColorDefault, tl.ColorDefault),
		stack:     make([]*tl.Text, 0, 17),
	}

	f.stack = append(f.stack, tl.NewText(panelColumn, 3, "Stack", tl.ColorDefault, tl.ColorDefault))
	for i := range 16 {
		f.stack = append(f.stack, tl.NewText(panelColumn, 4+i, "", tl.ColorDefault, tl.ColorDefault))
	}
	return f
}

// Run starts the terminal game loop. It blocks until Ctrl+C is pressed and
// returns the context error if the context was cancelled meanwhile.
func (f *Frontend) Run(ctx context.Context, r *runner.Runner) error {
	f.ctx = ctx
	f.runner = r

	game := tl.NewGame()
	game.SetEndKey(tl.KeyCtrlC)
	screen := game.Screen()
	screen.SetFps(runner.FrameRate)

	screen.AddEntity(f)
	screen.AddEntity(f.status)
	screen.AddEntity(tl.NewText(0, helpRow, helpText, tl.ColorDefault, tl.ColorDefault))
	screen.AddEntity(f.registers)
	screen.AddEntity(f.pointers)
	for _, text := range f.stack {
		screen.AddEntity(text)
	}

	game.Start()
	return f.exitError()
}

// exitError returns the wrapped context error after the game loop ended.
func (f *Frontend) exitError() error {
	if err := f.ctx.Err(); err != nil {
		frame := 0
		if f.runner != nil {
			frame = f.runner.FrameCount()
		}
		return fmt.Errorf("running terminal at frame %d: %w", frame, err)
	}
	return nil
}

// Present stores the frame for the next draw.
func (f *Frontend) Present(rows display.Rows) {
	f.rows = rows
}

// Tone stores the state of the sound output, the terminal shows it in the
// status line.
func (f *Frontend) Tone(on bool) {
	f.tone = on
}

// Tick handles key events.
func (f *Frontend) Tick(ev tl.Event) {
	if ev.Type != tl.EventKey || f.runner == nil {
		return
	}

	switch ev.Key {
	case tl.KeySpace:
		f.runner.TogglePause()
	case tl.KeyCtrlW:
		f.runner.SpeedDown()
	case tl.KeyCtrlE:
		f.runner.SpeedUp()
	case tl.KeyCtrlR:
		f.message = ""
		f.runner.Restart()
	case tl.KeyCtrlT:
		f.color = render.NextColor(f.color)
	default:
		if ev.Ch == 0 {
			return
		}
		if key, ok := f.keys.Rune(ev.Ch); ok {
			f.runner.Press(key)
		}
	}
}

// Draw runs a frame and renders the display and the machine state.
func (f *Frontend) Draw(screen *tl.Screen) {
	if f.runner != nil && f.ctx.Err() == nil {
		if err := f.runner.Frame(); err != nil {
			f.message = err.Error()
		}
	}

	on := &tl.Cell{Fg: colors[render.Palette[f.color].Name], Ch: f.on}
	off := &tl.Cell{Ch: f.off}
	for y := range display.Height {
		row := f.rows[y]
		for x := range display.Width {
			cell := off
			if row&(1<<(63-x)) != 0 {
				cell = on
			}
			for c := range cellsPerPixel {
				screen.RenderCell(x*cellsPerPixel+c, y, cell)
			}
		}
	}

	if f.runner != nil {
		f.updatePanel(f.runner)
	}
}

func (f *Frontend) updatePanel(r *runner.Runner) {
	f.status.SetText(f.statusLine(r))

	state := r.State()
	var regs strings.Builder
	for i, v := range state.V {
		fmt.Fprintf(&regs, "V%X:%02X ", i, v)
	}
	f.registers.SetText(strings.TrimSpace(regs.String()))
	f.pointers.SetText(fmt.Sprintf("PC:%03X I:%03X DT:%02X ST:%02X", state.PC, state.I, state.DT, state.ST))

	for i, text := range f.stack[1:] {
		if i < len(state.Stack) {
			text.SetText(fmt.Sprintf("%2d: %03X", i, state.Stack[i]))
		} else {
			text.SetText("")
		}
	}
}

func (f *Frontend) statusLine(r *runner.Runner) string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d  speed %.1fx  %d ipf", r.FrameCount(), r.Speed(), r.CyclesPerFrame())
	switch {
	case f.ctx.Err() != nil:
		b.WriteString("  interrupted, press ctrl+c to quit")
	case r.Halted():
		b.WriteString("  halted: " + f.message)
	case r.Paused():
		b.WriteString("  paused")
	}
	if f.tone {
		b.WriteString("  beep")
	}
	return b.String()
}

func firstRune(s, fallback string) rune {
	if s == "" {
		s = fallback
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
