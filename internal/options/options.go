// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	File string `arg:"positional" usage:"CHIP-8 program file to run"`
}

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input program file"`
	Output string `flag:"o" usage:"output file for the final frame of a headless run (default: stdout)"`
	PNG    string `flag:"png" usage:"write the final frame of a headless run as PNG image to this file"`
	Config string `flag:"c" usage:"settings file for display and key bindings"`
	Log    string `flag:"log" usage:"log file for the interactive frontends (default: discard logs in -tui)"`
}

// Emulation contains machine and pacing options.
type Emulation struct {
	Frames         int     `flag:"frames" usage:"frames to run headless, 0 runs until interrupted" default:"600"`
	CyclesPerFrame int     `flag:"cpf" usage:"instructions executed per frame" default:"11"`
	Speed          float64 `flag:"speed" usage:"speed multiplier from 0.2 to 4.0" default:"1.0"`
	Fault          string  `flag:"fault" usage:"reaction to program faults: halt, skip, restart" default:"halt"`
	Seed           int64   `flag:"seed" usage:"seed of the random number source, negative seeds from the current time" default:"-1"`
	Keys           string  `flag:"keys" usage:"scripted key presses as frame:key list, for example 30:w,60:#a"`
	Realtime       bool    `flag:"realtime" usage:"pace headless frames at 60 frames per second"`
}

// Flags contains behavior options.
type Flags struct {
	TUI   bool `flag:"tui" usage:"run interactively in the terminal"`
	GUI   bool `flag:"gui" usage:"run interactively in an SDL2 window"`
	Debug bool `flag:"debug" usage:"enable debug logging"`
	Trace bool `flag:"trace" usage:"log every executed frame, implies -debug"`
	Quiet bool `flag:"q" usage:"quiet mode"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Emulation
	Flags
}

// Interactive returns whether a frontend that takes keyboard input is used.
func (p Program) Interactive() bool {
	return p.TUI || p.GUI
}
