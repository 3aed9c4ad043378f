package config

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/render"
	retroconfig "github.com/retroenv/retrogolib/config"
)

const keysSection = "keys"

// Display contains the presentation settings of the frontends.
type Display struct {
	PixelOn  string `config:"pixel_on"`
	PixelOff string `config:"pixel_off"`
	Color    string `config:"color,default=white"`
	Scale    int    `config:"scale,default=10"`
}

// Settings is the content of a settings file.
//
//	[display]
//	pixel_on = "#"
//	color = "green"
//	scale = 8
//
//	[keys]
//	i = 0x5
type Settings struct {
	Display Display `config:"display"`
}

// DefaultSettings returns the settings used without a settings file.
func DefaultSettings() Settings {
	return Settings{
		Display: Display{
			PixelOn:  render.PixelOn,
			PixelOff: render.PixelOff,
			Color:    render.Palette[0].Name,
			Scale:    10,
		},
	}
}

// LoadSettings reads the settings file and applies its key bindings to
// keys. An empty filename returns the default settings.
func LoadSettings(filename string, keys *keymap.Keymap) (Settings, error) {
	if filename == "" {
		return DefaultSettings(), nil
	}

	doc, err := retroconfig.Open(filename, retroconfig.Options{})
	if err != nil {
		return Settings{}, fmt.Errorf("opening settings file %s: %w", filename, err)
	}
	return applySettings(doc, keys)
}

func applySettings(doc *retroconfig.Config, keys *keymap.Keymap) (Settings, error) {
	var settings Settings
	if err := doc.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}
	if err := settings.validate(); err != nil {
		return Settings{}, err
	}

	for entry := range doc.Entries() {
		if entry.Section != keysSection {
			continue
		}
		if err := bindKey(keys, entry); err != nil {
			return Settings{}, err
		}
	}
	return settings, nil
}

func (s *Settings) validate() error {
	if _, ok := render.ColorIndex(s.Display.Color); !ok {
		return fmt.Errorf("unsupported display color '%s'", s.Display.Color)
	}
	if s.Display.Scale < 1 {
		return fmt.Errorf("display scale must be positive, got %d", s.Display.Scale)
	}
	if s.Display.PixelOn == "" {
		s.Display.PixelOn = render.PixelOn
	}
	if s.Display.PixelOff == "" {
		s.Display.PixelOff = render.PixelOff
	}
	return nil
}

// bindKey binds an entry of the form "q = 0x4" to the keypad.
func bindKey(keys *keymap.Keymap, entry retroconfig.Entry) error {
	r, size := utf8.DecodeRuneInString(entry.Key)
	if size == 0 || size != len(entry.Key) {
		return fmt.Errorf("line %d: key binding '%s' is not a single character", entry.Line, entry.Key)
	}

	value, err := strconv.ParseUint(entry.Value.Raw, 0, 8)
	if err != nil {
		return fmt.Errorf("line %d: invalid keypad key '%s': %w", entry.Line, entry.Value.Raw, err)
	}
	if err := keys.Bind(r, uint8(value)); err != nil {
		return fmt.Errorf("line %d: %w", entry.Line, err)
	}
	return nil
}
